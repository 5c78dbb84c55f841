package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update [note ID] [text]",
	Aliases: []string{"update_note"},
	Short:   "Replace the text of a note",
	Long: `Replace the text of an existing note. The embedding is always recomputed,
and if that fails the note is left exactly as it was.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return printResult(cmd, svc.Notes.UpdateNote(cmd.Context(), args[0], strings.Join(args[1:], " ")))
}
