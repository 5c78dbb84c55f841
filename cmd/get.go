package cmd

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:     "read [note ID]",
	Aliases: []string{"get", "show", "read_note"},
	Short:   "Show a single note",
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	return printResult(cmd, svc.Notes.ReadNote(cmd.Context(), args[0]))
}
