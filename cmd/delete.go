package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [note IDs...]",
	Short: "Delete one or more notes",
	Long: `Delete notes by their IDs. Deletion is permanent.

You will be prompted for confirmation before deletion.
Use --force to skip the confirmation prompt.`,
	Args:    cobra.MinimumNArgs(1),
	Aliases: []string{"rm", "remove", "delete_note"},
	RunE:    runDelete,
}

var forceDelete bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if !forceDelete {
		question := fmt.Sprintf("Delete %d note(s): %s?", len(args), strings.Join(args, ", "))
		if !confirm(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), question) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Deletion cancelled.")
			return nil
		}
	}

	var failed bool
	for _, id := range args {
		if err := printResult(cmd, svc.Notes.DeleteNote(cmd.Context(), id)); err != nil {
			failed = true
		}
	}
	if failed {
		return ErrCommandFailed
	}
	return nil
}
