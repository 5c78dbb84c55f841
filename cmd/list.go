package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"notes", "ls"},
	Short:   "List all notes",
	Long:    `List every note with its ID and creation time, newest first.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listJSON   bool
	listFilter string
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print notes as JSON")
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Only show notes whose text fuzzily matches this pattern")
}

func runList(cmd *cobra.Command, args []string) error {
	r := svc.Notes.FilterNotes(cmd.Context(), listFilter)
	if !listJSON || r.Failed() {
		return printResult(cmd, r)
	}

	data, err := json.MarshalIndent(r.Notes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
