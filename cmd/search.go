package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search [query]",
	Aliases: []string{"search_notes", "find"},
	Short:   "Find the notes closest in meaning to a query",
	Long: `Embed the query and rank every note by cosine similarity to it. The best
matches are printed first, with their similarity scores. The number of results
is set by the search_limit configuration key (default 3).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	return printResult(cmd, svc.Notes.SearchNotes(cmd.Context(), strings.Join(args, " ")))
}
