package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/dispatch"
)

var runCmd = &cobra.Command{
	Use:   "run [command string]",
	Short: "Run a raw exo command string",
	Long: `Run a command exactly as the exocortex shell receives it. The first word is
the action and the rest is its argument.

Examples:
  exo run "create_note 'call the plumber'"
  exo run "update_note 3 call the plumber about the sink"
  exo run "search_notes home repairs"
  exo run help

` + dispatch.HelpText(),
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	d := dispatch.New(svc)
	return printResult(cmd, d.Handle(cmd.Context(), strings.Join(args, " ")))
}
