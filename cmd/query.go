package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/logger"
)

var queryCmd = &cobra.Command{
	Use:     "query [text]",
	Aliases: []string{"gen", "riff", "analyze"},
	Short:   "Send a query to the language model",
	Long: `Forward the text to the configured Ollama model, framed as a command sent to
the exocortex shell, and print the reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryModel string

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "Ollama model for this query (defaults to query_model)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryModel != "" && llmClient != nil {
		llmClient.SetModel(queryModel)
	}
	if llmClient != nil {
		logger.Debug("Querying model %s", llmClient.Model())
	}
	return printResult(cmd, svc.Query.Query(cmd.Context(), strings.Join(args, " ")))
}
