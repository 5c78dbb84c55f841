package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/logger"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Recompute the embedding of every note",
	Long: `Recompute every note's embedding with the current embedding model and vector
dimensions. Run this after changing either setting. Stops at the first note that
cannot be embedded; notes already processed keep their new embeddings.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	total, err := noteStore.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count notes: %w", err)
	}
	if total == 0 {
		fmt.Println("No notes to reindex.")
		return nil
	}

	fmt.Printf("Reindexing %d notes with:\n", total)
	fmt.Printf("  Model: %s\n", appConfig.EmbeddingModel)
	fmt.Printf("  Dimensions: %d\n", appConfig.VectorDimensions)

	done, err := noteStore.Reindex(cmd.Context())
	if err != nil {
		logger.Error("Reindex stopped after %d notes: %v", done, err)
		return fmt.Errorf("reindex stopped after %d of %d notes: %w", done, total, err)
	}

	fmt.Printf("\nReindexing complete: %d/%d notes reindexed.\n", done, total)
	return nil
}
