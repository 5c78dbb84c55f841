package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage exo configuration",
	Long:  `View and manage exo configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value.

Available keys:
  - data_directory: Data directory for storing the notes database
  - database_path: Explicit database file (overrides data_directory)
  - ollama_endpoint: Ollama API endpoint
  - embedding_model: Embedding model name
  - vector_dimensions: Length of every stored embedding
  - embedding_timeout_seconds: Timeout for one embedding call
  - embedding_cache_size: Cached embeddings kept in memory (0 disables)
  - query_model: Model used for query, gen, riff and analyze
  - search_limit: Number of notes a search returns
  - debug: Enable/disable debug logging (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println("=== exo Configuration ===")
	fmt.Printf("Config file:                %s\n", configPath)
	fmt.Printf("data_directory:             %s\n", cfg.DataDirectory)
	fmt.Printf("database_path:              %s\n", cfg.GetDatabasePath())
	fmt.Printf("ollama_endpoint:            %s\n", cfg.OllamaEndpoint)
	fmt.Printf("embedding_model:            %s\n", cfg.EmbeddingModel)
	fmt.Printf("vector_dimensions:          %d\n", cfg.VectorDimensions)
	fmt.Printf("embedding_timeout_seconds:  %d\n", cfg.EmbeddingTimeoutSeconds)
	fmt.Printf("embedding_cache_size:       %d\n", cfg.EmbeddingCacheSize)
	fmt.Printf("query_model:                %s\n", cfg.QueryModel)
	fmt.Printf("search_limit:               %d\n", cfg.SearchLimit)
	fmt.Printf("debug:                      %v\n", cfg.Debug)

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	oldModel, oldDims := cfg.EmbeddingModel, cfg.VectorDimensions

	if key == "data_directory" {
		value = expandPath(value)
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if cfg.EmbeddingModel != oldModel || cfg.VectorDimensions != oldDims {
		logger.Warn("Embedding configuration has changed. Run 'exo reindex' so stored embeddings match the new model.")
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Configuration updated: %s = %s\n", key, value)
	return nil
}
