package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize exo configuration",
	Long: `Initialize exo configuration interactively or with flags.
This command writes the configuration file and creates the data directory.`,
	RunE: runInit,
}

var (
	initDataDir        string
	initOllamaEndpoint string
	initEmbeddingModel string
	initQueryModel     string
	initInteractive    bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Data directory for storing the notes database")
	initCmd.Flags().StringVar(&initOllamaEndpoint, "ollama-endpoint", "", "Ollama API endpoint (e.g., http://localhost:11434)")
	initCmd.Flags().StringVar(&initEmbeddingModel, "embedding-model", "", "Model used to embed notes (e.g., nomic-embed-text)")
	initCmd.Flags().StringVar(&initQueryModel, "query-model", "", "Model used for queries (e.g., llama3.2:latest)")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Run interactive setup")
}

func prompt(reader *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	input, _ := reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return def
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Configuration already exists at: %s\n", configPath)
		if !confirm(reader, out, "Do you want to overwrite it?") {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	if initInteractive || (initDataDir == "" && initOllamaEndpoint == "") {
		fmt.Fprintln(out, "=== exo Configuration Setup ===")
		fmt.Fprintln(out)

		initDataDir = expandPath(prompt(reader, out, "Data directory", config.GetDefaultDataDirectory()))
		initOllamaEndpoint = prompt(reader, out, "Ollama API endpoint", "http://localhost:11434")
		initEmbeddingModel = prompt(reader, out, "Embedding model", "nomic-embed-text")
		initQueryModel = prompt(reader, out, "Query model", "llama3.2:latest")
	}

	cfg, err := config.InitializeConfig(expandPath(initDataDir), initOllamaEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	changed := false
	if initEmbeddingModel != "" && initEmbeddingModel != cfg.EmbeddingModel {
		cfg.EmbeddingModel = initEmbeddingModel
		changed = true
	}
	if initQueryModel != "" && initQueryModel != cfg.QueryModel {
		cfg.QueryModel = initQueryModel
		changed = true
	}
	if changed {
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}

	fmt.Fprintln(out, "\n=== Configuration Summary ===")
	fmt.Fprintf(out, "Config file:        %s\n", configPath)
	fmt.Fprintf(out, "Data directory:     %s\n", cfg.DataDirectory)
	fmt.Fprintf(out, "Database path:      %s\n", cfg.GetDatabasePath())
	fmt.Fprintf(out, "Ollama endpoint:    %s\n", cfg.OllamaEndpoint)
	fmt.Fprintf(out, "Embedding model:    %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "Vector dimensions:  %d\n", cfg.VectorDimensions)
	fmt.Fprintf(out, "Query model:        %s\n", cfg.QueryModel)

	fmt.Fprintln(out, "\nConfiguration initialized successfully!")
	fmt.Fprintln(out, "Make sure Ollama is running and has the required models installed:")
	fmt.Fprintf(out, "  ollama pull %s  # For embeddings\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "  ollama pull %s  # For queries\n", cfg.QueryModel)
	fmt.Fprintln(out, "If the embedding model returns a different vector size, run:")
	fmt.Fprintln(out, "  exo config set vector_dimensions <n> && exo reindex")

	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
