package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/database"
	"github.com/streed/exo/internal/embeddings"
	"github.com/streed/exo/internal/llm"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/models"
	"github.com/streed/exo/internal/search"
	"github.com/streed/exo/internal/services"
	"github.com/streed/exo/internal/store"
)

var (
	db        *database.DB
	noteStore *store.NoteStore
	llmClient *llm.Client
	svc       *services.Services
	appConfig *config.Config
	debugFlag bool
	Version   = "dev" // Version is set from main.go
)

// ErrCommandFailed is returned after a failed Result has already been
// printed, so main only needs to set the exit status.
var ErrCommandFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:     "exo",
	Short:   "An exocortex shell: notes with semantic search plus a language model",
	Version: Version,
	Long: `exo routes short commands either to a local language model or to a personal
notes store. Every note is embedded when written, so 'exo search' finds notes by
meaning rather than by keyword.

Run 'exo init' once to write a configuration file, then try:
  exo create "buy oat milk"
  exo search "groceries"
  exo run "update_note 1 buy oat milk and bread"`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(ctx context.Context) error {
	rootCmd.Version = Version
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initAppConfig)
	cobra.OnFinalize(closeApp)
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// needsStore reports whether the invoked command works on the notes store.
func needsStore() bool {
	if len(os.Args) < 2 {
		return false
	}
	switch os.Args[1] {
	case "init", "config", "help", "completion", "--help", "-h", "--version", "-v":
		return false
	}
	return true
}

func initAppConfig() {
	if debugFlag {
		logger.SetDebugMode(true)
	}
	if !needsStore() {
		return
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please run 'exo init' to set up the configuration.\n")
		os.Exit(1)
	}

	// Enable debug mode from flag or config
	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Configuration loaded from: %s", func() string {
			path, _ := config.GetConfigPath()
			return path
		}())
		logger.Debug("Data directory: %s", appConfig.DataDirectory)
		logger.Debug("Ollama endpoint: %s", appConfig.OllamaEndpoint)
		logger.Debug("Embedding model: %s", appConfig.EmbeddingModel)
		logger.Debug("Vector dimensions: %d", appConfig.VectorDimensions)
		logger.Debug("Query model: %s", appConfig.QueryModel)
	}

	db, err = database.New(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}

	embedder := embeddings.NewCachingProvider(
		embeddings.NewOllamaEmbedding(appConfig),
		appConfig.EmbeddingCacheSize,
	)
	noteStore = store.New(models.NewNoteRepository(db.Conn()), embedder)
	vectorSearch := search.NewVectorSearch(noteStore, embedder, appConfig.SearchLimit)
	llmClient = llm.NewClient(appConfig)
	svc = services.NewServices(appConfig, noteStore, vectorSearch, llmClient)
}

func closeApp() {
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database: %v", err)
		}
		db = nil
	}
}

// printResult writes r for a terminal. Failures go to stderr and turn into
// ErrCommandFailed.
func printResult(cmd *cobra.Command, r services.Result) error {
	out := cmd.OutOrStdout()
	if r.Failed() {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintln(out, r.Title)
	fmt.Fprintln(out, r.Content)
	if r.Failed() {
		return ErrCommandFailed
	}
	return nil
}
