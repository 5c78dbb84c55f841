package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/api"
	"github.com/streed/exo/internal/constants"
	"github.com/streed/exo/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP API server that exposes exo over JSON endpoints:

- POST   /api/v1/command        run a raw command string
- GET    /api/v1/notes          list notes
- POST   /api/v1/notes          create a note
- GET    /api/v1/notes/{id}     read a note
- PUT    /api/v1/notes/{id}     update a note
- DELETE /api/v1/notes/{id}     delete a note
- POST   /api/v1/notes/search   semantic search
- GET    /api/v1/health         health check

Examples:
  exo serve                              # Start on localhost:8080
  exo serve --host 0.0.0.0 --port 3000   # Start on all interfaces, port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind the server to")
	serveCmd.Flags().IntVar(&servePort, "port", constants.DefaultServePort, "Port to bind the server to")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Initializing HTTP API server...")

	apiServer := api.NewAPIServer(appConfig, db.Conn(), noteStore, svc, Version)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start(serveHost, servePort)
	}()

	fmt.Printf("\nexo HTTP API Server\n")
	fmt.Printf("Server URL: http://%s:%d\n", serveHost, servePort)
	fmt.Printf("Health:     http://%s:%d/api/v1/health\n", serveHost, servePort)
	fmt.Printf("\nExample API calls:\n")
	fmt.Printf("   curl http://%s:%d/api/v1/notes\n", serveHost, servePort)
	fmt.Printf("   curl -X POST -d '{\"query\":\"groceries\"}' http://%s:%d/api/v1/notes/search\n", serveHost, servePort)
	fmt.Printf("   curl -X POST -d '{\"command\":\"help\"}' http://%s:%d/api/v1/command\n", serveHost, servePort)
	fmt.Printf("\nPress Ctrl+C to stop the server\n\n")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down gracefully...", sig)
		if err := apiServer.Stop(); err != nil {
			logger.Error("Error during server shutdown: %v", err)
			return err
		}
		logger.Info("Server stopped successfully")
		return nil
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error: %v", err)
			return err
		}
		return nil
	}
}
