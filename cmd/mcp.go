package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: `Start a Model Context Protocol (MCP) server on stdio so that LLM clients can
work with your notes.

Tools:
- create_note: Create a note
- update_note: Replace a note's text
- delete_note: Delete a note
- read_note: Get a note by ID
- list_notes: List every note, newest first
- search_notes: Semantic search over notes
- query: Send a query to the language model

Resources:
- notes://recent: Most recently created notes
- notes://stats: Note counts and embedding settings

To use with an MCP client, register the command:
{
  "mcpServers": {
    "exo": {
      "command": "exo",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger.Info("Starting MCP server...")

	notesServer := mcp.NewNotesServer(appConfig, noteStore, svc, Version)

	logger.Info("MCP server ready. Listening on stdio...")
	if err := notesServer.Serve(); err != nil && !errors.Is(err, io.EOF) {
		logger.Error("MCP server error: %v", err)
		return err
	}

	logger.Info("MCP server shutting down")
	return nil
}
