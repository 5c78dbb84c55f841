package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/constants"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/services"
	"github.com/streed/exo/internal/store"
)

const recentNotesLimit = 10

type NotesServer struct {
	cfg       *config.Config
	store     *store.NoteStore
	svc       *services.Services
	mcpServer *server.MCPServer
}

func NewNotesServer(cfg *config.Config, noteStore *store.NoteStore, svc *services.Services, version string) *NotesServer {
	ns := &NotesServer{
		cfg:   cfg,
		store: noteStore,
		svc:   svc,
	}

	ns.mcpServer = server.NewMCPServer(
		"exo",
		version,
		server.WithToolCapabilities(true),
	)

	ns.registerTools()
	ns.registerResources()

	return ns
}

func (s *NotesServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve runs the server over stdin and stdout until the client disconnects.
func (s *NotesServer) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *NotesServer) registerTools() {
	createNoteTool := mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Surrounding quotes are stripped and an embedding is computed for semantic search."),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("The text of the note"),
		),
	)
	s.mcpServer.AddTool(createNoteTool, s.handleCreateNote)

	updateNoteTool := mcp.NewTool("update_note",
		mcp.WithDescription("Replace the text of an existing note and recompute its embedding"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to update"),
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("The new text of the note"),
		),
	)
	s.mcpServer.AddTool(updateNoteTool, s.handleUpdateNote)

	deleteNoteTool := mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to delete"),
		),
	)
	s.mcpServer.AddTool(deleteNoteTool, s.handleDeleteNote)

	readNoteTool := mcp.NewTool("read_note",
		mcp.WithDescription("Get a specific note by ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to retrieve"),
		),
	)
	s.mcpServer.AddTool(readNoteTool, s.handleReadNote)

	listNotesTool := mcp.NewTool("list_notes",
		mcp.WithDescription("List every note, newest first"),
	)
	s.mcpServer.AddTool(listNotesTool, s.handleListNotes)

	searchTool := mcp.NewTool("search_notes",
		mcp.WithDescription(fmt.Sprintf("Find the %d notes closest in meaning to a query", s.svc.Notes.Limit())),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language search query"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchNotes)

	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Send a query to the exocortex language model"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The query text"),
		),
	)
	s.mcpServer.AddTool(queryTool, s.handleQuery)
}

func (s *NotesServer) registerResources() {
	recentResource := mcp.NewResource("notes://recent",
		"Recent Notes",
		mcp.WithResourceDescription("Get the most recently created notes"),
		mcp.WithMIMEType("text/plain"),
	)
	s.mcpServer.AddResource(recentResource, s.handleRecentNotes)

	statsResource := mcp.NewResource("notes://stats",
		"Notes Statistics",
		mcp.WithResourceDescription("Get statistics about the notes database"),
		mcp.WithMIMEType("text/plain"),
	)
	s.mcpServer.AddResource(statsResource, s.handleStats)
}

// toolResult renders a Result. Failures are reported as tool errors so the
// client sees them without the protocol call itself failing.
func toolResult(r services.Result) *mcp.CallToolResult {
	text := strings.TrimSpace(r.Title) + "\n\n" + r.Content
	if r.Failed() {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}

func requireID(request mcp.CallToolRequest) (string, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return "", fmt.Errorf("missing required parameter 'id': %w", err)
	}
	return strconv.Itoa(id), nil
}

// Tool handlers
func (s *NotesServer) handleCreateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: create_note")

	note, err := request.RequireString("note")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'note': %w", err)
	}
	return toolResult(s.svc.Notes.CreateNote(ctx, note)), nil
}

func (s *NotesServer) handleUpdateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: update_note")

	id, err := requireID(request)
	if err != nil {
		return nil, err
	}
	note, err := request.RequireString("note")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'note': %w", err)
	}
	return toolResult(s.svc.Notes.UpdateNote(ctx, id, note)), nil
}

func (s *NotesServer) handleDeleteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: delete_note")

	id, err := requireID(request)
	if err != nil {
		return nil, err
	}
	return toolResult(s.svc.Notes.DeleteNote(ctx, id)), nil
}

func (s *NotesServer) handleReadNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: read_note")

	id, err := requireID(request)
	if err != nil {
		return nil, err
	}
	return toolResult(s.svc.Notes.ReadNote(ctx, id)), nil
}

func (s *NotesServer) handleListNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_notes")
	return toolResult(s.svc.Notes.ListNotes(ctx)), nil
}

func (s *NotesServer) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: search_notes")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}
	return toolResult(s.svc.Notes.SearchNotes(ctx, query)), nil
}

func (s *NotesServer) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: query")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}
	return toolResult(s.svc.Query.Query(ctx, query)), nil
}

// Resource handlers
func (s *NotesServer) handleRecentNotes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://recent")

	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notes: %w", err)
	}
	if len(notes) > recentNotesLimit {
		notes = notes[:recentNotesLimit]
	}

	var b strings.Builder
	b.WriteString("Recent Notes:\n\n")
	for i, note := range notes {
		fmt.Fprintf(&b, "%d. [ID: %d] Created: %s\n   %s\n\n",
			i+1, note.ID,
			note.CreatedAt.Local().Format(constants.DisplayTimeLayout),
			truncateString(note.Text, constants.SearchPreviewLength))
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		},
	}, nil
}

func (s *NotesServer) handleStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://stats")

	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	embedded := 0
	for _, n := range notes {
		if n.HasEmbedding() {
			embedded++
		}
	}

	content := fmt.Sprintf(`Notes Database Statistics:
- Total Notes: %d
- Notes With Embeddings: %d
- Database Path: %s
- Embedding Model: %s (%d dimensions)`,
		len(notes),
		embedded,
		s.cfg.GetDatabasePath(),
		s.cfg.EmbeddingModel,
		s.cfg.VectorDimensions)

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		},
	}, nil
}

// Helper function to truncate strings
// truncateString keeps at most maxLen runes of s.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
