// Package dispatch routes a single command string such as
// "update_note 4 buy oat milk" to the service that handles it.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/services"
)

type handlerFunc func(ctx context.Context, d *Dispatcher, params string) services.Result

// Command is one action understood by the dispatcher. Help is rendered
// from the same table that routes commands.
type Command struct {
	Name        string
	Usage       string
	Description string
	Aliases     []string
	run         handlerFunc
}

func query(ctx context.Context, d *Dispatcher, params string) services.Result {
	return d.svc.Query.Query(ctx, params)
}

var commands = []Command{
	{Name: "query", Usage: "<query_string>", Description: "Perform a query using the language model", run: query},
	{Name: "gen", Usage: "<prompt>", Description: "Generate text from a prompt", run: query},
	{Name: "riff", Usage: "<idea>", Description: "Riff on an idea", run: query},
	{Name: "analyze", Usage: "<data>", Description: "Analyze data", run: query},
	{
		Name: "notes", Description: "View your notes, newest first", Aliases: []string{"list_notes"},
		run: func(ctx context.Context, d *Dispatcher, _ string) services.Result {
			return d.svc.Notes.ListNotes(ctx)
		},
	},
	{
		Name: "create_note", Usage: "<note_string>", Description: "Create a new note",
		run: func(ctx context.Context, d *Dispatcher, params string) services.Result {
			return d.svc.Notes.CreateNote(ctx, params)
		},
	},
	{
		Name: "update_note", Usage: "<note_id> <note_string>", Description: "Update the text of an existing note",
		run: func(ctx context.Context, d *Dispatcher, params string) services.Result {
			id, text, _ := strings.Cut(params, " ")
			return d.svc.Notes.UpdateNote(ctx, id, text)
		},
	},
	{
		Name: "delete_note", Usage: "<note_id>", Description: "Delete a note",
		run: func(ctx context.Context, d *Dispatcher, params string) services.Result {
			return d.svc.Notes.DeleteNote(ctx, params)
		},
	},
	{
		Name: "read_note", Usage: "<note_id>", Description: "Show a single note",
		run: func(ctx context.Context, d *Dispatcher, params string) services.Result {
			return d.svc.Notes.ReadNote(ctx, params)
		},
	},
	{
		Name: "search_notes", Usage: "<query>", Description: "Find the notes most related to a query",
		run: func(ctx context.Context, d *Dispatcher, params string) services.Result {
			return d.svc.Notes.SearchNotes(ctx, params)
		},
	},
	{Name: "help", Description: "Show this help"},
}

var byName = func() map[string]*Command {
	m := make(map[string]*Command)
	for i := range commands {
		c := &commands[i]
		m[c.Name] = c
		for _, alias := range c.Aliases {
			m[alias] = c
		}
	}
	return m
}()

// help reads the table, so it is bound once the table exists.
func init() {
	byName["help"].run = func(context.Context, *Dispatcher, string) services.Result {
		return services.Result{Title: "Exo Help", Content: HelpText(), Kind: services.KindOK}
	}
}

// HelpText lists every command with its usage.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, c := range commands {
		b.WriteString("\n")
		b.WriteString(c.Name)
		if c.Usage != "" {
			b.WriteString(" " + c.Usage)
		}
		b.WriteString(" - " + c.Description)
	}
	return b.String()
}

type Dispatcher struct {
	svc *services.Services
}

func New(svc *services.Services) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Handle splits command on single spaces: the first word picks the action
// and the rest is rejoined as its argument. Action names are case
// insensitive. Handle always returns a Result.
func (d *Dispatcher) Handle(ctx context.Context, command string) services.Result {
	action, params, _ := strings.Cut(strings.TrimSpace(command), " ")
	logger.Debug("Dispatching %q", action)

	c, ok := byName[strings.ToLower(action)]
	if !ok {
		return services.Result{
			Title:   "Unknown Command",
			Content: fmt.Sprintf("Unknown action: %s", action),
			Kind:    services.KindUnknownCommand,
		}
	}
	return c.run(ctx, d, params)
}
