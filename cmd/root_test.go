package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestPrintResult(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(&errOut)

	err := printResult(c, services.Result{Title: "Exo Help", Content: "Available commands:", Kind: services.KindOK})
	assert.NoError(t, err)
	assert.Equal(t, "Exo Help\nAvailable commands:\n", out.String())
	assert.Empty(t, errOut.String())

	out.Reset()
	err = printResult(c, services.Result{Title: "Error Deleting Note", Content: "Note not found: no note with ID 9", Kind: services.KindNotFound})
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error Deleting Note")
}

func TestNeedsStore(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"exo"}, false},
		{[]string{"exo", "init"}, false},
		{[]string{"exo", "config", "show"}, false},
		{[]string{"exo", "--help"}, false},
		{[]string{"exo", "list"}, true},
		{[]string{"exo", "run", "help"}, true},
		{[]string{"exo", "--debug", "search", "x"}, true},
	}
	for _, tt := range tests {
		os.Args = tt.args
		assert.Equal(t, tt.want, needsStore(), "%v", tt.args)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, home+"/notes", expandPath("~/notes"))
	assert.Equal(t, "", expandPath(""))
	assert.Equal(t, "/tmp/exo", expandPath("/tmp/exo"))
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "create", "update", "delete", "read", "list", "search", "query", "init", "config", "migrate", "reindex", "serve", "mcp"} {
		c, _, err := rootCmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, c.Name())
		}
	}
}
