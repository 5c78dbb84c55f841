package cmd

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/database"
	"github.com/streed/exo/internal/embeddings/embeddingstest"
	"github.com/streed/exo/internal/migrations"
	"github.com/streed/exo/internal/models"
	"github.com/streed/exo/internal/search"
	"github.com/streed/exo/internal/services"
	"github.com/streed/exo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(input string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetIn(strings.NewReader(input))
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetContext(context.Background())
	return c, &out, &errOut
}

// withServices points the package-level services at a temp database.
func withServices(t *testing.T) *database.DB {
	t.Helper()
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "notes.db"), SearchLimit: 3}
	testDB, err := database.New(cfg)
	require.NoError(t, err)

	fake := embeddingstest.New(4)
	ns := store.New(models.NewNoteRepository(testDB.Conn()), fake)
	origSvc, origDB := svc, db
	svc = services.NewServices(cfg, ns, search.NewVectorSearch(ns, fake, cfg.SearchLimit), nil)
	db = testDB
	t.Cleanup(func() {
		svc, db = origSvc, origDB
		testDB.Close()
	})
	return testDB
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(bufio.NewReader(strings.NewReader(tt.input)), &out, "Proceed?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Proceed? (y/N): ", out.String())
	}
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("custom\n\n"))

	assert.Equal(t, "custom", prompt(reader, &out, "Model", "default"))
	assert.Equal(t, "default", prompt(reader, &out, "Model", "default"))
	assert.Equal(t, "Model [default]: Model [default]: ", out.String())
}

func TestDeleteDeclined(t *testing.T) {
	withServices(t)
	created := svc.Notes.CreateNote(context.Background(), "keep me")
	require.False(t, created.Failed())

	forceDelete = false
	c, out, errOut := testCommand("n\n")
	require.NoError(t, runDelete(c, []string{"1"}))
	assert.Contains(t, errOut.String(), "Deletion cancelled.")
	assert.Empty(t, out.String())

	assert.False(t, svc.Notes.ReadNote(context.Background(), "1").Failed())
}

func TestDeleteConfirmed(t *testing.T) {
	withServices(t)
	created := svc.Notes.CreateNote(context.Background(), "remove me")
	require.False(t, created.Failed())

	forceDelete = false
	c, out, _ := testCommand("y\n")
	require.NoError(t, runDelete(c, []string{"1"}))
	assert.Contains(t, out.String(), "Note 1 deleted")

	r := svc.Notes.ReadNote(context.Background(), "1")
	assert.Equal(t, services.KindNotFound, r.Kind)
}

func TestInitDeclinesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	t.Setenv(config.ConfigEnvVar, path)

	c, out, _ := testCommand("no\n")
	require.NoError(t, runInit(c, nil))
	assert.Contains(t, out.String(), "Configuration initialization cancelled.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestInitWithFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv(config.ConfigEnvVar, path)

	origDir, origEndpoint, origEmbed, origQuery := initDataDir, initOllamaEndpoint, initEmbeddingModel, initQueryModel
	t.Cleanup(func() {
		initDataDir, initOllamaEndpoint, initEmbeddingModel, initQueryModel = origDir, origEndpoint, origEmbed, origQuery
	})
	initDataDir = filepath.Join(dir, "data")
	initOllamaEndpoint = "http://ollama.test:11434"
	initEmbeddingModel = "all-minilm"
	initQueryModel = ""

	c, out, _ := testCommand("")
	require.NoError(t, runInit(c, nil))
	assert.Contains(t, out.String(), "Configuration initialized successfully!")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://ollama.test:11434", cfg.OllamaEndpoint)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
}

func TestMigrateRollback(t *testing.T) {
	testDB := withServices(t)

	var out bytes.Buffer
	require.NoError(t, rollbackMigration(&out, testDB.Conn(), "001_index_notes_created_at"))
	assert.Equal(t, "Rolled back migration 001_index_notes_created_at.\n", out.String())

	status, err := migrations.NewMigrationRunner(testDB.Conn()).GetMigrationStatus()
	require.NoError(t, err)
	for _, s := range status {
		assert.Equal(t, s.ID != "001_index_notes_created_at", s.Applied, s.ID)
	}

	err = rollbackMigration(&out, testDB.Conn(), "001_index_notes_created_at")
	assert.ErrorContains(t, err, "is not applied")
	assert.ErrorContains(t, rollbackMigration(&out, testDB.Conn(), "999_missing"), "not found")
}
