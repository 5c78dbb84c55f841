package models

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/database"
	interrors "github.com/streed/exo/internal/errors"
)

func setupTestRepo(t *testing.T) *NoteRepository {
	t.Helper()
	dir := t.TempDir()
	db, err := database.New(&config.Config{DatabasePath: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNoteRepository(db.Conn())
}

func TestNoteRepositoryCreate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "buy milk", []float32{1, 0, 0.5})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if note.ID == 0 {
		t.Error("Note should have a valid ID")
	}
	if note.Text != "buy milk" {
		t.Errorf("Expected text 'buy milk', got %s", note.Text)
	}
	if len(note.Embedding) != 3 || note.Embedding[2] != 0.5 {
		t.Errorf("Embedding not round-tripped: %v", note.Embedding)
	}
	if note.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestNoteRepositoryCreateWithoutEmbedding(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "plain", nil)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}
	if note.HasEmbedding() {
		t.Error("Expected note without embedding")
	}

	withEmbedding, err := repo.WithEmbedding(ctx)
	if err != nil {
		t.Fatalf("Failed to load embeddings: %v", err)
	}
	if len(withEmbedding) != 0 {
		t.Errorf("Expected no embedded notes, got %d", len(withEmbedding))
	}
}

func TestNoteRepositoryGetByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositoryList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return at }
		if _, err := repo.Create(ctx, "note", nil); err != nil {
			t.Fatalf("Failed to create note %d: %v", i, err)
		}
	}

	notes, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list notes: %v", err)
	}
	if len(notes) != 5 {
		t.Fatalf("Expected 5 notes, got %d", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if !notes[i-1].CreatedAt.After(notes[i].CreatedAt) {
			t.Errorf("Notes not newest first at %d: %v then %v", i, notes[i-1].CreatedAt, notes[i].CreatedAt)
		}
	}
	if !notes[0].CreatedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("Expected newest note first, got %v", notes[0].CreatedAt)
	}

	notes, err = repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("Failed to list notes with offset: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("Expected 2 notes with offset, got %d", len(notes))
	}
}

func TestNoteRepositoryListSameTimestamp(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return at }

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, "same", nil); err != nil {
			t.Fatal(err)
		}
	}
	notes, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(notes); i++ {
		if notes[i-1].ID < notes[i].ID {
			t.Errorf("Expected id descending for equal timestamps, got %d then %d", notes[i-1].ID, notes[i].ID)
		}
	}
}

func TestNoteRepositoryUpdateByID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	original, err := repo.Create(ctx, "original", []float32{1, 0})
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	updated, err := repo.UpdateByID(ctx, original.ID, "updated", []float32{0, 1})
	if err != nil {
		t.Fatalf("Failed to update note: %v", err)
	}

	if updated.Text != "updated" {
		t.Errorf("Text not updated: got %s", updated.Text)
	}
	if updated.Embedding[1] != 1 {
		t.Errorf("Embedding not updated: got %v", updated.Embedding)
	}
	if !updated.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", original.CreatedAt, updated.CreatedAt)
	}

	if _, err := repo.UpdateByID(ctx, 9999, "x", nil); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositoryDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "to delete", nil)
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if err := repo.Delete(ctx, note.ID); err != nil {
		t.Fatalf("Failed to delete note: %v", err)
	}
	if _, err := repo.GetByID(ctx, note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on second delete, got %v", err)
	}
}

func TestNoteRepositoryIDsNotReused(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx, "a", nil)
	second, _ := repo.Create(ctx, "b", nil)
	if err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatal(err)
	}

	third, err := repo.Create(ctx, "c", nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.ID <= second.ID || third.ID <= first.ID {
		t.Errorf("Expected a fresh id above %d, got %d", second.ID, third.ID)
	}
}

func TestNoteRepositoryConcurrency(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := repo.Create(ctx, "concurrent", []float32{1, 2})
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("Failed to create note concurrently: %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 notes, got %d", count)
	}
}
