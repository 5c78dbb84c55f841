// Package store owns the durable notes collection and keeps every note's
// embedding in step with its text.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moby/locker"
	"github.com/streed/exo/internal/embeddings"
	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/models"
	"github.com/streed/exo/internal/search"
)

// NoteStore is the only writer of notes. Text is embedded before anything
// is persisted, so a failed embedding call never leaves a partial write.
type NoteStore struct {
	repo     *models.NoteRepository
	embedder embeddings.EmbeddingProvider
	locks    *locker.Locker
}

func New(repo *models.NoteRepository, embedder embeddings.EmbeddingProvider) *NoteStore {
	return &NoteStore{
		repo:     repo,
		embedder: embedder,
		locks:    locker.New(),
	}
}

// CleanText trims surrounding whitespace and at most one quote character
// from each end.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	if text != "" && (text[0] == '"' || text[0] == '\'') {
		text = text[1:]
	}
	if n := len(text); n > 0 && (text[n-1] == '"' || text[n-1] == '\'') {
		text = text[:n-1]
	}
	return strings.TrimSpace(text)
}

// lock serialises update and delete per note id.
func (s *NoteStore) lock(id int64) (unlock func()) {
	key := strconv.FormatInt(id, 10)
	s.locks.Lock(key)
	return func() {
		if err := s.locks.Unlock(key); err != nil {
			logger.Error("Failed to release lock for note %d: %v", id, err)
		}
	}
}

func (s *NoteStore) embed(ctx context.Context, text string) ([]float32, error) {
	return s.validated(s.embedder.Embed(ctx, text))
}

// recompute bypasses any embedding memo.
func (s *NoteStore) recompute(ctx context.Context, text string) ([]float32, error) {
	return s.validated(embeddings.Recompute(ctx, s.embedder, text))
}

func (s *NoteStore) validated(v []float32, err error) ([]float32, error) {
	if err != nil {
		return nil, err
	}
	if err := embeddings.Validate(v, s.embedder.Dimensions()); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *NoteStore) Create(ctx context.Context, text string) (*models.Note, error) {
	text = CleanText(text)
	if text == "" {
		return nil, interrors.ErrEmptyContent
	}

	v, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	note, err := s.repo.Create(ctx, text, v)
	if err != nil {
		return nil, err
	}
	logger.Debug("Created note %d", note.ID)
	return note, nil
}

// Update replaces text and embedding together. The embedding is always
// recomputed, even when the text is unchanged or memoised.
func (s *NoteStore) Update(ctx context.Context, id int64, text string) (*models.Note, error) {
	text = CleanText(text)
	if text == "" {
		return nil, interrors.ErrEmptyContent
	}
	return s.replace(ctx, id, text)
}

func (s *NoteStore) replace(ctx context.Context, id int64, text string) (*models.Note, error) {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	v, err := s.recompute(ctx, text)
	if err != nil {
		return nil, err
	}

	note, err := s.repo.UpdateByID(ctx, id, text, v)
	if err != nil {
		return nil, err
	}
	logger.Debug("Updated note %d", id)
	return note, nil
}

func (s *NoteStore) Delete(ctx context.Context, id int64) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Debug("Deleted note %d", id)
	return nil
}

func (s *NoteStore) Get(ctx context.Context, id int64) (*models.Note, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every note, newest first.
func (s *NoteStore) List(ctx context.Context) ([]*models.Note, error) {
	return s.repo.List(ctx, 0, 0)
}

func (s *NoteStore) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Candidates returns the id and vector of every note that has an embedding.
func (s *NoteStore) Candidates(ctx context.Context) ([]search.Candidate, error) {
	notes, err := s.repo.WithEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]search.Candidate, 0, len(notes))
	for _, n := range notes {
		candidates = append(candidates, search.Candidate{ID: n.ID, Vector: n.Embedding})
	}
	return candidates, nil
}

// Reindex recomputes the embedding of every note. It stops at the first
// embedding failure; notes already processed keep their new vectors.
func (s *NoteStore) Reindex(ctx context.Context) (int, error) {
	notes, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range notes {
		if _, err := s.replace(ctx, n.ID, n.Text); err != nil {
			if errors.Is(err, interrors.ErrNoteNotFound) {
				// deleted while reindexing
				continue
			}
			return count, fmt.Errorf("reindex note %d: %w", n.ID, err)
		}
		count++
	}
	return count, nil
}
