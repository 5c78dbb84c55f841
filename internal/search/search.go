package search

import (
	"context"

	"github.com/streed/exo/internal/models"
)

// SearchProvider finds the notes most similar to a free-text query.
type SearchProvider interface {
	SearchSimilar(ctx context.Context, query string, limit int) ([]Result, error)
}

// CandidateSource supplies the stored vectors to rank and resolves ranked
// ids back to notes.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]Candidate, error)
	Get(ctx context.Context, id int64) (*models.Note, error)
}

// Result is a note returned by a search together with its score.
type Result struct {
	Note       *models.Note `json:"note"`
	Similarity float64      `json:"similarity"`
}
