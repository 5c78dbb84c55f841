package search

import (
	"context"
	"errors"

	"github.com/streed/exo/internal/embeddings"
	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/logger"
)

// VectorSearch embeds the query and ranks every stored note against it by
// cosine similarity. It reads through the store and never writes.
type VectorSearch struct {
	source   CandidateSource
	embedder embeddings.EmbeddingProvider
	limit    int
}

var _ SearchProvider = (*VectorSearch)(nil)

func NewVectorSearch(source CandidateSource, embedder embeddings.EmbeddingProvider, limit int) *VectorSearch {
	return &VectorSearch{
		source:   source,
		embedder: embedder,
		limit:    limit,
	}
}

// SearchSimilar returns at most limit notes, most similar first. A limit of
// zero or less uses the configured default. An empty store yields an empty
// result, not an error.
func (vs *VectorSearch) SearchSimilar(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = vs.limit
	}

	logger.Debug("Performing vector search for: %s", query)
	queryEmbedding, err := vs.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := embeddings.Validate(queryEmbedding, vs.embedder.Dimensions()); err != nil {
		return nil, err
	}

	candidates, err := vs.source.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	ranked, err := Rank(queryEmbedding, candidates, limit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		note, err := vs.source.Get(ctx, r.ID)
		if errors.Is(err, interrors.ErrNoteNotFound) {
			logger.Debug("Note %d removed during search, skipping", r.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Note: note, Similarity: r.Similarity})
	}

	logger.Debug("Vector search returned %d notes", len(results))
	return results, nil
}
