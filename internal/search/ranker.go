package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/streed/exo/internal/constants"
	interrors "github.com/streed/exo/internal/errors"
)

// Candidate is a note id paired with its stored embedding.
type Candidate struct {
	ID     int64
	Vector []float32
}

// Scored is a ranked candidate.
type Scored struct {
	ID         int64
	Similarity float64
}

// Rank scores every candidate against query by cosine similarity and returns
// the top k, highest first, ties broken by ascending id. Zero-magnitude
// candidates are excluded and a zero-magnitude query matches nothing. A k of
// zero or less means the default limit.
//
// Arithmetic is done in float64 in a fixed order, so the ordering depends
// only on the inputs.
func Rank(query []float32, candidates []Candidate, k int) ([]Scored, error) {
	if k <= 0 {
		k = constants.DefaultSearchLimit
	}

	qNorm := norm(query)
	if qNorm == 0 {
		return []Scored{}, nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, fmt.Errorf("%w: note %d has %d components, query has %d",
				interrors.ErrDimensionMismatch, c.ID, len(c.Vector), len(query))
		}
		cNorm := norm(c.Vector)
		if cNorm == 0 {
			continue
		}
		scored = append(scored, Scored{
			ID:         c.ID,
			Similarity: dot(query, c.Vector) / (qNorm * cNorm),
		})
	}

	slices.SortFunc(scored, func(a, b Scored) int {
		if a.Similarity != b.Similarity {
			return cmp.Compare(b.Similarity, a.Similarity)
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
