package search

import (
	"math"
	"testing"

	interrors "github.com/streed/exo/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRankOrdersBySimilarity(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0, 1, 0}},
		{ID: 2, Vector: []float32{1, 0, 0}},
		{ID: 3, Vector: []float32{1, 1, 0}},
		{ID: 4, Vector: []float32{-1, 0, 0}},
	}

	got, err := Rank(query, candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(2), got[0].ID)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
	assert.Equal(t, int64(3), got[1].ID)
	assert.InDelta(t, 1/math.Sqrt2, got[1].Similarity, 1e-9)
	assert.Equal(t, int64(1), got[2].ID)
}

func TestRankDefaultLimit(t *testing.T) {
	candidates := make([]Candidate, 10)
	for i := range candidates {
		candidates[i] = Candidate{ID: int64(i + 1), Vector: []float32{1, float32(i)}}
	}

	got, err := Rank([]float32{1, 0}, candidates, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRankTiesByAscendingID(t *testing.T) {
	candidates := []Candidate{
		{ID: 9, Vector: []float32{2, 0}},
		{ID: 4, Vector: []float32{1, 0}},
		{ID: 7, Vector: []float32{3, 0}},
	}

	got, err := Rank([]float32{1, 0}, candidates, 3)
	require.NoError(t, err)
	ids := []int64{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []int64{4, 7, 9}, ids)
}

func TestRankExcludesZeroMagnitude(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0, 0}},
		{ID: 2, Vector: []float32{0, 1}},
	}

	got, err := Rank([]float32{1, 0}, candidates, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got, err = Rank([]float32{0, 0}, candidates, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankDimensionMismatch(t *testing.T) {
	_, err := Rank([]float32{1, 0}, []Candidate{{ID: 1, Vector: []float32{1, 0, 0}}}, 3)
	assert.ErrorIs(t, err, interrors.ErrDimensionMismatch)
}

func TestRankEmpty(t *testing.T) {
	got, err := Rank([]float32{1, 0}, nil, 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{3, 4}, []float32{6, 8}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{0, 1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 1}))
}

func vectorOf(dims int) *rapid.Generator[[]float32] {
	return rapid.SliceOfN(rapid.Float32Range(-10, 10), dims, dims)
}

func TestRankProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dims := rapid.IntRange(1, 6).Draw(t, "dims")
		k := rapid.IntRange(1, 5).Draw(t, "k")
		query := vectorOf(dims).Draw(t, "query")
		n := rapid.IntRange(0, 12).Draw(t, "n")

		candidates := make([]Candidate, n)
		for i := range candidates {
			candidates[i] = Candidate{ID: int64(i + 1), Vector: vectorOf(dims).Draw(t, "vector")}
		}

		got, err := Rank(query, candidates, k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) > k {
			t.Fatalf("got %d results, limit %d", len(got), k)
		}
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if cur.Similarity > prev.Similarity {
				t.Fatalf("results out of order at %d: %v after %v", i, cur, prev)
			}
			if cur.Similarity == prev.Similarity && cur.ID < prev.ID {
				t.Fatalf("tie not broken by id at %d: %v after %v", i, cur, prev)
			}
		}
		for _, s := range got {
			if math.IsNaN(s.Similarity) || s.Similarity < -1-1e-9 || s.Similarity > 1+1e-9 {
				t.Fatalf("similarity out of range: %v", s)
			}
		}

		again, err := Rank(query, candidates, k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != len(got) {
			t.Fatalf("ranking not deterministic")
		}
		for i := range got {
			if again[i] != got[i] {
				t.Fatalf("ranking not deterministic at %d", i)
			}
		}
	})
}

func TestRankIdenticalVectorRanksFirst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dims := rapid.IntRange(2, 6).Draw(t, "dims")
		target := vectorOf(dims).Filter(func(v []float32) bool {
			return norm(v) > 1e-3
		}).Draw(t, "target")
		n := rapid.IntRange(0, 8).Draw(t, "n")

		candidates := []Candidate{{ID: 0, Vector: target}}
		for i := 0; i < n; i++ {
			candidates = append(candidates, Candidate{ID: int64(i + 1), Vector: vectorOf(dims).Draw(t, "other")})
		}

		got, err := Rank(append([]float32(nil), target...), candidates, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) == 0 {
			t.Fatalf("no results")
		}
		if math.Abs(got[0].Similarity-1) > 1e-6 {
			t.Fatalf("top similarity %v, want 1", got[0].Similarity)
		}
		// Only other parallel vectors may crowd the identical one out
		found := false
		for _, s := range got {
			if s.ID == 0 {
				found = true
				if math.Abs(s.Similarity-1) > 1e-6 {
					t.Fatalf("identical vector scored %v", s.Similarity)
				}
			}
		}
		if !found && math.Abs(got[len(got)-1].Similarity-1) > 1e-6 {
			t.Fatalf("identical vector missing from %v", got)
		}
	})
}
