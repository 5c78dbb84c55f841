// Package embeddingstest provides an in-process EmbeddingProvider for tests.
package embeddingstest

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	interrors "github.com/streed/exo/internal/errors"
)

// Fake returns fixed vectors for known texts and a deterministic
// bag-of-words vector for everything else.
type Fake struct {
	Dims int

	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func New(dims int) *Fake {
	return &Fake{Dims: dims, vectors: map[string][]float32{}}
}

// Set pins the vector returned for text.
func (f *Fake) Set(text string, v []float32) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[text] = v
	return f
}

// Fail makes every subsequent call fail with ErrEmbeddingUnavailable.
// Passing false restores normal behaviour.
func (f *Fake) Fail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fail {
		f.err = fmt.Errorf("%w: fake upstream down", interrors.ErrEmbeddingUnavailable)
	} else {
		f.err = nil
	}
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Dimensions() int {
	return f.Dims
}

func (f *Fake) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return append([]float32(nil), v...), nil
	}
	return hashed(text, f.Dims), nil
}

func hashed(text string, dims int) []float32 {
	v := make([]float32, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%uint32(dims)] += 1
	}
	// Keep the vector non-zero so it always ranks
	v[0] += 0.01
	return v
}
