package embeddings

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/streed/exo/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Refresher is implemented by providers that can bypass a memoised vector
// and ask the upstream model again.
type Refresher interface {
	Refresh(ctx context.Context, text string) ([]float32, error)
}

// Recompute embeds text without consulting any memoised vector.
func Recompute(ctx context.Context, p EmbeddingProvider, text string) ([]float32, error) {
	if r, ok := p.(Refresher); ok {
		return r.Refresh(ctx, text)
	}
	return p.Embed(ctx, text)
}

// CachingProvider memoises embeddings by exact input text and collapses
// concurrent requests for the same text into one upstream call. Errors are
// never cached.
type CachingProvider struct {
	next  EmbeddingProvider
	cache *lru.Cache[string, []float32]
	group singleflight.Group
}

// NewCachingProvider wraps next. A capacity of zero or less returns next
// unchanged.
func NewCachingProvider(next EmbeddingProvider, capacity int) EmbeddingProvider {
	if capacity <= 0 {
		return next
	}
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		logger.Warn("Embedding cache disabled: %v", err)
		return next
	}
	return &CachingProvider{next: next, cache: cache}
}

func (c *CachingProvider) Dimensions() int {
	return c.next.Dimensions()
}

// Embed returns the memoised vector for text or fetches it. The shared
// upstream call is detached from any single caller's cancellation; each
// caller still stops waiting when its own context ends.
func (c *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		logger.Debug("Embedding cache hit")
		return clone(v), nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(text, func() (interface{}, error) {
		v, err := c.next.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		c.cache.Add(text, clone(v))
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, unavailable("%v", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v, ok := res.Val.([]float32)
		if !ok {
			return nil, fmt.Errorf("embedding cache: unexpected value %T", res.Val)
		}
		return clone(v), nil
	}
}

// Refresh always calls the upstream provider and replaces the memoised
// vector with the result.
func (c *CachingProvider) Refresh(ctx context.Context, text string) ([]float32, error) {
	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, clone(v))
	return clone(v), nil
}

// Len reports the number of cached vectors.
func (c *CachingProvider) Len() int {
	return c.cache.Len()
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
