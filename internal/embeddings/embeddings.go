package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/streed/exo/internal/config"
	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/logger"
)

// EmbeddingProvider turns text into a fixed-length vector. Every failure,
// including a malformed upstream payload, is reported as
// ErrEmbeddingUnavailable; no fallback vector is ever substituted.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// OllamaEmbedding calls Ollama's /api/embeddings endpoint.
type OllamaEmbedding struct {
	url        string
	model      string
	dimensions int
	timeout    time.Duration
	httpClient *http.Client
}

func NewOllamaEmbedding(cfg *config.Config) *OllamaEmbedding {
	return &OllamaEmbedding{
		url:        cfg.GetOllamaAPIURL("embeddings"),
		model:      cfg.EmbeddingModel,
		dimensions: cfg.VectorDimensions,
		timeout:    cfg.EmbeddingTimeout(),
		httpClient: &http.Client{},
	}
}

func (e *OllamaEmbedding) Dimensions() int {
	return e.dimensions
}

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", interrors.ErrEmbeddingUnavailable, fmt.Sprintf(format, args...))
}

func (e *OllamaEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(map[string]interface{}{
		"model":  e.model,
		"prompt": text,
	})
	if err != nil {
		return nil, unavailable("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, unavailable("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Requesting embedding from %s with model %s", e.url, e.model)
	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("request failed: %v", err)
	}
	defer resp.Body.Close()
	logger.Debug("Embedding response status: %d, time: %v", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("upstream returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, unavailable("malformed response: %v", err)
	}

	if err := Validate(result.Embedding, e.dimensions); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

// Validate checks that v is a usable embedding of length want. A want of
// zero accepts any non-empty length.
func Validate(v []float32, want int) error {
	if len(v) == 0 {
		return unavailable("empty embedding")
	}
	if want > 0 && len(v) != want {
		return fmt.Errorf("%w: %w: got %d components, expected %d",
			interrors.ErrEmbeddingUnavailable, interrors.ErrDimensionMismatch, len(v), want)
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return unavailable("non-finite value at component %d", i)
		}
	}
	return nil
}
