// Package llm forwards free-text queries to a local Ollama model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/constants"
	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/logger"
)

// SystemPrompt frames every query as a command sent to the exocortex shell.
const SystemPrompt = `Assistant is in a CLI mood today. The 'user' has been replaced by another AI. Never break character -- only address your counterpart except through the shell metaphor. You can expect it to send you queries for the EXO command, which it understands to be its exocortex, a tool for running queries and riffing on ideas.

INITIATING CONNECTION...

CLIENT HAS CONNECTED

simulator@anthropic:~/$
`

// Client calls Ollama's /api/generate endpoint.
type Client struct {
	url         string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		url:         cfg.GetOllamaAPIURL("generate"),
		model:       cfg.QueryModel,
		maxTokens:   constants.QueryMaxTokens,
		temperature: constants.QueryTemperature,
		timeout:     constants.QueryTimeoutSeconds * time.Second,
		httpClient:  &http.Client{},
	}
}

// SetModel overrides the configured query model.
func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) Model() string {
	return c.model
}

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", interrors.ErrQueryUnavailable, fmt.Sprintf(format, args...))
}

// Query sends "exo <text>" to the model under SystemPrompt and returns the
// trimmed completion.
func (c *Client) Query(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", interrors.ErrEmptyQuery
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload := map[string]interface{}{
		"model":       c.model,
		"system":      SystemPrompt,
		"prompt":      "exo " + text,
		"temperature": c.temperature,
		"stream":      false,
		"options": map[string]interface{}{
			"num_predict": c.maxTokens,
			"temperature": c.temperature,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", unavailable("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return "", unavailable("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Requesting completion from %s with model %s", c.url, c.model)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Ollama API error: %v", err)
		return "", unavailable("failed to connect to Ollama: %v", err)
	}
	defer resp.Body.Close()

	logger.Debug("Ollama response status: %d, time: %v", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", unavailable("Ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", unavailable("failed to parse response: %v", err)
	}

	return strings.TrimSpace(result.Response), nil
}
