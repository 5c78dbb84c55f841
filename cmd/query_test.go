package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/llm"
	"github.com/streed/exo/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryModelOverride(t *testing.T) {
	models := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models <- req.Model
		w.Write([]byte(`{"response":"tides follow the moon","done":true}`))
	}))
	t.Cleanup(srv.Close)

	withServices(t)
	origClient, origModel, origQuery := llmClient, queryModel, svc.Query
	t.Cleanup(func() {
		llmClient, queryModel = origClient, origModel
		svc.Query = origQuery
	})

	llmClient = llm.NewClient(&config.Config{OllamaEndpoint: srv.URL, QueryModel: "default-model"})
	svc.Query = services.NewQueryService(llmClient)
	queryModel = "override-model"

	c, out, _ := testCommand("")
	require.NoError(t, runQuery(c, []string{"why", "tides"}))
	assert.Equal(t, "override-model", <-models)
	assert.Contains(t, out.String(), "tides follow the moon")
	assert.Equal(t, "override-model", llmClient.Model())
}
