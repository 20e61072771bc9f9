package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/partscout/internal/ai/ollama"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_UsesOpenAICompatiblePath(t *testing.T) {
	var gotPath, gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer ts.Close()

	p := ollama.NewProvider(config.OllamaConfig{BaseURL: ts.URL + "/", Model: "llama3"})
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, "llama3", p.Model())

	out, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "hi", Temperature: 0.4, MaxTokens: 1500})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "llama3", gotModel)
}
