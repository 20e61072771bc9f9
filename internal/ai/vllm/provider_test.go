package vllm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/partscout/internal/ai/vllm"
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

	p := vllm.NewProvider(config.VLLMConfig{BaseURL: ts.URL + "/", Model: "mistral-7b"})
	assert.Equal(t, "vllm", p.Name())
	assert.Equal(t, "mistral-7b", p.Model())

	out, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "hi", Temperature: 0.4, MaxTokens: 1500})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "mistral-7b", gotModel)
}
