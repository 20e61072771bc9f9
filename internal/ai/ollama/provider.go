package ollama

import (
	"strings"

	"github.com/kiranshivaraju/partscout/internal/ai/openai"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

// Provider implements models.AIProvider using Ollama's OpenAI-compatible endpoint.
type Provider struct {
	*openai.Provider
}

// NewProvider creates a provider for the Ollama server at cfg.BaseURL.
// Ollama ignores the API key but the client requires one to be set.
func NewProvider(cfg config.OllamaConfig) *Provider {
	base := strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	return &Provider{Provider: openai.NewCompatible("ollama", cfg.Model, base, "ollama")}
}

var _ models.AIProvider = (*Provider)(nil)
