package vllm

import (
	"strings"

	"github.com/kiranshivaraju/partscout/internal/ai/openai"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

// Provider implements models.AIProvider using vLLM's OpenAI-compatible server.
type Provider struct {
	*openai.Provider
}

// NewProvider creates a provider for the vLLM server at cfg.BaseURL.
func NewProvider(cfg config.VLLMConfig) *Provider {
	base := strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	return &Provider{Provider: openai.NewCompatible("vllm", cfg.Model, base, "EMPTY")}
}

var _ models.AIProvider = (*Provider)(nil)
