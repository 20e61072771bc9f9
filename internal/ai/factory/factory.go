// Package factory builds the configured AI provider.
package factory

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/partscout/internal/ai/anthropic"
	"github.com/kiranshivaraju/partscout/internal/ai/gemini"
	"github.com/kiranshivaraju/partscout/internal/ai/ollama"
	"github.com/kiranshivaraju/partscout/internal/ai/openai"
	"github.com/kiranshivaraju/partscout/internal/ai/vllm"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "gemini":
		p, err := gemini.NewProvider(ctx, cfg.Gemini, "")
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai, anthropic, gemini", cfg.Provider)
	}
}
