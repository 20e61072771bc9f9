// Package openai talks to the OpenAI chat completions API and to any server
// that exposes the same API (Ollama, vLLM).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// Provider implements models.AIProvider over chat completions.
type Provider struct {
	name   string
	model  string
	client *goopenai.Client
}

// NewProvider creates a provider for the OpenAI API.
func NewProvider(cfg config.OpenAIConfig) *Provider {
	cc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return newProvider("openai", cfg.Model, cc)
}

// NewCompatible creates a provider for an OpenAI-compatible server.
// baseURL must include the API version prefix, e.g. http://localhost:11434/v1.
func NewCompatible(name, model, baseURL, apiKey string) *Provider {
	cc := goopenai.DefaultConfig(apiKey)
	cc.BaseURL = strings.TrimRight(baseURL, "/")
	return newProvider(name, model, cc)
}

func newProvider(name, model string, cc goopenai.ClientConfig) *Provider {
	// No client-level timeout: the caller's context bounds each call.
	cc.HTTPClient = &http.Client{}
	return &Provider{
		name:   name,
		model:  model,
		client: goopenai.NewClientWithConfig(cc),
	}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Model() string { return p.model }

// Complete sends req.Prompt as a single user message and returns the content
// of the first choice.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", ai.ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &ai.ProviderError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &ai.ProviderError{StatusCode: reqErr.HTTPStatusCode, Body: strings.TrimSpace(string(reqErr.Body))}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: decoding completion: %v", ai.ErrInvalidResponse, err)
	}
	return ai.ClassifyTransport(err)
}

var _ models.AIProvider = (*Provider)(nil)
