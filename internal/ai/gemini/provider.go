package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/config"
	"github.com/kiranshivaraju/partscout/pkg/models"
	"google.golang.org/genai"
)

// Provider implements models.AIProvider using the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider creates a Gemini provider. baseURL overrides the API endpoint
// and is empty outside tests.
func NewProvider(ctx context.Context, cfg config.GeminiConfig, baseURL string) (*Provider, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Provider{client: client, model: cfg.Model}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Model() string { return p.model }

// Complete asks for an application/json reply and returns its text.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: req.Prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(req.Temperature),
			MaxOutputTokens:  int32(req.MaxTokens),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", classifyError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: response has no text candidate", ai.ErrInvalidResponse)
	}
	return text, nil
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ProviderError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return ai.ClassifyTransport(err)
}

var _ models.AIProvider = (*Provider)(nil)
