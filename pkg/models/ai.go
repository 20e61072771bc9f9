// Package models contains shared data models used across the partscout codebase.
package models

import "context"

// AIProvider is the core interface that all LLM integrations must implement.
// Never call specific AI providers directly; inject this interface.
type AIProvider interface {
	// Complete sends a single prompt and returns the text of the single completion.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
	// Model returns the model name requests are sent to.
	Model() string
}

// CompletionRequest is the input to a single completion call.
type CompletionRequest struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}
