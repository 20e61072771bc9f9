package mock

import (
	"context"
	"sync/atomic"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

// SampleReply is a well-formed schema 3 reply wrapped in a json fence,
// the way chat models commonly return it.
const SampleReply = "```json\n" + `{
  "diagnosis": "Worn front brake pads",
  "detailed_explanation": "Squeal on light braking points to the wear indicator touching the disc.",
  "symptoms_confirmation": ["Squeal disappears under firm braking", "Pad thickness below 3 mm"],
  "recommended_actions": ["Inspect pad thickness", "Replace pads on both sides", "Check disc runout"],
  "parts": [
    {
      "name": "Brake disc",
      "oem": "04465-02220",
      "rating": 4.2,
      "probability": 35,
      "price_min": 1200,
      "price_avg": 1500
    },
    {
      "name": "Front brake pad set",
      "oem": "04465-02220",
      "rating": 4.7,
      "probability": 90,
      "is_best_choice": true,
      "why_best": "Matches OEM friction compound",
      "price_min": 850,
      "price_avg": 1100,
      "shops": [
        {"name": "AutoShop", "price": 1150, "in_stock": true, "delivery": "1 day", "link": "https://autoshop.example/pads"},
        {"name": "PartsHub", "price": 890, "in_stock": false, "delivery": "3-5 days"}
      ]
    }
  ],
  "final_recommendation": "Replace the pads first and re-check the discs.",
  "warning": null
}` + "\n```"

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_        string
	Model_       string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)

	calls atomic.Int64
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Model() string { return m.Model_ }

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.calls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Calls returns how many times Complete was invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// NewMockProvider returns a MockProvider that answers with SampleReply.
func NewMockProvider() *MockProvider {
	return NewReplyProvider(SampleReply)
}

// NewReplyProvider returns a MockProvider that always answers with reply.
func NewReplyProvider(reply string) *MockProvider {
	return &MockProvider{
		Name_:  "mock",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return reply, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ClassifyTransport(ctx.Err())
		},
	}
}

// NewBlockingProvider returns a MockProvider that waits for release (or
// context cancellation) before answering with SampleReply. started receives
// one value per call as soon as the call begins.
func NewBlockingProvider(started chan<- struct{}, release <-chan struct{}) *MockProvider {
	return &MockProvider{
		Name_:  "mock-blocking",
		Model_: "mock-v1",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			if started != nil {
				started <- struct{}{}
			}
			select {
			case <-release:
				return SampleReply, nil
			case <-ctx.Done():
				return "", ai.ClassifyTransport(ctx.Err())
			}
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
