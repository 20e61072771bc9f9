package ai_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/stretchr/testify/assert"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

var _ net.Error = timeoutNetErr{}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ai.ErrInferenceTimeout},
		{"canceled", fmt.Errorf("post: %w", context.Canceled), ai.ErrCanceled},
		{"net timeout", timeoutNetErr{}, ai.ErrInferenceTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ai.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ai.ClassifyTransport(tt.in), tt.want)
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ai.ValidationError{Fields: []string{"brand"}}, ai.KindValidation},
		{&ai.ProviderError{StatusCode: 500, Body: "boom"}, ai.KindProvider},
		{&ai.MalformedResponseError{Raw: "x"}, ai.KindMalformed},
		{ai.ClassifyTransport(context.DeadlineExceeded), ai.KindTimeout},
		{ai.ClassifyTransport(context.Canceled), ai.KindCanceled},
		{ai.ClassifyTransport(errors.New("refused")), ai.KindTransport},
		{errors.New("something else"), ai.KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ai.Kind(tt.err), "error: %v", tt.err)
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "missing or invalid fields: brand, problem",
		(&ai.ValidationError{Fields: []string{"brand", "problem"}}).Error())
	assert.Equal(t, "ai provider returned status 401: bad key",
		(&ai.ProviderError{StatusCode: 401, Body: "bad key"}).Error())
}

func TestSentinelErrorsDistinct(t *testing.T) {
	all := []error{
		ai.ErrValidation, ai.ErrProviderUnavailable, ai.ErrProviderStatus,
		ai.ErrInvalidResponse, ai.ErrInferenceTimeout, ai.ErrCanceled,
	}
	for i := range all {
		for j := range all {
			if i != j {
				assert.NotErrorIs(t, all[i], all[j])
			}
		}
	}
}
