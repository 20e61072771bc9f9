package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for diagnosis failures. Every error returned by
// DiagnosisService.Diagnose matches exactly one of these via errors.Is.
var (
	ErrValidation          = errors.New("diagnosis request invalid")
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrProviderStatus      = errors.New("ai provider returned error status")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrCanceled            = errors.New("ai inference canceled")
)

// Error kinds as reported in logs, notices and the audit trail.
const (
	KindValidation = "validation"
	KindTransport  = "transport"
	KindProvider   = "provider"
	KindMalformed  = "malformed_response"
	KindTimeout    = "timeout"
	KindCanceled   = "canceled"
	KindUnknown    = "unknown"
)

// ValidationError lists the request fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ProviderError is a non-2xx reply from the LLM endpoint.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider returned status %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error { return ErrProviderStatus }

// MalformedResponseError carries the reply text that failed to parse.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed ai response: %v", e.Err)
	}
	return "malformed ai response"
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidResponse, e.Err}
	}
	return []error{ErrInvalidResponse}
}

// ClassifyTransport maps an error from an outbound call that never produced
// a response onto the timeout, canceled or unavailable kinds.
func ClassifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// Kind returns the error kind name for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInferenceTimeout):
		return KindTimeout
	case errors.Is(err, ErrCanceled):
		return KindCanceled
	case errors.Is(err, ErrProviderStatus):
		return KindProvider
	case errors.Is(err, ErrInvalidResponse):
		return KindMalformed
	case errors.Is(err, ErrProviderUnavailable):
		return KindTransport
	default:
		return KindUnknown
	}
}
