package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/session"
)

// writeDiagnosisError maps a diagnosis error onto the API error envelope.
func writeDiagnosisError(w http.ResponseWriter, err error) {
	var verr *ai.ValidationError
	var perr *ai.ProviderError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Brand, model, year and problem are required", map[string][]string{"fields": verr.Fields})
	case errors.Is(err, session.ErrSubmissionInProgress):
		response.Error(w, http.StatusConflict, "SUBMISSION_IN_PROGRESS",
			"A diagnosis is already running for this session", nil)
	case errors.Is(err, session.ErrClosed):
		response.Error(w, http.StatusGone, "SESSION_CLOSED",
			"The session has expired", nil)
	case errors.As(err, &perr):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_ERROR",
			"The AI provider returned an error", map[string]any{"status": perr.StatusCode, "body": perr.Body})
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_MALFORMED_RESPONSE",
			"The AI returned a malformed answer; ask again or rephrase the problem", nil)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"AI diagnosis took too long and was cancelled", nil)
	case errors.Is(err, ai.ErrCanceled):
		response.Error(w, response.StatusClientClosedRequest, "REQUEST_CANCELED",
			"The request was canceled", nil)
	case errors.Is(err, ai.ErrProviderUnavailable), errors.Is(err, ai.ErrProviderStatus):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"Could not reach the AI provider", nil)
	default:
		slog.Error("unexpected diagnosis error", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
