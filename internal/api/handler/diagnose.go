package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/render"
	"github.com/kiranshivaraju/partscout/pkg/models"
	"github.com/kiranshivaraju/partscout/pkg/prompt"
)

// Diagnoser defines the interface the diagnosis handlers depend on.
type Diagnoser interface {
	Diagnose(ctx context.Context, req ai.DiagnoseRequest) (*ai.Outcome, error)
}

type diagnoseRequest struct {
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	Problem       string `json:"problem"`
	SchemaVersion int    `json:"schema_version"`
}

type diagnoseResponse struct {
	Result        *models.DiagnosisResult `json:"result"`
	Provider      string                  `json:"provider"`
	Model         string                  `json:"model"`
	SchemaVersion int                     `json:"schema_version"`
	Currency      string                  `json:"currency"`
	DurationMS    int64                   `json:"duration_ms"`
}

// NewDiagnoseHandler returns an http.HandlerFunc for POST /api/v1/diagnose.
// Parts in the result are ordered by probability and shops by price.
func NewDiagnoseHandler(svc Diagnoser, currency string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req diagnoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		out, err := svc.Diagnose(r.Context(), ai.DiagnoseRequest{
			Brand:         req.Brand,
			Model:         req.Model,
			Year:          req.Year,
			Problem:       req.Problem,
			SchemaVersion: prompt.SchemaVersion(req.SchemaVersion),
		})
		if err != nil {
			writeDiagnosisError(w, err)
			return
		}

		response.JSON(w, diagnoseResponse{
			Result:        render.Order(out.Result),
			Provider:      out.Provider,
			Model:         out.Model,
			SchemaVersion: int(out.SchemaVersion),
			Currency:      currency,
			DurationMS:    out.Duration.Milliseconds(),
		})
	}
}
