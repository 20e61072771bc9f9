package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/internal/selector"
)

type selectionRequest struct {
	State  selector.State  `json:"state"`
	Action selector.Action `json:"action"`
}

type selectionResponse struct {
	State selector.State `json:"state"`
	View  selector.View  `json:"view"`
}

// NewSelectionHandler returns an http.HandlerFunc for POST /api/v1/selection.
// It is a stateless reducer: the client sends its current state and one
// action and receives the next state with its projection.
func NewSelectionHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		// The state comes from the client, so it is checked before anything
		// is projected from it.
		if err := selector.Validate(cat, req.State); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "SELECTION_REJECTED", err.Error(), nil)
			return
		}

		next, err := selector.Apply(cat, req.State, req.Action)
		if err != nil {
			switch {
			case errors.Is(err, selector.ErrUnknownAction):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			default:
				response.Error(w, http.StatusUnprocessableEntity, "SELECTION_REJECTED", err.Error(),
					selectionResponse{State: req.State, View: selector.Project(cat, req.State)})
			}
			return
		}

		response.JSON(w, selectionResponse{State: next, View: selector.Project(cat, next)})
	}
}
