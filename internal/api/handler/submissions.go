package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/store"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

// SubmissionReader is the read side of the audit store.
type SubmissionReader interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListSubmissions(ctx context.Context, filter store.SubmissionFilter) ([]*models.Submission, int, error)
}

// NewListSubmissionsHandler returns an http.HandlerFunc for
// GET /api/v1/admin/submissions.
func NewListSubmissionsHandler(s SubmissionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.SubmissionFilter{
			Status:    q.Get("status"),
			ErrorKind: q.Get("error_kind"),
			Brand:     q.Get("brand"),
			Page:      1,
			Limit:     20,
		}

		switch filter.Status {
		case "", models.SubmissionStatusSuccess, models.SubmissionStatusFailed:
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "status must be success or failed", nil)
			return
		}

		if v := q.Get("since"); v != "" {
			since, err := time.Parse(time.RFC3339, v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = since
		}
		if v := q.Get("page"); v != "" {
			page, err := strconv.Atoi(v)
			if err != nil || page < 1 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
				return
			}
			filter.Page = page
		}
		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 1 || limit > 100 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be between 1 and 100", nil)
				return
			}
			filter.Limit = limit
		}

		subs, total, err := s.ListSubmissions(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list submissions", nil)
			return
		}

		response.Collection(w, subs, response.NewPaginationMeta(filter.Page, filter.Limit, total))
	}
}

// NewGetSubmissionHandler returns an http.HandlerFunc for
// GET /api/v1/admin/submissions/{id}.
func NewGetSubmissionHandler(s SubmissionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a UUID", nil)
			return
		}

		sub, err := s.GetSubmission(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Submission not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get submission", nil)
			return
		}

		response.JSON(w, sub)
	}
}
