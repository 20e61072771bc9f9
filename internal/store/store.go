package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/partscout/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the submission audit interface. Only request metadata is kept;
// diagnosis payloads are never persisted.
type Store interface {
	Ping(ctx context.Context) error
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, int, error)
}

type SubmissionFilter struct {
	Status    string
	ErrorKind string
	Brand     string
	Since     time.Time
	Page      int
	Limit     int
}

// normalize clamps pagination to 1..100 rows per page, 20 by default.
func (f SubmissionFilter) normalize() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// NopStore discards submissions. It backs the server when no database is configured.
type NopStore struct{}

func (NopStore) Ping(context.Context) error { return nil }

func (NopStore) CreateSubmission(context.Context, *models.Submission) error { return nil }

func (NopStore) GetSubmission(context.Context, uuid.UUID) (*models.Submission, error) {
	return nil, ErrNotFound
}

func (NopStore) ListSubmissions(context.Context, SubmissionFilter) ([]*models.Submission, int, error) {
	return []*models.Submission{}, 0, nil
}
