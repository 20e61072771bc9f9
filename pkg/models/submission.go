package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionStatusSuccess = "success"
	SubmissionStatusFailed  = "failed"
)

// Submission is the audit record of one diagnosis request.
// The diagnosis payload itself is never persisted.
type Submission struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	SessionID     *string   `db:"session_id"     json:"session_id,omitempty"`
	Brand         string    `db:"brand"          json:"brand"`
	Model         string    `db:"model"          json:"model"`
	Year          int       `db:"year"           json:"year"`
	SchemaVersion int       `db:"schema_version" json:"schema_version"`
	Provider      string    `db:"provider"       json:"provider"`
	ModelName     string    `db:"model_name"     json:"model_name"`
	Status        string    `db:"status"         json:"status"`
	ErrorKind     *string   `db:"error_kind"     json:"error_kind,omitempty"`
	PartsCount    int       `db:"parts_count"    json:"parts_count"`
	DurationMS    int64     `db:"duration_ms"    json:"duration_ms"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}
