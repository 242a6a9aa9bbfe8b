package entity

import "time"

// JobStatus follows the pending -> (completed | failed) lifecycle of a
// dispatched bulk action. The dispatcher only ever emits pending; the worker
// drives the terminal transitions.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ActionJob mirrors the `action_jobs` PostgreSQL table schema: one dispatched
// bulk action over a set of selected page ids.
type ActionJob struct {
	ID           string
	ActionID     string
	Kind         ActionKind
	PageIDs      []string       // Stored as JSONB in PostgreSQL
	Params       map[string]any // Stored as JSONB in PostgreSQL
	Status       JobStatus
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}
