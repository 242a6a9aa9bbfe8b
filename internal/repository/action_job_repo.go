package repository

import (
	"context"

	"github.com/user/pagetable-service/internal/entity"
)

// ActionJobRepository defines the interface for persisting dispatched bulk
// action jobs and their pending -> completed/failed lifecycle.
type ActionJobRepository interface {
	// Save stores a newly dispatched job with status pending.
	Save(ctx context.Context, job *entity.ActionJob) error
	// FindByID retrieves a job by its id.
	FindByID(ctx context.Context, id string) (*entity.ActionJob, error)
	// MarkCompleted records a successful terminal state for the job.
	MarkCompleted(ctx context.Context, id string) error
	// MarkFailed records a failed terminal state with the failure reason.
	MarkFailed(ctx context.Context, id string, reason string) error
}
