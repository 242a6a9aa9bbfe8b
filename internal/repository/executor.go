package repository

import (
	"context"
	"errors"

	"github.com/user/pagetable-service/internal/entity"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrNoExecutor     = errors.New("no executor registered for action kind")
	ErrExecutorFailed = errors.New("action executor failed")
)

// ActionExecutor defines the contract for the external system that carries out
// one kind of bulk action. Completion and failure are its own responsibility;
// the dispatcher never retries.
type ActionExecutor interface {
	// Execute runs the action over the selected pages with the job's parameters.
	Execute(ctx context.Context, job *entity.ActionJob) error
}
