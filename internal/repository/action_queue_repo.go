package repository

import "context"

// ActionQueueRepository defines the interface for the FIFO queue of dispatched
// bulk action job ids awaiting a worker.
type ActionQueueRepository interface {
	// Push adds a job id to the end of the queue.
	Push(ctx context.Context, jobID string) error
	// Pop removes and returns a job id from the front of the queue.
	Pop(ctx context.Context) (string, error)
	// Size returns the current number of queued job ids.
	Size(ctx context.Context) (int64, error)
}
