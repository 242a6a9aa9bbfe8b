package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/pkg/metrics"
)

// ActionWorker defines the interface for the background consumer of dispatched
// bulk action jobs.
type ActionWorker interface {
	// ProcessNextJob pops one job id from the queue and runs its executor.
	// An empty queue is a normal state and returns nil.
	ProcessNextJob(ctx context.Context) error
}

type actionWorkerUseCase struct {
	queueRepo repository.ActionQueueRepository
	jobRepo   repository.ActionJobRepository
	executors map[entity.ActionKind]repository.ActionExecutor
}

// NewActionWorker creates the worker use case with one executor per action kind.
func NewActionWorker(
	queueRepo repository.ActionQueueRepository,
	jobRepo repository.ActionJobRepository,
	executors map[entity.ActionKind]repository.ActionExecutor,
) ActionWorker {
	return &actionWorkerUseCase{
		queueRepo: queueRepo,
		jobRepo:   jobRepo,
		executors: executors,
	}
}

// ProcessNextJob fetches a single job from the queue and executes it. Executor
// failure marks the job failed; it is not an error of the worker loop itself.
func (uc *actionWorkerUseCase) ProcessNextJob(ctx context.Context) error {
	jobID, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Queue is empty, which is a normal state.
			return nil
		}
		return fmt.Errorf("failed to pop job from queue: %w", err)
	}

	job, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load action job %s: %w", jobID, err)
	}

	executor, ok := uc.executors[job.Kind]
	if !ok {
		slog.Error("No executor for action kind", "job_id", job.ID, "kind", job.Kind)
		return uc.markFailed(ctx, job, repository.ErrNoExecutor)
	}

	slog.Info("Processing action job", "job_id", job.ID, "action", job.ActionID, "page_count", len(job.PageIDs))

	startTime := time.Now()
	execErr := executor.Execute(ctx, job)
	duration := time.Since(startTime)
	metrics.ActionJobDuration.WithLabelValues(string(job.Kind)).Observe(duration.Seconds())

	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.JobsInQueue.Set(float64(size))
	}

	if execErr != nil {
		slog.Error("Action job failed", "job_id", job.ID, "action", job.ActionID, "error", execErr)
		return uc.markFailed(ctx, job, execErr)
	}

	metrics.ActionJobsTotal.WithLabelValues("completed", string(job.Kind)).Inc()
	slog.Info("Action job completed", "job_id", job.ID, "action", job.ActionID, "duration_ms", duration.Milliseconds())

	if err := uc.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", job.ID, err)
	}
	return nil
}

func (uc *actionWorkerUseCase) markFailed(ctx context.Context, job *entity.ActionJob, cause error) error {
	metrics.ActionJobsTotal.WithLabelValues("failed", string(job.Kind)).Inc()
	if err := uc.jobRepo.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", job.ID, err)
	}
	return nil
}
