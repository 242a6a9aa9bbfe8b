package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/internal/selection"
	"github.com/user/pagetable-service/pkg/metrics"
	"github.com/user/pagetable-service/pkg/utils"
)

var ErrUnknownAction = errors.New("unknown bulk action")

// Dispatcher defines the interface for exposing the bulk action catalog and
// dispatching an action over the current selection. Dispatch is fire-and-forget:
// it persists the job, enqueues it for a worker and returns immediately.
type Dispatcher interface {
	Catalog() []entity.BulkAction
	// Execute dispatches actionID over the selected page ids. An empty
	// selection is a no-op: nothing is persisted or enqueued and dispatched
	// is false.
	Execute(ctx context.Context, actionID string, pageIDs []string, params map[string]any) (jobID string, dispatched bool, err error)
}

type dispatcherUseCase struct {
	catalog   []entity.BulkAction
	byID      map[string]*entity.BulkAction
	jobRepo   repository.ActionJobRepository
	queueRepo repository.ActionQueueRepository
}

// NewDispatcher creates a dispatcher over a static action catalog.
func NewDispatcher(
	catalog []entity.BulkAction,
	jobRepo repository.ActionJobRepository,
	queueRepo repository.ActionQueueRepository,
) Dispatcher {
	byID := make(map[string]*entity.BulkAction, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}
	return &dispatcherUseCase{
		catalog:   catalog,
		byID:      byID,
		jobRepo:   jobRepo,
		queueRepo: queueRepo,
	}
}

// DefaultActionCatalog is the static catalog the pages table offers.
func DefaultActionCatalog() []entity.BulkAction {
	return []entity.BulkAction{
		{
			ID:          "run_template",
			Name:        "Run Template",
			Description: "Generate content for the selected pages with a prompt template",
			Kind:        entity.ActionKindRunTemplate,
			DefaultParams: map[string]any{
				"context_columns": []any{"title", "h1", "description"},
				"variants":        float64(1),
			},
		},
		{
			ID:          "export",
			Name:        "Export CSV",
			Description: "Export the selected pages to a CSV file",
			Kind:        entity.ActionKindExport,
			DefaultParams: map[string]any{
				"columns": []any{
					"url", "title", "description", "h1",
					"word_count", "status_code",
				},
			},
		},
		{
			ID:          "publish",
			Name:        "Publish",
			Description: "Push the selected pages to the connected CMS",
			Kind:        entity.ActionKindPublish,
			DefaultParams: map[string]any{
				"fields": []any{"title", "description"},
				"mode":   "draft",
			},
		},
	}
}

func (uc *dispatcherUseCase) Catalog() []entity.BulkAction {
	out := make([]entity.BulkAction, len(uc.catalog))
	copy(out, uc.catalog)
	return out
}

func (uc *dispatcherUseCase) Execute(ctx context.Context, actionID string, pageIDs []string, params map[string]any) (string, bool, error) {
	action, ok := uc.byID[actionID]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownAction, actionID)
	}

	// De-duplicate the submitted selection; the tracker keeps it order-free.
	sel := selection.New()
	sel.SelectAll(pageIDs)
	ids := sel.Current()
	if len(ids) == 0 {
		slog.Info("Skipping dispatch with empty selection", "action", actionID)
		return "", false, nil
	}

	job := &entity.ActionJob{
		ID:        utils.NewID(),
		ActionID:  action.ID,
		Kind:      action.Kind,
		PageIDs:   ids,
		Params:    mergeParams(action.DefaultParams, params),
		Status:    entity.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.jobRepo.Save(ctx, job); err != nil {
		return "", false, fmt.Errorf("failed to save action job: %w", err)
	}
	if err := uc.queueRepo.Push(ctx, job.ID); err != nil {
		return "", false, fmt.Errorf("failed to enqueue action job %s: %w", job.ID, err)
	}

	metrics.ActionsDispatched.WithLabelValues(action.ID).Inc()
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.JobsInQueue.Set(float64(size))
	}

	slog.Info("Bulk action dispatched", "action", action.ID, "job_id", job.ID, "page_count", len(ids))
	return job.ID, true, nil
}

// mergeParams lays the request params over the action defaults.
func mergeParams(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
