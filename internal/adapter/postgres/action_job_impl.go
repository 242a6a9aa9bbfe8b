package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
)

// ActionJobRepoImpl provides a concrete implementation for the ActionJobRepository interface using PostgreSQL.
type ActionJobRepoImpl struct {
	db *pgxpool.Pool
}

// NewActionJobRepo creates a new instance of ActionJobRepoImpl.
func NewActionJobRepo(db *pgxpool.Pool) *ActionJobRepoImpl {
	return &ActionJobRepoImpl{db: db}
}

// Save stores a newly dispatched job.
func (r *ActionJobRepoImpl) Save(ctx context.Context, job *entity.ActionJob) error {
	pageIDsJSON, err := json.Marshal(job.PageIDs)
	if err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO action_jobs (id, action_id, kind, page_ids, params, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.db.Exec(ctx, query,
		job.ID,
		job.ActionID,
		string(job.Kind),
		pageIDsJSON,
		paramsJSON,
		string(job.Status),
		job.ErrorMessage,
		job.CreatedAt,
	)
	return err
}

// FindByID retrieves a job by its id.
func (r *ActionJobRepoImpl) FindByID(ctx context.Context, id string) (*entity.ActionJob, error) {
	query := `
		SELECT id, action_id, kind, page_ids, params, status, error_message, created_at, completed_at
		FROM action_jobs
		WHERE id = $1;
	`
	row := r.db.QueryRow(ctx, query, id)

	var job entity.ActionJob
	var kind, status string
	var pageIDsJSON, paramsJSON []byte

	err := row.Scan(
		&job.ID,
		&job.ActionID,
		&kind,
		&pageIDsJSON,
		&paramsJSON,
		&status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	job.Kind = entity.ActionKind(kind)
	job.Status = entity.JobStatus(status)
	if err := json.Unmarshal(pageIDsJSON, &job.PageIDs); err != nil {
		return nil, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &job.Params); err != nil {
			return nil, err
		}
	}
	return &job, nil
}

// MarkCompleted records a successful terminal state.
func (r *ActionJobRepoImpl) MarkCompleted(ctx context.Context, id string) error {
	return r.markDone(ctx, id, entity.JobStatusCompleted, "")
}

// MarkFailed records a failed terminal state with the failure reason.
func (r *ActionJobRepoImpl) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.markDone(ctx, id, entity.JobStatusFailed, reason)
}

func (r *ActionJobRepoImpl) markDone(ctx context.Context, id string, status entity.JobStatus, reason string) error {
	query := `
		UPDATE action_jobs
		SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1;
	`
	_, err := r.db.Exec(ctx, query, id, string(status), reason, time.Now().UTC())
	return err
}
