package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
)

var (
	ErrRunnerNotConfigured = errors.New("template runner is not configured")
	ErrMissingTemplateID   = errors.New("run_template requires a template_id param")
)

// templateRunRequest is forwarded to the external AI template runner. The
// runner owns the generation lifecycle; we only hand over the selection plus
// the per-page context columns it should prompt with.
type templateRunRequest struct {
	JobID          string           `json:"job_id"`
	TemplateID     string           `json:"template_id"`
	Variants       int              `json:"variants"`
	ContextColumns []string         `json:"context_columns"`
	Rows           []templateRunRow `json:"rows"`
}

type templateRunRow struct {
	PageID  string            `json:"page_id"`
	URL     string            `json:"url"`
	Context map[string]string `json:"context"`
}

// TemplateExecutor forwards a run-template action to the external runner service.
type TemplateExecutor struct {
	pageRepo  repository.PageRepository
	runnerURL string
	client    *http.Client
}

func NewTemplateExecutor(pageRepo repository.PageRepository, runnerURL string) *TemplateExecutor {
	return &TemplateExecutor{
		pageRepo:  pageRepo,
		runnerURL: runnerURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *TemplateExecutor) Execute(ctx context.Context, job *entity.ActionJob) error {
	if e.runnerURL == "" {
		return ErrRunnerNotConfigured
	}

	templateID, _ := job.Params["template_id"].(string)
	if templateID == "" {
		return ErrMissingTemplateID
	}

	pages, err := e.pageRepo.FindByIDs(ctx, job.PageIDs)
	if err != nil {
		return fmt.Errorf("failed to load pages for template run: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found for template run")
	}

	columns := stringSlice(job.Params["context_columns"])
	if len(columns) == 0 {
		columns = []string{"title", "h1", "description"}
	}

	variants := 1
	if v, ok := job.Params["variants"].(float64); ok && v >= 1 {
		variants = int(v)
	}

	req := templateRunRequest{
		JobID:          job.ID,
		TemplateID:     templateID,
		Variants:       variants,
		ContextColumns: columns,
	}
	for _, p := range pages {
		req.Rows = append(req.Rows, templateRunRow{
			PageID:  p.ID,
			URL:     p.URL,
			Context: contextFor(p, columns),
		})
	}

	return e.post(ctx, req)
}

// contextFor picks the requested columns off a page as prompt context.
func contextFor(p *entity.Page, columns []string) map[string]string {
	ctx := make(map[string]string, len(columns))
	for _, col := range columns {
		switch col {
		case "title":
			ctx[col] = strPtrString(p.Title)
		case "description":
			ctx[col] = strPtrString(p.Description)
		case "h1":
			ctx[col] = strPtrString(p.H1)
		case "url":
			ctx[col] = p.URL
		case "meta_robots":
			ctx[col] = strPtrString(p.MetaRobots)
		}
	}
	return ctx
}

func (e *TemplateExecutor) post(ctx context.Context, payload templateRunRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal template run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.runnerURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build template run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("template runner call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: runner returned status %d", repository.ErrExecutorFailed, resp.StatusCode)
	}
	return nil
}
