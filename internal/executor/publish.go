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

var ErrPublishNotConfigured = errors.New("publish webhook is not configured")

// publishPayload is what the CMS integration receives per dispatch. The
// WordPress side decides how fields map onto its SEO plugin.
type publishPayload struct {
	JobID  string        `json:"job_id"`
	Mode   string        `json:"mode"`
	Fields []string      `json:"fields"`
	Pages  []publishPage `json:"pages"`
}

type publishPage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	H1          string `json:"h1,omitempty"`
}

// PublishExecutor forwards the selected pages to the configured CMS webhook.
type PublishExecutor struct {
	pageRepo   repository.PageRepository
	webhookURL string
	client     *http.Client
}

func NewPublishExecutor(pageRepo repository.PageRepository, webhookURL string) *PublishExecutor {
	return &PublishExecutor{
		pageRepo:   pageRepo,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *PublishExecutor) Execute(ctx context.Context, job *entity.ActionJob) error {
	if e.webhookURL == "" {
		return ErrPublishNotConfigured
	}

	pages, err := e.pageRepo.FindByIDs(ctx, job.PageIDs)
	if err != nil {
		return fmt.Errorf("failed to load pages for publish: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found for publish")
	}

	mode, _ := job.Params["mode"].(string)
	if mode == "" {
		mode = "draft"
	}

	payload := publishPayload{
		JobID:  job.ID,
		Mode:   mode,
		Fields: stringSlice(job.Params["fields"]),
	}
	for _, p := range pages {
		payload.Pages = append(payload.Pages, publishPage{
			ID:          p.ID,
			URL:         p.URL,
			Title:       strPtrString(p.Title),
			Description: strPtrString(p.Description),
			H1:          strPtrString(p.H1),
		})
	}

	return e.post(ctx, payload)
}

func (e *PublishExecutor) post(ctx context.Context, payload publishPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal publish payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: webhook returned status %d", repository.ErrExecutorFailed, resp.StatusCode)
	}
	return nil
}
