package request

import (
	"time"

	"github.com/user/pagetable-service/internal/usecase"
)

// IngestPageRequest is one crawled page posted over the row supplier boundary.
type IngestPageRequest struct {
	SiteID     string     `json:"site_id"`
	URL        string     `json:"url"`
	StatusCode *int       `json:"status_code"`
	HTML       string     `json:"html"`
	CrawledAt  *time.Time `json:"crawled_at,omitempty"`
}

// QueryPagesRequest carries the active filter list and pagination for the
// pages table.
type QueryPagesRequest struct {
	SiteID  string                `json:"site_id"`
	Filters []usecase.FilterInput `json:"filters"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// DispatchActionRequest is the selection plus per-dispatch action parameters.
type DispatchActionRequest struct {
	PageIDs []string       `json:"page_ids"`
	Params  map[string]any `json:"params"`
}

// ExportCSVRequest drives the synchronous CSV download endpoint.
type ExportCSVRequest struct {
	PageIDs []string `json:"page_ids"`
	Columns []string `json:"columns"`
}
