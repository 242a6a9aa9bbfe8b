package response

import (
	"time"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/filter"
)

// PageResponse is a DTO for one table row, including the derived audit fields
// the dashboard renders as issue badges.
type PageResponse struct {
	ID            string    `json:"id"`
	SiteID        string    `json:"site_id"`
	URL           string    `json:"url"`
	StatusCode    *int      `json:"status_code"`
	Canonical     *string   `json:"canonical"`
	MetaRobots    *string   `json:"meta_robots"`
	WordCount     int       `json:"word_count"`
	LastCrawledAt time.Time `json:"last_crawled_at"`
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	H1            *string   `json:"h1"`
	H2            []string  `json:"h2,omitempty"`

	MissingTitle       bool `json:"missing_title"`
	MissingDescription bool `json:"missing_description"`
	MissingH1          bool `json:"missing_h1"`
	TitleLength        int  `json:"title_length"`
	DescriptionLength  int  `json:"description_length"`
	HasDuplicates      bool `json:"has_duplicates"`
}

// FromPage maps a page entity onto its DTO.
func FromPage(p *entity.Page) PageResponse {
	return PageResponse{
		ID:                 p.ID,
		SiteID:             p.SiteID,
		URL:                p.URL,
		StatusCode:         p.StatusCode,
		Canonical:          p.Canonical,
		MetaRobots:         p.MetaRobots,
		WordCount:          p.WordCount,
		LastCrawledAt:      p.LastCrawledAt,
		Title:              p.Title,
		Description:        p.Description,
		H1:                 p.H1,
		H2:                 p.H2,
		MissingTitle:       p.MissingTitle(),
		MissingDescription: p.MissingDescription(),
		MissingH1:          p.MissingH1(),
		TitleLength:        p.TitleLength(),
		DescriptionLength:  p.DescriptionLength(),
		HasDuplicates:      p.HasDuplicates,
	}
}

// PageListResponse is one page of filtered rows plus table totals.
type PageListResponse struct {
	Pages          []PageResponse `json:"pages"`
	AppliedFilters []filter.Value `json:"applied_filters"`
	Total          int            `json:"total"`
	Page           int            `json:"page"`
	PerPage        int            `json:"per_page"`
	TotalPages     int            `json:"total_pages"`
}

// FilterCatalogResponse lists the filterable fields for the add-filter UI.
type FilterCatalogResponse struct {
	Filters []filter.Definition `json:"filters"`
}

// ActionResponse is a DTO for one bulk action catalog entry.
type ActionResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Kind          string         `json:"kind"`
	DefaultParams map[string]any `json:"default_params,omitempty"`
}

// ActionCatalogResponse lists the available bulk actions.
type ActionCatalogResponse struct {
	Actions []ActionResponse `json:"actions"`
}

// DispatchResponse reports the outcome of a dispatch attempt. Dispatched is
// false for an empty selection, which is a no-op rather than an error.
type DispatchResponse struct {
	Dispatched bool   `json:"dispatched"`
	JobID      string `json:"job_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// JobResponse exposes the pending -> completed/failed state of a dispatched job.
type JobResponse struct {
	ID           string     `json:"id"`
	ActionID     string     `json:"action_id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	PageCount    int        `json:"page_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
