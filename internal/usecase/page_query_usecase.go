package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/filter"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/pkg/metrics"
)

var ErrMissingSiteID = errors.New("site_id is required")

const defaultPerPage = 50

// FilterInput is one requested filter before validation.
type FilterInput struct {
	Key      string          `json:"key"`
	Operator filter.Operator `json:"operator"`
	Value    any             `json:"value"`
}

// QueryInput describes one pages-table query: the site, the active filter list
// and pagination.
type QueryInput struct {
	SiteID  string
	Filters []FilterInput
	Page    int
	PerPage int
}

// QueryResult is one page of filtered rows plus the totals the table needs.
type QueryResult struct {
	Pages      []*entity.Page
	Applied    []filter.Value
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// PageQuery defines the interface for listing and filtering pages.
type PageQuery interface {
	Query(ctx context.Context, in QueryInput) (*QueryResult, error)
	Catalog() []filter.Definition
}

type pageQueryUseCase struct {
	pageRepo   repository.PageRepository
	catalog    *filter.Catalog
	maxPerPage int
}

// NewPageQuery creates the page query use case bound to a filter catalog.
func NewPageQuery(pageRepo repository.PageRepository, catalog *filter.Catalog, maxPerPage int) PageQuery {
	return &pageQueryUseCase{
		pageRepo:   pageRepo,
		catalog:    catalog,
		maxPerPage: maxPerPage,
	}
}

// Catalog exposes the filter definitions for the add-filter UI.
func (uc *pageQueryUseCase) Catalog() []filter.Definition {
	return uc.catalog.Definitions()
}

// Query lists a site's pages ordered by last crawl, marks title duplicates
// across the row set, applies the validated filter list and paginates.
// A single invalid filter rejects the whole query; nothing is applied.
func (uc *pageQueryUseCase) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	if in.SiteID == "" {
		return nil, ErrMissingSiteID
	}

	engine := filter.NewEngine(uc.catalog)
	for _, f := range in.Filters {
		if _, err := engine.Add(f.Key, f.Operator, f.Value); err != nil {
			metrics.FiltersRejected.WithLabelValues(rejectionReason(err)).Inc()
			return nil, fmt.Errorf("filter %q: %w", f.Key, err)
		}
	}

	pages, err := uc.pageRepo.ListBySite(ctx, in.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages for site %s: %w", in.SiteID, err)
	}

	markDuplicateTitles(pages)
	filtered := engine.Apply(pages)

	page, perPage := uc.clampPagination(in.Page, in.PerPage)
	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &QueryResult{
		Pages:      filtered[start:end],
		Applied:    engine.Values(),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

func (uc *pageQueryUseCase) clampPagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if uc.maxPerPage > 0 && perPage > uc.maxPerPage {
		perPage = uc.maxPerPage
	}
	return page, perPage
}

// markDuplicateTitles flags pages sharing a non-empty trimmed, lowercased
// title within the row set. Computed before filtering so has_duplicates is a
// working filter key.
func markDuplicateTitles(pages []*entity.Page) {
	counts := make(map[string]int, len(pages))
	for _, p := range pages {
		if key, ok := titleKey(p); ok {
			counts[key]++
		}
	}
	for _, p := range pages {
		if key, ok := titleKey(p); ok {
			p.HasDuplicates = counts[key] > 1
		} else {
			p.HasDuplicates = false
		}
	}
}

func titleKey(p *entity.Page) (string, bool) {
	if p.Title == nil {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(*p.Title))
	return key, key != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, filter.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, filter.ErrOperatorNotAllowed):
		return "operator_not_allowed"
	case errors.Is(err, filter.ErrMissingValue):
		return "missing_value"
	case errors.Is(err, filter.ErrInvalidValue):
		return "invalid_value"
	}
	return "other"
}
