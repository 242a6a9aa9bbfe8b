package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/pagetable-service/internal/element"
	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/pkg/metrics"
	"github.com/user/pagetable-service/pkg/utils"
)

var ErrMissingPageURL = errors.New("page url is required")

// IngestInput is one crawled page arriving over the row supplier boundary.
type IngestInput struct {
	SiteID     string
	URL        string
	StatusCode *int
	HTML       string
	CrawledAt  time.Time
}

// PageIngest defines the interface for accepting crawled pages from the
// external crawler.
type PageIngest interface {
	Ingest(ctx context.Context, in IngestInput) (*entity.Page, error)
}

type pageIngestUseCase struct {
	pageRepo repository.PageRepository
}

// NewPageIngest creates the page ingest use case.
func NewPageIngest(pageRepo repository.PageRepository) PageIngest {
	return &pageIngestUseCase{pageRepo: pageRepo}
}

// Ingest extracts the on-page elements from the raw HTML and upserts the page.
func (uc *pageIngestUseCase) Ingest(ctx context.Context, in IngestInput) (*entity.Page, error) {
	if in.SiteID == "" {
		return nil, ErrMissingSiteID
	}
	if in.URL == "" {
		return nil, ErrMissingPageURL
	}

	crawledAt := in.CrawledAt
	if crawledAt.IsZero() {
		crawledAt = time.Now().UTC()
	}

	page := &entity.Page{
		ID:            utils.NewID(),
		SiteID:        in.SiteID,
		URL:           in.URL,
		StatusCode:    in.StatusCode,
		LastCrawledAt: crawledAt,
	}

	if in.HTML != "" {
		els, err := element.Extract(in.HTML)
		if err != nil {
			return nil, fmt.Errorf("failed to extract elements for %s: %w", in.URL, err)
		}
		page.Title = els.Title
		page.Description = els.Description
		page.MetaRobots = els.MetaRobots
		page.Canonical = els.Canonical
		page.H1 = els.H1
		page.H2 = els.H2
		page.WordCount = els.WordCount
	}

	if err := uc.pageRepo.Save(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to save page %s: %w", in.URL, err)
	}

	metrics.PagesIngested.Inc()
	slog.Info("Page ingested", "site_id", in.SiteID, "url", in.URL, "word_count", page.WordCount)
	return page, nil
}
