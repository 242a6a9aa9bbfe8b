package repository

import (
	"context"

	"github.com/user/pagetable-service/internal/entity"
)

// PageRepository defines the contract for storing and retrieving crawled pages.
type PageRepository interface {
	// Save stores a page. An existing (site_id, url) pair is updated in place.
	Save(ctx context.Context, page *entity.Page) error
	// ListBySite retrieves all pages of a site ordered by last_crawled_at descending.
	ListBySite(ctx context.Context, siteID string) ([]*entity.Page, error)
	// FindByIDs retrieves the pages with the given ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Page, error)
}
