package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/pagetable-service/internal/entity"
)

// PageRepoImpl provides a concrete implementation for the PageRepository interface using PostgreSQL.
type PageRepoImpl struct {
	db *pgxpool.Pool
}

// NewPageRepo creates a new instance of PageRepoImpl.
func NewPageRepo(db *pgxpool.Pool) *PageRepoImpl {
	return &PageRepoImpl{db: db}
}

const pageColumns = `id, site_id, url, status_code, canonical, meta_robots, word_count, last_crawled_at, title, description, h1, h2`

// Save stores or updates a page. The (site_id, url) pair is the natural key;
// re-ingesting a crawled URL updates the stored elements in place.
func (r *PageRepoImpl) Save(ctx context.Context, page *entity.Page) error {
	h2JSON, err := json.Marshal(page.H2)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pages (id, site_id, url, status_code, canonical, meta_robots, word_count, last_crawled_at, title, description, h1, h2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (site_id, url) DO UPDATE SET
			status_code = EXCLUDED.status_code,
			canonical = EXCLUDED.canonical,
			meta_robots = EXCLUDED.meta_robots,
			word_count = EXCLUDED.word_count,
			last_crawled_at = EXCLUDED.last_crawled_at,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			h1 = EXCLUDED.h1,
			h2 = EXCLUDED.h2;
	`

	_, err = r.db.Exec(ctx, query,
		page.ID,
		page.SiteID,
		page.URL,
		page.StatusCode,
		page.Canonical,
		page.MetaRobots,
		page.WordCount,
		page.LastCrawledAt,
		page.Title,
		page.Description,
		page.H1,
		h2JSON,
	)
	return err
}

// ListBySite retrieves all pages of a site, newest crawl first.
func (r *PageRepoImpl) ListBySite(ctx context.Context, siteID string) ([]*entity.Page, error) {
	query := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE site_id = $1
		ORDER BY last_crawled_at DESC;
	`
	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPages(rows)
}

// FindByIDs retrieves the pages with the given ids; missing ids are skipped.
func (r *PageRepoImpl) FindByIDs(ctx context.Context, ids []string) ([]*entity.Page, error) {
	query := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE id = ANY($1)
		ORDER BY last_crawled_at DESC;
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPages(rows)
}

func scanPages(rows pgx.Rows) ([]*entity.Page, error) {
	var pages []*entity.Page
	for rows.Next() {
		var p entity.Page
		var h2JSON []byte
		if err := rows.Scan(
			&p.ID,
			&p.SiteID,
			&p.URL,
			&p.StatusCode,
			&p.Canonical,
			&p.MetaRobots,
			&p.WordCount,
			&p.LastCrawledAt,
			&p.Title,
			&p.Description,
			&p.H1,
			&h2JSON,
		); err != nil {
			return nil, err
		}
		if len(h2JSON) > 0 {
			if err := json.Unmarshal(h2JSON, &p.H2); err != nil {
				return nil, err
			}
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}
