package entity

import (
	"strings"
	"time"
)

// Page mirrors the `pages` PostgreSQL table schema: one crawled page of a site,
// including the extracted on-page elements used for filtering and display.
type Page struct {
	ID            string
	SiteID        string
	URL           string
	StatusCode    *int
	Canonical     *string
	MetaRobots    *string
	WordCount     int
	LastCrawledAt time.Time
	Title         *string
	Description   *string
	H1            *string
	H2            []string // Stored as JSONB in PostgreSQL

	// HasDuplicates is derived across a row set (pages sharing a title within the
	// same site), not stored. PageQuery sets it before filtering.
	HasDuplicates bool
}

// MissingTitle reports whether the page has no usable title: nil or empty after trimming.
func (p *Page) MissingTitle() bool {
	return p.Title == nil || strings.TrimSpace(*p.Title) == ""
}

// MissingDescription reports whether the page has no usable meta description.
func (p *Page) MissingDescription() bool {
	return p.Description == nil || strings.TrimSpace(*p.Description) == ""
}

// MissingH1 reports whether the page has no usable H1.
func (p *Page) MissingH1() bool {
	return p.H1 == nil || strings.TrimSpace(*p.H1) == ""
}

// TitleLength is the trimmed length of the title, 0 when absent.
func (p *Page) TitleLength() int {
	if p.Title == nil {
		return 0
	}
	return len(strings.TrimSpace(*p.Title))
}

// DescriptionLength is the trimmed length of the meta description, 0 when absent.
func (p *Page) DescriptionLength() int {
	if p.Description == nil {
		return 0
	}
	return len(strings.TrimSpace(*p.Description))
}
