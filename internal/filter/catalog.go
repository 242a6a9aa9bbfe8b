package filter

import (
	"github.com/user/pagetable-service/internal/entity"
)

// Accessor extracts the raw value of one filterable field from a page.
type Accessor func(p *entity.Page) any

// pageAccessors maps every catalog key to a pure extraction function, so the
// engine can filter by arbitrary field without reflection. Keys here must stay
// in sync with DefaultCatalog.
var pageAccessors = map[string]Accessor{
	"url":                 func(p *entity.Page) any { return p.URL },
	"title":               func(p *entity.Page) any { return p.Title },
	"description":         func(p *entity.Page) any { return p.Description },
	"h1":                  func(p *entity.Page) any { return p.H1 },
	"status_code":         func(p *entity.Page) any { return p.StatusCode },
	"meta_robots":         func(p *entity.Page) any { return p.MetaRobots },
	"word_count":          func(p *entity.Page) any { return p.WordCount },
	"title_length":        func(p *entity.Page) any { return p.TitleLength() },
	"description_length":  func(p *entity.Page) any { return p.DescriptionLength() },
	"missing_title":       func(p *entity.Page) any { return p.MissingTitle() },
	"missing_description": func(p *entity.Page) any { return p.MissingDescription() },
	"missing_h1":          func(p *entity.Page) any { return p.MissingH1() },
	"has_duplicates":      func(p *entity.Page) any { return p.HasDuplicates },
	"last_crawled_at":     func(p *entity.Page) any { return p.LastCrawledAt },
}

// DefaultCatalog is the static filter catalog for the pages table. Every key
// is backed by a working accessor in pageAccessors.
func DefaultCatalog() *Catalog {
	textOps := []Operator{OpContains, OpEquals, OpStartsWith, OpEndsWith}
	numberOps := []Operator{OpEquals, OpGreaterThan, OpLessThan, OpBetween}

	c, err := NewCatalog([]Definition{
		{Key: "url", Label: "URL", Type: TypeText, Operators: textOps},
		{Key: "title", Label: "Title", Type: TypeText, Operators: textOps},
		{Key: "description", Label: "Meta Description", Type: TypeText, Operators: textOps},
		{Key: "h1", Label: "H1", Type: TypeText, Operators: textOps},
		{Key: "status_code", Label: "Status Code", Type: TypeSelect, Operators: []Operator{OpEquals}, Options: []Option{
			{Value: "200", Label: "200 OK"},
			{Value: "301", Label: "301 Moved Permanently"},
			{Value: "302", Label: "302 Found"},
			{Value: "404", Label: "404 Not Found"},
			{Value: "500", Label: "500 Server Error"},
		}},
		{Key: "meta_robots", Label: "Meta Robots", Type: TypeSelect, Operators: []Operator{OpEquals}, Options: []Option{
			{Value: "index,follow", Label: "Index, Follow"},
			{Value: "noindex", Label: "Noindex"},
			{Value: "nofollow", Label: "Nofollow"},
			{Value: "noindex,nofollow", Label: "Noindex, Nofollow"},
		}},
		{Key: "word_count", Label: "Word Count", Type: TypeNumber, Operators: numberOps},
		{Key: "title_length", Label: "Title Length", Type: TypeNumber, Operators: numberOps},
		{Key: "description_length", Label: "Description Length", Type: TypeNumber, Operators: numberOps},
		{Key: "missing_title", Label: "Missing Title", Type: TypeBoolean, Operators: []Operator{OpEquals}},
		{Key: "missing_description", Label: "Missing Description", Type: TypeBoolean, Operators: []Operator{OpEquals}},
		{Key: "missing_h1", Label: "Missing H1", Type: TypeBoolean, Operators: []Operator{OpEquals}},
		{Key: "has_duplicates", Label: "Has Duplicates", Type: TypeBoolean, Operators: []Operator{OpEquals}},
		{Key: "last_crawled_at", Label: "Last Crawled", Type: TypeDate, Operators: []Operator{OpAfter, OpBefore, OpBetween}},
	})
	if err != nil {
		// The default catalog is static; a construction error is a programming bug.
		panic(err)
	}
	return c
}
