package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/filter"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func queryFixture() *fakePageRepo {
	return &fakePageRepo{pages: []*entity.Page{
		{
			ID: "1", SiteID: "site-1", URL: "https://example.com/",
			StatusCode: intPtr(200), Title: strPtr("Home"), WordCount: 1250,
			LastCrawledAt: time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: "2", SiteID: "site-1", URL: "https://example.com/pricing",
			StatusCode: intPtr(404), WordCount: 0,
			LastCrawledAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: "3", SiteID: "site-1", URL: "https://example.com/about",
			StatusCode: intPtr(200), Title: strPtr("home"), WordCount: 400,
			LastCrawledAt: time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: "9", SiteID: "site-2", URL: "https://other.example/",
			StatusCode: intPtr(200), Title: strPtr("Other"), WordCount: 100,
			LastCrawledAt: time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
		},
	}}
}

func newTestQuery(repo *fakePageRepo) PageQuery {
	return NewPageQuery(repo, filter.DefaultCatalog(), 100)
}

func pageIDs(pages []*entity.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.ID
	}
	return out
}

func TestQueryRequiresSiteID(t *testing.T) {
	uc := newTestQuery(queryFixture())
	if _, err := uc.Query(context.Background(), QueryInput{}); !errors.Is(err, ErrMissingSiteID) {
		t.Fatalf("err = %v, want ErrMissingSiteID", err)
	}
}

func TestQueryWithoutFiltersReturnsAllSitePages(t *testing.T) {
	uc := newTestQuery(queryFixture())

	res, err := uc.Query(context.Background(), QueryInput{SiteID: "site-1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("total = %d, want 3 (other sites excluded)", res.Total)
	}
	if len(res.Applied) != 0 {
		t.Fatalf("applied filters = %v, want none", res.Applied)
	}
}

func TestQueryAppliesFilterList(t *testing.T) {
	uc := newTestQuery(queryFixture())

	res, err := uc.Query(context.Background(), QueryInput{
		SiteID: "site-1",
		Filters: []FilterInput{
			{Key: "status_code", Operator: filter.OpEquals, Value: "200"},
			{Key: "word_count", Operator: filter.OpGreaterThan, Value: float64(500)},
		},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := pageIDs(res.Pages); len(got) != 1 || got[0] != "1" {
		t.Fatalf("pages = %v, want [1]", got)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("applied = %v, want 2 entries", res.Applied)
	}
}

func TestQueryRejectsWholeRequestOnInvalidFilter(t *testing.T) {
	uc := newTestQuery(queryFixture())

	_, err := uc.Query(context.Background(), QueryInput{
		SiteID: "site-1",
		Filters: []FilterInput{
			{Key: "url", Operator: filter.OpContains, Value: "example"},
			{Key: "word_count", Operator: filter.OpContains, Value: "10"},
		},
	})
	if !errors.Is(err, filter.ErrOperatorNotAllowed) {
		t.Fatalf("err = %v, want ErrOperatorNotAllowed", err)
	}
}

func TestQueryMarksTitleDuplicates(t *testing.T) {
	uc := newTestQuery(queryFixture())

	// "Home" and "home" collide after trimming and lowercasing.
	res, err := uc.Query(context.Background(), QueryInput{
		SiteID: "site-1",
		Filters: []FilterInput{
			{Key: "has_duplicates", Operator: filter.OpEquals, Value: true},
		},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got := pageIDs(res.Pages)
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("duplicate pages = %v, want [1 3]", got)
	}
}

func TestQueryPagination(t *testing.T) {
	uc := newTestQuery(queryFixture())

	res, err := uc.Query(context.Background(), QueryInput{SiteID: "site-1", Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Page != 2 || res.PerPage != 2 || res.TotalPages != 2 {
		t.Fatalf("page=%d perPage=%d totalPages=%d", res.Page, res.PerPage, res.TotalPages)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("second page has %d rows, want 1", len(res.Pages))
	}

	// Past the last page: empty rows, not an error.
	res, err = uc.Query(context.Background(), QueryInput{SiteID: "site-1", Page: 9, PerPage: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Pages) != 0 {
		t.Fatalf("out-of-range page returned %d rows", len(res.Pages))
	}
}

func TestQueryClampsPagination(t *testing.T) {
	uc := NewPageQuery(queryFixture(), filter.DefaultCatalog(), 2)

	res, err := uc.Query(context.Background(), QueryInput{SiteID: "site-1", Page: -3, PerPage: 500})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Page != 1 || res.PerPage != 2 {
		t.Fatalf("page=%d perPage=%d, want clamped 1 and 2", res.Page, res.PerPage)
	}
}

func TestQueryCatalogExposesDefinitions(t *testing.T) {
	uc := newTestQuery(queryFixture())
	defs := uc.Catalog()
	if len(defs) == 0 {
		t.Fatal("catalog is empty")
	}
}
