package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/pagetable-service/internal/delivery/http/handler"
	"github.com/user/pagetable-service/internal/delivery/http/response"
	"github.com/user/pagetable-service/internal/delivery/http/router"
	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/filter"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/internal/usecase"
	"github.com/user/pagetable-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type fakePageRepo struct {
	pages []*entity.Page
}

func (f *fakePageRepo) Save(_ context.Context, page *entity.Page) error {
	f.pages = append(f.pages, page)
	return nil
}

func (f *fakePageRepo) ListBySite(_ context.Context, siteID string) ([]*entity.Page, error) {
	var out []*entity.Page
	for _, p := range f.pages {
		if p.SiteID == siteID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePageRepo) FindByIDs(_ context.Context, ids []string) ([]*entity.Page, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*entity.Page
	for _, p := range f.pages {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs map[string]*entity.ActionJob
}

func (f *fakeJobRepo) Save(_ context.Context, job *entity.ActionJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) FindByID(_ context.Context, id string) (*entity.ActionJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) MarkCompleted(_ context.Context, id string) error { return nil }

func (f *fakeJobRepo) MarkFailed(_ context.Context, id string, reason string) error { return nil }

type fakeQueueRepo struct {
	ids []string
}

func (f *fakeQueueRepo) Push(_ context.Context, jobID string) error {
	f.ids = append(f.ids, jobID)
	return nil
}

func (f *fakeQueueRepo) Pop(_ context.Context) (string, error) {
	if len(f.ids) == 0 {
		return "", redis.Nil
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

func (f *fakeQueueRepo) Size(_ context.Context) (int64, error) {
	return int64(len(f.ids)), nil
}

func newTestServer() (*httptest.Server, *fakePageRepo, *fakeJobRepo) {
	pageRepo := &fakePageRepo{pages: []*entity.Page{
		{
			ID: "1", SiteID: "site-1", URL: "https://example.com/",
			StatusCode: intPtr(200), Title: strPtr("Home"), WordCount: 1250,
			LastCrawledAt: time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: "2", SiteID: "site-1", URL: "https://example.com/pricing",
			StatusCode: intPtr(404), WordCount: 120,
			LastCrawledAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	jobRepo := &fakeJobRepo{jobs: make(map[string]*entity.ActionJob)}
	queueRepo := &fakeQueueRepo{}

	pageQuery := usecase.NewPageQuery(pageRepo, filter.DefaultCatalog(), 100)
	pageIngest := usecase.NewPageIngest(pageRepo)
	dispatcher := usecase.NewDispatcher(usecase.DefaultActionCatalog(), jobRepo, queueRepo)

	h := handler.NewHandler(pageQuery, pageIngest, dispatcher, jobRepo, pageRepo)
	return httptest.NewServer(router.New(h)), pageRepo, jobRepo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestQueryPagesAppliesFilters(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/pages/query", map[string]any{
		"site_id": "site-1",
		"filters": []map[string]any{
			{"key": "word_count", "operator": "less_than", "value": 300},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body response.PageListResponse
	decodeJSON(t, resp, &body)
	if body.Total != 1 || len(body.Pages) != 1 || body.Pages[0].ID != "2" {
		t.Fatalf("pages = %+v, want only id 2", body.Pages)
	}
	if len(body.AppliedFilters) != 1 || body.AppliedFilters[0].Label != "Word Count < 300" {
		t.Fatalf("applied filters = %+v", body.AppliedFilters)
	}
}

func TestQueryPagesRejectsInvalidFilter(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	tests := []struct {
		name   string
		filter map[string]any
	}{
		{"unknown key", map[string]any{"key": "bogus", "operator": "equals", "value": "x"}},
		{"disallowed operator", map[string]any{"key": "word_count", "operator": "contains", "value": "10"}},
		{"empty value", map[string]any{"key": "title", "operator": "contains", "value": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/pages/query", map[string]any{
				"site_id": "site-1",
				"filters": []map[string]any{tt.filter},
			})
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestQueryPagesRequiresSiteID(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/pages/query", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFilterCatalogEndpoint(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/filters")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body response.FilterCatalogResponse
	decodeJSON(t, resp, &body)
	if len(body.Filters) == 0 {
		t.Fatal("empty filter catalog")
	}
}

func TestIngestPage(t *testing.T) {
	srv, pageRepo, _ := newTestServer()
	defer srv.Close()

	before := len(pageRepo.pages)
	resp := postJSON(t, srv.URL+"/api/pages", map[string]any{
		"site_id": "site-1",
		"url":     "https://example.com/blog",
		"html":    "<html><head><title>Blog</title></head><body><h1>Blog</h1><p>hello world</p></body></html>",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body response.PageResponse
	decodeJSON(t, resp, &body)
	if body.Title == nil || *body.Title != "Blog" {
		t.Fatalf("title = %v", body.Title)
	}
	if len(pageRepo.pages) != before+1 {
		t.Fatalf("page not saved")
	}

	resp = postJSON(t, srv.URL+"/api/pages", map[string]any{"site_id": "site-1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing url status = %d, want 400", resp.StatusCode)
	}
}

func TestDispatchActionRoundTrip(t *testing.T) {
	srv, _, jobRepo := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/actions/export/dispatch", map[string]any{
		"page_ids": []string{"2"},
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var dispatch response.DispatchResponse
	decodeJSON(t, resp, &dispatch)
	if !dispatch.Dispatched || dispatch.JobID == "" {
		t.Fatalf("dispatch = %+v", dispatch)
	}
	if _, ok := jobRepo.jobs[dispatch.JobID]; !ok {
		t.Fatalf("job %s not persisted", dispatch.JobID)
	}

	jobResp, err := http.Get(srv.URL + "/api/jobs/" + dispatch.JobID)
	if err != nil {
		t.Fatalf("GET job: %v", err)
	}
	if jobResp.StatusCode != http.StatusOK {
		t.Fatalf("job status = %d, want 200", jobResp.StatusCode)
	}

	var job response.JobResponse
	decodeJSON(t, jobResp, &job)
	if job.Status != string(entity.JobStatusPending) || job.PageCount != 1 {
		t.Fatalf("job = %+v", job)
	}
}

func TestDispatchEmptySelection(t *testing.T) {
	srv, _, jobRepo := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/actions/export/dispatch", map[string]any{
		"page_ids": []string{},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var dispatch response.DispatchResponse
	decodeJSON(t, resp, &dispatch)
	if dispatch.Dispatched || dispatch.JobID != "" {
		t.Fatalf("dispatch = %+v, want no-op", dispatch)
	}
	if len(jobRepo.jobs) != 0 {
		t.Fatal("empty selection persisted a job")
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/actions/nope/dispatch", map[string]any{
		"page_ids": []string{"1"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/jobs/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestActionCatalogEndpoint(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/actions")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body response.ActionCatalogResponse
	decodeJSON(t, resp, &body)
	if len(body.Actions) != 3 {
		t.Fatalf("actions = %d, want 3", len(body.Actions))
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/exports/csv", map[string]any{
		"page_ids": []string{"1", "2"},
		"columns":  []string{"url", "word_count"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "url,word_count" {
		t.Fatalf("csv = %q", buf.String())
	}

	resp = postJSON(t, srv.URL+"/api/exports/csv", map[string]any{"page_ids": []string{}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty ids status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
