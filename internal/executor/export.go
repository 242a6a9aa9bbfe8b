// Package executor contains the concrete bulk action executors run by the
// worker: CSV export, CMS publish and prompt template runs.
package executor

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/user/pagetable-service/internal/entity"
	"github.com/user/pagetable-service/internal/repository"
)

// csvColumns maps every exportable column to its string rendering. The derived
// audit columns mirror what the dashboard table shows as issue badges.
var csvColumns = map[string]func(p *entity.Page) string{
	"url":                 func(p *entity.Page) string { return p.URL },
	"site_id":             func(p *entity.Page) string { return p.SiteID },
	"status_code":         func(p *entity.Page) string { return intPtrString(p.StatusCode) },
	"title":               func(p *entity.Page) string { return strPtrString(p.Title) },
	"title_length":        func(p *entity.Page) string { return strconv.Itoa(p.TitleLength()) },
	"description":         func(p *entity.Page) string { return strPtrString(p.Description) },
	"description_length":  func(p *entity.Page) string { return strconv.Itoa(p.DescriptionLength()) },
	"h1":                  func(p *entity.Page) string { return strPtrString(p.H1) },
	"h2_tags":             func(p *entity.Page) string { return jsonString(p.H2) },
	"word_count":          func(p *entity.Page) string { return strconv.Itoa(p.WordCount) },
	"canonical":           func(p *entity.Page) string { return strPtrString(p.Canonical) },
	"meta_robots":         func(p *entity.Page) string { return strPtrString(p.MetaRobots) },
	"last_crawled":        func(p *entity.Page) string { return p.LastCrawledAt.Format(time.RFC3339) },
	"missing_title":       func(p *entity.Page) string { return strconv.FormatBool(p.MissingTitle()) },
	"missing_description": func(p *entity.Page) string { return strconv.FormatBool(p.MissingDescription()) },
	"missing_h1":          func(p *entity.Page) string { return strconv.FormatBool(p.MissingH1()) },
	"thin_content":        func(p *entity.Page) string { return strconv.FormatBool(p.WordCount < 300) },
	"has_error": func(p *entity.Page) string {
		return strconv.FormatBool(p.StatusCode != nil && *p.StatusCode >= 400)
	},
}

// WriteCSV writes the given pages as CSV with the requested columns. Unknown
// column names are skipped; an empty request falls back to a default set.
func WriteCSV(w io.Writer, pages []*entity.Page, columns []string) error {
	if len(columns) == 0 {
		columns = []string{"url", "title", "description", "h1", "word_count", "status_code"}
	}

	var header []string
	var renderers []func(p *entity.Page) string
	for _, col := range columns {
		render, ok := csvColumns[col]
		if !ok {
			slog.Warn("Skipping unknown export column", "column", col)
			continue
		}
		header = append(header, col)
		renderers = append(renderers, render)
	}
	if len(header) == 0 {
		return fmt.Errorf("no valid export columns requested")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(renderers))
	for _, p := range pages {
		for i, render := range renderers {
			record[i] = render(p)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportExecutor writes the selected pages to a CSV file in the export directory.
type ExportExecutor struct {
	pageRepo  repository.PageRepository
	exportDir string
}

func NewExportExecutor(pageRepo repository.PageRepository, exportDir string) *ExportExecutor {
	return &ExportExecutor{pageRepo: pageRepo, exportDir: exportDir}
}

func (e *ExportExecutor) Execute(ctx context.Context, job *entity.ActionJob) error {
	pages, err := e.pageRepo.FindByIDs(ctx, job.PageIDs)
	if err != nil {
		return fmt.Errorf("failed to load pages for export: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found for export")
	}

	if err := os.MkdirAll(e.exportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("seo_export_%s_%s.csv", time.Now().Format("20060102_150405"), shortID(job.ID))
	path := filepath.Join(e.exportDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, pages, stringSlice(job.Params["columns"])); err != nil {
		return fmt.Errorf("failed to write export CSV: %w", err)
	}

	slog.Info("Export written", "job_id", job.ID, "file", path, "row_count", len(pages))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// stringSlice converts a JSON-decoded params value into []string.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func strPtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtrString(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func jsonString(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
