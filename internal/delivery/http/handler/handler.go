package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/pagetable-service/internal/delivery/http/request"
	"github.com/user/pagetable-service/internal/delivery/http/response"
	"github.com/user/pagetable-service/internal/executor"
	"github.com/user/pagetable-service/internal/filter"
	"github.com/user/pagetable-service/internal/repository"
	"github.com/user/pagetable-service/internal/usecase"
)

type Handler struct {
	pageQuery  usecase.PageQuery
	pageIngest usecase.PageIngest
	dispatcher usecase.Dispatcher
	jobRepo    repository.ActionJobRepository
	pageRepo   repository.PageRepository
}

func NewHandler(
	pageQuery usecase.PageQuery,
	pageIngest usecase.PageIngest,
	dispatcher usecase.Dispatcher,
	jobRepo repository.ActionJobRepository,
	pageRepo repository.PageRepository,
) *Handler {
	return &Handler{
		pageQuery:  pageQuery,
		pageIngest: pageIngest,
		dispatcher: dispatcher,
		jobRepo:    jobRepo,
		pageRepo:   pageRepo,
	}
}

// HandleFilterCatalog returns the filter definitions driving the add-filter UI.
func (h *Handler) HandleFilterCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.FilterCatalogResponse{
		Filters: h.pageQuery.Catalog(),
	})
}

// HandleQueryPages lists a site's pages with the requested filters applied.
// A single invalid filter rejects the request; nothing is applied.
func (h *Handler) HandleQueryPages(w http.ResponseWriter, r *http.Request) {
	var req request.QueryPagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.pageQuery.Query(r.Context(), usecase.QueryInput{
		SiteID:  req.SiteID,
		Filters: req.Filters,
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		if isFilterError(err) || errors.Is(err, usecase.ErrMissingSiteID) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to query pages", "site_id", req.SiteID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.PageListResponse{
		Pages:          make([]response.PageResponse, 0, len(result.Pages)),
		AppliedFilters: result.Applied,
		Total:          result.Total,
		Page:           result.Page,
		PerPage:        result.PerPage,
		TotalPages:     result.TotalPages,
	}
	for _, p := range result.Pages {
		resp.Pages = append(resp.Pages, response.FromPage(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleIngestPage accepts one crawled page from the external crawler.
func (h *Handler) HandleIngestPage(w http.ResponseWriter, r *http.Request) {
	var req request.IngestPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in := usecase.IngestInput{
		SiteID:     req.SiteID,
		URL:        req.URL,
		StatusCode: req.StatusCode,
		HTML:       req.HTML,
	}
	if req.CrawledAt != nil {
		in.CrawledAt = *req.CrawledAt
	}

	page, err := h.pageIngest.Ingest(r.Context(), in)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingSiteID) || errors.Is(err, usecase.ErrMissingPageURL) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to ingest page", "url", req.URL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, response.FromPage(page))
}

// HandleActionCatalog returns the static bulk action catalog.
func (h *Handler) HandleActionCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := h.dispatcher.Catalog()
	resp := response.ActionCatalogResponse{
		Actions: make([]response.ActionResponse, 0, len(catalog)),
	}
	for _, a := range catalog {
		resp.Actions = append(resp.Actions, response.ActionResponse{
			ID:            a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Kind:          string(a.Kind),
			DefaultParams: a.DefaultParams,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleDispatchAction dispatches a bulk action over the submitted selection.
// An empty selection responds 200 with dispatched=false and no job.
func (h *Handler) HandleDispatchAction(w http.ResponseWriter, r *http.Request) {
	actionID := r.PathValue("id")

	var req request.DispatchActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, dispatched, err := h.dispatcher.Execute(r.Context(), actionID, req.PageIDs, req.Params)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownAction) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("Failed to dispatch action", "action", actionID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !dispatched {
		h.writeJSON(w, http.StatusOK, response.DispatchResponse{
			Dispatched: false,
			Message:    "Empty selection, nothing dispatched",
		})
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.DispatchResponse{
		Dispatched: true,
		JobID:      jobID,
	})
}

// HandleGetJob reports the lifecycle state of a dispatched job.
func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.jobRepo.FindByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "Job not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load job", "job_id", jobID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.JobResponse{
		ID:           job.ID,
		ActionID:     job.ActionID,
		Kind:         string(job.Kind),
		Status:       string(job.Status),
		PageCount:    len(job.PageIDs),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	})
}

// HandleExportCSV streams a CSV of the requested pages, synchronously.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req request.ExportCSVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.PageIDs) == 0 {
		h.writeJSONError(w, "page_ids is required", http.StatusBadRequest)
		return
	}

	pages, err := h.pageRepo.FindByIDs(r.Context(), req.PageIDs)
	if err != nil {
		slog.Error("Failed to load pages for export", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(pages) == 0 {
		h.writeJSONError(w, "No pages found for export", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("seo_export_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := executor.WriteCSV(w, pages, req.Columns); err != nil {
		slog.Error("Failed to write export CSV", "error", err)
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isFilterError(err error) bool {
	return errors.Is(err, filter.ErrUnknownField) ||
		errors.Is(err, filter.ErrOperatorNotAllowed) ||
		errors.Is(err, filter.ErrMissingValue) ||
		errors.Is(err, filter.ErrInvalidValue)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
