package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/pagetable-service/internal/delivery/http/handler"
	"github.com/user/pagetable-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)

	mux.HandleFunc("GET /api/filters", h.HandleFilterCatalog)
	mux.HandleFunc("POST /api/pages", h.HandleIngestPage)
	mux.HandleFunc("POST /api/pages/query", h.HandleQueryPages)

	mux.HandleFunc("GET /api/actions", h.HandleActionCatalog)
	mux.HandleFunc("POST /api/actions/{id}/dispatch", h.HandleDispatchAction)
	mux.HandleFunc("GET /api/jobs/{id}", h.HandleGetJob)

	mux.HandleFunc("POST /api/exports/csv", h.HandleExportCSV)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
