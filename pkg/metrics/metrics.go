package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var initOnce sync.Once

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobsInQueue         prometheus.Gauge
	ActionsDispatched   *prometheus.CounterVec
	ActionJobsTotal     *prometheus.CounterVec
	ActionJobDuration   *prometheus.HistogramVec
	FiltersRejected     *prometheus.CounterVec
	PagesIngested       prometheus.Counter
)

// Init registers all collectors. Safe to call more than once; registration
// happens a single time per process.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JobsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "action_jobs_in_queue",
			Help: "Current number of dispatched bulk action jobs awaiting a worker.",
		},
	)

	ActionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_actions_dispatched_total",
			Help: "Total number of bulk action dispatches.",
		},
		[]string{"action"},
	)

	ActionJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_jobs_total",
			Help: "Total number of processed bulk action jobs.",
		},
		[]string{"status", "kind"}, // status: completed, failed
	)

	ActionJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "action_job_duration_seconds",
			Help:    "Duration of bulk action job execution.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	FiltersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filters_rejected_total",
			Help: "Total number of filter values rejected at add time.",
		},
		[]string{"reason"},
	)

	PagesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pages_ingested_total",
			Help: "Total number of crawled pages ingested.",
		},
	)
}
