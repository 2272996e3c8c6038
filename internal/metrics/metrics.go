package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_model_calls_total",
			Help: "Total number of model API calls by provider, operation and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranker_model_call_duration_seconds",
			Help:    "Duration of model API calls including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider", "operation"},
	)

	ModelCallRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_model_call_retries_total",
			Help: "Total number of retried model API attempts",
		},
		[]string{"provider", "operation"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranker_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	DocumentsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_documents_loaded_total",
			Help: "Total number of uploaded documents converted to text",
		},
		[]string{"format", "outcome"},
	)

	ResumesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_resumes_processed_total",
			Help: "Total number of resumes scored or reviewed",
		},
		[]string{"operation", "outcome"},
	)

	WorkerJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranker_worker_jobs_active",
			Help: "Number of jobs currently running in the worker pool",
		},
	)

	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranker_worker_queue_depth",
			Help: "Number of jobs waiting in the worker pool queue",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranker_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
