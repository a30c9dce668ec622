package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidewriter_iwls_api_calls_total",
			Help: "Total IWLS API calls by response status",
		},
		[]string{"status"},
	)

	APICallLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tidewriter_iwls_api_latency_seconds",
			Help:    "IWLS API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	APICacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tidewriter_iwls_cache_hits_total",
			Help: "IWLS API responses served from the local cache",
		},
	)

	GenerationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidewriter_generation_runs_total",
			Help: "Product generation runs by outcome",
		},
		[]string{"product", "outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tidewriter_generation_duration_seconds",
			Help:    "Wall time of product generation runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tidewriter_http_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"route", "status"},
	)
)
