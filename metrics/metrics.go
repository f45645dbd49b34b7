// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route template, method and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famfit_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPLatency observes request durations in seconds.
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "famfit_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// AIFallbacks counts gateway calls answered with static content.
	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famfit_ai_fallbacks_total",
			Help: "Recommendation gateway calls served from fallback content",
		},
		[]string{"operation"},
	)

	// AICacheHits counts recommendation responses served from the cache.
	AICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famfit_ai_cache_hits_total",
			Help: "Recommendation responses served from cache",
		},
		[]string{"operation"},
	)
)
