// Package metrics exposes Prometheus collectors for the poster engine.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	posterFetchesTotal         *prometheus.CounterVec
	posterJobsTotal            *prometheus.CounterVec
	posterAttemptsTotal        prometheus.Counter
	posterQueueDepth           prometheus.Gauge
	matchCacheHitsTotal        *prometheus.CounterVec
	providerRequestsTotal      *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		posterFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posterd_fetches_total",
				Help: "Poster fetches, labeled by branch and HTTP-equivalent status.",
			},
			[]string{"branch", "status"},
		)

		posterJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posterd_jobs_total",
				Help: "Queued poster jobs processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		posterAttemptsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "posterd_attempts_total",
				Help: "Total worker attempts across all jobs.",
			},
		)

		posterQueueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "posterd_queue_depth",
				Help: "Jobs waiting in the poster queue.",
			},
		)

		matchCacheHitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posterd_match_cache_hits_total",
				Help: "Poster reuse hits, labeled by kind (fingerprint, title_key, same_title, tvmaze_refetch).",
			},
			[]string{"kind"},
		)

		providerRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posterd_provider_requests_total",
				Help: "Provider lookups, labeled by provider and result.",
			},
			[]string{"provider", "result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFetch counts one FetchPoster outcome.
func ObserveFetch(branch string, status int) {
	Init()
	posterFetchesTotal.WithLabelValues(branch, strconv.Itoa(status)).Inc()
}

// ObserveJob counts a finished queued job.
func ObserveJob(outcome string) {
	Init()
	posterJobsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAttempt counts one worker attempt.
func ObserveAttempt() {
	Init()
	posterAttemptsTotal.Inc()
}

// SetQueueDepth records the current number of pending jobs.
func SetQueueDepth(n int) {
	Init()
	posterQueueDepth.Set(float64(n))
}

// ObserveCacheHit counts a reuse that avoided a provider search.
func ObserveCacheHit(kind string) {
	Init()
	matchCacheHitsTotal.WithLabelValues(kind).Inc()
}

// ObserveProvider counts a provider lookup. result is "match", "miss" or "error".
func ObserveProvider(provider, result string) {
	Init()
	providerRequestsTotal.WithLabelValues(provider, result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
