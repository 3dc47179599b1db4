package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and all application collectors.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cacheOperationsTotal *prometheus.CounterVec
	cacheLookupDuration  prometheus.Histogram
	cacheWriteDuration   prometheus.Histogram
	authAttemptsTotal    *prometheus.CounterVec
	tokenRotationsTotal  prometheus.Counter
	tokensCleanedTotal   prometheus.Counter
}

// NewMetricsService builds a registry with process, Go runtime and application collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Count of HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		cacheOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache lookups partitioned by outcome.",
		}, []string{"result"}),
		cacheLookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_lookup_duration_seconds",
			Help:    "Latency of cache lookups.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		cacheWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_duration_seconds",
			Help:    "Latency of cache writes.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		authAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),
		tokenRotationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refresh_token_rotations_total",
			Help: "Number of successful refresh token rotations.",
		}),
		tokensCleanedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refresh_tokens_cleaned_total",
			Help: "Expired refresh tokens removed by the cleanup job.",
		}),
	}

	registry.MustRegister(
		s.httpRequestsTotal,
		s.httpRequestDuration,
		s.cacheOperationsTotal,
		s.cacheLookupDuration,
		s.cacheWriteDuration,
		s.authAttemptsTotal,
		s.tokenRotationsTotal,
		s.tokensCleanedTotal,
	)
	return s
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	s.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheOperation records a cache lookup and its outcome.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if s == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.cacheOperationsTotal.WithLabelValues(result).Inc()
	s.cacheLookupDuration.Observe(duration.Seconds())
}

// ObserveCacheWrite records the latency of a cache write.
func (s *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if s == nil {
		return
	}
	s.cacheWriteDuration.Observe(duration.Seconds())
}

// RecordAuthAttempt counts an authentication operation outcome.
func (s *MetricsService) RecordAuthAttempt(operation string, success bool) {
	if s == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	s.authAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordTokenRotation counts a successful refresh token rotation.
func (s *MetricsService) RecordTokenRotation() {
	if s == nil {
		return
	}
	s.tokenRotationsTotal.Inc()
}

// RecordTokensCleaned counts expired refresh tokens removed by cleanup.
func (s *MetricsService) RecordTokensCleaned(n int64) {
	if s == nil || n <= 0 {
		return
	}
	s.tokensCleanedTotal.Add(float64(n))
}
