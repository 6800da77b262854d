package service

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
		atomic.AddUint64(&s.cacheHitCount, 1)
	} else {
		s.cacheMisses.Inc()
		atomic.AddUint64(&s.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&s.cacheHitCount)
	total := hits + atomic.LoadUint64(&s.cacheMissCount)
	if total > 0 {
		s.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite records a cache set latency.
func (s *MetricsService) ObserveCacheWrite(duration time.Duration) {
	s.cacheWrite.Observe(duration.Seconds())
}
