// Package metrics exposes Prometheus instrumentation for the HTTP API and its upstream data store.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled API requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umarket_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes API latency by route template.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "umarket_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// UpstreamRequests counts calls to the REST data store by outcome
	// ("success", "client_error", "server_error", "transport_error", "rejected").
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umarket_upstream_requests_total",
			Help: "Total number of requests sent to the upstream data store",
		},
		[]string{"operation", "resource", "outcome"},
	)

	// UpstreamDuration observes upstream latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "umarket_upstream_request_duration_seconds",
			Help:    "Duration of upstream data store requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "resource"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "umarket_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CacheLookups counts Redis cache lookups by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umarket_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)

	// CacheSkippedWrites counts loaded values not cached because the entry was invalidated meanwhile.
	CacheSkippedWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "umarket_cache_skipped_writes_total",
			Help: "Total number of cache writes skipped after a concurrent invalidation",
		},
		[]string{"cache"},
	)
)

// Middleware records request count and latency for every route.
// Unmatched routes are grouped under "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
