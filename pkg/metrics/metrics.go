package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// --- HTTP ---

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelab_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinelab_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// --- Outbox ---

	// OutboxPublishedTotal cuenta eventos del outbox por topic y resultado (published|failed).
	OutboxPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelab_outbox_events_total",
			Help: "Outbox events relayed by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// --- Analytics ---

	ActivityRowsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinelab_activity_rows_flushed_total",
			Help: "Movie activity rows written to the analytics store",
		},
	)
)

const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
)

// GinMiddleware mide cada petición con la ruta registrada (no la URL cruda).
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler expone el registro por defecto en formato Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
