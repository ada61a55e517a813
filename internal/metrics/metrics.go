// Package metrics provides Prometheus instrumentation for the Rentora API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentora",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentora",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// WebhookEventsTotal counts inbound payment webhook events by type and result.
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentora",
			Name:      "webhook_events_total",
			Help:      "Inbound payment webhook events by event type and processing result.",
		},
		[]string{"event", "result"},
	)

	// UnlocksTotal counts contact unlocks by outcome.
	UnlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentora",
			Name:      "unlocks_total",
			Help:      "Contact unlock attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// InspectionsRequestedTotal counts inspection bookings.
	InspectionsRequestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentora",
			Name:      "inspections_requested_total",
			Help:      "Total inspection bookings initiated.",
		},
	)

	// TokensCreditedTotal counts wallet tokens credited via reconciliation.
	TokensCreditedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentora",
			Name:      "tokens_credited_total",
			Help:      "Total wallet tokens credited by confirmed purchases.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WebhookEventsTotal,
		UnlocksTotal,
		InspectionsRequestedTotal,
		TokensCreditedTotal,
	)
}

// Middleware records request counts and latency for every route.
// Uses the route pattern (c.FullPath) rather than the raw URL to keep
// label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
