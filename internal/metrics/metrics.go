package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smartcoach",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcoach",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartcoach",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	payloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcoach",
			Subsystem: "energy",
			Name:      "payloads_total",
			Help:      "Energy payloads computed, by status.",
		},
		[]string{"status"},
	)

	payloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smartcoach",
			Subsystem: "energy",
			Name:      "payload_duration_seconds",
			Help:      "Time spent loading entries and building a payload.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	estimatedTDEE = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "smartcoach",
			Subsystem: "energy",
			Name:      "estimated_tdee_kcal",
			Help:      "Distribution of estimated TDEE values.",
			Buckets:   prometheus.LinearBuckets(1000, 250, 21), // 1000 to 6000 kcal
		},
	)

	entryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcoach",
			Subsystem: "entries",
			Name:      "writes_total",
			Help:      "Day entry writes, by operation.",
		},
		[]string{"op"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smartcoach",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		payloads,
		payloadDuration,
		estimatedTDEE,
		entryWrites,
		rateLimited,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordPayload records a computed payload. tdee is ignored when zero.
func RecordPayload(status string, tdee float64, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	payloads.WithLabelValues(status).Inc()
	payloadDuration.Observe(duration.Seconds())
	if tdee > 0 {
		estimatedTDEE.Observe(tdee)
	}
}

func RecordEntryWrite(op string) {
	entryWrites.WithLabelValues(op).Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}
