package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for BlogOperations and AccountOperations.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurnal_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jurnal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	BlogOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurnal_blog_operations_total",
			Help: "Blog service operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	AccountOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurnal_account_operations_total",
			Help: "Account service operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurnal_events_published_total",
			Help: "Blog events handed to the broker by event type and outcome",
		},
		[]string{"event", "outcome"},
	)
)

// Handler returns a middleware recording request count and latency per route.
func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		HTTPLatency.WithLabelValues(path, c.Method()).Observe(time.Since(start).Seconds())
		HTTPRequests.WithLabelValues(path, c.Method(), strconv.Itoa(status)).Inc()
		return err
	}
}

// Exposer serves the Prometheus exposition format.
func Exposer() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
