package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lapwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	// Lap detection metrics
	ReportsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "positions",
		Name:      "received_total",
		Help:      "Total position envelopes received from the transport",
	})

	ReportsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "positions",
		Name:      "malformed_total",
		Help:      "Position envelopes that could not be decoded",
	})

	ReportsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "positions",
		Name:      "dropped_total",
		Help:      "Position reports that never reached the detector",
	}, []string{"reason"})

	SamplesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "samples_total",
		Help:      "Distance samples applied to the lap detector",
	})

	SamplesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "samples_rejected_total",
		Help:      "Distance samples that were not finite non-negative numbers",
	})

	LastDistance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "distance_meters",
		Help:      "Last planar distance from the reference point",
	})

	ReferenceCaptured = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "reference_captured",
		Help:      "1 once the reference point has been captured",
	})

	Zone = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "zone",
		Help:      "Current start-zone state (0 inside, 1 outside)",
	})

	LapCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "count",
		Help:      "Laps completed since start",
	})

	LapsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "laps",
		Name:      "completed_total",
		Help:      "Total lap completed events",
	})

	ActionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lapwatch",
		Subsystem: "actions",
		Name:      "dispatched_total",
		Help:      "Action requests handed to the dispatcher",
	}, []string{"result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lapwatch",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
