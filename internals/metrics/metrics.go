package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the housing service collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dormitory",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dormitory",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "applications",
			Name:      "status_transitions_total",
			Help:      "Application status changes, by source and target status.",
		},
		[]string{"from", "to"},
	)

	roomAllocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "rooms",
			Name:      "allocations_total",
			Help:      "Seats taken in rooms, by operation.",
		},
		[]string{"source"},
	)

	roomReleases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "rooms",
			Name:      "releases_total",
			Help:      "Seats freed in rooms, by operation.",
		},
		[]string{"source"},
	)

	autoProcessRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "auto_process",
			Name:      "runs_total",
			Help:      "Automatic processing passes, by trigger and result.",
		},
		[]string{"trigger", "success"},
	)

	autoProcessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dormitory",
			Subsystem: "auto_process",
			Name:      "run_duration_seconds",
			Help:      "Duration of automatic processing passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"trigger"},
	)

	autoProcessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dormitory",
			Subsystem: "auto_process",
			Name:      "decisions_total",
			Help:      "Outcomes decided by automatic processing.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		statusTransitions,
		roomAllocations,
		roomReleases,
		autoProcessRuns,
		autoProcessDuration,
		autoProcessDecisions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			path = r.Path
		}
		method := strings.ToUpper(c.Method())

		httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordTransition counts a committed status change. No-op when unchanged.
func RecordTransition(from, to string) {
	if from == to {
		return
	}
	statusTransitions.WithLabelValues(from, to).Inc()
}

func RecordAllocation(source string) { roomAllocations.WithLabelValues(source).Inc() }

func RecordRelease(source string) { roomReleases.WithLabelValues(source).Inc() }

// RecordAutoProcess records one batch pass and, on success, its outcome counts.
func RecordAutoProcess(trigger string, duration time.Duration, allocated, approved, rejected int, success bool) {
	if trigger == "" {
		trigger = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	result := "false"
	if success {
		result = "true"
	}
	autoProcessRuns.WithLabelValues(trigger, result).Inc()
	autoProcessDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if !success {
		return
	}
	autoProcessDecisions.WithLabelValues("allocated").Add(float64(allocated))
	autoProcessDecisions.WithLabelValues("approved").Add(float64(approved))
	autoProcessDecisions.WithLabelValues("rejected").Add(float64(rejected))
}
