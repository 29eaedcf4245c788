package mockserver

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskboard_mock",
			Name:      "requests_total",
			Help:      "Requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskboard_mock",
			Name:      "request_duration_seconds",
			Help:      "Request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taskboard_mock",
			Name:      "records",
			Help:      "Records currently stored per collection.",
		}, []string{"collection"}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.records)
	return m
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *metrics) observeCollections(db *DB) {
	m.records.WithLabelValues("projects").Set(float64(len(db.Projects())))
	m.records.WithLabelValues("tasks").Set(float64(len(db.Tasks(""))))
}

// instrument records every request in the registry and writes one log line
// per request.
func (m *metrics) instrument(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(c.Request().Method, route).Observe(elapsed.Seconds())

			fields := log.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"route":      route,
				"status":     status,
				"latency_ms": float64(elapsed) / float64(time.Millisecond),
			}
			if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			logger.WithFields(fields).Debug("mock.request")
			return nil
		}
	}
}
