// Package metrics exposes Prometheus collectors for calculations, history changes and HTTP traffic.
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

const namespace = "tariff"

// Metrics owns a private registry so tests and multiple servers never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	calculations       *prometheus.CounterVec
	calculationFails   *prometheus.CounterVec
	calculationSeconds prometheus.Histogram
	recordChanges      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpSeconds        *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Successful duty calculations by applied program type.",
		}, []string{"program_type"}),
		calculationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_failures_total",
			Help:      "Rejected or failed duty calculations by error kind.",
		}, []string{"kind"}),
		calculationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent resolving and pricing a duty calculation.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		recordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_record_changes_total",
			Help:      "Calculation history mutations by event.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.calculations,
		m.calculationFails,
		m.calculationSeconds,
		m.recordChanges,
		m.httpRequests,
		m.httpSeconds,
	)
	return m
}

// ObserveCalculation records a successful calculation.
func (m *Metrics) ObserveCalculation(programType string, elapsed time.Duration) {
	m.calculations.WithLabelValues(programType).Inc()
	m.calculationSeconds.Observe(elapsed.Seconds())
}

// ObserveFailure records a failed calculation; an empty kind is reported as "UNKNOWN".
func (m *Metrics) ObserveFailure(kind string) {
	if kind == "" {
		kind = "UNKNOWN"
	}
	m.calculationFails.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRecordChange(event string) {
	m.recordChanges.WithLabelValues(event).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware counts requests by matched route template, so path parameters do not explode cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpSeconds.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
