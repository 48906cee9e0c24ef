// Package metrics exposes Prometheus metrics for backend calls, the index
// catalogue cache and editor sessions.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

const namespace = "quickwit_console"

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	editorSessions  prometheus.Gauge
}

// New creates the collectors on a fresh registry, alongside the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of requests sent to the Quickwit API",
			},
			[]string{"method", "route", "status"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Quickwit API request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_errors_total",
				Help:      "Failed Quickwit API requests by error kind",
			},
			[]string{"route", "kind"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		editorSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "editor_sessions",
				Help:      "Number of live editor sessions",
			},
		),
	}
}

// ObserveRequest implements client.Observer. Transport failures carry
// status 0 and are recorded with status "error".
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration, err error) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	m.backendRequests.WithLabelValues(method, route, statusLabel).Inc()
	m.backendDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if err != nil {
		m.backendErrors.WithLabelValues(route, errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	var apiErr *client.APIError
	var netErr *client.NetworkError
	var decErr *client.DecodeError
	switch {
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &decErr):
		return "decode"
	default:
		return "other"
	}
}

// CacheHit records a cache hit.
func (m *Metrics) CacheHit(cache string) {
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss(cache string) {
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// SetEditorSessions sets the live session gauge.
func (m *Metrics) SetEditorSessions(n int) {
	m.editorSessions.Set(float64(n))
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
