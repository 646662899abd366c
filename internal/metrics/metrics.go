// Package metrics exposes Prometheus collectors for binding activity, fed
// through a LifecycleHooks adapter.
package metrics

import (
	"context"
	"net/http"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry so several bindings in one process don't
// trample each other's collectors.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	violations *prometheus.CounterVec
	active     prometheus.Gauge
	requests   *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the standard
// process and Go collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easel",
				Subsystem: "binding",
				Name:      "operations_total",
				Help:      "Completed lifecycle operations.",
			},
			[]string{"op", "module"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easel",
				Subsystem: "binding",
				Name:      "violations_total",
				Help:      "Rejected operations that violated lifecycle state.",
			},
			// Reason text embeds surface IDs, so only the op is a label.
			[]string{"op"},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "easel",
				Subsystem: "binding",
				Name:      "active_surfaces",
				Help:      "Surfaces currently between start and stop.",
			},
		),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "easel",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Control-plane request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}

	m.registry.MustRegister(
		m.operations,
		m.violations,
		m.active,
		m.requests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record every event into the collectors.
// Combine them with other hooks via observability.Combine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSurfaceStart: func(_ context.Context, e *domain.SurfaceEvent) {
			m.operations.WithLabelValues(domain.OpStart, e.Module).Inc()
			m.active.Inc()
		},
		OnSurfaceUpdate: func(_ context.Context, e *domain.SurfaceEvent) {
			m.operations.WithLabelValues(domain.OpSetProps, e.Module).Inc()
		},
		OnSurfaceStop: func(_ context.Context, e *domain.SurfaceEvent) {
			m.operations.WithLabelValues(domain.OpStop, e.Module).Inc()
			m.active.Dec()
		},
		OnViolation: func(_ context.Context, e *domain.SurfaceEvent) {
			m.violations.WithLabelValues(e.Op).Inc()
		},
	}
}
