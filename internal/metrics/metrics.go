// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the runtime and HTTP layer report to.
type Metrics struct {
	MessagesTotal  *prometheus.CounterVec
	NodeExecutions *prometheus.CounterVec
	NodeDuration   *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics set registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(reg)
	return &Metrics{
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cauce",
			Name:      "messages_total",
			Help:      "Inbound messages processed, by outcome.",
		}, []string{"outcome"}),
		NodeExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cauce",
			Name:      "node_executions_total",
			Help:      "Node executions, by node type and outcome.",
		}, []string{"type", "outcome"}),
		NodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cauce",
			Name:      "node_duration_seconds",
			Help:      "Node execution latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "cauce",
			Name:      "active_sessions",
			Help:      "Sessions currently mid-flow.",
		}),
		registry: reg,
	}
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
