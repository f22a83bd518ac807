// Package metrics holds Prometheus metrics for the agentstep worker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all worker metrics and their registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	RunTokens     *prometheus.CounterVec
	RunToolCalls  prometheus.Counter
	RunsInFlight  prometheus.Gauge
	StartRequests *prometheus.CounterVec
}

// New creates and registers all worker metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentstep_runs_total",
			Help: "Total number of agent runs by status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentstep_run_duration_seconds",
			Help:    "Wall-clock duration of agent runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"agent"}),
		RunTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentstep_run_tokens_total",
			Help: "Tokens consumed by agent runs, by direction.",
		}, []string{"direction"}),
		RunToolCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentstep_run_tool_calls_total",
			Help: "Tool calls executed across all agent runs.",
		}),
		RunsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "agentstep_runs_in_flight",
			Help: "Agent runs currently executing on this worker.",
		}),
		StartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentstep_start_requests_total",
			Help: "HTTP requests to start an agent run, by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		m.RunsTotal,
		m.RunDuration,
		m.RunTokens,
		m.RunToolCalls,
		m.RunsInFlight,
		m.StartRequests,
	)

	return m
}

// Registerer exposes the registry for additional collectors, such as the
// step-level instrumentation in pkg/step.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
