// Package metrics owns the Prometheus registry for agent and deployment
// activity. Recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agent_market"

// Metrics holds the service collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	AgentsSaved         *prometheus.CounterVec
	DeploymentsStarted  *prometheus.CounterVec
	DeploymentsFinished *prometheus.CounterVec
	PipelineDuration    *prometheus.HistogramVec
	ActivePipelines     prometheus.Gauge
}

// New creates a registry with Go runtime collectors and the service metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AgentsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "agents",
				Name:      "saved_total",
				Help:      "Agent writes by resulting status and whether the write created the record",
			},
			[]string{"status", "created"},
		),

		DeploymentsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "deployments",
				Name:      "started_total",
				Help:      "Deployments accepted per environment",
			},
			[]string{"environment"},
		),

		DeploymentsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "deployments",
				Name:      "finished_total",
				Help:      "Deployments reaching a terminal status",
			},
			[]string{"environment", "status"},
		),

		PipelineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "deployments",
				Name:      "pipeline_duration_seconds",
				Help:      "Wall time from acceptance to terminal status",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),

		ActivePipelines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "deployments",
				Name:      "active_pipelines",
				Help:      "Deployment pipelines currently running",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AgentsSaved,
		m.DeploymentsStarted,
		m.DeploymentsFinished,
		m.PipelineDuration,
		m.ActivePipelines,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) AgentSaved(status string, created bool) {
	if m == nil {
		return
	}
	label := "false"
	if created {
		label = "true"
	}
	m.AgentsSaved.WithLabelValues(status, label).Inc()
}

func (m *Metrics) DeploymentStarted(environment string) {
	if m == nil {
		return
	}
	m.DeploymentsStarted.WithLabelValues(environment).Inc()
	m.ActivePipelines.Inc()
}

func (m *Metrics) DeploymentFinished(environment, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DeploymentsFinished.WithLabelValues(environment, status).Inc()
	m.PipelineDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	m.ActivePipelines.Dec()
}
