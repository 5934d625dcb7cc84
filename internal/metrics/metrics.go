package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settlecraft"

// Outcome labels for the conversions counter.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	conversions *prometheus.CounterVec
	buildings   *prometheus.CounterVec
	npcs        prometheus.Counter
	warnings    *prometheus.CounterVec
	published   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Documents converted, by outcome.",
		}, []string{"outcome"}),
		buildings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buildings_extracted_total",
			Help:      "Buildings in converted settlements, by kind.",
		}, []string{"kind"}),
		npcs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "npcs_extracted_total",
			Help:      "NPCs in converted settlements.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_warnings_total",
			Help:      "Non-fatal conversion anomalies, by code.",
		}, []string{"code"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_published_total",
			Help:      "Settlements written to the store.",
		}),
	}
	m.registry.MustRegister(
		m.conversions,
		m.buildings,
		m.npcs,
		m.warnings,
		m.published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Conversion(outcome string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Building(kind string) {
	if m == nil {
		return
	}
	m.buildings.WithLabelValues(kind).Inc()
}

func (m *Metrics) Npcs(n int) {
	if m == nil {
		return
	}
	m.npcs.Add(float64(n))
}

func (m *Metrics) Warning(code string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(code).Inc()
}

func (m *Metrics) Published() {
	if m == nil {
		return
	}
	m.published.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

