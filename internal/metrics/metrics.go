// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one engine instance on a private registry,
// so tests can build as many engines as they like without duplicate registration
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	CacheLookups      *prometheus.CounterVec
	SourceFallbacks   *prometheus.CounterVec
	ExtractorFailures *prometheus.CounterVec
	IntelUpdates      *prometheus.CounterVec
	CacheEvictions    *prometheus.CounterVec
	PersistenceErrors *prometheus.CounterVec
	ListSize          *prometheus.GaugeVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_analyses_total",
				Help: "Total number of computed analyses by verdict status",
			},
			[]string{"status"},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "phishguard_analysis_duration_seconds",
				Help:    "Time spent computing an analysis, cache misses only",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.15, 0.25, 0.5, 1},
			},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_cache_lookups_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		SourceFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_source_fallbacks_total",
				Help: "External source calls that fell back to a neutral value",
			},
			[]string{"source", "reason"},
		),

		ExtractorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_extractor_failures_total",
				Help: "Signal extractors that failed and contributed a neutral value",
			},
			[]string{"stage"},
		),

		IntelUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_intel_updates_total",
				Help: "Threat-intelligence refresh attempts by outcome",
			},
			[]string{"outcome"},
		),

		CacheEvictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_cache_evictions_total",
				Help: "Entries evicted by housekeeping sweeps",
			},
			[]string{"cache"},
		),

		PersistenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phishguard_persistence_errors_total",
				Help: "Failed load and save operations of the state store",
			},
			[]string{"operation"},
		),

		ListSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "phishguard_list_size",
				Help: "Current number of domains per list",
			},
			[]string{"list"},
		),
	}

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.CacheLookups,
		m.SourceFallbacks,
		m.ExtractorFailures,
		m.IntelUpdates,
		m.CacheEvictions,
		m.PersistenceErrors,
		m.ListSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry holding this instance's collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          m.registry,
	})
}
