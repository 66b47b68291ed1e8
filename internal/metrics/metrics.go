// Package metrics counts conversions and dropped fields with Prometheus
// collectors on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "sbomconv"

// ResultOK is the result label of a successful conversion. Failures are
// labelled with their error kind.
const ResultOK = "ok"

// Metrics holds the conversion collectors. A nil *Metrics is valid and
// records nothing, so callers never need to check whether metrics are on.
type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	dropped     *prometheus.CounterVec
}

// Config configures New.
type Config struct {
	// Namespace prefixes metric names; empty means DefaultNamespace.
	Namespace string

	// RuntimeMetrics adds the Go runtime and process collectors.
	RuntimeMetrics bool
}

// New registers the conversion collectors on a fresh registry.
func New(cfg Config) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "conversions_total",
			Help:      "Conversions by source format, target format and result.",
		}, []string{"source", "target", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "conversion_duration_seconds",
			Help:      "Wall time of one conversion.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"source", "target"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "dropped_fields_total",
			Help:      "Fields left behind because a format cannot carry them.",
		}, []string{"format", "field"}),
	}
	m.registry.MustRegister(m.conversions, m.duration, m.dropped)
	if cfg.RuntimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the registry for callers that serve or push it.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveConversion records one finished conversion.
func (m *Metrics) ObserveConversion(source, target string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = sbom.KindOf(err).String()
	}
	m.conversions.WithLabelValues(source, target, result).Inc()
	m.duration.WithLabelValues(source, target).Observe(elapsed.Seconds())
}

// ObserveDrop counts one diagnostic.
func (m *Metrics) ObserveDrop(d normalize.Diagnostic) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(string(d.Format), string(d.Field)).Inc()
}

// WriteTextfile writes every metric in the text exposition format to path,
// atomically, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
