// Package metrics exposes Prometheus collectors for activation code checks,
// imports and bookings.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics groups the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	checks   *prometheus.CounterVec   // activation_code_checks_total{kind}
	rows     prometheus.Histogram     // activation_code_check_rows
	imports  *prometheus.CounterVec   // activation_code_imports_total{outcome}
	codes    prometheus.Counter       // activation_codes_imported_total
	bookings *prometheus.CounterVec   // activation_code_bookings_total{outcome}
	duration *prometheus.HistogramVec // activation_code_operation_seconds{operation}
}

// New registers the collectors plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activation_code_checks_total",
			Help: "Activation code file checks by result kind (ok or the failed check).",
		}, []string{"kind"}),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activation_code_check_rows",
			Help:    "Number of codes in files that passed the check.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activation_code_imports_total",
			Help: "Activation code imports into stocks by outcome.",
		}, []string{"outcome"}),
		codes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activation_codes_imported_total",
			Help: "Activation codes stored across all imports and stock creations.",
		}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activation_code_bookings_total",
			Help: "Bookings that requested an activation code, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "activation_code_operation_seconds",
			Help:    "Duration of service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.checks, m.rows, m.imports, m.codes, m.bookings, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveCheck records one file check. kind is OutcomeOK or the failed
// check's identifier.
func (m *Metrics) ObserveCheck(kind string, rows int) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(kind).Inc()
	if kind == OutcomeOK {
		m.rows.Observe(float64(rows))
	}
}

// ObserveImport records an import attempt and the codes it stored.
func (m *Metrics) ObserveImport(outcome string, stored int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
	if stored > 0 {
		m.codes.Add(float64(stored))
	}
}

// AddCodes records codes stored outside an import (stock creation).
func (m *Metrics) AddCodes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.codes.Add(float64(n))
}

// ObserveBooking records a booking attempt.
func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

// ObserveDuration records how long operation took, in seconds.
func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(seconds)
}
