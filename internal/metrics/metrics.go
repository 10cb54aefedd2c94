// Package metrics owns the Prometheus registry for the API and the collectors
// recorded by the HTTP middleware and the trip services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a dedicated registry plus the collectors registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTPRequests counts requests by method, route pattern, and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration records request durations in seconds.
	HTTPDuration *prometheus.HistogramVec

	// Evaluations counts eligibility evaluations by outcome
	// (clear, warnings, blocked).
	Evaluations *prometheus.CounterVec
	// Submissions counts trip submissions by outcome (accepted or the
	// rejection kind).
	Submissions *prometheus.CounterVec
	// TripTransitions counts trip lifecycle transitions by target state.
	TripTransitions *prometheus.CounterVec
	// RequirementReloads counts requirement table reloads by result.
	RequirementReloads *prometheus.CounterVec
}

// New builds a Metrics with every collector registered, along with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path", "status"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ruta_trip_evaluations_total", Help: "Trip eligibility evaluations by outcome."},
			[]string{"outcome"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ruta_trip_submissions_total", Help: "Trip submissions by outcome."},
			[]string{"outcome"},
		),
		TripTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ruta_trip_transitions_total", Help: "Trip state transitions by target state."},
			[]string{"state"},
		),
		RequirementReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "ruta_requirement_reloads_total", Help: "Requirement table reloads by result."},
			[]string{"result"},
		),
	}
	m.Registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.Evaluations,
		m.Submissions,
		m.TripTransitions,
		m.RequirementReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Evaluation records one eligibility evaluation outcome.
func (m *Metrics) Evaluation(outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(outcome).Inc()
}

// Submission records one trip submission outcome.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// Transition records a trip moving to state.
func (m *Metrics) Transition(state string) {
	if m == nil {
		return
	}
	m.TripTransitions.WithLabelValues(state).Inc()
}

// Reload records a requirement table reload attempt.
func (m *Metrics) Reload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.RequirementReloads.WithLabelValues(result).Inc()
}
