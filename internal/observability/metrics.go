package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters exposed on /metrics.
type Metrics struct {
	AssessmentsCalculated *prometheus.CounterVec
	ScansRun              prometheus.Counter
	ChecksDegraded        *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers the application counters on a fresh registry so
// tests can create instances without double-registration panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		AssessmentsCalculated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tilt_assessments_calculated_total",
			Help: "Risk assessments calculated, by assessment type.",
		}, []string{"type"}),
		ScansRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "tilt_osint_scans_total",
			Help: "OSINT scans run against vendors.",
		}),
		ChecksDegraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tilt_osint_checks_degraded_total",
			Help: "OSINT checks that fell back to a safe default, by check.",
		}, []string{"check"}),
		registry: reg,
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
