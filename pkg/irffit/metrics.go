package irffit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the Prometheus collectors instrumenting the simulator and
// optimizers. It generalizes the teacher's single package-level
// scanDuration histogram (registered globally in a main package's init())
// into a constructible value, since this package is a library that many
// processes may import and must not force a shared global registry.
//
// A nil *Metrics disables instrumentation; every observe*/inc* method on a
// nil receiver is a no-op, so callers that do not care about metrics never
// need to branch on whether they supplied one.
type Metrics struct {
	simulateDuration prometheus.Histogram
	simulateTotal    prometheus.Counter
	deIterations     prometheus.Counter
	fitDuration      *prometheus.HistogramVec
}

// NewMetrics creates a Metrics bound to reg. Pass prometheus.DefaultRegisterer
// to register globally, as the teacher's cmd/server does, or a fresh
// prometheus.NewRegistry() to keep it process-local (e.g. for tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		simulateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "irffit_simulate_duration_seconds",
			Help: "Duration of forward simulator runs.",
		}),
		simulateTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irffit_simulate_total",
			Help: "Total number of forward simulator runs.",
		}),
		deIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irffit_de_iterations_total",
			Help: "Total number of completed Differential Evolution sweeps.",
		}),
		fitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "irffit_fit_duration_seconds",
			Help: "Duration of a fitting operation, by kind (fermi_edge, irf_estimate).",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.simulateDuration, m.simulateTotal, m.deIterations, m.fitDuration)
	return m
}

func (m *Metrics) observeSimulate(d time.Duration) {
	if m == nil {
		return
	}
	m.simulateDuration.Observe(d.Seconds())
	m.simulateTotal.Inc()
}

func (m *Metrics) incDEIteration() {
	if m == nil {
		return
	}
	m.deIterations.Inc()
}

func (m *Metrics) observeFit(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.fitDuration.WithLabelValues(kind).Observe(d.Seconds())
}
