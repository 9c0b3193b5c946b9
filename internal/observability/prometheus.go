package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements SimulationMetrics on top of a Prometheus
// registry for scraped deployments.
type PrometheusMetrics struct {
	stepDuration prometheus.Histogram
	divisions    prometheus.Counter
	removals     prometheus.Counter
	phaseChanges prometheus.Counter
	population   prometheus.Gauge
}

// NewPrometheusMetrics constructs a recorder and registers its collectors
// with reg. Registration failures are programming errors (duplicate
// registration) and panic, matching prometheus.MustRegister semantics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phenosim",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of one engine step over all cells.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		divisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phenosim",
			Name:      "cell_divisions_total",
			Help:      "Cells that divided.",
		}),
		removals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phenosim",
			Name:      "cell_removals_total",
			Help:      "Cells removed from the simulation.",
		}),
		phaseChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phenosim",
			Name:      "phase_changes_total",
			Help:      "Phase transitions across all cells, including moves to quiescence.",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "phenosim",
			Name:      "population",
			Help:      "Live cell count.",
		}),
	}
	reg.MustRegister(m.stepDuration, m.divisions, m.removals, m.phaseChanges, m.population)
	return m
}

func (m *PrometheusMetrics) ObserveStep(duration time.Duration) {
	m.stepDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) AddDivisions(n int) { m.divisions.Add(float64(n)) }

func (m *PrometheusMetrics) AddRemovals(n int) { m.removals.Add(float64(n)) }

func (m *PrometheusMetrics) AddPhaseChanges(n int) { m.phaseChanges.Add(float64(n)) }

func (m *PrometheusMetrics) SetPopulation(n int) { m.population.Set(float64(n)) }
