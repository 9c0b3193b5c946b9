// Package observability provides pluggable metrics and step tracing for
// simulation runs: an expvar recorder for process-local inspection, a
// Prometheus recorder for scraped deployments, and a JSON line tracer for
// offline analysis of run series.
package observability

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// SimulationMetrics receives the signals a simulation run emits. All
// implementations must be safe for concurrent use.
type SimulationMetrics interface {
	// ObserveStep records the wall-clock cost of one engine step.
	ObserveStep(duration time.Duration)
	// AddDivisions, AddRemovals and AddPhaseChanges accumulate cell events.
	AddDivisions(n int)
	AddRemovals(n int)
	AddPhaseChanges(n int)
	// SetPopulation tracks the live cell count.
	SetPopulation(n int)
}

// NopMetrics discards every signal. Used when no metrics sink is configured.
type NopMetrics struct{}

func (NopMetrics) ObserveStep(time.Duration) {}
func (NopMetrics) AddDivisions(int)          {}
func (NopMetrics) AddRemovals(int)           {}
func (NopMetrics) AddPhaseChanges(int)       {}
func (NopMetrics) SetPopulation(int)         {}

var expvarSeq uint64

// ExpvarMetrics publishes run counters via expvar for deployments that
// prefer process-local metrics without external dependencies.
type ExpvarMetrics struct {
	name string

	mu           sync.Mutex
	stepSeconds  float64
	steps        int64
	divisions    int64
	removals     int64
	phaseChanges int64
	population   int64
}

// ExpvarMetricsSnapshot is a read-only view of the accumulated counters.
type ExpvarMetricsSnapshot struct {
	StepSecondsTotal  float64   `json:"step_seconds_total"`
	StepsTotal        int64     `json:"steps_total"`
	DivisionsTotal    int64     `json:"divisions_total"`
	RemovalsTotal     int64     `json:"removals_total"`
	PhaseChangesTotal int64     `json:"phase_changes_total"`
	Population        int64     `json:"population"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// NewExpvarMetrics constructs an expvar-backed recorder published under the
// supplied name. When name is empty a unique identifier is generated.
func NewExpvarMetrics(name string) *ExpvarMetrics {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("phenosim_metrics_%d", id)
	}
	m := &ExpvarMetrics{name: name}
	expvar.Publish(name, expvar.Func(func() any {
		return m.Snapshot()
	}))
	return m
}

// Name returns the expvar export name.
func (m *ExpvarMetrics) Name() string { return m.name }

// Snapshot returns a copy of the accumulated counters.
func (m *ExpvarMetrics) Snapshot() ExpvarMetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ExpvarMetricsSnapshot{
		StepSecondsTotal:  m.stepSeconds,
		StepsTotal:        m.steps,
		DivisionsTotal:    m.divisions,
		RemovalsTotal:     m.removals,
		PhaseChangesTotal: m.phaseChanges,
		Population:        m.population,
		RecordedAt:        time.Now().UTC(),
	}
}

func (m *ExpvarMetrics) ObserveStep(duration time.Duration) {
	m.mu.Lock()
	m.stepSeconds += duration.Seconds()
	m.steps++
	m.mu.Unlock()
}

func (m *ExpvarMetrics) AddDivisions(n int) {
	m.mu.Lock()
	m.divisions += int64(n)
	m.mu.Unlock()
}

func (m *ExpvarMetrics) AddRemovals(n int) {
	m.mu.Lock()
	m.removals += int64(n)
	m.mu.Unlock()
}

func (m *ExpvarMetrics) AddPhaseChanges(n int) {
	m.mu.Lock()
	m.phaseChanges += int64(n)
	m.mu.Unlock()
}

func (m *ExpvarMetrics) SetPopulation(n int) {
	m.mu.Lock()
	m.population = int64(n)
	m.mu.Unlock()
}
