package observability

import (
	"expvar"
	"testing"
	"time"
)

var (
	_ SimulationMetrics = NopMetrics{}
	_ SimulationMetrics = (*ExpvarMetrics)(nil)
	_ SimulationMetrics = (*PrometheusMetrics)(nil)
)

func TestExpvarMetricsAccumulates(t *testing.T) {
	m := NewExpvarMetrics("")
	m.ObserveStep(250 * time.Millisecond)
	m.ObserveStep(750 * time.Millisecond)
	m.AddDivisions(2)
	m.AddRemovals(1)
	m.AddPhaseChanges(3)
	m.SetPopulation(7)
	m.SetPopulation(5)

	snap := m.Snapshot()
	if snap.StepsTotal != 2 {
		t.Fatalf("steps = %d, want 2", snap.StepsTotal)
	}
	if snap.StepSecondsTotal < 0.999 || snap.StepSecondsTotal > 1.001 {
		t.Fatalf("step seconds = %g, want 1.0", snap.StepSecondsTotal)
	}
	if snap.DivisionsTotal != 2 || snap.RemovalsTotal != 1 || snap.PhaseChangesTotal != 3 {
		t.Fatalf("event counters = %+v", snap)
	}
	if snap.Population != 5 {
		t.Fatalf("population = %d, want the last set value 5", snap.Population)
	}
	if snap.RecordedAt.IsZero() {
		t.Fatalf("snapshot missing timestamp")
	}
}

func TestExpvarMetricsPublishes(t *testing.T) {
	m := NewExpvarMetrics("")
	if m.Name() == "" {
		t.Fatalf("expected a generated export name")
	}
	m.AddDivisions(1)
	v := expvar.Get(m.Name())
	if v == nil {
		t.Fatalf("metrics not published under %q", m.Name())
	}
	if v.String() == "" {
		t.Fatalf("published value renders empty")
	}
}

func TestExpvarMetricsGeneratedNamesAreUnique(t *testing.T) {
	a := NewExpvarMetrics("")
	b := NewExpvarMetrics("")
	if a.Name() == b.Name() {
		t.Fatalf("two recorders share the export name %q", a.Name())
	}
}
