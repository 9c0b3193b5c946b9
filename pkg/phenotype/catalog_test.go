package phenotype

import (
	"strings"
	"testing"
)

func TestCatalogNamesRoundTrip(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name, Options{})
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if p.Name() != name {
			t.Fatalf("New(%q) built phenotype named %q", name, p.Name())
		}
	}
}

func TestCatalogUnknownName(t *testing.T) {
	_, err := New("does not exist", Options{})
	if err == nil {
		t.Fatalf("expected error for unknown phenotype")
	}
	if !strings.Contains(err.Error(), Ki67BasicName) {
		t.Fatalf("error %q should list the known phenotypes", err)
	}
}

func TestCatalogShapes(t *testing.T) {
	cases := []struct {
		name       string
		phases     int
		dt         float64
		divisionAt []int
		removalAt  []int
	}{
		{SimpleLiveName, 1, 1, []int{0}, nil},
		{Ki67BasicName, 2, 0.1, []int{1}, nil},
		{Ki67AdvancedName, 3, 0.1, []int{1}, nil},
		{FlowCytometryBasicName, 3, 0.1, []int{2}, nil},
		{FlowCytometryAdvancedName, 4, 0.1, []int{3}, nil},
		{StandardApoptosisModelName, 1, 0.1, nil, []int{0}},
		{StandardNecrosisModelName, 2, 0.1, nil, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(tc.name, Options{})
			if err != nil {
				t.Fatalf("New(%q): %v", tc.name, err)
			}
			if p.PhaseCount() != tc.phases {
				t.Fatalf("phase count = %d, want %d", p.PhaseCount(), tc.phases)
			}
			if p.Dt() != tc.dt {
				t.Fatalf("dt = %g, want %g", p.Dt(), tc.dt)
			}
			if p.QuiescentPhase() != nil {
				t.Fatalf("catalog models must not carry a quiescent phase")
			}

			division := map[int]bool{}
			for _, i := range tc.divisionAt {
				division[i] = true
			}
			removal := map[int]bool{}
			for _, i := range tc.removalAt {
				removal[i] = true
			}
			for i := 0; i < p.PhaseCount(); i++ {
				phase, err := p.PhaseAt(i)
				if err != nil {
					t.Fatalf("phase at %d: %v", i, err)
				}
				if phase.DivisionAtExit() != division[i] {
					t.Fatalf("phase %d (%s): division at exit = %v, want %v", i, phase.Name(), phase.DivisionAtExit(), division[i])
				}
				if phase.RemovalAtExit() != removal[i] {
					t.Fatalf("phase %d (%s): removal at exit = %v, want %v", i, phase.Name(), phase.RemovalAtExit(), removal[i])
				}
			}
		})
	}
}

func TestCatalogDurations(t *testing.T) {
	p, err := NewKi67Advanced(Options{})
	if err != nil {
		t.Fatalf("Ki67 Advanced: %v", err)
	}
	wantDurations := []float64{3.62 * 60, 13 * 60, 2.5 * 60}
	wantFixed := []bool{false, true, true}
	for i, want := range wantDurations {
		phase, err := p.PhaseAt(i)
		if err != nil {
			t.Fatalf("phase at %d: %v", i, err)
		}
		if phase.Duration() != want {
			t.Fatalf("phase %d duration = %g, want %g", i, phase.Duration(), want)
		}
		if phase.FixedDuration() != wantFixed[i] {
			t.Fatalf("phase %d fixed = %v, want %v", i, phase.FixedDuration(), wantFixed[i])
		}
	}

	fc, err := NewFlowCytometryAdvanced(Options{})
	if err != nil {
		t.Fatalf("Flow Cytometry Advanced: %v", err)
	}
	wantNames := []string{"G0/G1", "S", "G2", "M"}
	wantFC := []float64{4.98 * 60, 8 * 60, 4 * 60, 1 * 60}
	for i, want := range wantFC {
		phase, err := fc.PhaseAt(i)
		if err != nil {
			t.Fatalf("phase at %d: %v", i, err)
		}
		if phase.Name() != wantNames[i] {
			t.Fatalf("phase %d name = %q, want %q", i, phase.Name(), wantNames[i])
		}
		if phase.Duration() != want {
			t.Fatalf("phase %d duration = %g, want %g", i, phase.Duration(), want)
		}
	}
}

func TestCatalogDtOverride(t *testing.T) {
	p, err := New(SimpleLiveName, Options{Dt: 0.25})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Dt() != 0.25 {
		t.Fatalf("dt = %g, want 0.25", p.Dt())
	}
}
