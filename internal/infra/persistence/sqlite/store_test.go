package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"phenocore/internal/simulation"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != path {
		t.Fatalf("path = %q, want %q", store.Path(), path)
	}
}

func TestRecordAndLoadSeries(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	records := []simulation.StepRecord{
		{RunID: "run-1", Step: 1, Time: 0.1, Population: 10, TotalVolume: 24940},
		{RunID: "run-1", Step: 2, Time: 0.2, Population: 12, TotalVolume: 29000, Divisions: 2, PhaseChanges: 2},
		{RunID: "other", Step: 1, Time: 0.1, Population: 1, TotalVolume: 2494},
	}
	for _, record := range records {
		if err := store.RecordStep(ctx, record); err != nil {
			t.Fatalf("record step: %v", err)
		}
	}

	series, err := store.LoadSeries(ctx, "run-1")
	if err != nil {
		t.Fatalf("load series: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	for i, record := range series {
		if record != records[i] {
			t.Fatalf("row %d = %+v, want %+v", i, record, records[i])
		}
	}

	empty, err := store.LoadSeries(ctx, "missing")
	if err != nil {
		t.Fatalf("load missing series: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("missing run returned %d rows", len(empty))
	}
}

func TestRecordStepUpserts(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	record := simulation.StepRecord{RunID: "run", Step: 1, Time: 1, Population: 4, TotalVolume: 100}
	if err := store.RecordStep(ctx, record); err != nil {
		t.Fatalf("record step: %v", err)
	}
	record.Population = 5
	if err := store.RecordStep(ctx, record); err != nil {
		t.Fatalf("record step again: %v", err)
	}

	series, err := store.LoadSeries(ctx, "run")
	if err != nil {
		t.Fatalf("load series: %v", err)
	}
	if len(series) != 1 || series[0].Population != 5 {
		t.Fatalf("series = %+v, want single upserted row with population 5", series)
	}
}

func TestStoreImplementsRecorder(t *testing.T) {
	var _ simulation.Recorder = (*Store)(nil)
}
