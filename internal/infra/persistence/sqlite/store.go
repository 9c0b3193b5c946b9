// Package sqlite persists simulation step series to a local SQLite database
// via the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"phenocore/internal/simulation"
)

const createStepsTable = `CREATE TABLE IF NOT EXISTS run_steps (
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	sim_time REAL NOT NULL,
	population INTEGER NOT NULL,
	total_volume REAL NOT NULL,
	divisions INTEGER NOT NULL,
	removals INTEGER NOT NULL,
	phase_changes INTEGER NOT NULL,
	PRIMARY KEY (run_id, step)
)`

// Store records run series in a SQLite database file. It implements
// simulation.Recorder.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (or reuses) the database at path and ensures the series
// schema exists. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite store: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	if _, err := db.Exec(createStepsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: ensure schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// RecordStep upserts one series row, so replaying a run overwrites rather
// than duplicates.
func (s *Store) RecordStep(ctx context.Context, record simulation.StepRecord) error {
	const upsert = `INSERT INTO run_steps
		(run_id, step, sim_time, population, total_volume, divisions, removals, phase_changes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO UPDATE SET
			sim_time=excluded.sim_time,
			population=excluded.population,
			total_volume=excluded.total_volume,
			divisions=excluded.divisions,
			removals=excluded.removals,
			phase_changes=excluded.phase_changes`
	_, err := s.db.ExecContext(ctx, upsert,
		record.RunID, record.Step, record.Time, record.Population,
		record.TotalVolume, record.Divisions, record.Removals, record.PhaseChanges)
	if err != nil {
		return fmt.Errorf("sqlite store: record step %d of run %q: %w", record.Step, record.RunID, err)
	}
	return nil
}

// LoadSeries returns the recorded rows of a run ordered by step.
func (s *Store) LoadSeries(ctx context.Context, runID string) ([]simulation.StepRecord, error) {
	const query = `SELECT run_id, step, sim_time, population, total_volume, divisions, removals, phase_changes
		FROM run_steps WHERE run_id = ? ORDER BY step`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: load series of run %q: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var series []simulation.StepRecord
	for rows.Next() {
		var r simulation.StepRecord
		if err := rows.Scan(&r.RunID, &r.Step, &r.Time, &r.Population,
			&r.TotalVolume, &r.Divisions, &r.Removals, &r.PhaseChanges); err != nil {
			return nil, fmt.Errorf("sqlite store: scan series row: %w", err)
		}
		series = append(series, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: iterate series: %w", err)
	}
	return series, nil
}

// DB exposes the underlying handle for callers that need direct queries.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
