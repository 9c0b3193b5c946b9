// Package postgres records simulation step series in a Postgres database via
// the pgx stdlib driver, mirroring the SQLite recorder's schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"phenocore/internal/simulation"
)

// Compile-time contract assertion.
var _ simulation.Recorder = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Default DSN keeps local development working without configuration.
	defaultDSN = "postgres://localhost/phenocore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const ensureStepsTable = `CREATE TABLE IF NOT EXISTS run_steps (
	run_id TEXT NOT NULL,
	step BIGINT NOT NULL,
	sim_time DOUBLE PRECISION NOT NULL,
	population BIGINT NOT NULL,
	total_volume DOUBLE PRECISION NOT NULL,
	divisions BIGINT NOT NULL,
	removals BIGINT NOT NULL,
	phase_changes BIGINT NOT NULL,
	PRIMARY KEY (run_id, step)
)`

// Store records run series in Postgres. It implements simulation.Recorder.
type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn (falling back to defaultDSN), verifies
// the connection, and ensures the series schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, ensureStepsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure run_steps table: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordStep upserts one series row.
func (s *Store) RecordStep(ctx context.Context, record simulation.StepRecord) error {
	const upsert = `INSERT INTO run_steps
		(run_id, step, sim_time, population, total_volume, divisions, removals, phase_changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, step) DO UPDATE SET
			sim_time=EXCLUDED.sim_time,
			population=EXCLUDED.population,
			total_volume=EXCLUDED.total_volume,
			divisions=EXCLUDED.divisions,
			removals=EXCLUDED.removals,
			phase_changes=EXCLUDED.phase_changes`
	_, err := s.db.ExecContext(ctx, upsert,
		record.RunID, record.Step, record.Time, record.Population,
		record.TotalVolume, record.Divisions, record.Removals, record.PhaseChanges)
	if err != nil {
		return fmt.Errorf("upsert step %d of run %q: %w", record.Step, record.RunID, err)
	}
	return nil
}

// LoadSeries returns the recorded rows of a run ordered by step.
func (s *Store) LoadSeries(ctx context.Context, runID string) ([]simulation.StepRecord, error) {
	const query = `SELECT run_id, step, sim_time, population, total_volume, divisions, removals, phase_changes
		FROM run_steps WHERE run_id = $1 ORDER BY step`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("load series of run %q: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var series []simulation.StepRecord
	for rows.Next() {
		var r simulation.StepRecord
		if err := rows.Scan(&r.RunID, &r.Step, &r.Time, &r.Population,
			&r.TotalVolume, &r.Divisions, &r.Removals, &r.PhaseChanges); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		series = append(series, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return series, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
