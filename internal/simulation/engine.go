// Package simulation hosts a minimal cell population engine around the
// phenotype library: it steps every cell once per tick, divides and removes
// cells as their phenotypes demand, and reports the resulting series to a
// pluggable recorder and metrics sink.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phenocore/internal/observability"
	"phenocore/pkg/phenotype"
)

// DefaultMaxCells bounds population growth so a misconfigured proliferating
// run cannot exhaust memory.
const DefaultMaxCells = 100000

// ErrPopulationLimit is returned when a run hits its cell cap.
var ErrPopulationLimit = errors.New("population limit reached")

// Cell is one simulated cell: an identifier plus its own phenotype clone.
type Cell struct {
	ID        int
	Phenotype *phenotype.Phenotype
}

// StepRecord is the per-tick series row a run emits.
type StepRecord struct {
	RunID        string  `json:"run_id"`
	Step         int     `json:"step"`
	Time         float64 `json:"time"`
	Population   int     `json:"population"`
	TotalVolume  float64 `json:"total_volume"`
	Divisions    int     `json:"divisions"`
	Removals     int     `json:"removals"`
	PhaseChanges int     `json:"phase_changes"`
}

// Recorder persists the step series of a run.
type Recorder interface {
	RecordStep(ctx context.Context, record StepRecord) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, record StepRecord) error

func (f RecorderFunc) RecordStep(ctx context.Context, record StepRecord) error {
	return f(ctx, record)
}

// Report summarizes a finished run.
type Report struct {
	RunID           string  `json:"run_id"`
	Phenotype       string  `json:"phenotype"`
	Dt              float64 `json:"dt"`
	Steps           int     `json:"steps"`
	InitialCells    int     `json:"initial_cells"`
	FinalPopulation int     `json:"final_population"`
	FinalVolume     float64 `json:"final_volume"`
	Divisions       int     `json:"divisions"`
	Removals        int     `json:"removals"`
	PhaseChanges    int     `json:"phase_changes"`
}

// Config assembles an Engine.
type Config struct {
	// RunID labels the run in records and metrics.
	RunID string
	// Template is the phenotype every initial cell receives a clone of.
	Template *phenotype.Phenotype
	// InitialCells is the starting population. Must be positive.
	InitialCells int
	// Steps is the number of ticks to run. Must be positive.
	Steps int
	// MaxCells caps the population; zero means DefaultMaxCells.
	MaxCells int
	// Recorder receives one StepRecord per tick. Optional.
	Recorder Recorder
	// Metrics receives step timings and event counts. Optional.
	Metrics observability.SimulationMetrics
	// Tracer receives one JSON-line trace per tick. Optional.
	Tracer *observability.JSONStepTracer
}

// Engine runs one cell population to completion.
type Engine struct {
	cfg      Config
	metrics  observability.SimulationMetrics
	cells    []*Cell
	nextID   int
	step     int
	events   Report
	maxCells int
}

// NewEngine validates cfg and seeds the initial population, each cell with
// its own clone of the template phenotype.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Template == nil {
		return nil, errors.New("engine: template phenotype is required")
	}
	if cfg.InitialCells <= 0 {
		return nil, fmt.Errorf("engine: initial cells must be positive, got %d", cfg.InitialCells)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("engine: steps must be positive, got %d", cfg.Steps)
	}
	maxCells := cfg.MaxCells
	if maxCells == 0 {
		maxCells = DefaultMaxCells
	}
	if cfg.InitialCells > maxCells {
		return nil, fmt.Errorf("engine: initial cells %d exceed cell cap %d", cfg.InitialCells, maxCells)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}

	e := &Engine{
		cfg:      cfg,
		metrics:  metrics,
		maxCells: maxCells,
		events: Report{
			RunID:        cfg.RunID,
			Phenotype:    cfg.Template.Name(),
			Dt:           cfg.Template.Dt(),
			Steps:        cfg.Steps,
			InitialCells: cfg.InitialCells,
		},
	}
	for i := 0; i < cfg.InitialCells; i++ {
		e.cells = append(e.cells, &Cell{ID: e.nextID, Phenotype: cfg.Template.Clone()})
		e.nextID++
	}
	metrics.SetPopulation(len(e.cells))
	return e, nil
}

// Run executes the configured number of steps and returns the final report.
// It stops early on context cancellation, a recorder failure, or the cell
// cap.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	for e.step < e.cfg.Steps {
		if err := ctx.Err(); err != nil {
			return e.report(), fmt.Errorf("engine: run %q interrupted: %w", e.cfg.RunID, err)
		}
		if err := e.tick(ctx); err != nil {
			return e.report(), err
		}
	}
	return e.report(), nil
}

// tick advances every cell by one step and applies the resulting divisions
// and removals.
func (e *Engine) tick(ctx context.Context) error {
	started := time.Now()
	e.step++

	var divisions, removals, phaseChanges int
	survivors := e.cells[:0]
	var daughters []*Cell

	for _, cell := range e.cells {
		outcome, err := cell.Phenotype.Step()
		if err != nil {
			return fmt.Errorf("engine: run %q step %d cell %d: %w", e.cfg.RunID, e.step, cell.ID, err)
		}
		if outcome.PhaseChanged {
			phaseChanges++
		}
		if outcome.Removal {
			removals++
			continue
		}
		if outcome.Division {
			divisions++
			daughter := &Cell{ID: e.nextID, Phenotype: cell.Phenotype.CloneForDaughter()}
			e.nextID++
			cell.Phenotype.CurrentPhase().Volume().Halve()
			daughters = append(daughters, daughter)
		}
		survivors = append(survivors, cell)
	}

	e.cells = append(survivors, daughters...)
	if len(e.cells) > e.maxCells {
		return fmt.Errorf("engine: run %q step %d: %w (%d cells, cap %d)",
			e.cfg.RunID, e.step, ErrPopulationLimit, len(e.cells), e.maxCells)
	}

	e.events.Divisions += divisions
	e.events.Removals += removals
	e.events.PhaseChanges += phaseChanges

	e.metrics.ObserveStep(time.Since(started))
	e.metrics.AddDivisions(divisions)
	e.metrics.AddRemovals(removals)
	e.metrics.AddPhaseChanges(phaseChanges)
	e.metrics.SetPopulation(len(e.cells))

	record := StepRecord{
		RunID:        e.cfg.RunID,
		Step:         e.step,
		Time:         float64(e.step) * e.cfg.Template.Dt(),
		Population:   len(e.cells),
		TotalVolume:  e.totalVolume(),
		Divisions:    divisions,
		Removals:     removals,
		PhaseChanges: phaseChanges,
	}
	if e.cfg.Tracer != nil {
		e.cfg.Tracer.Trace(observability.StepTrace{
			RunID:        record.RunID,
			Step:         record.Step,
			Time:         record.Time,
			Population:   record.Population,
			TotalVolume:  record.TotalVolume,
			Divisions:    record.Divisions,
			Removals:     record.Removals,
			PhaseChanges: record.PhaseChanges,
		})
	}
	if e.cfg.Recorder != nil {
		if err := e.cfg.Recorder.RecordStep(ctx, record); err != nil {
			return fmt.Errorf("engine: run %q step %d: record: %w", e.cfg.RunID, e.step, err)
		}
	}
	return nil
}

func (e *Engine) totalVolume() float64 {
	var total float64
	for _, cell := range e.cells {
		total += cell.Phenotype.CurrentPhase().Volume().Total()
	}
	return total
}

// Population returns the current live cell count.
func (e *Engine) Population() int { return len(e.cells) }

// Cells returns the live cells. The slice is shared with the engine and must
// not be mutated by callers.
func (e *Engine) Cells() []*Cell { return e.cells }

func (e *Engine) report() Report {
	report := e.events
	report.Steps = e.step
	report.FinalPopulation = len(e.cells)
	report.FinalVolume = e.totalVolume()
	return report
}
