package phenotype

import (
	"fmt"
	"math"
)

const defaultPhaseDuration = 10

// StepContext is the view of a phase's state handed to hooks and predicates
// during a step. Hooks mutate the cell through the Volume pointer; the scalar
// fields are read-only snapshots.
type StepContext struct {
	// Volume is the phase's volume model. Hooks may mutate it.
	Volume *VolumeModel
	// Dt is the step length the phase was built with.
	Dt float64
	// TimeInPhase is the time accumulated in the current phase, including the
	// current step.
	TimeInPhase float64
	// Duration is the configured expected (stochastic) or exact (fixed)
	// phase duration.
	Duration float64
	// SimulatedCellVolume is the volume the host simulation currently assigns
	// to the cell, for hooks that couple the model to the host.
	SimulatedCellVolume float64
}

// Hook is a side-effecting callback invoked at a defined point of the phase
// lifecycle (entry, exit, or once per step).
type Hook func(ctx *StepContext)

// Predicate is a boolean callback used for arrest and transition decisions.
type Predicate func(ctx *StepContext) bool

// PhaseSpec is the data record a Phase is built from. The zero value plus a
// Name is a valid specification: a ten-unit stochastic phase with the
// reference volume model and rates. Nil optional fields take the documented
// defaults.
type PhaseSpec struct {
	// Name identifies the phase in logs and reports.
	Name string
	// Index is this phase's position in the owning phenotype's cycle.
	Index int
	// PreviousPhaseIndex is the index of the phase this one usually follows.
	PreviousPhaseIndex int
	// NextPhaseIndex is the index of the phase entered on transition. The
	// value -1 selects the phenotype's last phase.
	NextPhaseIndex int

	// DivisionAtExit marks that the cell divides when leaving this phase.
	DivisionAtExit bool
	// RemovalAtExit marks that the cell is removed from the simulation when
	// leaving this phase.
	RemovalAtExit bool
	// FixedDuration selects the deterministic transition policy; otherwise
	// transition is a Poisson process with expectation Duration.
	FixedDuration bool
	// Duration is the phase duration (fixed) or its expectation (stochastic).
	// Nil defaults to 10 time units. Must be positive.
	Duration *float64

	// CytoplasmVolumeChangeRate, NuclearVolumeChangeRate, FluidChangeRate and
	// CalcificationRate parameterize the volume relaxation. Nil fields take
	// the reference rates (0.27/60, 0.33/60, 3/60, 0).
	CytoplasmVolumeChangeRate *float64
	NuclearVolumeChangeRate   *float64
	FluidChangeRate           *float64
	CalcificationRate         *float64
	// ComputeRatesFromVolumes derives nil rates from the supplied volume
	// compartments instead, as rate = volume/(Duration/dt), falling back to 1
	// when no relevant compartment was supplied. Growth phases use this so a
	// cell roughly doubles over one cycle.
	ComputeRatesFromVolumes bool

	// Entry runs when the phase is entered, after volume carry-over.
	Entry Hook
	// Exit runs when the transition predicate fires, before the owning
	// phenotype advances.
	Exit Hook
	// UserStep runs once per step after the volume update.
	UserStep Hook
	// Arrest, when it returns true, holds the cell in place (the owning
	// phenotype moves it to the quiescent phase). Checked before transition.
	Arrest Predicate
	// Transition overrides the default duration-based transition policy.
	Transition Predicate

	// Volume configures the phase's volume model.
	Volume VolumeConfig
	// SimulatedCellVolume seeds the host-coupled cell volume. Nil defaults
	// to 1.
	SimulatedCellVolume *float64
}

// Phase is one node of a phenotype's state machine. It owns a volume model
// and advances it every step; its transition and arrest policies decide when
// the owning phenotype moves the cell on.
type Phase struct {
	name               string
	index              int
	previousPhaseIndex int
	nextPhaseIndex     int

	divisionAtExit bool
	removalAtExit  bool
	fixedDuration  bool
	duration       float64
	dt             float64

	cytoplasmVolumeChangeRate float64
	nuclearVolumeChangeRate   float64
	fluidChangeRate           float64
	calcificationRate         float64

	entry      Hook
	exit       Hook
	userStep   Hook
	arrest     Predicate
	transition Predicate

	rng UniformSource

	timeInPhase         float64
	simulatedCellVolume float64
	volume              VolumeModel
}

// NewPhase builds a Phase from spec with step length dt. rng supplies the
// uniform variates for the stochastic transition policy; nil gets an
// auto-seeded source. Invalid parameters (dt <= 0, non-positive duration,
// negative rates, out-of-range volume config) fail with a descriptive error.
func NewPhase(spec PhaseSpec, dt float64, rng UniformSource) (*Phase, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("phase %q: dt must be positive, got %g", spec.Name, dt)
	}

	duration := float64(defaultPhaseDuration)
	if spec.Duration != nil {
		duration = *spec.Duration
	}
	if duration <= 0 {
		return nil, fmt.Errorf("phase %q: duration must be positive, got %g", spec.Name, duration)
	}

	volume, err := NewVolumeModel(spec.Volume)
	if err != nil {
		return nil, fmt.Errorf("phase %q: %w", spec.Name, err)
	}

	cytoRate, err := resolveRate(spec.Name, "cytoplasm volume change rate",
		spec.CytoplasmVolumeChangeRate, defaultCytoplasmChangeRate,
		spec.ComputeRatesFromVolumes, duration, dt,
		spec.Volume.CytoplasmFluid, spec.Volume.CytoplasmSolid)
	if err != nil {
		return nil, err
	}
	nuclearRate, err := resolveRate(spec.Name, "nuclear volume change rate",
		spec.NuclearVolumeChangeRate, defaultNuclearChangeRate,
		spec.ComputeRatesFromVolumes, duration, dt,
		spec.Volume.NuclearFluid, spec.Volume.NuclearSolid)
	if err != nil {
		return nil, err
	}
	fluidRate, err := resolveRate(spec.Name, "fluid change rate",
		spec.FluidChangeRate, defaultFluidChangeRate,
		spec.ComputeRatesFromVolumes, duration, dt,
		spec.Volume.CytoplasmFluid, spec.Volume.NuclearFluid)
	if err != nil {
		return nil, err
	}
	calcRate := 0.0
	if spec.CalcificationRate != nil {
		calcRate = *spec.CalcificationRate
	}
	if calcRate < 0 {
		return nil, fmt.Errorf("phase %q: calcification rate must be >= 0, got %g", spec.Name, calcRate)
	}

	simVolume := 1.0
	if spec.SimulatedCellVolume != nil {
		simVolume = *spec.SimulatedCellVolume
		if simVolume < 0 {
			return nil, fmt.Errorf("phase %q: simulated cell volume must be >= 0, got %g", spec.Name, simVolume)
		}
	}

	if rng == nil {
		rng = NewAutoSeededSource()
	}

	return &Phase{
		name:                      spec.Name,
		index:                     spec.Index,
		previousPhaseIndex:        spec.PreviousPhaseIndex,
		nextPhaseIndex:            spec.NextPhaseIndex,
		divisionAtExit:            spec.DivisionAtExit,
		removalAtExit:             spec.RemovalAtExit,
		fixedDuration:             spec.FixedDuration,
		duration:                  duration,
		dt:                        dt,
		cytoplasmVolumeChangeRate: cytoRate,
		nuclearVolumeChangeRate:   nuclearRate,
		fluidChangeRate:           fluidRate,
		calcificationRate:         calcRate,
		entry:                     spec.Entry,
		exit:                      spec.Exit,
		userStep:                  spec.UserStep,
		arrest:                    spec.Arrest,
		transition:                spec.Transition,
		rng:                       rng,
		simulatedCellVolume:       simVolume,
		volume:                    volume,
	}, nil
}

// resolveRate applies the explicit > computed > reference precedence for a
// relaxation rate.
func resolveRate(phase, what string, explicit *float64, reference float64, fromVolumes bool, duration, dt float64, compartments ...*float64) (float64, error) {
	switch {
	case explicit != nil:
		if *explicit < 0 {
			return 0, fmt.Errorf("phase %q: %s must be >= 0, got %g", phase, what, *explicit)
		}
		return *explicit, nil
	case fromVolumes:
		sum, supplied := 0.0, false
		for _, c := range compartments {
			if c != nil {
				sum += *c
				supplied = true
			}
		}
		if !supplied {
			return 1, nil
		}
		return sum / (duration / dt), nil
	default:
		return reference, nil
	}
}

// Step advances the phase by one tick: accumulate time, relax the volume
// model, run the per-step hook, then evaluate arrest and transition in that
// order. An arrested step suppresses the transition check. On transition the
// exit hook fires before returning.
func (p *Phase) Step() (transitioned, arrested bool) {
	p.timeInPhase += p.dt
	p.volume.Update(p.dt, p.fluidChangeRate, p.nuclearVolumeChangeRate, p.cytoplasmVolumeChangeRate, p.calcificationRate)

	ctx := p.stepContext()
	if p.userStep != nil {
		p.userStep(ctx)
	}
	if p.arrest != nil && p.arrest(ctx) {
		return false, true
	}
	if p.transitionReady(ctx) {
		if p.exit != nil {
			p.exit(ctx)
		}
		return true, false
	}
	return false, false
}

func (p *Phase) transitionReady(ctx *StepContext) bool {
	if p.transition != nil {
		return p.transition(ctx)
	}
	if p.fixedDuration {
		return p.timeInPhase > p.duration
	}
	return p.rng.Uniform() < 1-math.Exp(-p.dt/p.duration)
}

func (p *Phase) stepContext() *StepContext {
	return &StepContext{
		Volume:              &p.volume,
		Dt:                  p.dt,
		TimeInPhase:         p.timeInPhase,
		Duration:            p.duration,
		SimulatedCellVolume: p.simulatedCellVolume,
	}
}

// enter resets the phase clock and fires the entry hook. The owning phenotype
// calls it after carrying volume state over.
func (p *Phase) enter() {
	p.timeInPhase = 0
	if p.entry != nil {
		p.entry(p.stepContext())
	}
}

// clone returns an independent copy. The volume model copies by value; hooks
// and the uniform source are shared, which is safe because hooks receive all
// mutable state through the context and sources are expected to be safe for
// reuse across phases of one phenotype.
func (p *Phase) clone() *Phase {
	dup := *p
	return &dup
}

// Name returns the phase name.
func (p *Phase) Name() string { return p.name }

// Index returns the phase's position in the owning phenotype's cycle.
func (p *Phase) Index() int { return p.index }

// PreviousPhaseIndex returns the index of the phase this one usually follows.
func (p *Phase) PreviousPhaseIndex() int { return p.previousPhaseIndex }

// NextPhaseIndex returns the configured successor index (-1 means the
// phenotype's last phase).
func (p *Phase) NextPhaseIndex() int { return p.nextPhaseIndex }

// DivisionAtExit reports whether leaving this phase divides the cell.
func (p *Phase) DivisionAtExit() bool { return p.divisionAtExit }

// RemovalAtExit reports whether leaving this phase removes the cell.
func (p *Phase) RemovalAtExit() bool { return p.removalAtExit }

// FixedDuration reports whether the deterministic transition policy is in use.
func (p *Phase) FixedDuration() bool { return p.fixedDuration }

// Duration returns the configured phase duration (or its expectation).
func (p *Phase) Duration() float64 { return p.duration }

// Dt returns the step length the phase was built with.
func (p *Phase) Dt() float64 { return p.dt }

// TimeInPhase returns the time accumulated in this phase.
func (p *Phase) TimeInPhase() float64 { return p.timeInPhase }

// CytoplasmVolumeChangeRate returns the resolved cytoplasm relaxation rate.
func (p *Phase) CytoplasmVolumeChangeRate() float64 { return p.cytoplasmVolumeChangeRate }

// NuclearVolumeChangeRate returns the resolved nuclear relaxation rate.
func (p *Phase) NuclearVolumeChangeRate() float64 { return p.nuclearVolumeChangeRate }

// FluidChangeRate returns the resolved fluid relaxation rate.
func (p *Phase) FluidChangeRate() float64 { return p.fluidChangeRate }

// CalcificationRate returns the resolved calcification rate.
func (p *Phase) CalcificationRate() float64 { return p.calcificationRate }

// Volume exposes the phase's volume model for inspection and host coupling.
func (p *Phase) Volume() *VolumeModel { return &p.volume }

// SimulatedCellVolume returns the host-coupled cell volume.
func (p *Phase) SimulatedCellVolume() float64 { return p.simulatedCellVolume }

// SetSimulatedCellVolume records the volume the host simulation assigns to
// the cell, clamped non-negative.
func (p *Phase) SetSimulatedCellVolume(value float64) {
	p.simulatedCellVolume = clampVolume(value)
}

// DoubleTargetVolumes doubles both solid volume targets. Cycle models install
// it as an entry hook of growth phases so the cell doubles before mitosis.
func DoubleTargetVolumes(ctx *StepContext) {
	ctx.Volume.SetNuclearSolidTarget(2 * ctx.Volume.NuclearSolidTarget())
	ctx.Volume.SetCytoplasmSolidTarget(2 * ctx.Volume.CytoplasmSolidTarget())
}

// HalveTargetVolumes halves both solid volume targets. Cycle models install
// it as an exit hook of mitotic phases or an entry hook of post-mitotic ones.
func HalveTargetVolumes(ctx *StepContext) {
	ctx.Volume.SetNuclearSolidTarget(ctx.Volume.NuclearSolidTarget() / 2)
	ctx.Volume.SetCytoplasmSolidTarget(ctx.Volume.CytoplasmSolidTarget() / 2)
}

// ApoptosisEntry zeroes the target fluid fraction and both solid targets so
// the cell shrinks away while keeping its cytoplasm to nuclear ratio.
func ApoptosisEntry(ctx *StepContext) {
	ctx.Volume.SetTargetFluidFraction(0)
	ctx.Volume.SetCytoplasmSolidTarget(0)
	ctx.Volume.SetNuclearSolidTarget(0)
}

// NecrosisSwellEntry drives the osmotic swell: solids degrade towards zero,
// the target fluid fraction goes to one, and the rupture volume is armed at
// the configured multiple of the current total.
func NecrosisSwellEntry(ctx *StepContext) {
	ctx.Volume.SetTargetFluidFraction(1)
	ctx.Volume.SetNuclearSolidTarget(0)
	ctx.Volume.SetCytoplasmSolidTarget(0)
	ctx.Volume.SetTargetCytoplasmToNuclearRatio(0)
	ctx.Volume.SetRuptureVolume(ctx.Volume.RelativeRuptureVolume() * ctx.Volume.Total())
}

// NecrosisLysedEntry zeroes every target including the cytoplasm to nuclear
// ratio and re-arms the rupture volume for the ruptured fragment.
func NecrosisLysedEntry(ctx *StepContext) {
	ctx.Volume.SetTargetFluidFraction(0)
	ctx.Volume.SetNuclearSolidTarget(0)
	ctx.Volume.SetCytoplasmSolidTarget(0)
	ctx.Volume.SetTargetCytoplasmToNuclearRatio(0)
	ctx.Volume.SetRuptureVolume(ctx.Volume.RelativeRuptureVolume() * ctx.Volume.Total())
}

// RupturePredicate fires when the cell's total volume first exceeds the armed
// rupture volume. The necrosis swell phase uses it as its transition policy.
func RupturePredicate(ctx *StepContext) bool {
	return ctx.Volume.Total() > ctx.Volume.RuptureVolume()
}
