package phenotype

import (
	"fmt"
)

// Outcome reports what one phenotype step did to the cell.
type Outcome struct {
	// PhaseChanged is true when the cell entered a different phase this step.
	// An arrest counts as one, even when no quiescent phase is configured and
	// the cell stays where it is.
	PhaseChanged bool
	// Removal is true when the cell left a phase flagged for removal; the
	// host should take the cell out of the simulation.
	Removal bool
	// Division is true when the cell left a phase flagged for division; the
	// host should create a daughter cell.
	Division bool
}

// Config assembles a Phenotype. The zero value is not usable: Dt must be
// positive and Phases non-empty.
type Config struct {
	// Name identifies the phenotype in logs and reports.
	Name string
	// Dt is the step length shared by every phase.
	Dt float64
	// Phases are the cycle's phases in order. Each spec's Index is
	// overwritten with its position in this slice; PreviousPhaseIndex and
	// NextPhaseIndex are kept as configured.
	Phases []PhaseSpec
	// Quiescent overrides the stand-alone quiescent phase. When nil the
	// senescent default is used unless DisableQuiescent is set.
	Quiescent *PhaseSpec
	// DisableQuiescent drops the quiescent phase entirely; arrest signals
	// are then ignored.
	DisableQuiescent bool
	// StartingPhaseIndex selects the initial phase. The value -1 picks one
	// uniformly at random from the injected source.
	StartingPhaseIndex int
	// Source supplies uniform variates for stochastic transitions and random
	// starting-phase selection. Nil gets an auto-seeded source.
	Source UniformSource
}

// Phenotype is a cell behavior state machine: an ordered list of phases plus
// an optional stand-alone quiescent phase. One Phenotype instance belongs to
// one cell; use Clone or Attach to seed further cells.
type Phenotype struct {
	name      string
	dt        float64
	phases    []*Phase
	quiescent *Phase
	rng       UniformSource

	currentIndex    int
	inQuiescence    bool
	entered         bool
	timeInPhenotype float64
}

// NewPhenotype builds a Phenotype from cfg. Every phase is constructed with
// the shared dt and uniform source; construction fails on the first invalid
// phase spec, a non-positive dt, an empty phase list, or an out-of-range
// starting index.
func NewPhenotype(cfg Config) (*Phenotype, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("phenotype %q: dt must be positive, got %g", cfg.Name, cfg.Dt)
	}
	if len(cfg.Phases) == 0 {
		return nil, fmt.Errorf("phenotype %q: at least one phase is required", cfg.Name)
	}

	rng := cfg.Source
	if rng == nil {
		rng = NewAutoSeededSource()
	}

	p := &Phenotype{
		name:   cfg.Name,
		dt:     cfg.Dt,
		phases: make([]*Phase, 0, len(cfg.Phases)),
		rng:    rng,
	}

	for i, spec := range cfg.Phases {
		spec.Index = i
		phase, err := NewPhase(spec, cfg.Dt, rng)
		if err != nil {
			return nil, fmt.Errorf("phenotype %q: %w", cfg.Name, err)
		}
		p.phases = append(p.phases, phase)
	}

	if !cfg.DisableQuiescent {
		spec := SenescentSpec()
		if cfg.Quiescent != nil {
			spec = *cfg.Quiescent
		}
		quiescent, err := NewPhase(spec, cfg.Dt, rng)
		if err != nil {
			return nil, fmt.Errorf("phenotype %q: quiescent: %w", cfg.Name, err)
		}
		p.quiescent = quiescent
	}

	start := cfg.StartingPhaseIndex
	if start == -1 {
		start = int(rng.Uniform() * float64(len(p.phases)))
		if start >= len(p.phases) {
			start = len(p.phases) - 1
		}
	}
	if start < 0 || start >= len(p.phases) {
		return nil, fmt.Errorf("phenotype %q: starting phase index %d out of range [0, %d)", cfg.Name, cfg.StartingPhaseIndex, len(p.phases))
	}
	p.currentIndex = start

	return p, nil
}

// Step advances the phenotype by one tick. The current phase's entry hook
// runs lazily on the very first step; the phase then steps its volume model
// and policies, and the phenotype reacts: a transition moves to the next
// phase (carrying volume state over) and reports the left phase's division
// and removal flags; an arrest moves the cell to the quiescent phase and is
// reported as a phase change even when no quiescent phase is configured. An
// invalid next-phase index is a configuration error and is reported as one.
func (p *Phenotype) Step() (Outcome, error) {
	current := p.CurrentPhase()
	if !p.entered {
		if current.entry != nil {
			current.entry(current.stepContext())
		}
		p.entered = true
	}

	p.timeInPhenotype += p.dt

	transitioned, arrested := current.Step()
	switch {
	case transitioned:
		removal := current.removalAtExit
		division := current.divisionAtExit
		next := current.nextPhaseIndex
		if next == -1 {
			next = len(p.phases) - 1
		}
		if err := p.SetPhase(next); err != nil {
			return Outcome{}, fmt.Errorf("phenotype %q: leaving phase %q: %w", p.name, current.name, err)
		}
		return Outcome{PhaseChanged: true, Removal: removal, Division: division}, nil
	case arrested:
		p.EnterQuiescence()
		return Outcome{PhaseChanged: true}, nil
	default:
		return Outcome{}, nil
	}
}

// SetPhase moves the cell to the phase at idx, carrying the volume state of
// the phase being left into the destination by value: both fluid and solid
// compartments, the calcified fraction, both solid targets and the target
// fluid fraction. The destination's clock resets and its entry hook fires
// after the carry-over.
func (p *Phenotype) SetPhase(idx int) error {
	if idx < 0 || idx >= len(p.phases) {
		return fmt.Errorf("phase index %d out of range [0, %d)", idx, len(p.phases))
	}

	from := p.CurrentPhase().Volume()
	to := p.phases[idx].Volume()

	to.SetCytoplasmSolid(from.CytoplasmSolid())
	to.SetCytoplasmFluid(from.CytoplasmFluid())
	to.SetNuclearSolid(from.NuclearSolid())
	to.SetNuclearFluid(from.NuclearFluid())
	to.SetCalcifiedFraction(from.CalcifiedFraction())
	to.SetCytoplasmSolidTarget(from.CytoplasmSolidTarget())
	to.SetNuclearSolidTarget(from.NuclearSolidTarget())
	to.SetTargetFluidFraction(from.TargetFluidFraction())

	p.currentIndex = idx
	p.inQuiescence = false
	p.entered = true
	p.phases[idx].enter()
	return nil
}

// AdvancePhase moves the cell to its current phase's configured successor
// without waiting for the transition policy. The exit hook does not fire;
// this is a host-driven jump, not a transition.
func (p *Phenotype) AdvancePhase() error {
	next := p.CurrentPhase().nextPhaseIndex
	if next == -1 {
		next = len(p.phases) - 1
	}
	return p.SetPhase(next)
}

// EnterQuiescence moves the cell to the stand-alone quiescent phase,
// carrying the volume compartments over and freezing the targets at the
// current measurements so the cell stops wanting to change size. A phenotype
// without a quiescent phase ignores the call.
func (p *Phenotype) EnterQuiescence() {
	if p.quiescent == nil {
		return
	}

	from := p.CurrentPhase().Volume()
	to := p.quiescent.Volume()

	cytoSolid := from.CytoplasmSolid()
	cytoFluid := from.CytoplasmFluid()
	nuclSolid := from.NuclearSolid()
	nuclFluid := from.NuclearFluid()

	to.SetCytoplasmSolid(cytoSolid)
	to.SetCytoplasmFluid(cytoFluid)
	to.SetNuclearSolid(nuclSolid)
	to.SetNuclearFluid(nuclFluid)
	to.SetCalcifiedFraction(from.CalcifiedFraction())

	to.SetNuclearSolidTarget(nuclSolid)
	to.SetCytoplasmSolidTarget(cytoSolid)
	to.SetTargetFluidFraction((cytoFluid + nuclFluid) / (totalEpsilon + nuclSolid + nuclFluid + cytoFluid + cytoSolid))

	p.inQuiescence = true
	p.entered = true
	p.quiescent.timeInPhase = 0
}

// Clone returns a deep, independent copy of the phenotype: every phase's
// volume model and clock is copied by value. Hooks and the uniform source
// are shared, which keeps clones of one lineage on one random stream.
func (p *Phenotype) Clone() *Phenotype {
	dup := &Phenotype{
		name:            p.name,
		dt:              p.dt,
		phases:          make([]*Phase, len(p.phases)),
		rng:             p.rng,
		currentIndex:    p.currentIndex,
		inQuiescence:    p.inQuiescence,
		entered:         p.entered,
		timeInPhenotype: p.timeInPhenotype,
	}
	for i, phase := range p.phases {
		dup.phases[i] = phase.clone()
	}
	if p.quiescent != nil {
		dup.quiescent = p.quiescent.clone()
	}
	return dup
}

// CloneForDaughter returns a clone seeded for a daughter cell after
// division: the current phase's volume compartments and solid targets are
// halved so mother and daughter split the volume evenly, and the daughter's
// clocks restart. The current phase's entry hook does not fire again; the
// mother already entered it.
func (p *Phenotype) CloneForDaughter() *Phenotype {
	daughter := p.Clone()
	daughter.CurrentPhase().Volume().Halve()
	daughter.CurrentPhase().timeInPhase = 0
	daughter.timeInPhenotype = 0
	return daughter
}

// Name returns the phenotype name.
func (p *Phenotype) Name() string { return p.name }

// Dt returns the step length shared by every phase.
func (p *Phenotype) Dt() float64 { return p.dt }

// TimeInPhenotype returns the total time the phenotype has been stepped.
func (p *Phenotype) TimeInPhenotype() float64 { return p.timeInPhenotype }

// CurrentPhase returns the phase the cell is in, which is the quiescent
// phase while the cell is arrested.
func (p *Phenotype) CurrentPhase() *Phase {
	if p.inQuiescence {
		return p.quiescent
	}
	return p.phases[p.currentIndex]
}

// InQuiescence reports whether the cell sits in the stand-alone quiescent
// phase.
func (p *Phenotype) InQuiescence() bool { return p.inQuiescence }

// PhaseCount returns the number of phases in the cycle, not counting the
// quiescent phase.
func (p *Phenotype) PhaseCount() int { return len(p.phases) }

// PhaseAt returns the phase at idx.
func (p *Phenotype) PhaseAt(idx int) (*Phase, error) {
	if idx < 0 || idx >= len(p.phases) {
		return nil, fmt.Errorf("phase index %d out of range [0, %d)", idx, len(p.phases))
	}
	return p.phases[idx], nil
}

// QuiescentPhase returns the stand-alone quiescent phase, or nil when it is
// disabled.
func (p *Phenotype) QuiescentPhase() *Phase { return p.quiescent }
