package phenotype

import (
	"fmt"
	"strings"
)

// Names of the pre-built phenotypes, usable with New and Attach.
const (
	SimpleLiveName             = "Simple Live"
	Ki67BasicName              = "Ki67 Basic"
	Ki67AdvancedName           = "Ki67 Advanced"
	FlowCytometryBasicName     = "Flow Cytometry Basic"
	FlowCytometryAdvancedName  = "Flow Cytometry Advanced"
	StandardApoptosisModelName = "Standard apoptosis model"
	StandardNecrosisModelName  = "Standard necrosis model"
)

// Options adjusts a pre-built phenotype. The zero value takes each model's
// reference step length and an auto-seeded random source.
type Options struct {
	// Dt overrides the model's reference step length when positive.
	Dt float64
	// Source supplies the uniform variates for stochastic transitions. Nil
	// gets an auto-seeded source.
	Source UniformSource
}

func (o Options) dt(reference float64) float64 {
	if o.Dt > 0 {
		return o.Dt
	}
	return reference
}

// Names lists the pre-built phenotype names in catalog order.
func Names() []string {
	return []string{
		SimpleLiveName,
		Ki67BasicName,
		Ki67AdvancedName,
		FlowCytometryBasicName,
		FlowCytometryAdvancedName,
		StandardApoptosisModelName,
		StandardNecrosisModelName,
	}
}

// New builds the pre-built phenotype registered under name. Unknown names
// fail with an error listing the known catalog.
func New(name string, opts Options) (*Phenotype, error) {
	switch name {
	case SimpleLiveName:
		return NewSimpleLiveCycle(opts)
	case Ki67BasicName:
		return NewKi67Basic(opts)
	case Ki67AdvancedName:
		return NewKi67Advanced(opts)
	case FlowCytometryBasicName:
		return NewFlowCytometryBasic(opts)
	case FlowCytometryAdvancedName:
		return NewFlowCytometryAdvanced(opts)
	case StandardApoptosisModelName:
		return NewStandardApoptosisModel(opts)
	case StandardNecrosisModelName:
		return NewStandardNecrosisModel(opts)
	default:
		return nil, fmt.Errorf("unknown phenotype %q, known phenotypes: %s", name, strings.Join(Names(), ", "))
	}
}

// NewSimpleLiveCycle is the simplest proliferating model: a single "alive"
// phase that divides the cell every time its stochastic transition fires
// (expected duration 60/0.0432 minutes).
func NewSimpleLiveCycle(opts Options) (*Phenotype, error) {
	return NewPhenotype(Config{
		Name: SimpleLiveName,
		Dt:   opts.dt(1),
		Phases: []PhaseSpec{{
			Name:           "alive",
			NextPhaseIndex: 0,
			DivisionAtExit: true,
			Duration:       Float64(60 / 0.0432),
		}},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewKi67Basic is the two-phase proliferating/quiescent Ki67 cycle: Ki 67-
// rests stochastically, Ki 67+ grows for a fixed 15.5 hours and divides the
// cell on exit.
func NewKi67Basic(opts Options) (*Phenotype, error) {
	return NewPhenotype(Config{
		Name:             Ki67BasicName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{Ki67NegativeSpec(), Ki67PositiveSpec()},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewKi67Advanced splits the proliferating phase of the basic Ki67 cycle in
// two: a fixed 13 hour pre-mitotic growth phase that divides the cell on
// exit, and a fixed 2.5 hour post-mitotic rest before looping back to a
// 3.62 hour mean Ki 67- rest.
func NewKi67Advanced(opts Options) (*Phenotype, error) {
	negative := Ki67NegativeSpec()
	negative.PreviousPhaseIndex = 2
	negative.Duration = Float64(3.62 * 60)

	pre := Ki67PositivePreMitoticSpec()

	post := Ki67PositivePostMitoticSpec()
	post.DivisionAtExit = false

	return NewPhenotype(Config{
		Name:             Ki67AdvancedName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{negative, pre, post},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewFlowCytometryBasic is the three-phase G0/G1 - S - G2/M cycle with
// stochastic transitions throughout; the cell divides on leaving G2/M.
func NewFlowCytometryBasic(opts Options) (*Phenotype, error) {
	return NewPhenotype(Config{
		Name:             FlowCytometryBasicName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{G0G1Spec(), SSpec(), G2MSpec()},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewFlowCytometryAdvanced separates G2 from M: G0/G1 (4.98 hour mean), S
// (8 hours, doubles targets), G2 (4 hour rest) and M (1 hour mean, divides
// on exit), all stochastic.
func NewFlowCytometryAdvanced(opts Options) (*Phenotype, error) {
	g0g1 := G0G1Spec()
	g0g1.Duration = Float64(4.98 * 60)

	g2 := G0G1Spec()
	g2.Name = "G2"
	g2.PreviousPhaseIndex = 1
	g2.NextPhaseIndex = 3
	g2.Duration = Float64(4 * 60)

	m := G2MSpec()
	m.Name = "M"
	m.PreviousPhaseIndex = 2
	m.NextPhaseIndex = 0
	m.Duration = Float64(1 * 60)

	return NewPhenotype(Config{
		Name:             FlowCytometryAdvancedName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{g0g1, SSpec(), g2, m},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewStandardApoptosisModel is the single-phase programmed death model: the
// cell shrinks for a fixed 8.6 hours and is removed on exit.
func NewStandardApoptosisModel(opts Options) (*Phenotype, error) {
	return NewPhenotype(Config{
		Name:             StandardApoptosisModelName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{ApoptosisSpec()},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}

// NewStandardNecrosisModel is the two-phase unprogrammed death model: the
// cell swells until it ruptures, then the lysed fragment dissolves and is
// removed after a sixty-day safeguard.
func NewStandardNecrosisModel(opts Options) (*Phenotype, error) {
	lysed := NecrosisLysedSpec()
	lysed.NextPhaseIndex = 1

	return NewPhenotype(Config{
		Name:             StandardNecrosisModelName,
		Dt:               opts.dt(0.1),
		Phases:           []PhaseSpec{NecrosisSwellSpec(), lysed},
		DisableQuiescent: true,
		Source:           opts.Source,
	})
}
