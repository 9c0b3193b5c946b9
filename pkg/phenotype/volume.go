package phenotype

import (
	"fmt"
	"math"
)

// Reference volumes for the MCF-7 cell line, in cubic micrometers.
const (
	mcf7Total                  = 2494
	mcf7FluidFraction          = 0.75
	mcf7Nuclear                = 540
	mcf7CalcifiedFraction      = 0
	mcf7RelativeRuptureVolume  = 100
	defaultCytoplasmChangeRate = 0.27 / 60.0
	defaultNuclearChangeRate   = 0.33 / 60.0
	defaultFluidChangeRate     = 3.0 / 60.0
)

// Guards against division by zero when a compartment collapses entirely.
const (
	totalEpsilon = 1e-12
	ratioEpsilon = 1e-16
)

// Float64 returns a pointer to v. Convenience helper for the optional
// configuration fields on VolumeConfig and PhaseSpec.
func Float64(v float64) *float64 { return &v }

// VolumeConfig carries the optional construction parameters for a VolumeModel.
// Nil fields fall back to the MCF-7 reference values or to quantities derived
// from the fields that were supplied.
type VolumeConfig struct {
	// TargetFluidFraction is the fraction of the cell volume kept as fluid,
	// in [0, 1].
	TargetFluidFraction *float64
	// NuclearFluid is the initial fluid volume of the nucleus.
	NuclearFluid *float64
	// NuclearSolid is the initial solid volume of the nucleus.
	NuclearSolid *float64
	// NuclearSolidTarget is the nuclear solid volume relaxed towards.
	NuclearSolidTarget *float64
	// CytoplasmFluid is the initial fluid volume of the cytoplasm.
	CytoplasmFluid *float64
	// CytoplasmSolid is the initial solid volume of the cytoplasm.
	CytoplasmSolid *float64
	// CytoplasmSolidTarget is the cytoplasm solid volume relaxed towards.
	CytoplasmSolidTarget *float64
	// TargetCytoplasmToNuclearRatio is the cytoplasm/nuclear volume ratio the
	// model maintains when recomputing the cytoplasm solid target.
	TargetCytoplasmToNuclearRatio *float64
	// CalcifiedFraction is the initial calcified fraction, in [0, 1].
	CalcifiedFraction *float64
	// RelativeRuptureVolume is the multiple of the total volume at which a
	// necrotic cell lyses.
	RelativeRuptureVolume *float64
}

// VolumeModel evolves a cell's compartmentalized volume. Each dynamic
// sub-volume relaxes towards its target at a configured rate; derived volumes
// (totals, fractions) are recomputed from the parts. All volume quantities are
// clamped non-negative on assignment and fractions are clamped to [0, 1];
// out-of-range runtime assignments never fail.
//
// VolumeModel has value semantics: copying the struct yields a fully
// independent model, which is how volume state is carried across phase
// boundaries without aliasing.
type VolumeModel struct {
	nuclearFluid   float64
	nuclearSolid   float64
	cytoplasmFluid float64
	cytoplasmSolid float64

	nuclearSolidTarget   float64
	cytoplasmSolidTarget float64
	targetFluidFraction  float64
	targetCytoNuclRatio  float64

	calcifiedFraction     float64
	relativeRuptureVolume float64
	ruptureVolume         float64

	fluid         float64
	solid         float64
	nuclear       float64
	cytoplasm     float64
	total         float64
	fluidFraction float64
}

// NewVolumeModel builds a VolumeModel from cfg. Explicitly supplied values are
// validated (volumes must be >= 0, fractions in [0, 1]); omitted values derive
// from the MCF-7 reference parameters and the supplied fields.
func NewVolumeModel(cfg VolumeConfig) (VolumeModel, error) {
	var v VolumeModel

	refCytoplasm := float64(mcf7Total - mcf7Nuclear)

	tff := float64(mcf7FluidFraction)
	if cfg.TargetFluidFraction != nil {
		tff = *cfg.TargetFluidFraction
		if tff < 0 || tff > 1 {
			return v, fmt.Errorf("target fluid fraction must be in [0, 1], got %g", tff)
		}
	}
	v.targetFluidFraction = tff

	nf := mcf7Nuclear * tff
	if cfg.NuclearFluid != nil {
		nf = *cfg.NuclearFluid
		if nf < 0 {
			return v, fmt.Errorf("nuclear fluid volume must be >= 0, got %g", nf)
		}
	}
	v.nuclearFluid = nf

	ns := mcf7Nuclear * (1 - tff)
	if cfg.NuclearSolid != nil {
		ns = *cfg.NuclearSolid
		if ns < 0 {
			return v, fmt.Errorf("nuclear solid volume must be >= 0, got %g", ns)
		}
	}
	v.nuclearSolid = ns

	nst := v.nuclearSolid
	if cfg.NuclearSolidTarget != nil {
		nst = *cfg.NuclearSolidTarget
		if nst < 0 {
			return v, fmt.Errorf("nuclear solid target must be >= 0, got %g", nst)
		}
	}
	v.nuclearSolidTarget = nst

	cf := refCytoplasm * tff
	if cfg.CytoplasmFluid != nil {
		cf = *cfg.CytoplasmFluid
		if cf < 0 {
			return v, fmt.Errorf("cytoplasm fluid volume must be >= 0, got %g", cf)
		}
	}
	v.cytoplasmFluid = cf

	cs := refCytoplasm * (1 - tff)
	if cfg.CytoplasmSolid != nil {
		cs = *cfg.CytoplasmSolid
		if cs < 0 {
			return v, fmt.Errorf("cytoplasm solid volume must be >= 0, got %g", cs)
		}
	}
	v.cytoplasmSolid = cs

	cst := v.cytoplasmSolid
	if cfg.CytoplasmSolidTarget != nil {
		cst = *cfg.CytoplasmSolidTarget
		if cst < 0 {
			return v, fmt.Errorf("cytoplasm solid target must be >= 0, got %g", cst)
		}
	}
	v.cytoplasmSolidTarget = cst

	v.cytoplasm = v.cytoplasmFluid + v.cytoplasmSolid
	v.nuclear = v.nuclearFluid + v.nuclearSolid

	ratio := v.cytoplasm / (ratioEpsilon + v.nuclear)
	if cfg.TargetCytoplasmToNuclearRatio != nil {
		ratio = *cfg.TargetCytoplasmToNuclearRatio
		if ratio < 0 {
			return v, fmt.Errorf("target cytoplasm to nuclear ratio must be >= 0, got %g", ratio)
		}
	}
	v.targetCytoNuclRatio = ratio

	calc := float64(mcf7CalcifiedFraction)
	if cfg.CalcifiedFraction != nil {
		calc = *cfg.CalcifiedFraction
		if calc < 0 || calc > 1 {
			return v, fmt.Errorf("calcified fraction must be in [0, 1], got %g", calc)
		}
	}
	v.calcifiedFraction = calc

	rrv := float64(mcf7RelativeRuptureVolume)
	if cfg.RelativeRuptureVolume != nil {
		rrv = *cfg.RelativeRuptureVolume
		if rrv < 0 {
			return v, fmt.Errorf("relative rupture volume must be >= 0, got %g", rrv)
		}
	}
	v.relativeRuptureVolume = rrv

	v.fluid = v.cytoplasmFluid + v.nuclearFluid
	v.solid = v.cytoplasmSolid + v.nuclearSolid
	v.total = v.nuclear + v.cytoplasm
	v.fluidFraction = v.fluid / (v.total + totalEpsilon)
	v.ruptureVolume = v.relativeRuptureVolume * v.total

	return v, nil
}

// relax advances value towards target over dt with the first-order law
// dV/dt = rate*(target-V), integrated in closed form.
func relax(value, target, rate, dt float64) float64 {
	return target + (value-target)*math.Exp(-rate*dt)
}

// Update advances the dynamic sub-volumes by one time step of length dt. The
// four rates are in 1/time units. The evaluation order is part of the model's
// contract: the nuclear/cytoplasm fluid re-split deliberately uses the
// nuclear/total ratio from before this update, so each call is a first-order
// approximation in dt.
func (v *VolumeModel) Update(dt, fluidChangeRate, nuclearChangeRate, cytoplasmChangeRate, calcificationRate float64) {
	v.SetFluid(relax(v.fluid, v.targetFluidFraction*v.total, fluidChangeRate, dt))

	v.SetNuclearFluid((v.nuclear / (v.total + totalEpsilon)) * v.fluid)
	v.SetCytoplasmFluid(v.fluid - v.nuclearFluid)

	v.SetNuclearSolid(relax(v.nuclearSolid, v.nuclearSolidTarget, nuclearChangeRate, dt))

	v.SetCytoplasmSolidTarget(v.targetCytoNuclRatio * v.nuclearSolidTarget)
	v.SetCytoplasmSolid(relax(v.cytoplasmSolid, v.cytoplasmSolidTarget, cytoplasmChangeRate, dt))

	v.solid = v.nuclearSolid + v.cytoplasmSolid
	v.nuclear = v.nuclearSolid + v.nuclearFluid
	v.cytoplasm = v.cytoplasmFluid + v.cytoplasmSolid

	v.SetCalcifiedFraction(relax(v.calcifiedFraction, 1, calcificationRate, dt))

	v.total = v.cytoplasm + v.nuclear
	v.fluidFraction = v.fluid / (v.total + totalEpsilon)
}

// Clone returns an independent copy of the model.
func (v VolumeModel) Clone() VolumeModel { return v }

// Halve splits the cell volume in two: both fluid and solid compartments and
// both solid targets are halved and the derived totals recomputed. Division
// handling uses it to rebalance mother and daughter cells.
func (v *VolumeModel) Halve() {
	v.nuclearFluid /= 2
	v.nuclearSolid /= 2
	v.cytoplasmFluid /= 2
	v.cytoplasmSolid /= 2
	v.nuclearSolidTarget /= 2
	v.cytoplasmSolidTarget /= 2

	v.fluid = v.cytoplasmFluid + v.nuclearFluid
	v.solid = v.cytoplasmSolid + v.nuclearSolid
	v.nuclear = v.nuclearFluid + v.nuclearSolid
	v.cytoplasm = v.cytoplasmFluid + v.cytoplasmSolid
	v.total = v.nuclear + v.cytoplasm
	v.fluidFraction = v.fluid / (v.total + totalEpsilon)
}

// Fluid returns the total fluid volume of the cell.
func (v *VolumeModel) Fluid() float64 { return v.fluid }

// SetFluid assigns the total fluid volume, clamped non-negative.
func (v *VolumeModel) SetFluid(value float64) { v.fluid = clampVolume(value) }

// Solid returns the total solid volume of the cell.
func (v *VolumeModel) Solid() float64 { return v.solid }

// Nuclear returns the total nuclear volume.
func (v *VolumeModel) Nuclear() float64 { return v.nuclear }

// Cytoplasm returns the total cytoplasm volume.
func (v *VolumeModel) Cytoplasm() float64 { return v.cytoplasm }

// Total returns the total cell volume.
func (v *VolumeModel) Total() float64 { return v.total }

// FluidFraction returns the measured fluid fraction of the total volume.
func (v *VolumeModel) FluidFraction() float64 { return v.fluidFraction }

// NuclearFluid returns the fluid volume of the nucleus.
func (v *VolumeModel) NuclearFluid() float64 { return v.nuclearFluid }

// SetNuclearFluid assigns the nuclear fluid volume, clamped non-negative.
func (v *VolumeModel) SetNuclearFluid(value float64) { v.nuclearFluid = clampVolume(value) }

// NuclearSolid returns the solid volume of the nucleus.
func (v *VolumeModel) NuclearSolid() float64 { return v.nuclearSolid }

// SetNuclearSolid assigns the nuclear solid volume, clamped non-negative.
func (v *VolumeModel) SetNuclearSolid(value float64) { v.nuclearSolid = clampVolume(value) }

// CytoplasmFluid returns the fluid volume of the cytoplasm.
func (v *VolumeModel) CytoplasmFluid() float64 { return v.cytoplasmFluid }

// SetCytoplasmFluid assigns the cytoplasm fluid volume, clamped non-negative.
func (v *VolumeModel) SetCytoplasmFluid(value float64) { v.cytoplasmFluid = clampVolume(value) }

// CytoplasmSolid returns the solid volume of the cytoplasm.
func (v *VolumeModel) CytoplasmSolid() float64 { return v.cytoplasmSolid }

// SetCytoplasmSolid assigns the cytoplasm solid volume, clamped non-negative.
func (v *VolumeModel) SetCytoplasmSolid(value float64) { v.cytoplasmSolid = clampVolume(value) }

// NuclearSolidTarget returns the nuclear solid volume relaxed towards.
func (v *VolumeModel) NuclearSolidTarget() float64 { return v.nuclearSolidTarget }

// SetNuclearSolidTarget assigns the nuclear solid target, clamped non-negative.
func (v *VolumeModel) SetNuclearSolidTarget(value float64) { v.nuclearSolidTarget = clampVolume(value) }

// CytoplasmSolidTarget returns the cytoplasm solid volume relaxed towards.
func (v *VolumeModel) CytoplasmSolidTarget() float64 { return v.cytoplasmSolidTarget }

// SetCytoplasmSolidTarget assigns the cytoplasm solid target, clamped non-negative.
func (v *VolumeModel) SetCytoplasmSolidTarget(value float64) {
	v.cytoplasmSolidTarget = clampVolume(value)
}

// TargetFluidFraction returns the fluid fraction the model maintains.
func (v *VolumeModel) TargetFluidFraction() float64 { return v.targetFluidFraction }

// SetTargetFluidFraction assigns the target fluid fraction, clamped to [0, 1].
func (v *VolumeModel) SetTargetFluidFraction(value float64) {
	v.targetFluidFraction = clampFraction(value)
}

// TargetCytoplasmToNuclearRatio returns the target cytoplasm/nuclear ratio.
func (v *VolumeModel) TargetCytoplasmToNuclearRatio() float64 { return v.targetCytoNuclRatio }

// SetTargetCytoplasmToNuclearRatio assigns the target ratio, clamped non-negative.
func (v *VolumeModel) SetTargetCytoplasmToNuclearRatio(value float64) {
	v.targetCytoNuclRatio = clampVolume(value)
}

// CalcifiedFraction returns the calcified fraction of the cell.
func (v *VolumeModel) CalcifiedFraction() float64 { return v.calcifiedFraction }

// SetCalcifiedFraction assigns the calcified fraction, clamped to [0, 1].
func (v *VolumeModel) SetCalcifiedFraction(value float64) {
	v.calcifiedFraction = clampFraction(value)
}

// RelativeRuptureVolume returns the rupture threshold as a multiple of the
// total volume at rupture-arming time.
func (v *VolumeModel) RelativeRuptureVolume() float64 { return v.relativeRuptureVolume }

// RuptureVolume returns the absolute volume at which the cell lyses. It is
// armed explicitly (typically on necrosis entry), not recomputed per step.
func (v *VolumeModel) RuptureVolume() float64 { return v.ruptureVolume }

// SetRuptureVolume arms the absolute rupture threshold.
func (v *VolumeModel) SetRuptureVolume(value float64) { v.ruptureVolume = clampVolume(value) }

// TotalTarget returns the total volume implied by the current solid targets
// and target fluid fraction.
func (v *VolumeModel) TotalTarget() float64 {
	return (v.cytoplasmSolidTarget + v.nuclearSolidTarget) / (1 - v.targetFluidFraction)
}

// CytoplasmToNuclearRatio returns the measured cytoplasm/nuclear volume ratio.
func (v *VolumeModel) CytoplasmToNuclearRatio() float64 {
	return v.cytoplasm / (ratioEpsilon + v.nuclear)
}

func clampVolume(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

func clampFraction(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
