package phenotype

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewVolumeModelDefaults(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("default volume model: %v", err)
	}

	if !almostEqual(v.Total(), 2494, 1e-9) {
		t.Fatalf("total = %g, want 2494", v.Total())
	}
	if !almostEqual(v.Nuclear(), 540, 1e-9) {
		t.Fatalf("nuclear = %g, want 540", v.Nuclear())
	}
	if !almostEqual(v.NuclearFluid(), 540*0.75, 1e-9) {
		t.Fatalf("nuclear fluid = %g, want %g", v.NuclearFluid(), 540*0.75)
	}
	if !almostEqual(v.CytoplasmSolid(), 1954*0.25, 1e-9) {
		t.Fatalf("cytoplasm solid = %g, want %g", v.CytoplasmSolid(), 1954*0.25)
	}
	if !almostEqual(v.FluidFraction(), 0.75, 1e-9) {
		t.Fatalf("fluid fraction = %g, want 0.75", v.FluidFraction())
	}
	if !almostEqual(v.RuptureVolume(), 100*2494, 1e-6) {
		t.Fatalf("rupture volume = %g, want %g", v.RuptureVolume(), 100.0*2494)
	}
	if got, want := v.TargetCytoplasmToNuclearRatio(), 1954.0/(1e-16+540.0); !almostEqual(got, want, 1e-9) {
		t.Fatalf("target C:N ratio = %g, want %g", got, want)
	}
	if v.NuclearSolidTarget() != v.NuclearSolid() {
		t.Fatalf("nuclear solid target %g should default to nuclear solid %g", v.NuclearSolidTarget(), v.NuclearSolid())
	}
}

func TestNewVolumeModelDerivesFromSuppliedFraction(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{TargetFluidFraction: Float64(0.5)})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}
	if !almostEqual(v.NuclearFluid(), 270, 1e-9) {
		t.Fatalf("nuclear fluid = %g, want 270", v.NuclearFluid())
	}
	if !almostEqual(v.CytoplasmFluid(), 977, 1e-9) {
		t.Fatalf("cytoplasm fluid = %g, want 977", v.CytoplasmFluid())
	}
}

func TestNewVolumeModelValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  VolumeConfig
	}{
		{"fluid fraction above one", VolumeConfig{TargetFluidFraction: Float64(1.5)}},
		{"negative fluid fraction", VolumeConfig{TargetFluidFraction: Float64(-0.1)}},
		{"negative nuclear fluid", VolumeConfig{NuclearFluid: Float64(-1)}},
		{"negative nuclear solid", VolumeConfig{NuclearSolid: Float64(-1)}},
		{"negative nuclear solid target", VolumeConfig{NuclearSolidTarget: Float64(-1)}},
		{"negative cytoplasm fluid", VolumeConfig{CytoplasmFluid: Float64(-1)}},
		{"negative cytoplasm solid", VolumeConfig{CytoplasmSolid: Float64(-1)}},
		{"negative cytoplasm solid target", VolumeConfig{CytoplasmSolidTarget: Float64(-1)}},
		{"negative ratio", VolumeConfig{TargetCytoplasmToNuclearRatio: Float64(-1)}},
		{"calcified fraction above one", VolumeConfig{CalcifiedFraction: Float64(2)}},
		{"negative rupture volume", VolumeConfig{RelativeRuptureVolume: Float64(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewVolumeModel(tc.cfg); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestVolumeSettersClamp(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}

	v.SetNuclearSolid(-5)
	if v.NuclearSolid() != 0 {
		t.Fatalf("nuclear solid = %g, want clamp to 0", v.NuclearSolid())
	}
	v.SetCytoplasmFluid(-0.001)
	if v.CytoplasmFluid() != 0 {
		t.Fatalf("cytoplasm fluid = %g, want clamp to 0", v.CytoplasmFluid())
	}
	v.SetTargetFluidFraction(1.7)
	if v.TargetFluidFraction() != 1 {
		t.Fatalf("target fluid fraction = %g, want clamp to 1", v.TargetFluidFraction())
	}
	v.SetCalcifiedFraction(-0.2)
	if v.CalcifiedFraction() != 0 {
		t.Fatalf("calcified fraction = %g, want clamp to 0", v.CalcifiedFraction())
	}
}

func TestUpdateConvergesToTargets(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}

	for i := 0; i < 20000; i++ {
		v.Update(1, defaultFluidChangeRate, defaultNuclearChangeRate, defaultCytoplasmChangeRate, 0)
	}

	if !almostEqual(v.NuclearSolid(), v.NuclearSolidTarget(), 1e-6) {
		t.Fatalf("nuclear solid %g did not converge to target %g", v.NuclearSolid(), v.NuclearSolidTarget())
	}
	if !almostEqual(v.FluidFraction(), v.TargetFluidFraction(), 1e-6) {
		t.Fatalf("fluid fraction %g did not converge to target %g", v.FluidFraction(), v.TargetFluidFraction())
	}
	if !almostEqual(v.CytoplasmSolid(), v.CytoplasmSolidTarget(), 1e-6) {
		t.Fatalf("cytoplasm solid %g did not converge to target %g", v.CytoplasmSolid(), v.CytoplasmSolidTarget())
	}
}

// TestUpdateUsesPreUpdateRatioForFluidSplit pins down the evaluation order of
// Update: the nuclear/cytoplasm fluid split uses the nuclear/total ratio from
// before the update, and the measured fluid fraction divides by total+1e-12.
func TestUpdateUsesPreUpdateRatioForFluidSplit(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}

	const (
		dt        = 1.0
		fluidRate = defaultFluidChangeRate
		nuclRate  = defaultNuclearChangeRate
		cytoRate  = defaultCytoplasmChangeRate
	)

	fluidPre := v.Fluid()
	totalPre := v.Total()
	nuclearPre := v.Nuclear()
	nuclSolidPre := v.NuclearSolid()
	cytoSolidPre := v.CytoplasmSolid()
	tff := v.TargetFluidFraction()
	ratio := v.TargetCytoplasmToNuclearRatio()
	nst := v.NuclearSolidTarget()

	v.Update(dt, fluidRate, nuclRate, cytoRate, 0)

	fluidWant := tff*totalPre + (fluidPre-tff*totalPre)*math.Exp(-fluidRate*dt)
	if !almostEqual(v.Fluid(), fluidWant, 1e-9) {
		t.Fatalf("fluid = %g, want %g", v.Fluid(), fluidWant)
	}

	nuclFluidWant := (nuclearPre / (totalPre + 1e-12)) * fluidWant
	if !almostEqual(v.NuclearFluid(), nuclFluidWant, 1e-9) {
		t.Fatalf("nuclear fluid = %g, want %g (split by pre-update ratio)", v.NuclearFluid(), nuclFluidWant)
	}
	if !almostEqual(v.CytoplasmFluid(), fluidWant-nuclFluidWant, 1e-9) {
		t.Fatalf("cytoplasm fluid = %g, want %g", v.CytoplasmFluid(), fluidWant-nuclFluidWant)
	}

	nuclSolidWant := nst + (nuclSolidPre-nst)*math.Exp(-nuclRate*dt)
	if !almostEqual(v.NuclearSolid(), nuclSolidWant, 1e-9) {
		t.Fatalf("nuclear solid = %g, want %g", v.NuclearSolid(), nuclSolidWant)
	}

	cstWant := ratio * nst
	if !almostEqual(v.CytoplasmSolidTarget(), cstWant, 1e-9) {
		t.Fatalf("cytoplasm solid target = %g, want %g", v.CytoplasmSolidTarget(), cstWant)
	}
	cytoSolidWant := cstWant + (cytoSolidPre-cstWant)*math.Exp(-cytoRate*dt)
	if !almostEqual(v.CytoplasmSolid(), cytoSolidWant, 1e-9) {
		t.Fatalf("cytoplasm solid = %g, want %g", v.CytoplasmSolid(), cytoSolidWant)
	}

	totalWant := v.Nuclear() + v.Cytoplasm()
	if !almostEqual(v.Total(), totalWant, 1e-9) {
		t.Fatalf("total = %g, want %g", v.Total(), totalWant)
	}
	if !almostEqual(v.FluidFraction(), v.Fluid()/(totalWant+1e-12), 1e-12) {
		t.Fatalf("fluid fraction = %g, want %g", v.FluidFraction(), v.Fluid()/(totalWant+1e-12))
	}
}

func TestUpdateKeepsVolumesNonNegative(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}
	v.SetTargetFluidFraction(0)
	v.SetNuclearSolidTarget(0)
	v.SetCytoplasmSolidTarget(0)
	v.SetTargetCytoplasmToNuclearRatio(0)

	for i := 0; i < 5000; i++ {
		v.Update(1, 1.0/60, 0.35/60, 1.0/60, 0)
		for name, got := range map[string]float64{
			"nuclear fluid":   v.NuclearFluid(),
			"nuclear solid":   v.NuclearSolid(),
			"cytoplasm fluid": v.CytoplasmFluid(),
			"cytoplasm solid": v.CytoplasmSolid(),
			"total":           v.Total(),
		} {
			if got < 0 {
				t.Fatalf("step %d: %s went negative: %g", i, name, got)
			}
		}
	}
	if v.Total() > 1 {
		t.Fatalf("shrinking cell still has total %g", v.Total())
	}
}

func TestVolumeCloneIsIndependent(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}
	dup := v.Clone()
	dup.SetNuclearSolid(1)
	if v.NuclearSolid() == dup.NuclearSolid() {
		t.Fatalf("clone shares state with original")
	}
}

func TestVolumeHalve(t *testing.T) {
	v, err := NewVolumeModel(VolumeConfig{})
	if err != nil {
		t.Fatalf("volume model: %v", err)
	}
	totalBefore := v.Total()
	targetBefore := v.NuclearSolidTarget()

	v.Halve()

	if !almostEqual(v.Total(), totalBefore/2, 1e-9) {
		t.Fatalf("total after halve = %g, want %g", v.Total(), totalBefore/2)
	}
	if !almostEqual(v.NuclearSolidTarget(), targetBefore/2, 1e-9) {
		t.Fatalf("nuclear solid target after halve = %g, want %g", v.NuclearSolidTarget(), targetBefore/2)
	}
	if !almostEqual(v.FluidFraction(), 0.75, 1e-6) {
		t.Fatalf("fluid fraction after halve = %g, want 0.75", v.FluidFraction())
	}
}
