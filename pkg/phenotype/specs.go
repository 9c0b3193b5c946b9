package phenotype

// Built-in phase specifications. Each constructor returns a fresh PhaseSpec
// carrying the literature defaults for one well-known cycle or death phase;
// callers adjust fields before handing the spec to NewPhase or a Phenotype
// config. Durations are in minutes, matching the reference parameterizations
// (MCF-10A for the Ki67 family).

// senescentIndex keeps the stand-alone quiescent phase clearly outside any
// cycle's index range.
const senescentIndex = 9999

// SenescentSpec is the default stand-alone quiescent phase: a fixed sixty-day
// hold with all growth rates zeroed, outside the regular cycle indices.
func SenescentSpec() PhaseSpec {
	return PhaseSpec{
		Name:                      "senescent",
		Index:                     senescentIndex,
		PreviousPhaseIndex:        senescentIndex,
		NextPhaseIndex:            senescentIndex,
		FixedDuration:             true,
		Duration:                  Float64(60 * 24 * 60),
		CytoplasmVolumeChangeRate: Float64(0),
		NuclearVolumeChangeRate:   Float64(0),
		CalcificationRate:         Float64(0),
	}
}

// Ki67NegativeSpec is the Ki 67- quiescent phase of the Ki67 cycles:
// stochastic with a mean duration of 4.59 hours.
func Ki67NegativeSpec() PhaseSpec {
	return PhaseSpec{
		Name:               "Ki 67-",
		Index:              0,
		PreviousPhaseIndex: 1,
		NextPhaseIndex:     1,
		Duration:           Float64(4.59 * 60),
	}
}

// Ki67PositiveSpec is the proliferating phase of the basic Ki67 cycle: fixed
// 15.5 hours, divides at exit, doubles the target volumes on entry and halves
// them on exit. Omitted rates derive from the supplied compartment volumes so
// the cell grows to division size over one phase.
func Ki67PositiveSpec() PhaseSpec {
	return PhaseSpec{
		Name:                    "Ki 67+",
		Index:                   1,
		PreviousPhaseIndex:      0,
		NextPhaseIndex:          0,
		DivisionAtExit:          true,
		FixedDuration:           true,
		Duration:                Float64(15.5 * 60),
		Entry:                   DoubleTargetVolumes,
		Exit:                    HalveTargetVolumes,
		ComputeRatesFromVolumes: true,
	}
}

// Ki67PositivePreMitoticSpec is the growth half of the advanced Ki67 cycle:
// fixed 13 hours, divides at exit, halves targets on exit. It carries no
// entry hook; the post-mitotic rest phase finishes the volume bookkeeping.
func Ki67PositivePreMitoticSpec() PhaseSpec {
	return PhaseSpec{
		Name:                    "Ki 67+ pre-mitotic",
		Index:                   1,
		PreviousPhaseIndex:      0,
		NextPhaseIndex:          2,
		DivisionAtExit:          true,
		FixedDuration:           true,
		Duration:                Float64(13 * 60),
		Exit:                    HalveTargetVolumes,
		ComputeRatesFromVolumes: true,
	}
}

// Ki67PositivePostMitoticSpec is the rest half of the advanced Ki67 cycle:
// fixed 2.5 hours, halves the target volumes on entry.
func Ki67PositivePostMitoticSpec() PhaseSpec {
	return PhaseSpec{
		Name:               "Ki 67+ post-mitotic",
		Index:              2,
		PreviousPhaseIndex: 1,
		NextPhaseIndex:     0,
		DivisionAtExit:     true,
		FixedDuration:      true,
		Duration:           Float64(2.5 * 60),
		Entry:              HalveTargetVolumes,
	}
}

// G0G1Spec is the flow-cytometry quiescent phase: stochastic with a mean
// duration of 5.15 hours.
func G0G1Spec() PhaseSpec {
	return PhaseSpec{
		Name:               "G0/G1",
		Index:              0,
		PreviousPhaseIndex: 2,
		NextPhaseIndex:     1,
		Duration:           Float64(5.15 * 60),
	}
}

// SSpec is the synthesis phase: stochastic with a mean duration of 8 hours,
// doubles the target volumes on entry. Omitted rates derive from the supplied
// compartment volumes.
func SSpec() PhaseSpec {
	return PhaseSpec{
		Name:                    "S",
		Index:                   1,
		PreviousPhaseIndex:      0,
		NextPhaseIndex:          2,
		Duration:                Float64(8 * 60),
		Entry:                   DoubleTargetVolumes,
		ComputeRatesFromVolumes: true,
	}
}

// G2MSpec is the combined G2/M phase: stochastic with a mean duration of
// 5 hours, divides at exit, doubles targets on entry and halves them on exit.
func G2MSpec() PhaseSpec {
	return PhaseSpec{
		Name:               "G2/M",
		Index:              2,
		PreviousPhaseIndex: 1,
		NextPhaseIndex:     0,
		DivisionAtExit:     true,
		Duration:           Float64(5 * 60),
		Entry:              DoubleTargetVolumes,
		Exit:               HalveTargetVolumes,
	}
}

// ApoptosisSpec is programmed cell death: fixed 8.6 hours, removal at exit,
// shrink rates from the reference parameterization, targets zeroed on entry.
func ApoptosisSpec() PhaseSpec {
	return PhaseSpec{
		Name:                      "Apoptosis",
		Index:                     0,
		PreviousPhaseIndex:        0,
		NextPhaseIndex:            0,
		RemovalAtExit:             true,
		FixedDuration:             true,
		Duration:                  Float64(8.6 * 60),
		Entry:                     ApoptosisEntry,
		CytoplasmVolumeChangeRate: Float64(1.0 / 60),
		NuclearVolumeChangeRate:   Float64(0.35 / 60),
		FluidChangeRate:           Float64(3.0 / 60),
		CalcificationRate:         Float64(0),
		Volume:                    VolumeConfig{RelativeRuptureVolume: Float64(2)},
	}
}

// NecrosisSwellSpec is the osmotic swelling half of necrosis. It has no
// meaningful duration; the cell leaves the phase when its total volume first
// exceeds the rupture volume armed on entry, however long that takes.
func NecrosisSwellSpec() PhaseSpec {
	return PhaseSpec{
		Name:                      "Necrotic (swelling)",
		Index:                     0,
		PreviousPhaseIndex:        0,
		NextPhaseIndex:            1,
		Duration:                  Float64(9e99),
		Entry:                     NecrosisSwellEntry,
		Transition:                RupturePredicate,
		CytoplasmVolumeChangeRate: Float64(0.0032 / 60),
		NuclearVolumeChangeRate:   Float64(0.013 / 60),
		FluidChangeRate:           Float64(0.67 / 60),
		CalcificationRate:         Float64(0.0042 / 60),
		Volume:                    VolumeConfig{RelativeRuptureVolume: Float64(2)},
	}
}

// NecrosisLysedSpec is the ruptured necrotic fragment: removal at exit after
// a fixed sixty-day safeguard (the cell should be gone long before then).
func NecrosisLysedSpec() PhaseSpec {
	return PhaseSpec{
		Name:                      "Necrotic (lysed)",
		Index:                     1,
		PreviousPhaseIndex:        0,
		NextPhaseIndex:            -1,
		RemovalAtExit:             true,
		FixedDuration:             true,
		Duration:                  Float64(60 * 60 * 24),
		Entry:                     NecrosisLysedEntry,
		CytoplasmVolumeChangeRate: Float64(0.0032 / 60),
		NuclearVolumeChangeRate:   Float64(0.013 / 60),
		FluidChangeRate:           Float64(0.050 / 60),
		CalcificationRate:         Float64(0.0042 / 60),
		Volume:                    VolumeConfig{RelativeRuptureVolume: Float64(9e99)},
	}
}
