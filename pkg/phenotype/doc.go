// Package phenotype models cell behaviors as state machines of phases.
//
// A Phenotype is an ordered list of phases plus an optional stand-alone
// quiescent phase. Each Phase owns a VolumeModel that relaxes the cell's
// compartment volumes towards their targets every step, and decides via its
// transition policy (deterministic, stochastic, or custom) when the cell
// moves on. The host simulation steps the phenotype once per tick and reacts
// to the returned Outcome: divide the cell, remove it, or do nothing.
//
// Pre-built phenotypes (simple live, Ki67 cycles, flow cytometry cycles,
// apoptosis, necrosis) are available by name through New, and Attach equips
// host cell objects with independent clones. Randomness comes from an
// injected UniformSource so runs are reproducible.
package phenotype
