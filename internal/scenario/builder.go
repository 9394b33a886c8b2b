// Package scenario composes per-sample network instances from an immutable
// base template.
package scenario

import (
	"gridgen/internal/sampler"
	"gridgen/pkg/grid"
)

// Builder derives perturbed, optionally solar-augmented scenarios from a
// shared read-only case template. One Builder is safe for concurrent use by
// many workers: Build never mutates the template and keeps no per-sample
// state on the receiver.
type Builder struct {
	Base     *grid.Case
	Perturb  sampler.Perturber
	Solar    *sampler.SolarModel // nil when the run has no solar dimension
	TimeHour *int                // required when Solar is set
}

// Build produces the fully composed scenario for one sample id. The random
// source is created here from the deterministic seed formula and threaded
// through every draw, so identical (baseSeed, sampleID) inputs always yield
// an identical scenario.
func (b Builder) Build(baseSeed int64, sampleID int) *grid.Scenario {
	seed := grid.SampleSeed(baseSeed, sampleID)
	rng := sampler.New(seed)

	c := b.Base.Clone()
	pert := b.Perturb.Draw(rng, c.Generators, c.Loads)
	for i := range c.Generators {
		c.Generators[i].P = pert.GenP[i]
	}
	for i := range c.Loads {
		c.Loads[i].P = pert.LoadP[i]
		c.Loads[i].Q = pert.LoadQ[i]
	}

	sc := &grid.Scenario{Case: c, SampleID: sampleID, Seed: seed}
	if b.Solar != nil && b.TimeHour != nil {
		hour := *b.TimeHour
		sc.TimeHour = &hour
		sc.Solar = b.Solar.Inject(rng, len(c.Buses), hour)
	}
	return sc
}
