// Package sampler implements the stochastic layer of the generator: relative
// Normal perturbation of injected power and the diurnal solar model. Every
// draw consumes an explicit *rand.Rand so a sample is fully reproducible from
// its derived seed; no function touches global random state.
package sampler

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"gridgen/pkg/grid"
)

// New returns the seeded random source for one sample. Callers derive the
// seed with grid.SampleSeed and thread the source through every draw.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(uint64(seed)))
}

// Perturber draws per-sample deviations for active/reactive power injections.
// Each value is drawn independently from Normal(mean=original,
// sd=Factor*|original|): zero-mean relative noise whose spread scales with
// magnitude. No clamping is applied — perturbed power may go negative even
// where the original was positive. That is intentional model behavior.
type Perturber struct {
	// Factor is the relative standard deviation, >= 0.
	Factor float64
}

// Perturbation holds freshly drawn power values, index-aligned with the
// generator and load tables they were drawn from. The caller applies them to
// its own network copy; the tables passed to Draw are never modified.
type Perturbation struct {
	GenP  []float64
	LoadP []float64
	LoadQ []float64
}

// Draw samples a full perturbation for the given tables. The draw order is
// fixed (generators, then each load's P and Q) so a given source always
// yields the same perturbation.
func (p Perturber) Draw(rng *rand.Rand, gens []grid.Generator, loads []grid.Load) Perturbation {
	out := Perturbation{
		GenP:  make([]float64, len(gens)),
		LoadP: make([]float64, len(loads)),
		LoadQ: make([]float64, len(loads)),
	}
	for i, g := range gens {
		out.GenP[i] = p.perturb(rng, g.P)
	}
	for i, l := range loads {
		out.LoadP[i] = p.perturb(rng, l.P)
		out.LoadQ[i] = p.perturb(rng, l.Q)
	}
	return out
}

// perturb draws one value. A zero original (or zero factor) degenerates the
// scale to zero, so the value passes through exactly and consumes no draw.
func (p Perturber) perturb(rng *rand.Rand, v float64) float64 {
	sigma := p.Factor * math.Abs(v)
	if sigma == 0 {
		return v
	}
	return distuv.Normal{Mu: v, Sigma: sigma, Src: rng}.Rand()
}
