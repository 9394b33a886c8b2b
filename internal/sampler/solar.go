package sampler

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"gridgen/pkg/grid"
)

// DefaultVariability is the cloud/variability factor applied to daylight
// output when no explicit factor is configured.
const DefaultVariability = 0.2

// MinCapacity is the lower bound of the installed-capacity draw (MW). MaxPower
// must not fall below it or the uniform capacity draw would invert its bounds.
const MinCapacity = 0.5

// SolarModel selects a bus subset and computes diurnal stochastic generation
// for each selected bus. Output follows a unimodal curve peaking at hour 12,
// zero outside daylight hours [6,18], with multiplicative uniform noise
// applied only inside daylight and a lower clamp at zero.
type SolarModel struct {
	Penetration float64 // fraction of buses hosting a unit, in (0,1]
	MaxPower    float64 // upper bound of the installed-capacity draw, >= MinCapacity
	Variability float64 // multiplicative noise half-width, defaults to DefaultVariability
}

// UnitCount returns the solar bus subset size: max(1, round(penetration*buses)).
func (m SolarModel) UnitCount(busCount int) int {
	k := int(math.Round(m.Penetration * float64(busCount)))
	if k < 1 {
		k = 1
	}
	return k
}

// Pick selects UnitCount distinct buses uniformly at random without
// replacement from the full bus index set.
func (m SolarModel) Pick(rng *rand.Rand, busCount int) []int {
	k := m.UnitCount(busCount)
	if k > busCount {
		k = busCount
	}
	perm := rng.Perm(busCount)
	return append([]int(nil), perm[:k]...)
}

// Output computes one unit's generated power for the given installed capacity
// and hour of day. Outside [6,18] output is exactly zero and no draw is
// consumed; inside, the sine profile is scaled by U(1-rf, 1+rf) and clamped
// at zero so unfavorable noise draws cannot produce negative generation.
func (m SolarModel) Output(rng *rand.Rand, capacity float64, hour int) float64 {
	if hour < 6 || hour > 18 {
		return 0
	}
	base := capacity * math.Sin(math.Pi*float64(hour-6)/12)
	rf := m.Variability
	if rf == 0 {
		rf = DefaultVariability
	}
	noise := distuv.Uniform{Min: 1 - rf, Max: 1 + rf, Src: rng}.Rand()
	return math.Max(0, base*noise)
}

// Inject draws the full solar assignment for one sample: bus subset, per-bus
// installed capacity uniform in [0.5, MaxPower], and diurnal output. Every
// unit carries zero reactive power.
func (m SolarModel) Inject(rng *rand.Rand, busCount, hour int) []grid.SolarUnit {
	buses := m.Pick(rng, busCount)
	units := make([]grid.SolarUnit, 0, len(buses))
	for _, bus := range buses {
		capacity := distuv.Uniform{Min: MinCapacity, Max: m.MaxPower, Src: rng}.Rand()
		units = append(units, grid.SolarUnit{Bus: bus, P: m.Output(rng, capacity, hour), Q: 0})
	}
	return units
}
