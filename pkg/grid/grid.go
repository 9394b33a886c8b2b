// Package grid holds the domain model shared across the generator: immutable
// case templates, per-sample scenarios, solver outcomes and extracted results.
// It must not depend on any internal implementation packages.
package grid

import "fmt"

// Bus is a network node where generation, load, or pure transmission occurs.
type Bus struct {
	Index int     `json:"index"`
	VBase float64 `json:"v_base_kv,omitempty"`
}

// Generator specifies nominal active power injected at a bus.
type Generator struct {
	Bus int     `json:"bus"`
	P   float64 `json:"p_mw"`
}

// Load specifies nominal active and reactive power withdrawn at a bus.
type Load struct {
	Bus int     `json:"bus"`
	P   float64 `json:"p_mw"`
	Q   float64 `json:"q_mvar"`
}

// Branch connects two buses and carries power flow between them.
type Branch struct {
	From int     `json:"from"`
	To   int     `json:"to"`
	R    float64 `json:"r_pu,omitempty"`
	X    float64 `json:"x_pu,omitempty"`
}

// SolarUnit is a synthetic generation record injected at a bus. Reactive power
// is always zero for solar injections.
type SolarUnit struct {
	Bus int     `json:"bus"`
	P   float64 `json:"p_mw"`
	Q   float64 `json:"q_mvar"`
}

// Case is an immutable template grid. It is loaded once per run and never
// mutated; every sample derives its own private copy via Clone.
type Case struct {
	Name       string      `json:"name"`
	Buses      []Bus       `json:"buses"`
	Generators []Generator `json:"generators"`
	Loads      []Load      `json:"loads"`
	Branches   []Branch    `json:"branches"`
}

// Clone returns a deep copy of the case. Mutating the copy leaves the
// receiver untouched.
func (c *Case) Clone() *Case {
	dup := &Case{Name: c.Name}
	dup.Buses = append([]Bus(nil), c.Buses...)
	dup.Generators = append([]Generator(nil), c.Generators...)
	dup.Loads = append([]Load(nil), c.Loads...)
	dup.Branches = append([]Branch(nil), c.Branches...)
	return dup
}

// Validate checks structural consistency: non-empty bus and branch sets and
// every generator, load and branch endpoint referencing a bus index in range.
// A case without branches carries no network to solve, so it is rejected here
// rather than surfacing later as a per-sample failure.
func (c *Case) Validate() error {
	n := len(c.Buses)
	if n == 0 {
		return fmt.Errorf("case %s: no buses", c.Name)
	}
	if len(c.Branches) == 0 {
		return fmt.Errorf("case %s: no branches", c.Name)
	}
	for i, g := range c.Generators {
		if g.Bus < 0 || g.Bus >= n {
			return fmt.Errorf("case %s: generator %d references bus %d (have %d buses)", c.Name, i, g.Bus, n)
		}
	}
	for i, l := range c.Loads {
		if l.Bus < 0 || l.Bus >= n {
			return fmt.Errorf("case %s: load %d references bus %d (have %d buses)", c.Name, i, l.Bus, n)
		}
	}
	for i, b := range c.Branches {
		if b.From < 0 || b.From >= n || b.To < 0 || b.To >= n {
			return fmt.Errorf("case %s: branch %d endpoints (%d,%d) out of range", c.Name, i, b.From, b.To)
		}
	}
	return nil
}

// Scenario is a fully composed per-sample network: a private, perturbed clone
// of the base case plus the sample identity and optional solar augmentation.
// Nothing outlives the worker task except the SimulationResult derived from it.
type Scenario struct {
	Case     *Case
	SampleID int
	Seed     int64
	TimeHour *int // nil when the run has no diurnal dimension
	Solar    []SolarUnit
}

// SampleSeed derives the deterministic per-sample seed. It is a pure function
// of its inputs: identical (base, sampleID) always yield the same seed.
func SampleSeed(base int64, sampleID int) int64 {
	return base + int64(sampleID)
}
