// Package solver holds the built-in stand-in for the external power-flow
// collaborator. The real iterative engine is out of scope for this module;
// deployments inject it behind grid.Solver.
package solver

import (
	"context"

	"gridgen/pkg/grid"
)

// Flat always converges to a flat-start style state: every bus at 1.0 pu,
// net bus injections mirrored from the scenario's generator/load/solar
// tables, and zero branch flows. Useful for pipeline bring-up and tests; the
// output is structurally valid but not a physical power-flow solution.
type Flat struct{}

func (Flat) Solve(_ context.Context, sc *grid.Scenario) grid.Outcome {
	n := len(sc.Case.Buses)
	sol := &grid.Solution{
		BusVoltage: make([]float64, n),
		BusP:       make([]float64, n),
		BusQ:       make([]float64, n),
		BranchFlow: make([][4]float64, len(sc.Case.Branches)),
	}
	for i := range sol.BusVoltage {
		sol.BusVoltage[i] = 1.0
	}
	for _, g := range sc.Case.Generators {
		sol.BusP[g.Bus] += g.P
	}
	for _, l := range sc.Case.Loads {
		sol.BusP[l.Bus] -= l.P
		sol.BusQ[l.Bus] -= l.Q
	}
	for _, u := range sc.Solar {
		sol.BusP[u.Bus] += u.P
		sol.BusQ[u.Bus] += u.Q
	}
	return grid.Converged(sol)
}
