// Package extract converts solver outcomes into the fixed-schema numeric
// tables persisted by the dataset writer.
package extract

import (
	"gonum.org/v1/gonum/mat"

	"gridgen/pkg/grid"
)

// FromOutcome builds the SimulationResult for one solved scenario. Converged
// outcomes yield dense bus/line tables preserving the solver's native row
// ordering; row i always corresponds to the same bus/branch across calls for
// the same network structure. Non-converged outcomes yield a table-free
// result carrying only the failure kind and a log-only diagnostic.
func FromOutcome(sc *grid.Scenario, out grid.Outcome) grid.SimulationResult {
	res := grid.SimulationResult{SampleID: sc.SampleID, TimeHour: sc.TimeHour}

	switch out.Kind {
	case grid.OutcomeNotConverged:
		res.Failure = grid.FailureNonConvergence
		res.Diag = "power flow did not converge"
		return res
	case grid.OutcomeFault:
		res.Failure = grid.FailureSolverFault
		res.Diag = out.Reason
		return res
	}

	sol := out.Solution
	res.Converged = true
	res.Failure = grid.FailureNone

	nBus := len(sol.BusVoltage)
	bus := mat.NewDense(nBus, 3, nil)
	for i := 0; i < nBus; i++ {
		bus.Set(i, 0, sol.BusVoltage[i])
		bus.Set(i, 1, sol.BusP[i])
		bus.Set(i, 2, sol.BusQ[i])
	}
	res.BusTable = bus

	nBranch := len(sol.BranchFlow)
	line := mat.NewDense(nBranch, 4, nil)
	for i, f := range sol.BranchFlow {
		for j := 0; j < 4; j++ {
			line.Set(i, j, f[j])
		}
	}
	res.LineTable = line

	if len(sc.Solar) > 0 {
		st := &grid.SolarTable{
			Bus: make([]int64, len(sc.Solar)),
			P:   make([]float64, len(sc.Solar)),
			Q:   make([]float64, len(sc.Solar)),
		}
		for i, u := range sc.Solar {
			st.Bus[i] = int64(u.Bus)
			st.P[i] = u.P
			st.Q[i] = u.Q
		}
		res.Solar = st
	}
	return res
}

// Timeout builds the table-free result for a sample whose solve exceeded the
// per-task deadline.
func Timeout(sc *grid.Scenario) grid.SimulationResult {
	return grid.SimulationResult{
		SampleID: sc.SampleID,
		TimeHour: sc.TimeHour,
		Failure:  grid.FailureTimeout,
		Diag:     "solve exceeded per-task timeout",
	}
}
