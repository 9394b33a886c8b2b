package grid

import "gonum.org/v1/gonum/mat"

// FailureKind classifies why a sample produced no solution. The kind is kept
// on the result (rather than collapsing everything to a boolean) so aggregate
// reporting can distinguish numerical non-convergence from solver faults and
// timeouts.
type FailureKind string

const (
	FailureNone           FailureKind = "none"
	FailureNonConvergence FailureKind = "non_convergence"
	FailureSolverFault    FailureKind = "solver_fault"
	FailureTimeout        FailureKind = "timeout"
)

// SolarTable lists the solar-augmented buses of a converged sample with the
// per-bus injected power, in assignment order.
type SolarTable struct {
	Bus []int64   // bus indices hosting a solar unit
	P   []float64 // injected active power (MW)
	Q   []float64 // injected reactive power (Mvar), zero by construction
}

// SimulationResult is the per-sample output of the pipeline. A result with
// Converged == false carries no tables and is never written to storage; Diag
// is for logging only and is not persisted in the dataset files.
type SimulationResult struct {
	SampleID  int
	TimeHour  *int
	Converged bool
	Failure   FailureKind
	Diag      string

	// BusTable has one row per bus in solver-native order with columns
	// [voltage_pu, active_power, reactive_power].
	BusTable *mat.Dense
	// LineTable has one row per branch in solver-native order with columns
	// [p_from, q_from, p_to, q_to].
	LineTable *mat.Dense
	// Solar is present only when the scenario included solar augmentation.
	Solar *SolarTable
}
