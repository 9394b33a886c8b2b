package grid

import "context"

// OutcomeKind discriminates the three-way solver outcome.
type OutcomeKind int

const (
	// OutcomeConverged means the solver found a voltage/power solution
	// satisfying network balance within its tolerance.
	OutcomeConverged OutcomeKind = iota
	// OutcomeNotConverged means the numerical method failed to reach a
	// solution within its iteration budget. Expected under aggressive
	// perturbation; non-fatal.
	OutcomeNotConverged
	// OutcomeFault means the solver raised an error for reasons other than
	// non-convergence (malformed network, internal error). Non-fatal at the
	// batch level and not retried.
	OutcomeFault
)

// Solution carries the converged network state in solver-native ordering.
// Row i always corresponds to the same bus/branch across calls for the same
// network structure; consumers must preserve that ordering.
type Solution struct {
	BusVoltage []float64    // per-unit voltage magnitude per bus
	BusP       []float64    // net active power per bus
	BusQ       []float64    // net reactive power per bus
	BranchFlow [][4]float64 // p_from, q_from, p_to, q_to per branch
}

// Outcome is the tagged result of a solve attempt.
type Outcome struct {
	Kind     OutcomeKind
	Reason   string    // diagnostic for OutcomeFault, log-only
	Solution *Solution // non-nil iff Kind == OutcomeConverged
}

// Converged wraps a solution in a successful outcome.
func Converged(sol *Solution) Outcome {
	return Outcome{Kind: OutcomeConverged, Solution: sol}
}

// NotConverged reports a numerical failure to reach a solution.
func NotConverged() Outcome {
	return Outcome{Kind: OutcomeNotConverged}
}

// Fault reports a solver-internal error with a diagnostic reason.
func Fault(reason string) Outcome {
	return Outcome{Kind: OutcomeFault, Reason: reason}
}

// Solver is the external power-flow collaborator. Implementations receive a
// fully composed scenario and report the three-way outcome; they must not
// retain or mutate the scenario after returning.
type Solver interface {
	Solve(ctx context.Context, sc *Scenario) Outcome
}
