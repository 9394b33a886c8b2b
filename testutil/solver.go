// Package testutil provides solver doubles and toy case templates for
// exercising the pipeline without a real power-flow engine.
package testutil

import (
	"context"
	"time"

	"gridgen/internal/solver"
	"gridgen/pkg/grid"
)

// FlatSolver is the always-converging stand-in solver, re-exported for tests.
type FlatSolver = solver.Flat

// DivergingSolver never converges.
type DivergingSolver struct{}

func (DivergingSolver) Solve(context.Context, *grid.Scenario) grid.Outcome {
	return grid.NotConverged()
}

// FaultySolver always reports a solver-internal fault.
type FaultySolver struct {
	Reason string
}

func (s FaultySolver) Solve(context.Context, *grid.Scenario) grid.Outcome {
	reason := s.Reason
	if reason == "" {
		reason = "synthetic fault"
	}
	return grid.Fault(reason)
}

// SlowSolver sleeps for Delay before delegating to the flat solver. It
// deliberately ignores cancellation, emulating a stuck engine, so the
// per-task timeout path is exercised deterministically.
type SlowSolver struct {
	Delay time.Duration
}

func (s SlowSolver) Solve(ctx context.Context, sc *grid.Scenario) grid.Outcome {
	time.Sleep(s.Delay)
	return solver.Flat{}.Solve(ctx, sc)
}

// PickySolver converges only for sample ids accepted by Accept, reporting
// non-convergence otherwise. Handy for mixed-outcome orchestration tests.
type PickySolver struct {
	Accept func(sampleID int) bool
}

func (s PickySolver) Solve(ctx context.Context, sc *grid.Scenario) grid.Outcome {
	if s.Accept != nil && !s.Accept(sc.SampleID) {
		return grid.NotConverged()
	}
	return solver.Flat{}.Solve(ctx, sc)
}
