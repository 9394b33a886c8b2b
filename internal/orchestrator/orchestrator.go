// Package orchestrator fans scenario generation, solving, extraction and
// persistence out across a fixed worker pool. Every sample is an independent
// unit of work keyed by its sample id: workers share only the read-only base
// template and scalar configuration, so there is no locking at the task
// level and a failing sample cannot affect any other.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"gridgen/internal/caseload"
	"gridgen/internal/dataset"
	"gridgen/internal/extract"
	"gridgen/internal/manifest"
	"gridgen/internal/sampler"
	"gridgen/internal/scenario"
	"gridgen/pkg/grid"
)

// Config is the full configuration surface of a generation run. Validation
// failures are configuration errors: they are raised before any work is
// scheduled.
type Config struct {
	CaseName      string
	Samples       int
	Seed          int64
	PerturbFactor float64

	// Workers is the pool size; 0 means all available processing units.
	Workers int
	// SolveTimeout bounds one solve attempt; 0 disables the bound. A timed
	// out sample surfaces as failure kind "timeout" and the stalled solve is
	// abandoned rather than allowed to block pool drain.
	SolveTimeout time.Duration

	// Solar overlay. All three must be set together; TimeHour selects the
	// diurnal position, penetration the bus fraction, max power the upper
	// capacity bound.
	TimeHour         *int
	SolarPenetration float64
	MaxSolarPower    float64
	SolarVariability float64
}

// SolarEnabled reports whether the run includes the diurnal solar dimension.
func (c Config) SolarEnabled() bool {
	return c.TimeHour != nil || c.SolarPenetration != 0 || c.MaxSolarPower != 0
}

// Validate enforces the configuration contract.
func (c Config) Validate() error {
	if !caseload.Supported(c.CaseName) {
		return fmt.Errorf("%w: %q", caseload.ErrUnknownCase, c.CaseName)
	}
	if c.Samples < 1 {
		return fmt.Errorf("samples must be >= 1, got %d", c.Samples)
	}
	if c.PerturbFactor < 0 {
		return fmt.Errorf("perturbation factor must be >= 0, got %g", c.PerturbFactor)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.SolveTimeout < 0 {
		return fmt.Errorf("solve timeout must be >= 0, got %s", c.SolveTimeout)
	}
	if c.SolarEnabled() {
		if c.TimeHour == nil {
			return fmt.Errorf("solar run requires a time hour")
		}
		if h := *c.TimeHour; h < 0 || h > 23 {
			return fmt.Errorf("time hour must be in [0,23], got %d", h)
		}
		if c.SolarPenetration <= 0 || c.SolarPenetration > 1 {
			return fmt.Errorf("solar penetration must be in (0,1], got %g", c.SolarPenetration)
		}
		if c.MaxSolarPower < sampler.MinCapacity {
			return fmt.Errorf("max solar power must be >= %g, got %g", sampler.MinCapacity, c.MaxSolarPower)
		}
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Report aggregates one run's outcome.
type Report struct {
	RunID     string
	Attempted int
	Converged int
	Written   int
	Failures  map[grid.FailureKind]int
}

// Runner executes one generation run end to end.
type Runner struct {
	cfg    Config
	base   *grid.Case
	solver grid.Solver
	writer *dataset.Writer
	ledger manifest.Store // optional
	log    *slog.Logger
}

// New validates the configuration and assembles a runner. ledger may be nil
// when no run bookkeeping is wanted.
func New(cfg Config, base *grid.Case, solver grid.Solver, writer *dataset.Writer, ledger manifest.Store, log *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("base case required")
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if solver == nil {
		return nil, fmt.Errorf("solver required")
	}
	if writer == nil {
		return nil, fmt.Errorf("dataset writer required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, base: base, solver: solver, writer: writer, ledger: ledger, log: log}, nil
}

// Run generates the whole batch: one task per sample id in [0, Samples),
// solved on the pool, gathered, then persisted. Collection order is
// irrelevant — each result lands in the slot of its sample id. Returns the
// aggregate report; per-sample failures never surface as errors.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	builder := scenario.Builder{
		Base:    r.base,
		Perturb: sampler.Perturber{Factor: r.cfg.PerturbFactor},
	}
	if r.cfg.SolarEnabled() {
		builder.Solar = &sampler.SolarModel{
			Penetration: r.cfg.SolarPenetration,
			MaxPower:    r.cfg.MaxSolarPower,
			Variability: r.cfg.SolarVariability,
		}
		builder.TimeHour = r.cfg.TimeHour
	}

	runID := manifest.NewRunID()
	started := time.Now().UTC()
	workers := r.cfg.workers()
	r.log.Info("run starting",
		"run_id", runID, "case", r.cfg.CaseName, "samples", r.cfg.Samples,
		"seed", r.cfg.Seed, "workers", workers, "solar", r.cfg.SolarEnabled())

	results := make([]grid.SimulationResult, r.cfg.Samples)
	ids := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				results[id] = r.solveOne(ctx, builder, id)
			}
		}()
	}
	for id := 0; id < r.cfg.Samples; id++ {
		ids <- id
	}
	close(ids)
	wg.Wait()

	report := Report{RunID: runID, Attempted: r.cfg.Samples, Failures: make(map[grid.FailureKind]int)}
	records := make([]manifest.SampleRecord, 0, len(results))
	for _, res := range results {
		if res.Converged {
			report.Converged++
		} else {
			report.Failures[res.Failure]++
			r.log.Warn("sample failed", "run_id", runID, "sample_id", res.SampleID,
				"failure", string(res.Failure), "diag", res.Diag)
		}
		written, keys, err := r.writer.Write(ctx, r.cfg.CaseName, res)
		if err != nil {
			r.log.Error("write failed", "run_id", runID, "sample_id", res.SampleID, "err", err)
		} else if written {
			report.Written++
			artifactsWritten.Add(float64(len(keys)))
		}
		records = append(records, manifest.SampleRecord{
			SampleID:     res.SampleID,
			Converged:    res.Converged,
			Failure:      res.Failure,
			Diag:         res.Diag,
			ArtifactKeys: keys,
		})
	}

	if r.ledger != nil {
		rec := manifest.RunRecord{
			ID:         runID,
			CaseName:   r.cfg.CaseName,
			Seed:       r.cfg.Seed,
			Samples:    r.cfg.Samples,
			Workers:    workers,
			TimeHour:   r.cfg.TimeHour,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Written:    report.Written,
			Results:    records,
		}
		if err := r.ledger.SaveRun(ctx, rec); err != nil {
			r.log.Error("manifest save failed", "run_id", runID, "err", err)
		}
	}

	r.log.Info("run finished", "run_id", runID,
		"written", report.Written, "converged", report.Converged, "attempted", report.Attempted)
	return report, nil
}

// solveOne executes a single unit of work. Failures of any kind, including
// solver panics, are confined here and converted into a non-converged result;
// they never propagate to the pool.
func (r *Runner) solveOne(ctx context.Context, builder scenario.Builder, sampleID int) (res grid.SimulationResult) {
	timer := time.Now()
	defer func() {
		solveDuration.Observe(time.Since(timer).Seconds())
		if p := recover(); p != nil {
			res = grid.SimulationResult{
				SampleID: sampleID,
				Failure:  grid.FailureSolverFault,
				Diag:     fmt.Sprintf("panic: %v", p),
			}
		}
		samplesTotal.WithLabelValues(outcomeLabel(res)).Inc()
	}()

	sc := builder.Build(r.cfg.Seed, sampleID)

	if r.cfg.SolveTimeout <= 0 {
		return extract.FromOutcome(sc, r.solver.Solve(ctx, sc))
	}

	tctx, cancel := context.WithTimeout(ctx, r.cfg.SolveTimeout)
	defer cancel()
	done := make(chan grid.Outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- grid.Fault(fmt.Sprintf("panic: %v", p))
			}
		}()
		done <- r.solver.Solve(tctx, sc)
	}()
	select {
	case out := <-done:
		return extract.FromOutcome(sc, out)
	case <-tctx.Done():
		// The stalled solve goroutine is abandoned; it holds only
		// task-private state.
		return extract.Timeout(sc)
	}
}

func outcomeLabel(res grid.SimulationResult) string {
	if res.Converged {
		return "converged"
	}
	return string(res.Failure)
}
