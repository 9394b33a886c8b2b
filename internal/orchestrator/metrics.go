package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridgen_samples_total",
		Help: "Samples processed, labeled by outcome (converged, non_convergence, solver_fault, timeout).",
	}, []string{"outcome"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridgen_solve_duration_seconds",
		Help:    "Wall time of one scenario build + solve + extract.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	artifactsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridgen_artifacts_written_total",
		Help: "Dataset artifact files written.",
	})
)
