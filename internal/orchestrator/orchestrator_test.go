package orchestrator

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"gridgen/internal/blob"
	"gridgen/internal/dataset"
	"gridgen/internal/manifest"
	"gridgen/pkg/grid"
	"gridgen/testutil"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig(samples int) Config {
	return Config{
		CaseName:      "14",
		Samples:       samples,
		Seed:          42,
		PerturbFactor: 0.1,
		Workers:       4,
	}
}

func TestConfigValidate(t *testing.T) {
	good := baseConfig(10)
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := []Config{
		func() Config { c := baseConfig(10); c.CaseName = "9000"; return c }(),
		func() Config { c := baseConfig(0); return c }(),
		func() Config { c := baseConfig(10); c.PerturbFactor = -0.1; return c }(),
		func() Config { c := baseConfig(10); c.Workers = -1; return c }(),
		func() Config { c := baseConfig(10); c.SolveTimeout = -time.Second; return c }(),
		func() Config { c := baseConfig(10); c.SolarPenetration = 0.5; return c }(), // missing hour+power
		func() Config {
			c := baseConfig(10)
			h := 12
			c.TimeHour = &h
			c.SolarPenetration = 1.5
			c.MaxSolarPower = 10
			return c
		}(),
		func() Config {
			c := baseConfig(10)
			h := 24
			c.TimeHour = &h
			c.SolarPenetration = 0.5
			c.MaxSolarPower = 10
			return c
		}(),
		func() Config {
			c := baseConfig(10)
			h := 12
			c.TimeHour = &h
			c.SolarPenetration = 0.5
			return c
		}(), // missing max power
		func() Config {
			c := baseConfig(10)
			h := 12
			c.TimeHour = &h
			c.SolarPenetration = 0.5
			c.MaxSolarPower = 0.3 // below the capacity floor
			return c
		}(),
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("bad config %d accepted: %+v", i, c)
		}
	}
}

func TestRunCompleteness(t *testing.T) {
	const n = 20
	ledger := manifest.NewMemory()
	store := blob.NewMemory()
	r, err := New(baseConfig(n), testutil.TinyCase(), testutil.FlatSolver{}, dataset.NewWriter(store), ledger, quietLog())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Attempted != n || report.Converged != n || report.Written != n {
		t.Fatalf("report %+v", report)
	}

	runs, _ := ledger.ListRuns(context.Background())
	if len(runs) != 1 {
		t.Fatalf("runs recorded: %d", len(runs))
	}
	rec := runs[0]
	if len(rec.Results) != n {
		t.Fatalf("sample records: %d, want %d", len(rec.Results), n)
	}
	seen := make(map[int]bool)
	for _, sr := range rec.Results {
		if sr.SampleID < 0 || sr.SampleID >= n {
			t.Fatalf("sample id %d out of range", sr.SampleID)
		}
		if seen[sr.SampleID] {
			t.Fatalf("sample id %d recorded twice", sr.SampleID)
		}
		seen[sr.SampleID] = true
	}
}

func TestRunFailureIsolation(t *testing.T) {
	const n = 10
	store := blob.NewMemory()
	picky := testutil.PickySolver{Accept: func(id int) bool { return id%2 == 0 }}
	r, err := New(baseConfig(n), testutil.TinyCase(), picky, dataset.NewWriter(store), nil, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("per-sample failures must not surface as errors: %v", err)
	}
	if report.Converged != 5 || report.Written != 5 {
		t.Fatalf("report %+v", report)
	}
	if report.Failures[grid.FailureNonConvergence] != 5 {
		t.Fatalf("failures %+v", report.Failures)
	}
	infos, _ := store.List(context.Background(), "")
	if len(infos) != 10 { // 5 converged samples x (bus + line)
		t.Fatalf("artifact count %d, want 10", len(infos))
	}
	for _, info := range infos {
		for _, odd := range []string{"sample1_", "sample3_", "sample5_", "sample7_", "sample9_"} {
			if strings.Contains(info.Key, odd) {
				t.Fatalf("failed sample persisted: %s", info.Key)
			}
		}
	}
}

func TestRunSolverFaultRecorded(t *testing.T) {
	ledger := manifest.NewMemory()
	r, err := New(baseConfig(4), testutil.TinyCase(), testutil.FaultySolver{Reason: "bad matrix"}, dataset.NewWriter(blob.NewMemory()), ledger, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Written != 0 || report.Failures[grid.FailureSolverFault] != 4 {
		t.Fatalf("report %+v", report)
	}
	runs, _ := ledger.ListRuns(context.Background())
	if runs[0].Results[0].Diag != "bad matrix" {
		t.Fatalf("diag lost: %+v", runs[0].Results[0])
	}
}

func TestRunSolveTimeout(t *testing.T) {
	cfg := baseConfig(3)
	cfg.SolveTimeout = 20 * time.Millisecond
	r, err := New(cfg, testutil.TinyCase(), testutil.SlowSolver{Delay: time.Second}, dataset.NewWriter(blob.NewMemory()), nil, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Written != 0 || report.Failures[grid.FailureTimeout] != 3 {
		t.Fatalf("report %+v", report)
	}
}

func TestRunReproducibleDataset(t *testing.T) {
	generate := func() *blob.Memory {
		store := blob.NewMemory()
		r, err := New(baseConfig(3), testutil.TinyCase(), testutil.FlatSolver{}, dataset.NewWriter(store), nil, quietLog())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return store
	}
	read := func(store *blob.Memory, key string) []byte {
		_, rc, err := store.Get(context.Background(), key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	first := generate()
	second := generate()
	payloads := make([][]byte, 3)
	for id := 0; id < 3; id++ {
		key := dataset.Stem("14", id, nil) + "_bus.npy"
		a := read(first, key)
		b := read(second, key)
		if !bytes.Equal(a, b) {
			t.Fatalf("sample %d not reproducible across runs", id)
		}
		payloads[id] = a
	}
	// Distinct perturbations must yield distinct persisted tables.
	if bytes.Equal(payloads[0], payloads[1]) || bytes.Equal(payloads[1], payloads[2]) || bytes.Equal(payloads[0], payloads[2]) {
		t.Fatal("samples 0,1,2 produced identical bus tables")
	}
}

func TestRunEndToEndOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewFilesystem(dir)
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(baseConfig(3), testutil.TinyCase(), testutil.FlatSolver{}, dataset.NewWriter(store), nil, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Written != 3 {
		t.Fatalf("report %+v", report)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var bus, line int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_bus.npy") {
			bus++
		}
		if strings.HasSuffix(e.Name(), "_line.npy") {
			line++
		}
	}
	if bus != 3 || line != 3 {
		t.Fatalf("files on disk: %d bus, %d line (want 3 each)", bus, line)
	}
}

func TestRunWithSolarWritesArchive(t *testing.T) {
	cfg := baseConfig(2)
	hour := 12
	cfg.TimeHour = &hour
	cfg.SolarPenetration = 0.5
	cfg.MaxSolarPower = 5
	store := blob.NewMemory()
	r, err := New(cfg, testutil.TinyCase(), testutil.FlatSolver{}, dataset.NewWriter(store), nil, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	infos, _ := store.List(context.Background(), "")
	if len(infos) != 6 { // 2 samples x (bus + line + solar)
		t.Fatalf("artifact count %d, want 6", len(infos))
	}
	var npz int
	for _, info := range infos {
		if strings.HasSuffix(info.Key, "_solar_T_12.npz") {
			npz++
		}
		if strings.Contains(info.Key, "_bus") && !strings.Contains(info.Key, "_T_12") {
			t.Fatalf("time-indexed run missing hour suffix: %s", info.Key)
		}
	}
	if npz != 2 {
		t.Fatalf("solar archives %d, want 2", npz)
	}
}
