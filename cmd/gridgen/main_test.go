package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCapture(t *testing.T, args ...string) (int, string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stderr")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	code := run(args, f)
	b, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return code, string(b)
}

func TestRunBadFlag(t *testing.T) {
	code, _ := runCapture(t, "--no-such-flag")
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
}

func TestRunUnknownCase(t *testing.T) {
	code, out := runCapture(t, "--case", "9000")
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	if !strings.Contains(out, "unknown case") {
		t.Fatalf("stderr %q", out)
	}
}

func TestRunGeneratesDataset(t *testing.T) {
	dir := t.TempDir()
	code, out := runCapture(t,
		"--case", "14",
		"--samples", "2",
		"--seed", "7",
		"--workers", "2",
		"--output-dir", dir,
		"--manifest", "memory",
	)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, out)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 { // 2 samples x (bus + line)
		t.Fatalf("output files %d, want 4", len(entries))
	}
	for _, want := range []string{"case14_sample0_bus.npy", "case14_sample1_line.npy"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Fatalf("missing artifact %s", want)
		}
	}
}

func TestRunHelp(t *testing.T) {
	code, _ := runCapture(t, "--help")
	if code != 0 {
		t.Fatalf("exit code %d, want 0", code)
	}
}
