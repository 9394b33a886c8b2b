package caseload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSupported(t *testing.T) {
	for _, name := range []string{"14", "118", "6470rte"} {
		if !Supported(name) {
			t.Fatalf("case %s not supported", name)
		}
	}
	if Supported("9000") {
		t.Fatal("bogus case supported")
	}
}

func TestResolveEmbedded14(t *testing.T) {
	c, err := Resolve("14", t.TempDir())
	if err != nil {
		t.Fatalf("resolve embedded case: %v", err)
	}
	if len(c.Buses) != 14 {
		t.Fatalf("bus count %d, want 14", len(c.Buses))
	}
	if len(c.Generators) == 0 || len(c.Loads) == 0 || len(c.Branches) == 0 {
		t.Fatalf("embedded case incomplete: %d gens, %d loads, %d branches",
			len(c.Generators), len(c.Loads), len(c.Branches))
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("embedded case invalid: %v", err)
	}
}

func TestResolveUnknownCase(t *testing.T) {
	_, err := Resolve("9000", t.TempDir())
	if !errors.Is(err, ErrUnknownCase) {
		t.Fatalf("want ErrUnknownCase, got %v", err)
	}
}

func TestResolveMissingCaseFile(t *testing.T) {
	if _, err := Resolve("118", t.TempDir()); err == nil {
		t.Fatal("118 without a case file succeeded")
	}
}

func TestResolvePrefersDirFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`{
		"name": "custom14",
		"buses": [{"index": 0}, {"index": 1}],
		"generators": [{"bus": 0, "p_mw": 10}],
		"loads": [{"bus": 1, "p_mw": 5, "q_mvar": 1}],
		"branches": [{"from": 0, "to": 1, "r_pu": 0.01, "x_pu": 0.05}]
	}`)
	if err := os.WriteFile(filepath.Join(dir, "case14.json"), body, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Resolve("14", dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Name != "custom14" || len(c.Buses) != 2 {
		t.Fatalf("embedded template used instead of dir file: %+v", c)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	garbled := filepath.Join(dir, "garbled.json")
	if err := os.WriteFile(garbled, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbled); err == nil {
		t.Fatal("garbled JSON accepted")
	}

	// Structurally valid JSON, semantically broken: generator on a bus that
	// does not exist.
	invalid := filepath.Join(dir, "invalid.json")
	body := []byte(`{"name":"bad","buses":[{"index":0}],"generators":[{"bus":5,"p_mw":1}]}`)
	if err := os.WriteFile(invalid, body, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); err == nil {
		t.Fatal("out-of-range generator accepted")
	}

	// Buses but no branches: parses, but there is no network to solve.
	branchless := filepath.Join(dir, "branchless.json")
	body = []byte(`{"name":"isolated","buses":[{"index":0},{"index":1}],"generators":[{"bus":0,"p_mw":1}]}`)
	if err := os.WriteFile(branchless, body, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(branchless); err == nil {
		t.Fatal("branch-less case accepted")
	}

	if _, err := Load(filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("missing file accepted")
	}
}
