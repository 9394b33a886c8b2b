// Package caseload loads immutable base-case templates. Templates are plain
// JSON case files supplied by the topology provider; the IEEE 14-bus case
// ships embedded so small runs and tests need no external files.
package caseload

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gridgen/pkg/grid"
)

//go:embed case14.json
var case14JSON []byte

// ErrUnknownCase reports an unsupported case name. It is a configuration
// error: callers must fail before any work is scheduled.
var ErrUnknownCase = errors.New("unknown case name")

// supportedCases are the reference topologies a run may name.
var supportedCases = map[string]struct{}{
	"14":      {},
	"118":     {},
	"6470rte": {},
}

// Supported reports whether name is a known reference case.
func Supported(name string) bool {
	_, ok := supportedCases[name]
	return ok
}

// Load reads and validates a JSON case file.
func Load(path string) (*grid.Case, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	return parse(b, path)
}

// Resolve returns the template for a case name. The 14-bus case falls back
// to the embedded template when no case file is present in dir; the larger
// cases must be provided as dir/case{NAME}.json.
func Resolve(name, dir string) (*grid.Case, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %q (want 14, 118 or 6470rte)", ErrUnknownCase, name)
	}
	path := filepath.Join(dir, "case"+name+".json")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	if name == "14" {
		return parse(case14JSON, "embedded case14")
	}
	return nil, fmt.Errorf("case %s: no case file at %s", name, path)
}

func parse(b []byte, origin string) (*grid.Case, error) {
	var c grid.Case
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", origin, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return &c, nil
}
