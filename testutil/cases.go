package testutil

import "gridgen/pkg/grid"

// TinyCase returns a 3-bus template with one generator (p=100) at bus 0, one
// load (p=50, q=20) at bus 1, and two branches. Small enough to reason about
// exact values in tests.
func TinyCase() *grid.Case {
	return &grid.Case{
		Name:  "tiny3",
		Buses: []grid.Bus{{Index: 0}, {Index: 1}, {Index: 2}},
		Generators: []grid.Generator{
			{Bus: 0, P: 100},
		},
		Loads: []grid.Load{
			{Bus: 1, P: 50, Q: 20},
		},
		Branches: []grid.Branch{
			{From: 0, To: 1, R: 0.01, X: 0.05},
			{From: 1, To: 2, R: 0.02, X: 0.07},
		},
	}
}
