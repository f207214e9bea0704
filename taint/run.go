package taint

import (
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

// Run attaches a Manager for cfg to solver, runs solver to fixpoint from
// entry, and returns the deterministically-ordered set of discovered flows
//. solver must not have been analyzed yet: taint sources need to
// be seeded as call sites resolve, not replayed afterward.
func Run(cfg *Config, solver *pointer.Solver, methods []ir.Method, entry ir.Method) []Flow {
	m := New(cfg, methods)
	m.Attach(solver)
	solver.Analyze(entry)
	return m.Finish(solver)
}
