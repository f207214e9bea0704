package interproc

import (
	"github.com/wpago/wpago/dataflow"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
	"github.com/wpago/wpago/pointer"
)

// Run computes inter-procedural constant propagation over icfg. ptaSolver
// must already be analyzed with pointer.CIContextSelector{}, since CPFact is
// keyed by plain ir.Var.
func Run(icfg ir.ICFG, ptaSolver *pointer.Solver, entries []ir.Method) *dataflow.InterResult[lattice.CPFact] {
	groups := AliasGroups(icfg, ptaSolver)
	analysis := NewAnalysis(icfg, groups)
	return dataflow.SolveInter[lattice.CPFact](analysis, icfg, entries)
}
