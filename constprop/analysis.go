package constprop

import (
	"github.com/wpago/wpago/dataflow"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
)

// Analysis is the intra-procedural constant-propagation instantiation of
// dataflow.Analysis. The zero value is ready to use.
type Analysis struct{}

var _ dataflow.Analysis[lattice.CPFact] = Analysis{}

func (Analysis) IsForward() bool { return true }

func (Analysis) NewInitialFact() *lattice.CPFact { return lattice.NewCPFact() }

// NewBoundaryFact sets every parameter to NAC and leaves locals absent
// (UNDEF).
func (Analysis) NewBoundaryFact(cfg ir.CFG) *lattice.CPFact {
	fact := lattice.NewCPFact()
	for _, p := range cfg.Method().Params() {
		if ir.CanHoldInt(p) {
			fact.Set(p, lattice.NotAConstant)
		}
	}
	return fact
}

func (Analysis) MeetInto(dst, src *lattice.CPFact) bool {
	return lattice.MeetInto(dst, src)
}

// TransferNode implements the node rule: AssignStmt evaluates its RValue
// into its LValue; every other statement kind is a pass-through that copies
// IN to OUT unchanged.
func (Analysis) TransferNode(stmt ir.Stmt, in, out *lattice.CPFact) bool {
	assign, ok := stmt.(*ir.AssignStmt)
	if !ok {
		before := out.Copy()
		in.CopyInto(out)
		return !lattice.EqualFact(before, out)
	}

	next := in.Copy()
	if ir.CanHoldInt(assign.LValue) {
		next.Set(assign.LValue, Evaluate(assign.RValue, in))
	}

	changed := !lattice.EqualFact(out, next)
	next.CopyInto(out)
	return changed
}
