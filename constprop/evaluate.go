// Package constprop instantiates the generic intra-procedural solver
// (package dataflow) as constant propagation over integer-like locals, and
// supplies the alias-aware inter-procedural extension for package interproc
// to build on.
package constprop

import (
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
)

// Evaluate computes the constant-propagation value of expr under the fact
// in's evaluation rules.
func Evaluate(expr ir.Expr, in *lattice.CPFact) lattice.Value {
	switch e := expr.(type) {
	case ir.IntLiteral:
		return lattice.MakeConstant(e.Value)
	case ir.VarExpr:
		if !ir.CanHoldInt(e.V) {
			return lattice.NotAConstant
		}
		return in.Get(e.V)
	case ir.BinaryExpr:
		return evaluateBinary(e, in)
	default:
		return lattice.NotAConstant
	}
}

func evaluateBinary(e ir.BinaryExpr, in *lattice.CPFact) lattice.Value {
	l, r := in.Get(e.L), in.Get(e.R)

	// Multiplication's zero short-circuit takes priority over UNDEF
	// propagation: 0 * NAC is still 0.
	if e.Op == ir.Mul {
		if (l.IsConstant() && l.Int() == 0) || (r.IsConstant() && r.Int() == 0) {
			return lattice.MakeConstant(0)
		}
	}

	if l.IsUndef() || r.IsUndef() {
		return lattice.Undefined
	}

	if e.Op == ir.Div || e.Op == ir.Rem {
		if r.IsConstant() && r.Int() == 0 {
			return lattice.Undefined
		}
	}

	if !l.IsConstant() || !r.IsConstant() {
		return lattice.NotAConstant
	}

	a, b := l.Int(), r.Int()
	switch e.Op {
	case ir.Add:
		return lattice.MakeConstant(a + b)
	case ir.Sub:
		return lattice.MakeConstant(a - b)
	case ir.Mul:
		return lattice.MakeConstant(a * b)
	case ir.Div:
		return lattice.MakeConstant(a / b)
	case ir.Rem:
		return lattice.MakeConstant(a % b)
	case ir.Lt:
		return boolConst(a < b)
	case ir.Gt:
		return boolConst(a > b)
	case ir.Le:
		return boolConst(a <= b)
	case ir.Ge:
		return boolConst(a >= b)
	case ir.Eq:
		return boolConst(a == b)
	case ir.Ne:
		return boolConst(a != b)
	case ir.Shl:
		return lattice.MakeConstant(a << (uint32(b) & 31))
	case ir.Shr:
		return lattice.MakeConstant(a >> (uint32(b) & 31))
	case ir.UShr:
		return lattice.MakeConstant(int32(uint32(a) >> (uint32(b) & 31)))
	case ir.And:
		return lattice.MakeConstant(a & b)
	case ir.Or:
		return lattice.MakeConstant(a | b)
	case ir.Xor:
		return lattice.MakeConstant(a ^ b)
	default:
		return lattice.NotAConstant
	}
}

func boolConst(b bool) lattice.Value {
	if b {
		return lattice.MakeConstant(1)
	}
	return lattice.MakeConstant(0)
}
