// Package lattice implements the constant-propagation abstract domain over
// 32-bit signed integers: the Value lattice and the CPFact total
// map from variables to Value.
package lattice

import "fmt"

// Kind tags a Value's position in the UNDEF ⊑ CONST(i) ⊑ NAC lattice.
type Kind int

const (
	Undef Kind = iota
	Const
	NAC
)

// Value is the constant-propagation abstract value: bottom (Undef), an exact
// 32-bit constant, or top (NAC, "not a constant").
type Value struct {
	kind Kind
	i32  int32
}

// Undefined is the bottom element; the zero Value is Undefined.
var Undefined = Value{kind: Undef}

// NotAConstant is the top element.
var NotAConstant = Value{kind: NAC}

// MakeConstant returns the Value for an exact known integer.
func MakeConstant(v int32) Value { return Value{kind: Const, i32: v} }

func (v Value) IsUndef() bool { return v.kind == Undef }
func (v Value) IsConstant() bool { return v.kind == Const }
func (v Value) IsNAC() bool      { return v.kind == NAC }

// Int returns the constant payload; only meaningful when IsConstant().
func (v Value) Int() int32 { return v.i32 }

func (v Value) String() string {
	switch v.kind {
	case Undef:
		return "UNDEF"
	case NAC:
		return "NAC"
	default:
		return fmt.Sprintf("%d", v.i32)
	}
}

// Meet implements the lattice's meet (⊓):
//
//	NAC ⊓ x        = NAC
//	UNDEF ⊓ x       = x
//	CONST(a)⊓CONST(b) = CONST(a) if a==b else NAC
//
// Meet is idempotent, commutative, and associative.
func Meet(a, b Value) Value {
	if a.kind == NAC || b.kind == NAC {
		return NotAConstant
	}
	if a.kind == Undef {
		return b
	}
	if b.kind == Undef {
		return a
	}
	// both Const
	if a.i32 == b.i32 {
		return a
	}
	return NotAConstant
}

// Equal reports whether a and b are the same lattice element.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	return a.kind != Const || a.i32 == b.i32
}
