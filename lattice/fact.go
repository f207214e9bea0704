package lattice

import (
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/util/orderedmap"
)

// CPFact is a total mapping from integer-holding variables to Value; an
// absent key denotes Undefined. It supports the pointwise meet,
// copy, and equality the dataflow solver (package dataflow) needs from any
// Fact type.
type CPFact struct {
	m *orderedmap.Map[ir.Var, Value]
}

// NewCPFact returns an empty fact (every variable implicitly Undefined).
func NewCPFact() *CPFact {
	return &CPFact{m: orderedmap.New[ir.Var, Value]()}
}

// Get returns the Value bound to v, or Undefined if v is unbound.
func (f *CPFact) Get(v ir.Var) Value {
	if f == nil {
		return Undefined
	}
	val, ok := f.m.Load(v)
	if !ok {
		return Undefined
	}
	return val
}

// Set binds v to val. Binding to Undefined removes the entry, keeping the
// map's "absent ≡ UNDEF" invariant and ordered-iteration size accurate.
func (f *CPFact) Set(v ir.Var, val Value) {
	if val.IsUndef() {
		f.m.Delete(v)
		return
	}
	f.m.Store(v, val)
}

// Vars returns the variables with a non-Undefined binding, in the order they
// were first set (useful for deterministic test output).
func (f *CPFact) Vars() []ir.Var {
	vars := make([]ir.Var, 0, f.m.Len())
	for _, p := range f.m.Pairs {
		vars = append(vars, p.Key)
	}
	return vars
}

// Copy returns a fresh CPFact with the same bindings as f.
func (f *CPFact) Copy() *CPFact {
	out := NewCPFact()
	for _, p := range f.m.Pairs {
		out.Set(p.Key, p.Value)
	}
	return out
}

// CopyInto overwrites dst's bindings with f's (dst is cleared first).
func (f *CPFact) CopyInto(dst *CPFact) {
	dst.m = orderedmap.New[ir.Var, Value]()
	for _, p := range f.m.Pairs {
		dst.Set(p.Key, p.Value)
	}
}

// MeetInto computes dst := dst ⊓ src pointwise and reports whether dst
// changed. Variables present in only one of dst/src meet against the
// implicit Undefined of the other, which by the meet table simply yields the
// present side's value.
func MeetInto(dst, src *CPFact) bool {
	changed := false
	for _, p := range src.m.Pairs {
		cur := dst.Get(p.Key)
		merged := Meet(cur, p.Value)
		if !Equal(cur, merged) {
			dst.Set(p.Key, merged)
			changed = true
		}
	}
	return changed
}

// EqualFact reports whether a and b bind exactly the same variables to equal
// values.
func EqualFact(a, b *CPFact) bool {
	if a.m.Len() != b.m.Len() {
		return false
	}
	for _, p := range a.m.Pairs {
		bv, ok := b.m.Load(p.Key)
		if !ok || !Equal(p.Value, bv) {
			return false
		}
	}
	return true
}
