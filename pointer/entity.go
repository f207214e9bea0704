package pointer

import (
	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/ir"
)

// CSObj is a heap object paired with its heap context.
type CSObj struct {
	Ctx *Context
	Obj *heap.Obj
}

func (o *CSObj) String() string { return o.Ctx.String() + ":" + o.Obj.Type.String() }

// CSMethod is a method paired with the context it runs under.
type CSMethod struct {
	Ctx    *Context
	Method ir.Method
}

func (m *CSMethod) String() string { return m.Ctx.String() + ":" + m.Method.Name() }

// CSCallSite is a call-site statement paired with its caller's context.
type CSCallSite struct {
	Ctx      *Context
	CallSite ir.Stmt
}

// CSVar is a local variable paired with the context its containing method
// runs under. Owner is that method, carried alongside so the solver can
// recover "which CSMethod does this receiver variable belong to" without a
// package-level lookup table.
type CSVar struct {
	Ctx   *Context
	Var   ir.Var
	Owner ir.Method
}

func (v *CSVar) String() string { return v.Ctx.String() + ":" + v.Var.Name() }

// Manager interns (Context, base) pairs into the canonical CSObj/CSVar/
// CSMethod/CSCallSite pointer for that pair, at most once each, giving
// identity equality. Contexts themselves are interned by each
// context-sensitive selector's own interner, not by the Manager.
type Manager struct {
	objs        map[csKey[*heap.Obj]]*CSObj
	vars        map[csKey[ir.Var]]*CSVar
	methods     map[csKey[ir.Method]]*CSMethod
	callSites   map[csKey[ir.Stmt]]*CSCallSite
}

type csKey[T comparable] struct {
	ctx  *Context
	base T
}

func NewManager() *Manager {
	return &Manager{
		objs:      make(map[csKey[*heap.Obj]]*CSObj),
		vars:      make(map[csKey[ir.Var]]*CSVar),
		methods:   make(map[csKey[ir.Method]]*CSMethod),
		callSites: make(map[csKey[ir.Stmt]]*CSCallSite),
	}
}

func (m *Manager) Obj(ctx *Context, o *heap.Obj) *CSObj {
	k := csKey[*heap.Obj]{ctx, o}
	if v, ok := m.objs[k]; ok {
		return v
	}
	v := &CSObj{Ctx: ctx, Obj: o}
	m.objs[k] = v
	return v
}

// Var interns the (ctx, v) pair, recording owner (v's containing method) the
// first time it is seen. owner is ignored on subsequent calls for the same
// pair, since a variable belongs to exactly one method.
func (m *Manager) Var(ctx *Context, v ir.Var, owner ir.Method) *CSVar {
	k := csKey[ir.Var]{ctx, v}
	if cv, ok := m.vars[k]; ok {
		return cv
	}
	cv := &CSVar{Ctx: ctx, Var: v, Owner: owner}
	m.vars[k] = cv
	return cv
}

func (m *Manager) Method(ctx *Context, meth ir.Method) *CSMethod {
	k := csKey[ir.Method]{ctx, meth}
	if cm, ok := m.methods[k]; ok {
		return cm
	}
	cm := &CSMethod{Ctx: ctx, Method: meth}
	m.methods[k] = cm
	return cm
}

func (m *Manager) CallSite(ctx *Context, s ir.Stmt) *CSCallSite {
	k := csKey[ir.Stmt]{ctx, s}
	if cs, ok := m.callSites[k]; ok {
		return cs
	}
	cs := &CSCallSite{Ctx: ctx, CallSite: s}
	m.callSites[k] = cs
	return cs
}
