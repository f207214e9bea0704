// Package pointer implements the Andersen-style points-to solver, in both
// its context-insensitive (CI) and context-sensitive (CS) forms, as one
// state machine parameterized by a ContextSelector:
// CI is simply CS with a selector that always returns the single empty
// context.
package pointer

import (
	"fmt"

	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/ir"
)

// Context is an opaque, structurally-interned tuple abstraction. Two
// Contexts built from the same element sequence are the same *Context
// pointer, so callers compare contexts with ==.
type Context struct {
	key   string
	elems []any
}

// Empty is the canonical zero-length context every ContextSelector's
// GetEmptyContext returns.
var Empty = &Context{key: ""}

// String renders the context for debugging.
func (c *Context) String() string {
	if c == Empty || len(c.elems) == 0 {
		return "[]"
	}
	return c.key
}

// contextInterner interns element sequences into canonical *Context
// pointers, giving structural equality via pointer identity.
type contextInterner struct {
	table map[string]*Context
}

func newContextInterner() *contextInterner {
	return &contextInterner{table: make(map[string]*Context)}
}

// intern returns the canonical Context for elems, truncated to at most k
// entries (the selector's sensitivity depth), keeping the k most recent
// (trailing) elements.
func (in *contextInterner) intern(elems []any, k int) *Context {
	if k <= 0 || len(elems) == 0 {
		return Empty
	}
	if len(elems) > k {
		elems = elems[len(elems)-k:]
	}
	key := encodeElems(elems)
	if c, ok := in.table[key]; ok {
		return c
	}
	c := &Context{key: key, elems: append([]any(nil), elems...)}
	in.table[key] = c
	return c
}

func encodeElems(elems []any) string {
	key := ""
	for _, e := range elems {
		key += fmt.Sprintf("%p|", e)
	}
	return key
}

// ContextSelector computes callee/heap contexts from call sites and
// receivers. Implementations must be pure functions of their
// inputs.
type ContextSelector interface {
	GetEmptyContext() *Context
	// SelectHeapContext contextualizes a heap object allocated by a method
	// running under allocatorCtx.
	SelectHeapContext(allocatorCtx *Context, obj *heap.Obj) *Context
	// SelectContext computes the callee context for a call with no receiver
	// (static/special dispatch that the core treats context-free of a
	// receiver, e.g. STATIC invokes).
	SelectContext(callSite ir.Stmt, callerCtx *Context, callee ir.Method) *Context
	// SelectContextWithRecv computes the callee context for an instance call,
	// given the resolved receiver object.
	SelectContextWithRecv(callSite ir.Stmt, callerCtx *Context, recv *heap.Obj, callee ir.Method) *Context
}

// CIContextSelector is the context-insensitive degenerate selector: every
// query returns Empty, making L4 a special case of the L5 machinery.
type CIContextSelector struct{}

func (CIContextSelector) GetEmptyContext() *Context { return Empty }
func (CIContextSelector) SelectHeapContext(*Context, *heap.Obj) *Context { return Empty }
func (CIContextSelector) SelectContext(ir.Stmt, *Context, ir.Method) *Context { return Empty }
func (CIContextSelector) SelectContextWithRecv(ir.Stmt, *Context, *heap.Obj, ir.Method) *Context {
	return Empty
}

// KCallSiteSelector is k-callsite-sensitivity: the callee context is the
// caller's context with the call site appended, truncated to the trailing K
// entries. Heap objects are allocated in their allocating method's context
// (no extra heap sensitivity).
type KCallSiteSelector struct {
	K    int
	intr *contextInterner
}

func NewKCallSiteSelector(k int) *KCallSiteSelector {
	return &KCallSiteSelector{K: k, intr: newContextInterner()}
}

func (s *KCallSiteSelector) GetEmptyContext() *Context { return Empty }

func (s *KCallSiteSelector) SelectHeapContext(allocatorCtx *Context, _ *heap.Obj) *Context {
	return allocatorCtx
}

func (s *KCallSiteSelector) SelectContext(callSite ir.Stmt, callerCtx *Context, _ ir.Method) *Context {
	return s.intr.intern(append(append([]any(nil), callerCtx.elems...), callSite), s.K)
}

func (s *KCallSiteSelector) SelectContextWithRecv(callSite ir.Stmt, callerCtx *Context, _ *heap.Obj, callee ir.Method) *Context {
	return s.SelectContext(callSite, callerCtx, callee)
}

// KObjectSelector is k-object-sensitivity: the callee context for an
// instance call is the receiver's k most recent allocation sites, ignoring
// the call site itself. Heap objects allocated by a context-sensitive method
// inherit that method's context as their heap context (selectHeapContext),
// so object chains compose across allocations.
type KObjectSelector struct {
	K    int
	intr *contextInterner
}

func NewKObjectSelector(k int) *KObjectSelector {
	return &KObjectSelector{K: k, intr: newContextInterner()}
}

func (s *KObjectSelector) GetEmptyContext() *Context { return Empty }

func (s *KObjectSelector) SelectHeapContext(allocatorCtx *Context, _ *heap.Obj) *Context {
	return allocatorCtx
}

// SelectContext has no receiver to extend the object chain with, so a
// static call made from a context-sensitive callee simply keeps the
// caller's context.
func (s *KObjectSelector) SelectContext(_ ir.Stmt, callerCtx *Context, _ ir.Method) *Context {
	return callerCtx
}

func (s *KObjectSelector) SelectContextWithRecv(_ ir.Stmt, callerCtx *Context, recv *heap.Obj, _ ir.Method) *Context {
	return s.intr.intern(append(append([]any(nil), callerCtx.elems...), recv.Site), s.K)
}
