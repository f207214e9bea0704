// Package callgraph holds the CallGraph type shared by the CHA builder
// (package cha) and the points-to solvers (package pointer): nodes are
// methods (or context-sensitive methods, represented here by the generic
// type parameter M), edges are (kind, callSite, callee) triples.
package callgraph

import (
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/util/orderedmap"
)

// Kind is a call-graph edge's dispatch discipline, mirroring ir.CallKind.
type Kind int

const (
	Static Kind = iota
	Special
	Virtual
	Interface
	Dynamic
	Other
)

// FromCallKind maps an ir.CallKind to the corresponding edge Kind.
func FromCallKind(k ir.CallKind) Kind {
	switch k {
	case ir.CallStatic:
		return Static
	case ir.CallSpecial:
		return Special
	case ir.CallVirtual:
		return Virtual
	case ir.CallInterface:
		return Interface
	case ir.CallDynamic:
		return Dynamic
	default:
		return Other
	}
}

// Edge is one call-graph edge: a call site of kind Kind targeting Callee.
type Edge[M comparable] struct {
	Kind     Kind
	CallSite ir.Stmt
	Caller   M
	Callee   M
}

// Graph is a call graph over node type M (ir.Method for CHA's
// context-insensitive graph, pointer.CSMethod for the context-sensitive
// solvers). Reachable methods and edges only ever grow.
type Graph[M comparable] struct {
	entries   []M
	reachable *orderedmap.Map[M, bool]
	edges     *orderedmap.Map[M, []Edge[M]]       // caller -> outgoing edges
	byCall    *orderedmap.Map[ir.Stmt, []Edge[M]] // call site -> edges from it
}

// New returns an empty Graph.
func New[M comparable]() *Graph[M] {
	return &Graph[M]{
		reachable: orderedmap.New[M, bool](),
		edges:     orderedmap.New[M, []Edge[M]](),
		byCall:    orderedmap.New[ir.Stmt, []Edge[M]](),
	}
}

// AddEntry records m as a program entry point.
func (g *Graph[M]) AddEntry(m M) { g.entries = append(g.entries, m) }

// Entries returns the registered entry methods.
func (g *Graph[M]) Entries() []M { return g.entries }

// AddReachableMethod marks m reachable, reporting whether it was newly added;
// calling it again with the same m is a no-op that returns false.
func (g *Graph[M]) AddReachableMethod(m M) bool {
	if _, ok := g.reachable.Load(m); ok {
		return false
	}
	g.reachable.Store(m, true)
	return true
}

// IsReachable reports whether m has been added via AddReachableMethod.
func (g *Graph[M]) IsReachable(m M) bool {
	_, ok := g.reachable.Load(m)
	return ok
}

// ReachableMethods returns the reachable set in discovery order.
func (g *Graph[M]) ReachableMethods() []M { return g.reachable.Keys() }

// HasEdge reports whether an edge with this exact (callSite, callee) already
// exists, regardless of kind. Callers use this to decide whether a newly
// discovered callee still needs addReachable.
func (g *Graph[M]) HasEdge(callSite ir.Stmt, callee M) bool {
	for _, e := range g.EdgesAt(callSite) {
		if e.Callee == callee {
			return true
		}
	}
	return false
}

// AddEdge inserts a call-graph edge. Every call-graph edge has a
// corresponding reachable callee; callers are expected
// to addReachable the callee before or as part of calling AddEdge.
func (g *Graph[M]) AddEdge(kind Kind, callSite ir.Stmt, caller, callee M) {
	e := Edge[M]{Kind: kind, CallSite: callSite, Caller: caller, Callee: callee}
	out, _ := g.edges.Load(caller)
	g.edges.Store(caller, append(out, e))
	byCall, _ := g.byCall.Load(callSite)
	g.byCall.Store(callSite, append(byCall, e))
}

// EdgesOutOf returns the edges whose caller is m.
func (g *Graph[M]) EdgesOutOf(m M) []Edge[M] {
	out, _ := g.edges.Load(m)
	return out
}

// EdgesAt returns the edges originating at call site s.
func (g *Graph[M]) EdgesAt(s ir.Stmt) []Edge[M] {
	out, _ := g.byCall.Load(s)
	return out
}
