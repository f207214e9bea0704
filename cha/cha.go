// Package cha builds a call graph by class-hierarchy analysis: every
// invocation is resolved against the static class hierarchy alone, with no
// points-to information.
package cha

import (
	"github.com/wpago/wpago/callgraph"
	"github.com/wpago/wpago/ir"
)

// Build returns a call graph containing every method transitively reachable
// from entry under hierarchy-based dispatch.
func Build(hierarchy ir.ClassHierarchy, entry ir.Method) *callgraph.Graph[ir.Method] {
	g := callgraph.New[ir.Method]()
	g.AddEntry(entry)

	worklist := []ir.Method{entry}
	for len(worklist) > 0 {
		n := len(worklist) - 1
		m := worklist[n]
		worklist = worklist[:n]

		if !g.AddReachableMethod(m) {
			continue
		}
		if m.IsAbstract() || m.IR() == nil {
			continue
		}

		for _, s := range m.IR().Stmts() {
			inv, ok := s.(*ir.Invoke)
			if !ok {
				continue
			}
			for _, callee := range Resolve(hierarchy, inv) {
				kind := callgraph.FromCallKind(inv.Kind)
				g.AddEdge(kind, s, m, callee)
				if !g.IsReachable(callee) {
					worklist = append(worklist, callee)
				}
			}
		}
	}
	return g
}

// Resolve computes the callee set for an invocation, by call kind. The
// points-to solvers (package pointer) do not call Resolve; they call
// Dispatch directly against the declared class (SPECIAL) or the receiver
// object's allocated class (VIRTUAL/INTERFACE).
func Resolve(hierarchy ir.ClassHierarchy, inv *ir.Invoke) []ir.Method {
	switch inv.Kind {
	case ir.CallStatic:
		if inv.Method == nil {
			return nil
		}
		return []ir.Method{inv.Method}
	case ir.CallSpecial:
		if inv.Method == nil {
			return nil
		}
		if m, ok := Dispatch(inv.Method.DeclaringClass(), inv.Method.Subsignature()); ok {
			return []ir.Method{m}
		}
		return nil
	case ir.CallVirtual, ir.CallInterface:
		if inv.Method == nil {
			return nil
		}
		return VirtualTargets(hierarchy, inv.Method.DeclaringClass(), inv.Method.Subsignature())
	default: // CallDynamic, CallOther
		return nil
	}
}

// Dispatch walks up the superclass chain from class looking for a declared
// method matching subsig; an abstract match does not count as a callee.
func Dispatch(class ir.Class, subsig string) (ir.Method, bool) {
	for c := class; c != nil; {
		if m, ok := c.DeclaredMethod(subsig); ok {
			if m == nil || m.IsAbstract() {
				return nil, false
			}
			return m, true
		}
		super, ok := c.SuperClass()
		if !ok {
			break
		}
		c = super
	}
	return nil, false
}

// VirtualTargets performs the breadth-first descent describes for
// VIRTUAL/INTERFACE calls: at each class in the descent, Dispatch() against
// subsig; then enqueue subclasses (and, for interfaces, sub-interfaces and
// implementors) with no repeat visits.
func VirtualTargets(hierarchy ir.ClassHierarchy, start ir.Class, subsig string) []ir.Method {
	var targets []ir.Method
	visited := make(map[ir.Class]bool)
	seenMethod := make(map[ir.Method]bool)
	queue := []ir.Class{start}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if visited[c] {
			continue
		}
		visited[c] = true

		if m, ok := Dispatch(c, subsig); ok && !seenMethod[m] {
			seenMethod[m] = true
			targets = append(targets, m)
		}

		queue = append(queue, hierarchy.DirectSubclassesOf(c)...)
		if c.IsInterface() {
			queue = append(queue, hierarchy.DirectSubinterfacesOf(c)...)
			queue = append(queue, hierarchy.DirectImplementorsOf(c)...)
		}
	}
	return targets
}
