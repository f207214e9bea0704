// Package analysisctx holds the explicit AnalysisContext a whole-program run
// needs: the static inputs (class hierarchy, heap model, entry points),
// bundled into one value and passed to every solver constructor, instead of
// living in package-level variables. Two concurrent analyses of two
// different programs can coexist simply by holding two *Context values.
package analysisctx

import (
	"github.com/wpago/wpago/callgraph"
	"github.com/wpago/wpago/cha"
	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

// Context bundles one program's static inputs: the class hierarchy external
// collaborators supply, a heap model for allocation-site abstraction, and
// the program's entry methods.
type Context struct {
	Hierarchy ir.ClassHierarchy
	Heap      heap.HeapModel
	Entries   []ir.Method
}

// New builds a Context over hierarchy and heapModel with the given entry
// methods. heapModel may be nil, in which case a fresh heap.SiteModel is
// used (the default per-allocation-site abstraction).
func New(hierarchy ir.ClassHierarchy, heapModel heap.HeapModel, entries ...ir.Method) *Context {
	if heapModel == nil {
		heapModel = heap.NewSiteModel()
	}
	return &Context{Hierarchy: hierarchy, Heap: heapModel, Entries: entries}
}

// BuildCHA runs CHA call-graph construction from every entry
// method registered on c, merging their worklists into a single graph since
// CHA's addReachable is idempotent regardless of which entry discovered a
// method first.
func (c *Context) BuildCHA() *callgraph.Graph[ir.Method] {
	g := callgraph.New[ir.Method]()
	for _, e := range c.Entries {
		entryGraph := cha.Build(c.Hierarchy, e)
		g.AddEntry(e)
		mergeGraph(g, entryGraph)
	}
	return g
}

func mergeGraph(dst, src *callgraph.Graph[ir.Method]) {
	for _, m := range src.ReachableMethods() {
		dst.AddReachableMethod(m)
	}
	for _, m := range src.ReachableMethods() {
		for _, e := range src.EdgesOutOf(m) {
			dst.AddEdge(e.Kind, e.CallSite, e.Caller, e.Callee)
		}
	}
}

// NewPointsToSolver builds a points-to Solver over c's heap model, analyzing
// every registered entry method: one Analyze call per entry is sufficient
// since addReachable is idempotent across entries that share methods.
func (c *Context) NewPointsToSolver(selector pointer.ContextSelector) *pointer.Solver {
	solver := pointer.NewSolver(c.Heap, selector)
	for _, e := range c.Entries {
		solver.Analyze(e)
	}
	return solver
}
