package taint

import (
	"sort"

	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

// Flow is one discovered taint flow, ordered deterministically by (source,
// sink, argIndex).
type Flow struct {
	SourceCall ir.Stmt
	SinkCall   ir.Stmt
	ArgIndex   int
}

type sinkRecord struct {
	callSite ir.Stmt
	argIndex int
	ptr      pointer.Pointer
}

type edgeKey struct {
	from, to pointer.Pointer
}

// taintHeap mints one pseudo heap.Obj per source call site, so repeated
// resolutions of the same source return the same identity (heap.Obj's
// identity-equality contract).
type taintHeap struct {
	objs map[ir.Stmt]*heap.Obj
}

func newTaintHeap() *taintHeap { return &taintHeap{objs: make(map[ir.Stmt]*heap.Obj)} }

func (h *taintHeap) Obj(site ir.Stmt) *heap.Obj {
	if o, ok := h.objs[site]; ok {
		return o
	}
	o := &heap.Obj{Site: site, Type: taintedType{}}
	h.objs[site] = o
	return o
}

// taintedType is the synthetic Type every taint pseudo-object carries: it is
// never a real class, so the pointer solver's ir.Class type-assertion before
// cha.Dispatch always fails on it, which is exactly right — a taint object is a data tag riding
// alongside real objects in the same points-to set, never itself a callable
// receiver.
type taintedType struct{}

func (taintedType) Kind() ir.Kind  { return ir.KindClass }
func (taintedType) String() string { return "<tainted>" }

// Manager synthesizes and propagates taint objects over an attached
// pointer.Solver. Taint objects live in pointer.Empty regardless
// of the underlying solver's context sensitivity: taint is a presence
// property, not something that benefits from being split by calling
// context.
type Manager struct {
	cfg      *Config
	ownerOf  map[ir.Stmt]ir.Method
	heap     *taintHeap
	taintOf  map[*pointer.CSObj]ir.Stmt // taint CSObj -> originating source call
	edges    map[pointer.Pointer][]pointer.Pointer
	edgeSeen map[edgeKey]bool
	sinks    []sinkRecord
}

// New builds a Manager for cfg over the given methods: methods must be every
// method reachable in the program the attached Solver analyzed, so the
// Manager can recover each call site's owning method (needed to intern the
// CSVars a source/sink/transfer rule refers to).
func New(cfg *Config, methods []ir.Method) *Manager {
	m := &Manager{
		cfg:      cfg,
		ownerOf:  make(map[ir.Stmt]ir.Method),
		heap:     newTaintHeap(),
		taintOf:  make(map[*pointer.CSObj]ir.Stmt),
		edges:    make(map[pointer.Pointer][]pointer.Pointer),
		edgeSeen: make(map[edgeKey]bool),
	}
	for _, meth := range methods {
		if meth.IR() == nil {
			continue
		}
		for _, s := range meth.IR().Stmts() {
			m.ownerOf[s] = meth
		}
	}
	return m
}

// Attach registers the Manager's observers on solver: one that fires on
// every call resolution, one that fires on every points-to delta. Call
// once, before or during solver.Analyze.
func (m *Manager) Attach(solver *pointer.Solver) {
	solver.OnAfterCallResolved(func(callee *pointer.CSMethod, callSite ir.Stmt, callerCtx *pointer.Context, _ *pointer.CSObj) {
		m.onCallResolved(solver, callee, callSite, callerCtx)
	})
	solver.OnAfterPropagate(func(p pointer.Pointer, objs []*pointer.CSObj) {
		m.onPropagate(solver, p, objs)
	})
}

func (m *Manager) isTaint(o *pointer.CSObj) bool {
	_, ok := m.taintOf[o]
	return ok
}

func (m *Manager) resolveEndpoint(solver *pointer.Solver, ctx *pointer.Context, owner ir.Method, inv *ir.Invoke, e Endpoint) (pointer.Pointer, bool) {
	switch e.Kind {
	case EndpointBase:
		if inv.Base == nil {
			return nil, false
		}
		return pointer.VarPtr{V: solver.Manager().Var(ctx, inv.Base, owner)}, true
	case EndpointResult:
		if inv.LValue == nil {
			return nil, false
		}
		return pointer.VarPtr{V: solver.Manager().Var(ctx, inv.LValue, owner)}, true
	default:
		if e.ArgIndex < 0 || e.ArgIndex >= len(inv.Args) {
			return nil, false
		}
		return pointer.VarPtr{V: solver.Manager().Var(ctx, inv.Args[e.ArgIndex], owner)}, true
	}
}

// onCallResolved implements per-call source/sink/transfer
// dispatch.
func (m *Manager) onCallResolved(solver *pointer.Solver, callee *pointer.CSMethod, callSite ir.Stmt, callerCtx *pointer.Context) {
	inv, ok := callSite.(*ir.Invoke)
	if !ok {
		return
	}
	owner := m.ownerOf[callSite]
	if owner == nil {
		return
	}
	key := methodKey(callee.Method.DeclaringClass().Name(), callee.Method.Subsignature())

	if m.cfg.source(key) && inv.LValue != nil {
		target := pointer.VarPtr{V: solver.Manager().Var(callerCtx, inv.LValue, owner)}
		obj := m.heap.Obj(callSite)
		csObj := solver.Manager().Obj(pointer.Empty, obj)
		m.taintOf[csObj] = callSite
		solver.Seed(target, csObj)
	}

	if sink, ok := m.cfg.sink(key); ok {
		if ptr, ok := m.resolveEndpoint(solver, callerCtx, owner, inv, Endpoint{Kind: EndpointArg, ArgIndex: sink.ArgIndex}); ok {
			m.sinks = append(m.sinks, sinkRecord{callSite: callSite, argIndex: sink.ArgIndex, ptr: ptr})
		}
	}

	if tr, ok := m.cfg.transfer(key); ok {
		from, fok := m.resolveEndpoint(solver, callerCtx, owner, inv, tr.From)
		to, tok := m.resolveEndpoint(solver, callerCtx, owner, inv, tr.To)
		if fok && tok {
			m.addEdge(solver, from, to)
		}
	}
}

// addEdge registers the taint-only edge from->to idempotently and, on first
// registration, immediately scans from's current points-to set for taint
// already present and pushes it across to to.
func (m *Manager) addEdge(solver *pointer.Solver, from, to pointer.Pointer) {
	k := edgeKey{from, to}
	if m.edgeSeen[k] {
		return
	}
	m.edgeSeen[k] = true
	m.edges[from] = append(m.edges[from], to)

	for _, o := range solver.PTS(from).Objects() {
		if m.isTaint(o) {
			solver.Seed(to, o)
		}
	}
}

// onPropagate re-filters p's current points-to set to its taint subset and
// pushes it along every registered outgoing taint edge.
func (m *Manager) onPropagate(solver *pointer.Solver, p pointer.Pointer, objs []*pointer.CSObj) {
	targets := m.edges[p]
	if len(targets) == 0 {
		return
	}
	for _, o := range objs {
		if !m.isTaint(o) {
			continue
		}
		for _, to := range targets {
			solver.Seed(to, o)
		}
	}
}

// Finish walks every recorded sink and reports a Flow for each taint object
// reaching it, ordered deterministically by
// (source, sink, argIndex).
func (m *Manager) Finish(solver *pointer.Solver) []Flow {
	seen := make(map[Flow]bool)
	var flows []Flow
	for _, sink := range m.sinks {
		for _, o := range solver.PTS(sink.ptr).Objects() {
			src, ok := m.taintOf[o]
			if !ok {
				continue
			}
			f := Flow{SourceCall: src, SinkCall: sink.callSite, ArgIndex: sink.argIndex}
			if !seen[f] {
				seen[f] = true
				flows = append(flows, f)
			}
		}
	}
	sort.Slice(flows, func(i, j int) bool { return m.less(flows[i], flows[j]) })
	return flows
}

func (m *Manager) stmtKey(s ir.Stmt) (string, int) {
	owner := m.ownerOf[s]
	name := ""
	if owner != nil {
		name = owner.Name()
	}
	return name, s.Index()
}

func (m *Manager) less(a, b Flow) bool {
	aSrcName, aSrcIdx := m.stmtKey(a.SourceCall)
	bSrcName, bSrcIdx := m.stmtKey(b.SourceCall)
	if aSrcName != bSrcName {
		return aSrcName < bSrcName
	}
	if aSrcIdx != bSrcIdx {
		return aSrcIdx < bSrcIdx
	}
	aSinkName, aSinkIdx := m.stmtKey(a.SinkCall)
	bSinkName, bSinkIdx := m.stmtKey(b.SinkCall)
	if aSinkName != bSinkName {
		return aSinkName < bSinkName
	}
	if aSinkIdx != bSinkIdx {
		return aSinkIdx < bSinkIdx
	}
	return a.ArgIndex < b.ArgIndex
}
