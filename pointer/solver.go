package pointer

import (
	"sort"

	"github.com/wpago/wpago/callgraph"
	"github.com/wpago/wpago/cha"
	"github.com/wpago/wpago/config"
	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/ir"
)

// PropagateObserver is notified after every propagate with the pointer whose
// points-to set grew and its full current points-to set (not only the newly
// added objects).
type PropagateObserver func(p Pointer, pts []*CSObj)

// CallResolvedObserver is notified after every call-graph edge the solver
// discovers: afterCallResolved(Callee, CallSite, CallerCtx, Receiver?). recv
// is nil for static calls.
type CallResolvedObserver func(callee *CSMethod, callSite ir.Stmt, callerCtx *Context, recv *CSObj)

// Solver is the unified Andersen-style points-to solver: instantiated with
// CIContextSelector it is context-insensitive; with any other
// ContextSelector it is context-sensitive. Both share exactly this state
// machine.
type Solver struct {
	heapModel heap.HeapModel
	selector  ContextSelector
	mgr       *Manager
	universe  *Universe

	cg  *callgraph.Graph[*CSMethod]
	pfg *PFG
	pts map[Pointer]*PointsToSet

	worklist []workItem

	instanceLoads  map[*CSVar][]*ir.LoadField
	instanceStores map[*CSVar][]*ir.StoreField
	arrayLoads     map[*CSVar][]*ir.LoadArray
	arrayStores    map[*CSVar][]*ir.StoreArray
	invokesOn      map[*CSVar][]*ir.Invoke

	propagateObservers    []PropagateObserver
	callResolvedObservers []CallResolvedObserver
}

type workItem struct {
	ptr   Pointer
	delta *PointsToSet
}

// NewSolver constructs a ready-to-run Solver. Pass CIContextSelector{} for
// the context-insensitive variant. processOneCall resolves callees with
// cha.Dispatch, which walks superclasses from the class itself and takes no
// hierarchy, so the solver holds no hierarchy reference.
func NewSolver(heapModel heap.HeapModel, selector ContextSelector) *Solver {
	return &Solver{
		heapModel:      heapModel,
		selector:       selector,
		mgr:            NewManager(),
		universe:       NewUniverse(),
		cg:             callgraph.New[*CSMethod](),
		pfg:            NewPFG(),
		pts:            make(map[Pointer]*PointsToSet),
		instanceLoads:  make(map[*CSVar][]*ir.LoadField),
		instanceStores: make(map[*CSVar][]*ir.StoreField),
		arrayLoads:     make(map[*CSVar][]*ir.LoadArray),
		arrayStores:    make(map[*CSVar][]*ir.StoreArray),
		invokesOn:      make(map[*CSVar][]*ir.Invoke),
		worklist:       make([]workItem, 0, config.WorklistInitialCapacity),
	}
}

// OnAfterPropagate registers a taint-analyzer-style observer.
func (s *Solver) OnAfterPropagate(fn PropagateObserver) {
	s.propagateObservers = append(s.propagateObservers, fn)
}

// OnAfterCallResolved registers a taint-analyzer-style observer.
func (s *Solver) OnAfterCallResolved(fn CallResolvedObserver) {
	s.callResolvedObservers = append(s.callResolvedObservers, fn)
}

// CallGraph returns the context-sensitive call graph built so far.
func (s *Solver) CallGraph() *callgraph.Graph[*CSMethod] { return s.cg }

// Manager returns the CSManager, so taint/interproc can intern their own
// context-qualified pointers consistently with the solver's.
func (s *Solver) Manager() *Manager { return s.mgr }

// PTS returns the current points-to set of p (never nil; empty if untouched).
func (s *Solver) PTS(p Pointer) *PointsToSet { return s.getPTS(p) }

// Universe returns the shared object-numbering universe, so external
// observers (taint.Manager) can build their own PointsToSet values over the
// same numbering as the solver's.
func (s *Solver) Universe() *Universe { return s.universe }

// Result bundles a completed Analyze run's outputs into one value: the call
// graph, the pointer-flow graph, and pts(pointer)/pts(variable)/vars(),
// so a caller can enumerate every variable with a points-to set without
// reaching into the solver's internal maps.
type Result struct {
	solver *Solver
}

// Result returns s's bundled outputs.
func (s *Solver) Result() *Result { return &Result{solver: s} }

// CallGraph returns the context-sensitive call graph.
func (r *Result) CallGraph() *callgraph.Graph[*CSMethod] { return r.solver.cg }

// PFG returns the pointer-flow graph.
func (r *Result) PFG() *PFG { return r.solver.pfg }

// PTS returns p's points-to set.
func (r *Result) PTS(p Pointer) *PointsToSet { return r.solver.PTS(p) }

// Vars returns every CSVar the solver holds a points-to set for, sorted by
// string form so two runs over the same program report them in the same
// order.
func (r *Result) Vars() []*CSVar {
	vars := make([]*CSVar, 0, len(r.solver.pts))
	for p := range r.solver.pts {
		if vp, ok := p.(VarPtr); ok {
			vars = append(vars, vp.V)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].String() < vars[j].String() })
	return vars
}

// Seed injects o into p's points-to set as if discovered by ordinary
// propagation: it joins the normal worklist and flows along every PFG edge
// already wired out of p, letting an external observer such as a
// taint.Manager inject a synthesized object -- e.g. a taint source --
// mid-analysis. Call only from within a PropagateObserver or
// CallResolvedObserver callback, or before Analyze runs.
func (s *Solver) Seed(p Pointer, o *CSObj) {
	s.enqueue(p, Singleton(s.universe, o))
}

func (s *Solver) getPTS(p Pointer) *PointsToSet {
	if pts, ok := s.pts[p]; ok {
		return pts
	}
	pts := NewPointsToSet(s.universe)
	s.pts[p] = pts
	return pts
}

// Analyze runs the solver to fixpoint starting from entry: init plus main
// loop, unified across context sensitivities by s.selector.
func (s *Solver) Analyze(entry ir.Method) {
	emptyCtx := s.selector.GetEmptyContext()
	entryCSM := s.mgr.Method(emptyCtx, entry)
	s.cg.AddEntry(entryCSM)
	s.addReachable(entryCSM)
	s.runWorklist()
}

// addReachable marks m reachable once, skips abstract bodies, and generates
// the statement-kind constraints.
//
// Open question resolved: this solver skips abstract methods before
// generating constraints rather than generating constraints for an empty
// body, since an abstract method has no statements to walk.
func (s *Solver) addReachable(csm *CSMethod) bool {
	if !s.cg.AddReachableMethod(csm) {
		return false
	}
	m := csm.Method
	if m.IsAbstract() || m.IR() == nil {
		return true
	}
	for _, stmt := range m.IR().Stmts() {
		s.genStmt(csm, stmt)
	}
	return true
}

func (s *Solver) genStmt(csm *CSMethod, stmt ir.Stmt) {
	ctx := csm.Ctx
	owner := csm.Method
	v := func(x ir.Var) *CSVar { return s.mgr.Var(ctx, x, owner) }

	switch st := stmt.(type) {
	case *ir.New:
		obj := s.heapModel.Obj(st, st.Type)
		heapCtx := s.selector.SelectHeapContext(ctx, obj)
		csObj := s.mgr.Obj(heapCtx, obj)
		s.enqueue(VarPtr{v(st.LValue)}, Singleton(s.universe, csObj))

	case *ir.Copy:
		s.addPFGEdge(VarPtr{v(st.RValue)}, VarPtr{v(st.LValue)})

	case *ir.LoadField:
		if st.IsStatic() {
			s.addPFGEdge(StaticFieldPtr{st.Field}, VarPtr{v(st.LValue)})
			return
		}
		bv := v(st.Base)
		s.instanceLoads[bv] = append(s.instanceLoads[bv], st)
		s.wireExistingInstanceLoad(bv, st)

	case *ir.StoreField:
		if st.IsStatic() {
			s.addPFGEdge(VarPtr{v(st.RValue)}, StaticFieldPtr{st.Field})
			return
		}
		bv := v(st.Base)
		s.instanceStores[bv] = append(s.instanceStores[bv], st)
		s.wireExistingInstanceStore(bv, st)

	case *ir.LoadArray:
		bv := v(st.Base)
		s.arrayLoads[bv] = append(s.arrayLoads[bv], st)
		s.wireExistingArrayLoad(bv, st)

	case *ir.StoreArray:
		bv := v(st.Base)
		s.arrayStores[bv] = append(s.arrayStores[bv], st)
		s.wireExistingArrayStore(bv, st)

	case *ir.Invoke:
		if st.Kind == ir.CallStatic {
			s.resolveStaticCall(csm, st)
			return
		}
		if st.Base == nil {
			return
		}
		bv := v(st.Base)
		s.invokesOn[bv] = append(s.invokesOn[bv], st)
		s.wireExistingInvoke(csm, bv, st)
	}
}

// wireExisting* handle a load/store/invoke registered on a base variable
// that may already hold discovered objects (e.g. a second field access on an
// already-resolved variable within the same method): they replay the
// propagate-time wiring main loop performs for each known
// object, so registration order never loses constraints.

func (s *Solver) wireExistingInstanceLoad(bv *CSVar, st *ir.LoadField) {
	for _, o := range s.getPTS(VarPtr{bv}).Objects() {
		s.addPFGEdge(InstanceFieldPtr{o, st.Field}, VarPtr{s.mgr.Var(bv.Ctx, st.LValue, bv.Owner)})
	}
}

func (s *Solver) wireExistingInstanceStore(bv *CSVar, st *ir.StoreField) {
	for _, o := range s.getPTS(VarPtr{bv}).Objects() {
		s.addPFGEdge(VarPtr{s.mgr.Var(bv.Ctx, st.RValue, bv.Owner)}, InstanceFieldPtr{o, st.Field})
	}
}

func (s *Solver) wireExistingArrayLoad(bv *CSVar, st *ir.LoadArray) {
	for _, o := range s.getPTS(VarPtr{bv}).Objects() {
		s.addPFGEdge(ArrayIndexPtr{o}, VarPtr{s.mgr.Var(bv.Ctx, st.LValue, bv.Owner)})
	}
}

func (s *Solver) wireExistingArrayStore(bv *CSVar, st *ir.StoreArray) {
	for _, o := range s.getPTS(VarPtr{bv}).Objects() {
		s.addPFGEdge(VarPtr{s.mgr.Var(bv.Ctx, st.RValue, bv.Owner)}, ArrayIndexPtr{o})
	}
}

func (s *Solver) wireExistingInvoke(csm *CSMethod, bv *CSVar, st *ir.Invoke) {
	for _, o := range s.getPTS(VarPtr{bv}).Objects() {
		s.processOneCall(csm, st, o)
	}
}

// resolveStaticCall implements static-invoke constraint
// generation (shared verbatim by L4 and L5: static calls carry no receiver,
// so the callee context never depends on an object).
func (s *Solver) resolveStaticCall(csm *CSMethod, st *ir.Invoke) {
	if st.Method == nil {
		return
	}
	calleeCtx := s.selector.SelectContext(st, csm.Ctx, st.Method)
	calleeCSM := s.mgr.Method(calleeCtx, st.Method)

	if !s.cg.HasEdge(st, calleeCSM) {
		s.cg.AddEdge(callgraph.Static, st, csm, calleeCSM)
		s.addReachable(calleeCSM)
		s.wireCallEdges(csm, calleeCSM, st)
		s.notifyCallResolved(calleeCSM, st, csm.Ctx, nil)
	}
}

// wireCallEdges adds the parameter-passing and return-value PFG edges for a
// resolved call: one edge per argument into the callee's parameter, and one
// edge back from the callee's return value into the call's own LHS.
func (s *Solver) wireCallEdges(csm, calleeCSM *CSMethod, st *ir.Invoke) {
	params := calleeCSM.Method.Params()
	for i, arg := range st.Args {
		if i >= len(params) {
			break
		}
		s.addPFGEdge(
			VarPtr{s.mgr.Var(csm.Ctx, arg, csm.Method)},
			VarPtr{s.mgr.Var(calleeCSM.Ctx, params[i], calleeCSM.Method)},
		)
	}
	if st.LValue != nil {
		for _, ret := range calleeCSM.Method.ReturnVars() {
			s.addPFGEdge(
				VarPtr{s.mgr.Var(calleeCSM.Ctx, ret, calleeCSM.Method)},
				VarPtr{s.mgr.Var(csm.Ctx, st.LValue, csm.Method)},
			)
		}
	}
}

// addPFGEdge implements: "insert; if new and pts(src) non-empty,
// enqueue (tgt, pts(src))".
func (s *Solver) addPFGEdge(src, tgt Pointer) {
	if !s.pfg.AddEdge(src, tgt) {
		return
	}
	srcPts := s.getPTS(src)
	if !srcPts.IsEmpty() {
		s.enqueue(tgt, srcPts)
	}
}

func (s *Solver) enqueue(p Pointer, delta *PointsToSet) {
	if delta.IsEmpty() {
		return
	}
	s.worklist = append(s.worklist, workItem{ptr: p, delta: delta})
}

// runWorklist is "Main loop analyze".
func (s *Solver) runWorklist() {
	for len(s.worklist) > 0 {
		n := len(s.worklist) - 1
		item := s.worklist[n]
		s.worklist = s.worklist[:n]

		added := s.propagate(item.ptr, item.delta)
		if len(added) == 0 {
			continue
		}
		s.notifyPropagate(item.ptr)

		vp, ok := item.ptr.(VarPtr)
		if !ok {
			continue
		}
		for _, o := range added {
			s.onNewObject(vp.V, o)
		}
	}
}

// propagate is propagate(p, Δ₀): Δ := Δ₀ \ pts(p); if empty
// return; union Δ into pts(p); enqueue (succ, Δ) for each PFG successor.
func (s *Solver) propagate(p Pointer, delta0 *PointsToSet) []*CSObj {
	pts := s.getPTS(p)
	added := pts.UnionWith(delta0)
	if len(added) == 0 {
		return nil
	}
	deltaSet := NewPointsToSet(s.universe)
	for _, o := range added {
		deltaSet.Add(o)
	}
	for _, succ := range s.pfg.SuccsOf(p) {
		s.enqueue(succ, deltaSet)
	}
	return added
}

func (s *Solver) notifyPropagate(p Pointer) {
	for _, fn := range s.propagateObservers {
		fn(p, s.getPTS(p).Objects())
	}
}

// onNewObject implements main-loop body for a newly discovered
// object o flowing into VarPtr(v): wire instance field/array accesses and
// drive processCall.
func (s *Solver) onNewObject(v *CSVar, o *CSObj) {
	for _, st := range s.instanceLoads[v] {
		s.addPFGEdge(InstanceFieldPtr{o, st.Field}, VarPtr{s.mgr.Var(v.Ctx, st.LValue, v.Owner)})
	}
	for _, st := range s.instanceStores[v] {
		s.addPFGEdge(VarPtr{s.mgr.Var(v.Ctx, st.RValue, v.Owner)}, InstanceFieldPtr{o, st.Field})
	}
	for _, st := range s.arrayLoads[v] {
		s.addPFGEdge(ArrayIndexPtr{o}, VarPtr{s.mgr.Var(v.Ctx, st.LValue, v.Owner)})
	}
	for _, st := range s.arrayStores[v] {
		s.addPFGEdge(VarPtr{s.mgr.Var(v.Ctx, st.RValue, v.Owner)}, ArrayIndexPtr{o})
	}
	csm := s.mgr.Method(v.Ctx, v.Owner)
	for _, st := range s.invokesOn[v] {
		s.processOneCall(csm, st, o)
	}
}

// processOneCall implements processCall(v, o) for a single
// instance invocation c = v.m(...): resolve the callee by dispatching o's
// allocated type (SPECIAL instead dispatches the statically declared
// class, matching CHA), skip abstract/unresolved callees, and otherwise
// wire it exactly like a static call plus the implicit `this` binding.
func (s *Solver) processOneCall(csm *CSMethod, st *ir.Invoke, o *CSObj) {
	if st.Method == nil {
		return
	}
	var callee ir.Method
	switch st.Kind {
	case ir.CallSpecial:
		m, ok := cha.Dispatch(st.Method.DeclaringClass(), st.Method.Subsignature())
		if !ok {
			return
		}
		callee = m
	case ir.CallVirtual, ir.CallInterface:
		class, ok := o.Obj.Type.(ir.Class)
		if !ok {
			return
		}
		m, ok := cha.Dispatch(class, st.Method.Subsignature())
		if !ok {
			return
		}
		callee = m
	default:
		return
	}

	calleeCtx := s.selector.SelectContextWithRecv(st, csm.Ctx, o.Obj, callee)
	calleeCSM := s.mgr.Method(calleeCtx, callee)

	if thisVar, ok := callee.ThisVar(); ok {
		s.enqueue(VarPtr{s.mgr.Var(calleeCtx, thisVar, callee)}, Singleton(s.universe, o))
	}

	if !s.cg.HasEdge(st, calleeCSM) {
		s.cg.AddEdge(callgraph.FromCallKind(st.Kind), st, csm, calleeCSM)
		s.addReachable(calleeCSM)
		s.wireCallEdges(csm, calleeCSM, st)
		s.notifyCallResolved(calleeCSM, st, csm.Ctx, o)
	}
}

func (s *Solver) notifyCallResolved(callee *CSMethod, callSite ir.Stmt, callerCtx *Context, recv *CSObj) {
	for _, fn := range s.callResolvedObservers {
		fn(callee, callSite, callerCtx, recv)
	}
}
