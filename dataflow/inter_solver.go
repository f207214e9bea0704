package dataflow

import "github.com/wpago/wpago/ir"

// InterAnalysis adds edge transfers for the four ICFG edge kinds on top of
// Analysis, making an intra-procedural analysis into an inter-procedural one.
type InterAnalysis[F any] interface {
	Analysis[F]
	// TransferNormalEdge propagates out-of-s along a same-method edge.
	// Identity for constant propagation.
	TransferNormalEdge(s ir.Stmt, out *F) *F
	// TransferCallToReturn propagates out-of-call-site across the call,
	// stripping the call's own defined variable: the return value instead
	// flows back via TransferReturnEdge.
	TransferCallToReturn(call ir.Stmt, out *F) *F
	// TransferCall projects the caller's out-fact onto the callee's entry
	// fact.
	TransferCall(call ir.Stmt, out *F, calleeEntry ir.Stmt) *F
	// TransferReturn projects the callee's exit fact back onto the
	// caller's after-call fact. returnStmt is the callee's
	// *ir.Return this edge originates from (its Results name the return
	// variables the "meet over all return variables" rule reads).
	TransferReturn(call, returnStmt ir.Stmt, returnOut *F) *F
	// AfterTransfer runs once per visit of s, after TransferNode, and
	// returns additional statements to re-enqueue beyond s's normal ICFG
	// out-edges. This is how alias-triggered re-queueing (e.g. "a changed
	// field store re-enqueues every load of that field") reaches the
	// worklist: those loads/stores are not adjacent to s in the ICFG, so
	// the ordinary edge-driven propagation above never reaches them.
	// Analyses with no such cross-edge dependency return nil.
	AfterTransfer(s ir.Stmt, changed bool) []ir.Stmt
}

// InterResult holds the ICFG solver's per-statement IN/OUT facts.
type InterResult[F any] struct {
	in, out map[ir.Stmt]*F
}

func (r *InterResult[F]) InFact(s ir.Stmt) *F  { return r.in[s] }
func (r *InterResult[F]) OutFact(s ir.Stmt) *F { return r.out[s] }

// SolveInter runs analysis a to fixpoint over icfg. Entry methods
// receive a's boundary fact at their entry statement; every other node
// starts at NewInitialFact. Node transfer is delegated to TransferNode for
// ordinary statements (identity for call nodes — callers pass an Analysis
// whose TransferNode already special-cases call statements that way).
func SolveInter[F any](a InterAnalysis[F], icfg ir.ICFG, entries []ir.Method) *InterResult[F] {
	var allStmts []ir.Stmt
	entrySet := make(map[ir.Stmt]bool)
	for _, m := range entries {
		entrySet[icfg.EntryOf(m)] = true
	}

	in := make(map[ir.Stmt]*F)
	out := make(map[ir.Stmt]*F)

	methodCFG := func(m ir.Method) ir.CFG { return m.IR().CFG() }
	for _, m := range icfg.Methods() {
		cfg := methodCFG(m)
		for _, s := range cfg.Stmts() {
			allStmts = append(allStmts, s)
			in[s] = a.NewInitialFact()
			if entrySet[s] {
				in[s] = a.NewBoundaryFact(cfg)
				out[s] = a.NewBoundaryFact(cfg)
			} else {
				out[s] = a.NewInitialFact()
			}
		}
	}

	worklist := newStack(allStmts)
	onList := make(map[ir.Stmt]bool, len(allStmts))
	for _, s := range allStmts {
		onList[s] = true
	}

	for !worklist.empty() {
		s := worklist.pop()
		onList[s] = false

		if !entrySet[s] {
			inFact := a.NewInitialFact()
			for _, e := range icfg.InEdges(s) {
				propagated := transferEdge(a, e, out[e.From])
				a.MeetInto(inFact, propagated)
			}
			in[s] = inFact
		}

		changed := a.TransferNode(s, in[s], out[s])
		if changed {
			for _, e := range icfg.OutEdges(s) {
				if !onList[e.To] {
					onList[e.To] = true
					worklist.push(e.To)
				}
			}
		}

		for _, extra := range a.AfterTransfer(s, changed) {
			if !onList[extra] {
				onList[extra] = true
				worklist.push(extra)
			}
		}
	}

	return &InterResult[F]{in: in, out: out}
}

func transferEdge[F any](a InterAnalysis[F], e ir.ICFGEdge, fact *F) *F {
	switch e.Kind {
	case ir.NormalEdge:
		return a.TransferNormalEdge(e.From, fact)
	case ir.CallToReturnEdge:
		return a.TransferCallToReturn(e.From, fact)
	case ir.CallEdge:
		return a.TransferCall(e.Call, fact, e.To)
	case ir.ReturnICFGEdge:
		return a.TransferReturn(e.Call, e.From, fact)
	default:
		panic("dataflow: unknown ICFG edge kind")
	}
}
