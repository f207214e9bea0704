package fixture

import "github.com/wpago/wpago/ir"

// ICFG is a minimal in-memory ir.ICFG: intra-procedural NormalEdges are
// derived automatically from each method's own CFG: inter-procedural
// Call/CallToReturn/Return edges are registered explicitly via AddCall,
// since ICFG construction from a call graph is out of scope for the core
// and this is test scaffolding only.
type ICFG struct {
	methods    []ir.Method
	containing map[ir.Stmt]ir.Method
	entryOf    map[ir.Method]ir.Stmt
	out        map[ir.Stmt][]ir.ICFGEdge
	in         map[ir.Stmt][]ir.ICFGEdge
}

// NewICFG builds the intra-procedural NormalEdge skeleton over methods,
// whose bodies must already be attached (see Attach).
func NewICFG(methods ...ir.Method) *ICFG {
	g := &ICFG{
		methods:    methods,
		containing: make(map[ir.Stmt]ir.Method),
		entryOf:    make(map[ir.Method]ir.Stmt),
		out:        make(map[ir.Stmt][]ir.ICFGEdge),
		in:         make(map[ir.Stmt][]ir.ICFGEdge),
	}
	for _, m := range methods {
		cfg := m.IR().CFG()
		g.entryOf[m] = cfg.Entry()
		for _, s := range cfg.Stmts() {
			g.containing[s] = m
		}
		for _, s := range cfg.Stmts() {
			// A resolved call's successor edge is modeled by
			// CallEdge/CallToReturnEdge/ReturnICFGEdge instead (wired via
			// AddCall), not a plain NormalEdge.
			if inv, ok := s.(*ir.Invoke); ok && inv.Method != nil {
				continue
			}
			for _, succ := range cfg.SuccsOf(s) {
				g.addEdge(ir.ICFGEdge{Kind: ir.NormalEdge, From: s, To: succ, FromM: m, ToM: m, Call: s})
			}
		}
	}
	return g
}

func (g *ICFG) addEdge(e ir.ICFGEdge) {
	g.out[e.From] = append(g.out[e.From], e)
	g.in[e.To] = append(g.in[e.To], e)
}

// AddCall wires call (an *ir.Invoke in some caller method already passed to
// NewICFG) to callee: a CallEdge to callee's entry, a CallToReturnEdge and a
// ReturnICFGEdge (one per Return statement in callee's body) to afterCall.
func (g *ICFG) AddCall(call *ir.Invoke, callee ir.Method, afterCall ir.Stmt) {
	callerM := g.containing[call]
	calleeEntry := g.entryOf[callee]
	g.addEdge(ir.ICFGEdge{Kind: ir.CallEdge, From: call, To: calleeEntry, FromM: callerM, ToM: callee, Call: call})
	g.addEdge(ir.ICFGEdge{Kind: ir.CallToReturnEdge, From: call, To: afterCall, FromM: callerM, ToM: callerM, Call: call})
	for _, s := range callee.IR().CFG().Stmts() {
		if ret, ok := s.(*ir.Return); ok {
			g.addEdge(ir.ICFGEdge{Kind: ir.ReturnICFGEdge, From: ret, To: afterCall, FromM: callee, ToM: callerM, Call: call})
		}
	}
}

func (g *ICFG) Methods() []ir.Method                 { return g.methods }
func (g *ICFG) ContainingMethod(s ir.Stmt) ir.Method { return g.containing[s] }
func (g *ICFG) OutEdges(s ir.Stmt) []ir.ICFGEdge      { return g.out[s] }
func (g *ICFG) InEdges(s ir.Stmt) []ir.ICFGEdge       { return g.in[s] }
func (g *ICFG) EntryOf(m ir.Method) ir.Stmt            { return g.entryOf[m] }
