package fixture

import "github.com/wpago/wpago/ir"

// CFG is a fixture control-flow graph: explicit successor edges, with
// predecessors and Stmts() derived automatically.
type CFG struct {
	method ir.Method
	stmts  []ir.Stmt
	out    map[ir.Stmt][]ir.CFGEdge
	in     map[ir.Stmt][]ir.Stmt
	entry  ir.Stmt
	exit   ir.Stmt
}

func (c *CFG) Method() ir.Method          { return c.method }
func (c *CFG) Entry() ir.Stmt             { return c.entry }
func (c *CFG) Exit() ir.Stmt              { return c.exit }
func (c *CFG) Stmts() []ir.Stmt           { return c.stmts }
func (c *CFG) OutEdgesOf(s ir.Stmt) []ir.CFGEdge { return c.out[s] }
func (c *CFG) PredsOf(s ir.Stmt) []ir.Stmt { return c.in[s] }

func (c *CFG) SuccsOf(s ir.Stmt) []ir.Stmt {
	edges := c.out[s]
	succs := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		succs[i] = e.Succ
	}
	return succs
}

// Straight builds a linear fall-through CFG over stmts in order: stmt i
// falls through to stmt i+1, the last stmt has no successors. This covers
// every branch-free test body; branching tests use NewCFG directly.
func Straight(method ir.Method, stmts ...ir.Stmt) *CFG {
	cfg := &CFG{
		method: method,
		stmts:  stmts,
		out:    make(map[ir.Stmt][]ir.CFGEdge),
		in:     make(map[ir.Stmt][]ir.Stmt),
	}
	if len(stmts) == 0 {
		return cfg
	}
	cfg.entry = stmts[0]
	cfg.exit = stmts[len(stmts)-1]
	for i := 0; i < len(stmts)-1; i++ {
		edge := ir.CFGEdge{Kind: ir.FallThrough, Succ: stmts[i+1]}
		cfg.out[stmts[i]] = append(cfg.out[stmts[i]], edge)
		cfg.in[stmts[i+1]] = append(cfg.in[stmts[i+1]], stmts[i])
	}
	return cfg
}

// NewCFG builds a CFG from an explicit stmt list, entry/exit, and outgoing
// edge sets, for tests that need branches or merges.
func NewCFG(method ir.Method, stmts []ir.Stmt, entry, exit ir.Stmt, out map[ir.Stmt][]ir.CFGEdge) *CFG {
	cfg := &CFG{
		method: method,
		stmts:  stmts,
		out:    out,
		in:     make(map[ir.Stmt][]ir.Stmt),
		entry:  entry,
		exit:   exit,
	}
	for _, s := range stmts {
		for _, e := range out[s] {
			cfg.in[e.Succ] = append(cfg.in[e.Succ], s)
		}
	}
	return cfg
}

// Attach sets m's body to an IR wrapping cfg's statements, backed by cfg.
func Attach(m *Method, cfg *CFG) {
	m.MIR = &IR{stmts: cfg.stmts, cfg: cfg}
}
