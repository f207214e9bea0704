// Package deadcode layers a reachability pass on top of a completed
// constant-propagation result: statements the CFG can never reach once
// statically-known branch conditions are accounted for, plus assignments
// whose defined variable is never read anywhere in the method.
package deadcode

import (
	"sort"

	"github.com/wpago/wpago/constprop"
	"github.com/wpago/wpago/dataflow"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
)

// Result is the ordered set of statements Detect reports unreachable or
// dead. Iteration order is by statement index, so two runs over the same
// CFG report the same order.
type Result struct {
	stmts []ir.Stmt
	set   map[ir.Stmt]bool
}

// Stmts returns the dead statements, ordered by index.
func (r *Result) Stmts() []ir.Stmt { return r.stmts }

// Contains reports whether s was flagged dead.
func (r *Result) Contains(s ir.Stmt) bool { return r.set[s] }

// Len reports the number of dead statements.
func (r *Result) Len() int { return len(r.stmts) }

// Detect runs constant propagation over cfg and reports every statement
// that is either unreachable (its CFG predecessor chain from Entry requires
// following a branch a known-constant condition rules out) or a dead
// assignment (its LValue is read by no statement in cfg).
func Detect(cfg ir.CFG) *Result {
	cp := dataflow.Solve[lattice.CPFact](constprop.Analysis{}, cfg)
	return DetectWithFacts(cfg, cp)
}

// DetectWithFacts is Detect over an already-computed constant-propagation
// result, for callers that ran constprop.Analysis themselves and don't want
// to redo the fixpoint.
func DetectWithFacts(cfg ir.CFG, cp *dataflow.Result[lattice.CPFact]) *Result {
	reachable := reachableStmts(cfg, cp)
	used := usedVars(cfg)

	set := make(map[ir.Stmt]bool)
	for _, s := range cfg.Stmts() {
		if !reachable[s] {
			set[s] = true
			continue
		}
		if assign, ok := s.(*ir.AssignStmt); ok && !used[assign.LValue] {
			set[s] = true
		}
	}

	stmts := make([]ir.Stmt, 0, len(set))
	for s := range set {
		stmts = append(stmts, s)
	}
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Index() < stmts[j].Index() })

	return &Result{stmts: stmts, set: set}
}

// reachableStmts walks the CFG forward from Entry, consulting cp's InFact at
// every If/Switch to prune the branch a known-constant condition can never
// take. Unconditional statements (and If/Switch with a NAC or UNDEF
// condition) follow every outgoing edge, same as an ordinary CFG walk.
func reachableStmts(cfg ir.CFG, cp *dataflow.Result[lattice.CPFact]) map[ir.Stmt]bool {
	reachable := make(map[ir.Stmt]bool)
	entry := cfg.Entry()
	if entry == nil {
		return reachable
	}

	stack := []ir.Stmt{entry}
	reachable[entry] = true
	for len(stack) > 0 {
		n := len(stack) - 1
		s := stack[n]
		stack = stack[:n]

		for _, succ := range feasibleSuccessors(cfg, s, cp) {
			if !reachable[succ] {
				reachable[succ] = true
				stack = append(stack, succ)
			}
		}
	}
	return reachable
}

func feasibleSuccessors(cfg ir.CFG, s ir.Stmt, cp *dataflow.Result[lattice.CPFact]) []ir.Stmt {
	switch stmt := s.(type) {
	case *ir.If:
		if v := cp.InFact(s).Get(stmt.Cond); v.IsConstant() {
			kind := ir.IfFalse
			if v.Int() != 0 {
				kind = ir.IfTrue
			}
			return edgeSuccsOf(cfg, s, kind, 0)
		}
	case *ir.Switch:
		if v := cp.InFact(s).Get(stmt.Value); v.IsConstant() {
			if matched := edgeSuccsOf(cfg, s, ir.SwitchCase, v.Int()); len(matched) > 0 {
				return matched
			}
			return edgeSuccsOf(cfg, s, ir.SwitchDefault, 0)
		}
	}
	return allSuccsOf(cfg, s)
}

func allSuccsOf(cfg ir.CFG, s ir.Stmt) []ir.Stmt {
	edges := cfg.OutEdgesOf(s)
	succs := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		succs[i] = e.Succ
	}
	return succs
}

// edgeSuccsOf returns the successors of s's outgoing edges matching kind;
// value is only compared for ir.SwitchCase.
func edgeSuccsOf(cfg ir.CFG, s ir.Stmt, kind ir.EdgeKind, value int32) []ir.Stmt {
	var out []ir.Stmt
	for _, e := range cfg.OutEdgesOf(s) {
		if e.Kind != kind {
			continue
		}
		if kind == ir.SwitchCase && e.Value != value {
			continue
		}
		out = append(out, e.Succ)
	}
	return out
}

// usedVars collects every variable read by some statement in cfg, across
// every statement kind that reads a variable rather than only defining one.
func usedVars(cfg ir.CFG) map[ir.Var]bool {
	used := make(map[ir.Var]bool)
	mark := func(v ir.Var) {
		if v != nil {
			used[v] = true
		}
	}
	for _, s := range cfg.Stmts() {
		switch stmt := s.(type) {
		case *ir.Copy:
			mark(stmt.RValue)
		case *ir.LoadField:
			mark(stmt.Base)
		case *ir.StoreField:
			mark(stmt.Base)
			mark(stmt.RValue)
		case *ir.LoadArray:
			mark(stmt.Base)
			mark(stmt.Index)
		case *ir.StoreArray:
			mark(stmt.Base)
			mark(stmt.Index)
			mark(stmt.RValue)
		case *ir.Invoke:
			mark(stmt.Base)
			for _, a := range stmt.Args {
				mark(a)
			}
		case *ir.AssignStmt:
			switch rv := stmt.RValue.(type) {
			case ir.VarExpr:
				mark(rv.V)
			case ir.BinaryExpr:
				mark(rv.L)
				mark(rv.R)
			}
		case *ir.Return:
			for _, r := range stmt.Results {
				mark(r)
			}
		case *ir.If:
			mark(stmt.Cond)
		case *ir.Switch:
			mark(stmt.Value)
		}
	}
	return used
}
