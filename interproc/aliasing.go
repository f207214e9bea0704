// Package interproc implements inter-procedural constant propagation over an
// ICFG, resolving heap aliases (static fields, instance fields, array
// elements) with a completed points-to result.
package interproc

import (
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

// varOwners walks every method's CFG and records which method owns each
// variable referenced by any statement kind — the "index usages" pre-pass
// calls for, generalized to recover the owner (ir.Method) a
// context-sensitive CSVar lookup needs (pointer.Manager.Var requires it).
func varOwners(icfg ir.ICFG) map[ir.Var]ir.Method {
	owners := make(map[ir.Var]ir.Method)
	record := func(v ir.Var, m ir.Method) {
		if v != nil {
			owners[v] = m
		}
	}
	for _, m := range icfg.Methods() {
		cfg := m.IR().CFG()
		for _, s := range cfg.Stmts() {
			switch st := s.(type) {
			case *ir.New:
				record(st.LValue, m)
			case *ir.Copy:
				record(st.LValue, m)
				record(st.RValue, m)
			case *ir.LoadField:
				record(st.LValue, m)
				record(st.Base, m)
			case *ir.StoreField:
				record(st.Base, m)
				record(st.RValue, m)
			case *ir.LoadArray:
				record(st.LValue, m)
				record(st.Base, m)
				record(st.Index, m)
			case *ir.StoreArray:
				record(st.Base, m)
				record(st.Index, m)
				record(st.RValue, m)
			case *ir.Invoke:
				record(st.LValue, m)
				record(st.Base, m)
				for _, a := range st.Args {
					record(a, m)
				}
			case *ir.AssignStmt:
				record(st.LValue, m)
				switch e := st.RValue.(type) {
				case ir.VarExpr:
					record(e.V, m)
				case ir.BinaryExpr:
					record(e.L, m)
					record(e.R, m)
				}
			case *ir.Return:
				for _, r := range st.Results {
					record(r, m)
				}
			case *ir.If:
				record(st.Cond, m)
			case *ir.Switch:
				record(st.Value, m)
			}
			for _, p := range m.Params() {
				record(p, m)
			}
		}
	}
	return owners
}

// AliasGroups computes, for every variable v with a non-empty
// context-insensitive points-to set, the set of variables sharing at least
// one points-to element with v. solver must have been run with
// pointer.CIContextSelector{}, since the fact lattice this layer consumes
// (lattice.CPFact) is keyed by plain ir.Var, not a context-qualified CSVar.
func AliasGroups(icfg ir.ICFG, solver *pointer.Solver) map[ir.Var]map[ir.Var]bool {
	owners := varOwners(icfg)
	mgr := solver.Manager()

	objToVars := make(map[*pointer.CSObj][]ir.Var)
	for v, owner := range owners {
		if !ir.IsReference(v.Type()) {
			continue
		}
		csv := mgr.Var(pointer.Empty, v, owner)
		for _, o := range solver.PTS(pointer.VarPtr{V: csv}).Objects() {
			objToVars[o] = append(objToVars[o], v)
		}
	}

	groups := make(map[ir.Var]map[ir.Var]bool)
	for _, vars := range objToVars {
		for _, v1 := range vars {
			g, ok := groups[v1]
			if !ok {
				g = make(map[ir.Var]bool)
				groups[v1] = g
			}
			for _, v2 := range vars {
				g[v2] = true
			}
		}
	}
	return groups
}
