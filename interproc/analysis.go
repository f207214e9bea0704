package interproc

import (
	"github.com/wpago/wpago/constprop"
	"github.com/wpago/wpago/dataflow"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
)

// Analysis is the inter-procedural constant-propagation instantiation: it
// extends intra-procedural constant propagation (package constprop, reused
// here for literal/variable/binary-operator evaluation) with alias-aware
// resolution of static fields, instance fields, and array elements, using a
// pre-computed alias-group index (see AliasGroups).
type Analysis struct {
	icfg        ir.ICFG
	aliasGroups map[ir.Var]map[ir.Var]bool

	staticValues map[ir.Field]lattice.Value
	staticLoads  map[ir.Field][]*ir.LoadField

	instanceLoadsByField  map[ir.Field][]*ir.LoadField
	instanceStoresByField map[ir.Field][]*ir.StoreField
	instanceStoreValue    map[*ir.StoreField]lattice.Value

	arrayLoads      []*ir.LoadArray
	arrayStores     []*ir.StoreArray
	arrayStoreValue map[*ir.StoreArray]lattice.Value
	arrayStoreIndex map[*ir.StoreArray]lattice.Value

	pending []ir.Stmt
}

var _ dataflow.InterAnalysis[lattice.CPFact] = (*Analysis)(nil)

// NewAnalysis builds the field-to-loads usage index over every statement in
// icfg, pairing it with aliasGroups (see AliasGroups, computed from a
// completed points-to result).
func NewAnalysis(icfg ir.ICFG, aliasGroups map[ir.Var]map[ir.Var]bool) *Analysis {
	a := &Analysis{
		icfg:                  icfg,
		aliasGroups:           aliasGroups,
		staticValues:          make(map[ir.Field]lattice.Value),
		staticLoads:           make(map[ir.Field][]*ir.LoadField),
		instanceLoadsByField:  make(map[ir.Field][]*ir.LoadField),
		instanceStoresByField: make(map[ir.Field][]*ir.StoreField),
		instanceStoreValue:    make(map[*ir.StoreField]lattice.Value),
		arrayStoreValue:       make(map[*ir.StoreArray]lattice.Value),
		arrayStoreIndex:       make(map[*ir.StoreArray]lattice.Value),
	}
	for _, m := range icfg.Methods() {
		for _, s := range m.IR().CFG().Stmts() {
			switch st := s.(type) {
			case *ir.LoadField:
				if st.IsStatic() {
					a.staticLoads[st.Field] = append(a.staticLoads[st.Field], st)
				} else {
					a.instanceLoadsByField[st.Field] = append(a.instanceLoadsByField[st.Field], st)
				}
			case *ir.StoreField:
				if !st.IsStatic() {
					a.instanceStoresByField[st.Field] = append(a.instanceStoresByField[st.Field], st)
				}
			case *ir.LoadArray:
				a.arrayLoads = append(a.arrayLoads, st)
			case *ir.StoreArray:
				a.arrayStores = append(a.arrayStores, st)
			}
		}
	}
	return a
}

func fieldCanHoldInt(f ir.Field) bool {
	switch f.Type().Kind() {
	case ir.KindByte, ir.KindShort, ir.KindInt, ir.KindChar, ir.KindBoolean:
		return true
	default:
		return false
	}
}

// alias returns v's alias group, defaulting to {v} when v has no recorded
// points-to set (e.g. it never held a reference-typed value).
func (a *Analysis) alias(v ir.Var) map[ir.Var]bool {
	if g, ok := a.aliasGroups[v]; ok {
		return g
	}
	return map[ir.Var]bool{v: true}
}

func identityCopy(in, out *lattice.CPFact) bool {
	before := out.Copy()
	in.CopyInto(out)
	return !lattice.EqualFact(before, out)
}

func (Analysis) IsForward() bool { return true }

func (Analysis) NewInitialFact() *lattice.CPFact { return lattice.NewCPFact() }

func (Analysis) NewBoundaryFact(cfg ir.CFG) *lattice.CPFact {
	fact := lattice.NewCPFact()
	for _, p := range cfg.Method().Params() {
		if ir.CanHoldInt(p) {
			fact.Set(p, lattice.NotAConstant)
		}
	}
	return fact
}

func (Analysis) MeetInto(dst, src *lattice.CPFact) bool {
	return lattice.MeetInto(dst, src)
}

// TransferNode dispatches by statement kind; AssignStmt reuses
// constprop's literal/variable/binary-operator evaluation verbatim, field and
// array accesses get the alias-aware rules below, everything else is an
// identity copy.
func (a *Analysis) TransferNode(stmt ir.Stmt, in, out *lattice.CPFact) bool {
	a.pending = nil
	switch st := stmt.(type) {
	case *ir.AssignStmt:
		return a.transferAssign(st, in, out)
	case *ir.LoadField:
		return a.transferLoadField(st, in, out)
	case *ir.StoreField:
		return a.transferStoreField(st, in, out)
	case *ir.LoadArray:
		return a.transferLoadArray(st, in, out)
	case *ir.StoreArray:
		return a.transferStoreArray(st, in, out)
	default:
		return identityCopy(in, out)
	}
}

func (a *Analysis) transferAssign(st *ir.AssignStmt, in, out *lattice.CPFact) bool {
	next := in.Copy()
	if ir.CanHoldInt(st.LValue) {
		next.Set(st.LValue, constprop.Evaluate(st.RValue, in))
	}
	changed := !lattice.EqualFact(out, next)
	next.CopyInto(out)
	return changed
}

func (a *Analysis) transferLoadField(st *ir.LoadField, in, out *lattice.CPFact) bool {
	next := in.Copy()
	if ir.CanHoldInt(st.LValue) {
		if st.IsStatic() {
			next.Set(st.LValue, a.staticValues[st.Field])
		} else {
			val := lattice.Undefined
			group := a.alias(st.Base)
			for _, store := range a.instanceStoresByField[st.Field] {
				if group[store.Base] {
					val = lattice.Meet(val, a.instanceStoreValue[store])
				}
			}
			next.Set(st.LValue, val)
		}
	}
	changed := !lattice.EqualFact(out, next)
	next.CopyInto(out)
	return changed
}

// transferStoreField implements store rules: a static store
// meets into staticValues and, only if that changed, re-enqueues every known
// load of the field; an instance store records its value for the alias-aware
// load rule above and unconditionally re-enqueues aliased loads of the same
// field ( does not gate this on "changed" the way it does for the
// static case).
func (a *Analysis) transferStoreField(st *ir.StoreField, in, out *lattice.CPFact) bool {
	changed := identityCopy(in, out)
	if !fieldCanHoldInt(st.Field) {
		return changed
	}
	if st.IsStatic() {
		cur := a.staticValues[st.Field]
		merged := lattice.Meet(cur, in.Get(st.RValue))
		if !lattice.Equal(cur, merged) {
			a.staticValues[st.Field] = merged
			a.pending = append(a.pending, a.staticLoads[st.Field]...)
		}
		return changed
	}
	a.instanceStoreValue[st] = in.Get(st.RValue)
	group := a.alias(st.Base)
	for _, load := range a.instanceLoadsByField[st.Field] {
		if group[load.Base] {
			a.pending = append(a.pending, load)
		}
	}
	return changed
}

// arrayMayAlias implements array index-aliasing predicate:
// either UNDEF ⇒ not aliased; either NAC ⇒ may be aliased; both CONST ⇒
// aliased iff equal.
func arrayMayAlias(i1, i2 lattice.Value) bool {
	if i1.IsUndef() || i2.IsUndef() {
		return false
	}
	if i1.IsNAC() || i2.IsNAC() {
		return true
	}
	return i1.Int() == i2.Int()
}

func (a *Analysis) transferLoadArray(st *ir.LoadArray, in, out *lattice.CPFact) bool {
	next := in.Copy()
	if ir.CanHoldInt(st.LValue) {
		val := lattice.Undefined
		idxIn := in.Get(st.Index)
		group := a.alias(st.Base)
		for _, store := range a.arrayStores {
			if !group[store.Base] {
				continue
			}
			if arrayMayAlias(idxIn, a.arrayStoreIndex[store]) {
				val = lattice.Meet(val, a.arrayStoreValue[store])
			}
		}
		next.Set(st.LValue, val)
	}
	changed := !lattice.EqualFact(out, next)
	next.CopyInto(out)
	return changed
}

// transferStoreArray unconditionally re-enqueues every aliased array load
// regardless of index — the index-sensitivity lives in the load side's own
// predicate.
func (a *Analysis) transferStoreArray(st *ir.StoreArray, in, out *lattice.CPFact) bool {
	changed := identityCopy(in, out)
	if !ir.CanHoldInt(st.RValue) {
		return changed
	}
	a.arrayStoreValue[st] = in.Get(st.RValue)
	a.arrayStoreIndex[st] = in.Get(st.Index)
	group := a.alias(st.Base)
	for _, load := range a.arrayLoads {
		if group[load.Base] {
			a.pending = append(a.pending, load)
		}
	}
	return changed
}

func (a *Analysis) AfterTransfer(ir.Stmt, bool) []ir.Stmt {
	pending := a.pending
	a.pending = nil
	return pending
}

// TransferNormalEdge is identity.
func (a *Analysis) TransferNormalEdge(_ ir.Stmt, out *lattice.CPFact) *lattice.CPFact {
	return out.Copy()
}

// TransferCallToReturn copies out and strips the call's own defined variable.
func (a *Analysis) TransferCallToReturn(call ir.Stmt, out *lattice.CPFact) *lattice.CPFact {
	next := out.Copy()
	if inv, ok := call.(*ir.Invoke); ok && inv.LValue != nil {
		next.Set(inv.LValue, lattice.Undefined)
	}
	return next
}

// TransferCall projects the caller's out-fact onto the callee's parameters.
func (a *Analysis) TransferCall(call ir.Stmt, out *lattice.CPFact, calleeEntry ir.Stmt) *lattice.CPFact {
	next := lattice.NewCPFact()
	inv, ok := call.(*ir.Invoke)
	if !ok {
		return next
	}
	calleeMethod := a.icfg.ContainingMethod(calleeEntry)
	params := calleeMethod.Params()
	for i, p := range params {
		if i >= len(inv.Args) {
			break
		}
		if ir.CanHoldInt(p) {
			next.Set(p, out.Get(inv.Args[i]))
		}
	}
	return next
}

// TransferReturn projects the callee's exit fact back onto the caller's
// after-call fact: meet over the originating Return statement's
// result variables, bound to the call's own LValue.
func (a *Analysis) TransferReturn(call, returnStmt ir.Stmt, returnOut *lattice.CPFact) *lattice.CPFact {
	next := lattice.NewCPFact()
	inv, ok := call.(*ir.Invoke)
	if !ok || inv.LValue == nil {
		return next
	}
	ret, ok := returnStmt.(*ir.Return)
	if !ok {
		return next
	}
	val := lattice.Undefined
	for _, r := range ret.Results {
		val = lattice.Meet(val, returnOut.Get(r))
	}
	next.Set(inv.LValue, val)
	return next
}
