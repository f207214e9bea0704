package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// classX/classY declare two unrelated, concrete, field-less classes for the
// scenario-6 style tests below.
func classPair() (*fixture.Class, *fixture.Class) {
	return fixture.NewClass("X", nil), fixture.NewClass("Y", nil)
}

// TestScenario6_CIAliasing builds scenario 6:
//
//	a = new X();   // s1
//	b = a;
//	c = new Y();   // s3
//	b = c;
//
// expecting pts(a) = {X@s1}, pts(b) = {X@s1, Y@s3}, pts(c) = {Y@s3}.
func TestScenario6_CIAliasing(t *testing.T) {
	classX, classY := classPair()

	a := fixture.NewRefVar("a", classX)
	b := fixture.NewRefVar("b", classX)
	c := fixture.NewRefVar("c", classY)

	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s1 := ir.NewNew(0, a, classX)
	s2 := ir.NewCopy(1, b, a)
	s3 := ir.NewNew(2, c, classY)
	s4 := ir.NewCopy(3, b, c)
	cfg := fixture.Straight(method, s1, s2, s3, s4)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	mgr := solver.Manager()
	empty := pointer.Empty

	ptsOf := func(v ir.Var) []*pointer.CSObj {
		return solver.PTS(pointer.VarPtr{V: mgr.Var(empty, v, method)}).Objects()
	}

	require.Len(t, ptsOf(a), 1)
	require.Equal(t, "[]:X", ptsOf(a)[0].String())

	bPts := ptsOf(b)
	require.Len(t, bPts, 2)
	require.Equal(t, "[]:X", bPts[0].String())
	require.Equal(t, "[]:Y", bPts[1].String())

	cPts := ptsOf(c)
	require.Len(t, cPts, 1)
	require.Equal(t, "[]:Y", cPts[0].String())
}

// TestVirtualDispatchThroughPointsTo exercises processOneCall: a variable of
// interface type I is assigned a concrete A, and an interface call through
// that variable must resolve to A's override and add a call edge to it.
func TestVirtualDispatchThroughPointsTo(t *testing.T) {
	iface := fixture.NewInterface("I")
	classA := fixture.NewClass("A", nil)

	subsig := "m()"
	ifaceM := &fixture.Method{MName: "m", MSubsig: subsig, MAbstract: true}
	iface.AddMethod(ifaceM)

	aThis := fixture.NewRefVar("this", classA)
	aM := &fixture.Method{MName: "m", MSubsig: subsig, MThis: aThis}
	classA.AddMethod(aM)
	aBody := fixture.Straight(aM, ir.NewNop(0))
	fixture.Attach(aM, aBody)

	recv := fixture.NewRefVar("recv", iface)
	mainMethod := &fixture.Method{MName: "main", MSubsig: "main()"}
	sNew := ir.NewNew(0, recv, classA)
	sCall := ir.NewInvoke(1, nil, ir.CallInterface, ifaceM, recv, nil)
	cfg := fixture.Straight(mainMethod, sNew, sCall)
	fixture.Attach(mainMethod, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(mainMethod)

	cg := solver.CallGraph()
	found := false
	for _, e := range cg.EdgesAt(sCall) {
		if e.Callee.Method == aM {
			found = true
		}
	}
	require.True(t, found, "virtual call through points-to should resolve to A.m")
}

// TestContextSensitivityDistinguishesCallSites shows k-callsite sensitivity
// (k=1) produces two distinct CSMethod instances for a helper invoked from
// two different call sites, each carrying its own points-to facts, whereas
// context-insensitivity merges them.
func TestContextSensitivityDistinguishesCallSites(t *testing.T) {
	classX, classY := classPair()

	helperParam := fixture.NewRefVar("p", classX)
	helperRet := fixture.NewRefVar("r", classX)
	helper := &fixture.Method{MName: "id", MSubsig: "id()", MParams: []ir.Var{helperParam}}
	hCopy := ir.NewCopy(0, helperRet, helperParam)
	hReturn := ir.NewReturn(1, []ir.Var{helperRet})
	helperCFG := fixture.Straight(helper, hCopy, hReturn)
	fixture.Attach(helper, helperCFG)

	a := fixture.NewRefVar("a", classX)
	b := fixture.NewRefVar("b", classY)
	ra := fixture.NewRefVar("ra", classX)
	rb := fixture.NewRefVar("rb", classY)

	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s1 := ir.NewNew(0, a, classX)
	s2 := ir.NewInvoke(1, ra, ir.CallStatic, helper, nil, []ir.Var{a})
	s3 := ir.NewNew(2, b, classY)
	s4 := ir.NewInvoke(3, rb, ir.CallStatic, helper, nil, []ir.Var{b})
	cfg := fixture.Straight(method, s1, s2, s3, s4)
	fixture.Attach(method, cfg)

	t.Run("context-insensitive merges both call sites", func(t *testing.T) {
		solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
		solver.Analyze(method)
		mgr := solver.Manager()
		pPts := solver.PTS(pointer.VarPtr{V: mgr.Var(pointer.Empty, helperParam, helper)}).Objects()
		require.Len(t, pPts, 2, "CI merges both a and b into the single helper param")
	})

	t.Run("1-callsite-sensitive keeps call sites apart", func(t *testing.T) {
		solver := pointer.NewSolver(heap.NewSiteModel(), pointer.NewKCallSiteSelector(1))
		solver.Analyze(method)
		mgr := solver.Manager()

		ctxAtS2 := mgr.Method(pointer.Empty, method)
		_ = ctxAtS2

		cg := solver.CallGraph()
		var calleeAtS2, calleeAtS4 *pointer.CSMethod
		for _, e := range cg.EdgesAt(s2) {
			calleeAtS2 = e.Callee
		}
		for _, e := range cg.EdgesAt(s4) {
			calleeAtS4 = e.Callee
		}
		require.NotNil(t, calleeAtS2)
		require.NotNil(t, calleeAtS4)
		require.NotSame(t, calleeAtS2, calleeAtS4, "distinct call sites must get distinct CS contexts")

		paramAtS2 := mgr.Var(calleeAtS2.Ctx, helperParam, helper)
		paramAtS4 := mgr.Var(calleeAtS4.Ctx, helperParam, helper)
		require.Len(t, solver.PTS(pointer.VarPtr{V: paramAtS2}).Objects(), 1)
		require.Len(t, solver.PTS(pointer.VarPtr{V: paramAtS4}).Objects(), 1)
	})
}

// TestResultBundlesCallGraphPFGAndVars shows Solver.Result() gives a caller
// everything a bare solver handle would otherwise require reaching into
// internals for: the call graph, the PFG, and the set of variables with a
// points-to set, recoverable without the Manager.
func TestResultBundlesCallGraphPFGAndVars(t *testing.T) {
	classX, classY := classPair()

	a := fixture.NewRefVar("a", classX)
	b := fixture.NewRefVar("b", classY)
	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s1 := ir.NewNew(0, a, classX)
	s2 := ir.NewNew(1, b, classY)
	cfg := fixture.Straight(method, s1, s2)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	result := solver.Result()
	require.Same(t, solver.CallGraph(), result.CallGraph())
	require.NotNil(t, result.PFG())

	names := make([]string, 0, len(result.Vars()))
	for _, v := range result.Vars() {
		names = append(names, v.Var.Name())
	}
	require.ElementsMatch(t, []string{"a", "b"}, names)

	mgr := solver.Manager()
	require.Equal(t, result.PTS(pointer.VarPtr{V: mgr.Var(pointer.Empty, a, method)}).Objects(),
		solver.PTS(pointer.VarPtr{V: mgr.Var(pointer.Empty, a, method)}).Objects())
}

func TestPFGSubsetInvariant(t *testing.T) {
	classX, _ := classPair()
	a := fixture.NewRefVar("a", classX)
	b := fixture.NewRefVar("b", classX)
	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s1 := ir.NewNew(0, a, classX)
	s2 := ir.NewCopy(1, b, a)
	cfg := fixture.Straight(method, s1, s2)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	mgr := solver.Manager()
	aPts := solver.PTS(pointer.VarPtr{V: mgr.Var(pointer.Empty, a, method)}).Objects()
	bPts := solver.PTS(pointer.VarPtr{V: mgr.Var(pointer.Empty, b, method)}).Objects()

	require.Len(t, aPts, 1)
	require.ElementsMatch(t, aPts, bPts, "pts(a) subset-flows into pts(b) via the Copy edge")
}
