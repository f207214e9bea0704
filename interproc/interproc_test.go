package interproc_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/interproc"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intType() ir.Type { return ir.BasicType{K: ir.KindInt, Name: "int"} }

// TestInstanceFieldAliasing exercises instance-field rule: a and
// b alias the same heap object, so a store through a must be visible to a
// load through b.
//
//	a = new C();
//	b = a;
//	a.f = 5;
//	x = b.f;
func TestInstanceFieldAliasing(t *testing.T) {
	classC := fixture.NewClass("C", nil)
	field := &fixture.Field{FName: "f", FType: intType(), FClass: classC}

	a := fixture.NewRefVar("a", classC)
	b := fixture.NewRefVar("b", classC)
	x := fixture.NewIntVar("x")
	five := fixture.NewIntVar("five")

	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewNew(0, a, classC)
	s1 := ir.NewCopy(1, b, a)
	s2 := ir.NewAssignStmt(2, five, ir.IntLiteral{Value: 5})
	s3 := ir.NewStoreField(3, a, field, five)
	s4 := ir.NewLoadField(4, x, b, field)
	cfg := fixture.Straight(method, s0, s1, s2, s3, s4)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	icfg := fixture.NewICFG(method)
	result := interproc.Run(icfg, solver, []ir.Method{method})

	got := result.OutFact(s4).Get(x)
	require.True(t, got.IsConstant())
	require.EqualValues(t, 5, got.Int())
}

// TestStaticFieldAliasing exercises the static-field load/store rule: a
// store to a static field is visible to every load of that field, with no
// points-to involvement at all.
func TestStaticFieldAliasing(t *testing.T) {
	classC := fixture.NewClass("C", nil)
	field := &fixture.Field{FName: "count", FType: intType(), FClass: classC, FStatic: true}

	seven := fixture.NewIntVar("seven")
	x := fixture.NewIntVar("x")

	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewAssignStmt(0, seven, ir.IntLiteral{Value: 7})
	s1 := ir.NewStoreField(1, nil, field, seven)
	s2 := ir.NewLoadField(2, x, nil, field)
	cfg := fixture.Straight(method, s0, s1, s2)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	icfg := fixture.NewICFG(method)
	result := interproc.Run(icfg, solver, []ir.Method{method})

	got := result.OutFact(s2).Get(x)
	require.True(t, got.IsConstant())
	require.EqualValues(t, 7, got.Int())
}

// TestInterProceduralCallReturn exercises the call/call-to-return/return
// edge transfers: a static helper returning its argument unchanged, called
// with a known constant, propagates that constant back to the caller.
//
//	func id(p) { r = p; return r; }
//	func main() { a = 9; b = id(a); }
func TestInterProceduralCallReturn(t *testing.T) {
	p := fixture.NewIntVar("p")
	r := fixture.NewIntVar("r")
	helper := &fixture.Method{MName: "id", MSubsig: "id()", MParams: []ir.Var{p}}
	hCopy := ir.NewAssignStmt(0, r, ir.VarExpr{V: p})
	hReturn := ir.NewReturn(1, []ir.Var{r})
	helperCFG := fixture.Straight(helper, hCopy, hReturn)
	fixture.Attach(helper, helperCFG)

	a := fixture.NewIntVar("a")
	b := fixture.NewIntVar("b")
	method := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewAssignStmt(0, a, ir.IntLiteral{Value: 9})
	s1 := ir.NewInvoke(1, b, ir.CallStatic, helper, nil, []ir.Var{a})
	s2 := ir.NewNop(2)
	cfg := fixture.Straight(method, s0, s1, s2)
	fixture.Attach(method, cfg)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	solver.Analyze(method)

	icfg := fixture.NewICFG(method, helper)
	icfg.AddCall(s1, helper, s2)

	result := interproc.Run(icfg, solver, []ir.Method{method})

	got := result.OutFact(s2).Get(b)
	require.True(t, got.IsConstant())
	require.EqualValues(t, 9, got.Int())
}
