package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/constprop"
	"github.com/wpago/wpago/dataflow"
	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/lattice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func straightMethod(stmts ...ir.Stmt) (*fixture.Method, *fixture.CFG) {
	m := &fixture.Method{MName: "m"}
	cfg := fixture.Straight(m, stmts...)
	fixture.Attach(m, cfg)
	return m, cfg
}

// Scenario 1: x = 1; y = 2; z = x + y.
func TestScenario1_StraightLineArithmetic(t *testing.T) {
	t.Parallel()

	x, y, z := fixture.NewIntVar("x"), fixture.NewIntVar("y"), fixture.NewIntVar("z")
	s0 := ir.NewAssignStmt(0, x, ir.IntLiteral{Value: 1})
	s1 := ir.NewAssignStmt(1, y, ir.IntLiteral{Value: 2})
	s2 := ir.NewAssignStmt(2, z, ir.BinaryExpr{Op: ir.Add, L: x, R: y})
	_, cfg := straightMethod(s0, s1, s2)

	res := dataflow.Solve[lattice.CPFact](constprop.Analysis{}, cfg)
	out := res.OutFact(s2)
	require.True(t, out.Get(z).IsConstant())
	require.Equal(t, int32(3), out.Get(z).Int())
	require.Equal(t, int32(1), out.Get(x).Int())
	require.Equal(t, int32(2), out.Get(y).Int())
}

// Scenario 2: if (c) x = 1 else x = 2; z = x.
func TestScenario2_BranchJoinIsNAC(t *testing.T) {
	t.Parallel()

	x, z := fixture.NewIntVar("x"), fixture.NewIntVar("z")
	cond := fixture.NewIntVar("c")
	s0 := ir.NewIf(0, cond)
	s1 := ir.NewAssignStmt(1, x, ir.IntLiteral{Value: 1})
	s2 := ir.NewAssignStmt(2, x, ir.IntLiteral{Value: 2})
	s3 := ir.NewAssignStmt(3, z, ir.VarExpr{V: x})

	m := &fixture.Method{MName: "m"}
	out := map[ir.Stmt][]ir.CFGEdge{
		s0: {{Kind: ir.IfTrue, Succ: s1}, {Kind: ir.IfFalse, Succ: s2}},
		s1: {{Kind: ir.FallThrough, Succ: s3}},
		s2: {{Kind: ir.FallThrough, Succ: s3}},
	}
	cfg := fixture.NewCFG(m, []ir.Stmt{s0, s1, s2, s3}, s0, s3, out)
	fixture.Attach(m, cfg)

	res := dataflow.Solve[lattice.CPFact](constprop.Analysis{}, cfg)
	require.True(t, res.OutFact(s3).Get(z).IsNAC())
}

// Scenario 3: x = 0; y = <param, NAC>; z = x * y ⇒ CONST(0) by the
// multiplication zero short-circuit.
func TestScenario3_MulZeroShortCircuit(t *testing.T) {
	t.Parallel()

	x, z := fixture.NewIntVar("x"), fixture.NewIntVar("z")
	y := fixture.NewIntVar("y")
	s0 := ir.NewAssignStmt(0, x, ir.IntLiteral{Value: 0})
	s1 := ir.NewAssignStmt(1, z, ir.BinaryExpr{Op: ir.Mul, L: x, R: y})

	m := &fixture.Method{MName: "m", MParams: []ir.Var{y}}
	cfg := fixture.Straight(m, s0, s1)
	fixture.Attach(m, cfg)

	res := dataflow.Solve[lattice.CPFact](constprop.Analysis{}, cfg)
	out := res.OutFact(s1)
	require.True(t, out.Get(y).IsNAC())
	require.True(t, out.Get(z).IsConstant())
	require.Equal(t, int32(0), out.Get(z).Int())
}

// Scenario 4: x = 5 / 0 ⇒ CPFact[x] = UNDEF.
func TestScenario4_DivideByZeroIsUndef(t *testing.T) {
	t.Parallel()

	x := fixture.NewIntVar("x")
	five, zero := ir.IntLiteral{Value: 5}, ir.IntLiteral{Value: 0}

	a, b := fixture.NewIntVar("a"), fixture.NewIntVar("b")
	sa := ir.NewAssignStmt(0, a, five)
	sb := ir.NewAssignStmt(1, b, zero)
	sx := ir.NewAssignStmt(2, x, ir.BinaryExpr{Op: ir.Div, L: a, R: b})
	_, cfg := straightMethod(sa, sb, sx)

	res := dataflow.Solve[lattice.CPFact](constprop.Analysis{}, cfg)
	require.True(t, res.OutFact(sx).Get(x).IsUndef())
}
