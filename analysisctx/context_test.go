package analysisctx_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/analysisctx"
	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestBuildCHAMergesMultipleEntries exercises two independent entry methods
// sharing one callee: CHA from each entry resolves a static call to the same
// method, and BuildCHA's merged graph must keep both entries and the shared
// callee reachable.
func TestBuildCHAMergesMultipleEntries(t *testing.T) {
	shared := &fixture.Method{MName: "shared", MSubsig: "shared()", MStatic: true}
	sharedCFG := fixture.Straight(shared, ir.NewNop(0))
	fixture.Attach(shared, sharedCFG)

	entryA := &fixture.Method{MName: "a", MSubsig: "a()", MStatic: true}
	callA := ir.NewInvoke(0, nil, ir.CallStatic, shared, nil, nil)
	fixture.Attach(entryA, fixture.Straight(entryA, callA))

	entryB := &fixture.Method{MName: "b", MSubsig: "b()", MStatic: true}
	callB := ir.NewInvoke(0, nil, ir.CallStatic, shared, nil, nil)
	fixture.Attach(entryB, fixture.Straight(entryB, callB))

	hierarchy := fixture.NewClassHierarchy()
	ctx := analysisctx.New(hierarchy, nil, entryA, entryB)

	g := ctx.BuildCHA()
	require.True(t, g.IsReachable(shared))
	require.True(t, g.IsReachable(entryA))
	require.True(t, g.IsReachable(entryB))
}

// TestNewPointsToSolverAnalyzesEveryEntry checks that a Context with two
// independent entries produces points-to facts for allocations under both.
func TestNewPointsToSolverAnalyzesEveryEntry(t *testing.T) {
	class := fixture.NewClass("X", nil)
	a := fixture.NewRefVar("a", class)
	entryA := &fixture.Method{MName: "a", MSubsig: "a()", MStatic: true}
	fixture.Attach(entryA, fixture.Straight(entryA, ir.NewNew(0, a, class)))

	b := fixture.NewRefVar("b", class)
	entryB := &fixture.Method{MName: "b", MSubsig: "b()", MStatic: true}
	fixture.Attach(entryB, fixture.Straight(entryB, ir.NewNew(0, b, class)))

	hierarchy := fixture.NewClassHierarchy()
	ctx := analysisctx.New(hierarchy, nil, entryA, entryB)

	solver := ctx.NewPointsToSolver(pointer.CIContextSelector{})

	ptsA := solver.PTS(pointer.VarPtr{V: solver.Manager().Var(pointer.Empty, a, entryA)})
	ptsB := solver.PTS(pointer.VarPtr{V: solver.Manager().Var(pointer.Empty, b, entryB)})
	require.Equal(t, 1, ptsA.Len())
	require.Equal(t, 1, ptsB.Len())
}
