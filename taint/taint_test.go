package taint_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wpago/wpago/heap"
	"github.com/wpago/wpago/internal/fixture"
	"github.com/wpago/wpago/ir"
	"github.com/wpago/wpago/pointer"
	"github.com/wpago/wpago/taint"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestDirectSourceToSink: x = src(); sink(x); reports exactly one flow.
func TestDirectSourceToSink(t *testing.T) {
	srcClass := fixture.NewClass("Src", nil)
	sinkClass := fixture.NewClass("Sink", nil)
	srcM := &fixture.Method{MName: "src", MSubsig: "src()", MClass: srcClass, MStatic: true}
	sinkM := &fixture.Method{MName: "sink", MSubsig: "sink()", MClass: sinkClass, MStatic: true}

	x := fixture.NewRefVar("x", fixture.NewClass("Object", nil))
	main := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewInvoke(0, x, ir.CallStatic, srcM, nil, nil)
	s1 := ir.NewInvoke(1, nil, ir.CallStatic, sinkM, nil, []ir.Var{x})
	cfg := fixture.Straight(main, s0, s1)
	fixture.Attach(main, cfg)

	taintCfg := taint.NewConfig()
	taintCfg.AddSource("Src", "src()")
	taintCfg.AddSink("Sink", "sink()", 0)

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	flows := taint.Run(taintCfg, solver, []ir.Method{main, srcM, sinkM}, main)

	require.Len(t, flows, 1)
	require.Equal(t, s0, flows[0].SourceCall)
	require.Equal(t, s1, flows[0].SinkCall)
	require.Equal(t, 0, flows[0].ArgIndex)
}

// TestSourceThroughTransferToSink: x = id(src()); sink(x); with a transfer
// id(arg0)->result also reports exactly one flow.
func TestSourceThroughTransferToSink(t *testing.T) {
	srcClass := fixture.NewClass("Src", nil)
	idClass := fixture.NewClass("Id", nil)
	sinkClass := fixture.NewClass("Sink", nil)
	srcM := &fixture.Method{MName: "src", MSubsig: "src()", MClass: srcClass, MStatic: true}
	idM := &fixture.Method{MName: "id", MSubsig: "id()", MClass: idClass, MStatic: true}
	sinkM := &fixture.Method{MName: "sink", MSubsig: "sink()", MClass: sinkClass, MStatic: true}

	objClass := fixture.NewClass("Object", nil)
	tmp := fixture.NewRefVar("t", objClass)
	x := fixture.NewRefVar("x", objClass)
	main := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewInvoke(0, tmp, ir.CallStatic, srcM, nil, nil)
	s1 := ir.NewInvoke(1, x, ir.CallStatic, idM, nil, []ir.Var{tmp})
	s2 := ir.NewInvoke(2, nil, ir.CallStatic, sinkM, nil, []ir.Var{x})
	cfg := fixture.Straight(main, s0, s1, s2)
	fixture.Attach(main, cfg)

	taintCfg := taint.NewConfig()
	taintCfg.AddSource("Src", "src()")
	taintCfg.AddSink("Sink", "sink()", 0)
	taintCfg.AddTransfer("Id", "id()", taint.Endpoint{Kind: taint.EndpointArg, ArgIndex: 0}, taint.Endpoint{Kind: taint.EndpointResult})

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	flows := taint.Run(taintCfg, solver, []ir.Method{main, srcM, idM, sinkM}, main)

	require.Len(t, flows, 1)
	require.Equal(t, s0, flows[0].SourceCall)
	require.Equal(t, s2, flows[0].SinkCall)
}

// TestNoFlowWithoutSink: a tainted value that never reaches a recorded sink
// reports no flow.
func TestNoFlowWithoutSink(t *testing.T) {
	srcClass := fixture.NewClass("Src", nil)
	srcM := &fixture.Method{MName: "src", MSubsig: "src()", MClass: srcClass, MStatic: true}

	x := fixture.NewRefVar("x", fixture.NewClass("Object", nil))
	main := &fixture.Method{MName: "main", MSubsig: "main()"}
	s0 := ir.NewInvoke(0, x, ir.CallStatic, srcM, nil, nil)
	cfg := fixture.Straight(main, s0)
	fixture.Attach(main, cfg)

	taintCfg := taint.NewConfig()
	taintCfg.AddSource("Src", "src()")

	solver := pointer.NewSolver(heap.NewSiteModel(), pointer.CIContextSelector{})
	flows := taint.Run(taintCfg, solver, []ir.Method{main, srcM}, main)

	require.Empty(t, flows)
}
