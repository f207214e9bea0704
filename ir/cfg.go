package ir

// EdgeKind tags a CFG successor edge.
type EdgeKind int

const (
	FallThrough EdgeKind = iota
	IfTrue
	IfFalse
	SwitchCase
	SwitchDefault
	Goto
	ReturnEdge
)

// CFGEdge is one outgoing edge of a CFG node.
type CFGEdge struct {
	Kind  EdgeKind
	Value int32 // meaningful only for SwitchCase
	Succ  Stmt
}

// CFG is the intra-procedural control-flow graph over one method's
// statements.
type CFG interface {
	Method() Method
	Entry() Stmt
	Exit() Stmt
	Stmts() []Stmt
	SuccsOf(Stmt) []Stmt
	PredsOf(Stmt) []Stmt
	OutEdgesOf(Stmt) []CFGEdge
}

// ICFGEdgeKind tags an inter-procedural edge.
type ICFGEdgeKind int

const (
	NormalEdge ICFGEdgeKind = iota
	CallEdge
	CallToReturnEdge
	ReturnICFGEdge
)

// ICFGEdge is one inter-procedural edge, annotated with the methods its
// endpoints belong to (a NormalEdge's From/To share a method; a CallEdge's To
// is the callee's entry; a ReturnICFGEdge's From is the callee's Return
// statement and To is the caller's after-call statement). Call identifies the
// originating call-site statement: equal to From for CallEdge and
// CallToReturnEdge, but distinct from both endpoints for ReturnICFGEdge
// (whose From is the callee's Return, not the call).
type ICFGEdge struct {
	Kind       ICFGEdgeKind
	From, To   Stmt
	FromM, ToM Method
	Call       Stmt
}

// ICFG is the inter-procedural CFG: node iteration plus edges of
// the four kinds above. Implementations are built from a completed call
// graph plus a per-method CFG provider; this module supplies none outside
// the test-only ICFG in internal/fixture.
type ICFG interface {
	Methods() []Method
	ContainingMethod(Stmt) Method
	OutEdges(Stmt) []ICFGEdge
	InEdges(Stmt) []ICFGEdge
	EntryOf(Method) Stmt
}
