package ir

import "strconv"

// Stmt is the closed statement vocabulary: New, Copy, LoadField,
// StoreField, LoadArray, StoreArray, Invoke, If, Switch, AssignStmt, Return,
// and Nop for straight-line control flow (gotos are Goto-kind CFG edges, not
// a statement of their own). Every concrete stmt type below
// implements Stmt; callers switch exhaustively over them — tagged variants,
// not open inheritance.
type Stmt interface {
	// Index is the statement's position in its method, used to order
	// statements deterministically (deadcode results, taint flows). Allocation
	// sites (heap.Obj) and CFG/ICFG nodes are identified by the Stmt value
	// itself, not by Index.
	Index() int
	String() string
}

type stmtBase struct{ idx int }

func (s stmtBase) Index() int { return s.idx }

// New is `x = new T()`: allocates a fresh heap object at this statement.
type New struct {
	stmtBase
	LValue Var
	Type   Type
}

func NewNew(idx int, lvalue Var, typ Type) *New { return &New{stmtBase{idx}, lvalue, typ} }
func (s *New) String() string                   { return s.LValue.Name() + " = new " + s.Type.String() + "()" }

// Copy is `x = y`.
type Copy struct {
	stmtBase
	LValue Var
	RValue Var
}

func NewCopy(idx int, lvalue, rvalue Var) *Copy { return &Copy{stmtBase{idx}, lvalue, rvalue} }
func (s *Copy) String() string                 { return s.LValue.Name() + " = " + s.RValue.Name() }

// LoadField is `x = C.f` (Base == nil, static) or `x = base.f` (instance).
type LoadField struct {
	stmtBase
	LValue Var
	Base   Var // nil for a static load
	Field  Field
}

func NewLoadField(idx int, lvalue, base Var, field Field) *LoadField {
	return &LoadField{stmtBase{idx}, lvalue, base, field}
}
func (s *LoadField) IsStatic() bool { return s.Base == nil }
func (s *LoadField) String() string {
	if s.IsStatic() {
		return s.LValue.Name() + " = " + s.Field.DeclaringClass().Name() + "." + s.Field.Name()
	}
	return s.LValue.Name() + " = " + s.Base.Name() + "." + s.Field.Name()
}

// StoreField is `C.f = y` (Base == nil, static) or `base.f = y` (instance).
type StoreField struct {
	stmtBase
	Base   Var // nil for a static store
	Field  Field
	RValue Var
}

func NewStoreField(idx int, base Var, field Field, rvalue Var) *StoreField {
	return &StoreField{stmtBase{idx}, base, field, rvalue}
}
func (s *StoreField) IsStatic() bool { return s.Base == nil }
func (s *StoreField) String() string {
	if s.IsStatic() {
		return s.Field.DeclaringClass().Name() + "." + s.Field.Name() + " = " + s.RValue.Name()
	}
	return s.Base.Name() + "." + s.Field.Name() + " = " + s.RValue.Name()
}

// LoadArray is `x = base[index]`. Index is tracked even though the points-to
// layer collapses every index of an array object to one ArrayIndexPtr cell
// — the inter-procedural constant-propagation layer
// needs it for index-sensitive alias resolution between array accesses.
type LoadArray struct {
	stmtBase
	LValue Var
	Base   Var
	Index  Var
}

func NewLoadArray(idx int, lvalue, base, index Var) *LoadArray {
	return &LoadArray{stmtBase{idx}, lvalue, base, index}
}
func (s *LoadArray) String() string {
	return s.LValue.Name() + " = " + s.Base.Name() + "[" + s.Index.Name() + "]"
}

// StoreArray is `base[index] = y`.
type StoreArray struct {
	stmtBase
	Base   Var
	Index  Var
	RValue Var
}

func NewStoreArray(idx int, base, index, rvalue Var) *StoreArray {
	return &StoreArray{stmtBase{idx}, base, index, rvalue}
}
func (s *StoreArray) String() string {
	return s.Base.Name() + "[" + s.Index.Name() + "] = " + s.RValue.Name()
}

// CallKind distinguishes the dispatch discipline of an Invoke.
type CallKind int

const (
	CallStatic CallKind = iota
	CallSpecial
	CallVirtual
	CallInterface
	CallDynamic
	CallOther
)

func (k CallKind) String() string {
	switch k {
	case CallStatic:
		return "static"
	case CallSpecial:
		return "special"
	case CallVirtual:
		return "virtual"
	case CallInterface:
		return "interface"
	case CallDynamic:
		return "dynamic"
	default:
		return "other"
	}
}

// Invoke is a method call of any CallKind. Method is the statically declared
// target: for STATIC/SPECIAL it is the sole callee; for VIRTUAL/INTERFACE it
// is the method CHA/points-to dispatch against via its Subsignature; for
// DYNAMIC it may be nil (resolution is out of scope Non-goals).
type Invoke struct {
	stmtBase
	LValue Var // nil if the call's result is unused
	Kind   CallKind
	Method Method
	Base   Var // receiver; nil for static calls
	Args   []Var
}

func NewInvoke(idx int, lvalue Var, kind CallKind, method Method, base Var, args []Var) *Invoke {
	return &Invoke{stmtBase{idx}, lvalue, kind, method, base, args}
}
func (s *Invoke) String() string {
	r := ""
	if s.LValue != nil {
		r = s.LValue.Name() + " = "
	}
	b := ""
	if s.Base != nil {
		b = s.Base.Name() + "."
	}
	name := "?"
	if s.Method != nil {
		name = s.Method.Name()
	}
	return r + b + name + "(...)"
}

// BinOp is the set of binary operators constant propagation evaluates.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	Shl
	Shr
	UShr
	And
	Or
	Xor
)

// Expr is the right-hand side of an AssignStmt: a literal, a variable read,
// or a binary operation over two variables.
type Expr interface {
	isExpr()
	String() string
}

type IntLiteral struct{ Value int32 }

func (IntLiteral) isExpr()         {}
func (l IntLiteral) String() string { return strconv.FormatInt(int64(l.Value), 10) }

type VarExpr struct{ V Var }

func (VarExpr) isExpr()         {}
func (e VarExpr) String() string { return e.V.Name() }

type BinaryExpr struct {
	Op   BinOp
	L, R Var
}

func (BinaryExpr) isExpr() {}
func (e BinaryExpr) String() string {
	return e.L.Name() + " " + e.Op.String() + " " + e.R.Name()
}

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	case UShr:
		return ">>>"
	case And:
		return "&"
	case Or:
		return "|"
	case Xor:
		return "^"
	default:
		return "?"
	}
}

// AssignStmt is `x := e` for an arbitrary Expr. Constant-propagation's
// transfer is defined over this statement kind alone; all other kinds leave
// the constant-propagation fact unchanged for their defined variable.
type AssignStmt struct {
	stmtBase
	LValue Var
	RValue Expr
}

func NewAssignStmt(idx int, lvalue Var, rvalue Expr) *AssignStmt {
	return &AssignStmt{stmtBase{idx}, lvalue, rvalue}
}
func (s *AssignStmt) String() string { return s.LValue.Name() + " := " + s.RValue.String() }

// Return is `return r1, ..., rn`.
type Return struct {
	stmtBase
	Results []Var
}

func NewReturn(idx int, results []Var) *Return { return &Return{stmtBase{idx}, results} }
func (s *Return) String() string               { return "return" }

// If is a conditional branch; the generic dataflow solver only uses its CFG
// successors (true/false edges), never its condition's value. Package
// deadcode reads the condition's constant-propagation value to prune the
// branch it rules out.
type If struct {
	stmtBase
	Cond Var
}

func NewIf(idx int, cond Var) *If { return &If{stmtBase{idx}, cond} }
func (s *If) String() string      { return "if " + s.Cond.Name() }

// Switch is a multi-way branch; like If, the dataflow solver only uses its
// CFG successors, and package deadcode reads its value to prune cases.
type Switch struct {
	stmtBase
	Value Var
}

func NewSwitch(idx int, value Var) *Switch { return &Switch{stmtBase{idx}, value} }
func (s *Switch) String() string           { return "switch " + s.Value.Name() }

// Nop is a statement with no effect beyond falling through, used for labels,
// gotos, and the synthetic entry/exit markers of a CFG.
type Nop struct{ stmtBase }

func NewNop(idx int) *Nop    { return &Nop{stmtBase{idx}} }
func (s *Nop) String() string { return "nop" }
