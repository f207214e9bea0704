// Package fixture is a minimal in-memory implementation of every package ir
// interface, used only by this module's own _test.go files in place of a
// real class-loader/bytecode-parser front end. It is never imported by
// non-test code.
package fixture

import "github.com/wpago/wpago/ir"

// Var is a local variable or parameter.
type Var struct {
	VName string
	VType ir.Type
}

func (v *Var) Name() string  { return v.VName }
func (v *Var) Type() ir.Type { return v.VType }

// NewIntVar returns an int-typed Var, the common case in test bodies.
func NewIntVar(name string) *Var {
	return &Var{VName: name, VType: ir.BasicType{K: ir.KindInt, Name: "int"}}
}

// NewRefVar returns a Var of the given class type.
func NewRefVar(name string, class ir.Class) *Var {
	return &Var{VName: name, VType: ir.BasicType{K: ir.KindClass, Name: class.Name()}}
}

// Field is a declared field.
type Field struct {
	FName    string
	FType    ir.Type
	FClass   *Class
	FStatic  bool
}

func (f *Field) Name() string              { return f.FName }
func (f *Field) Type() ir.Type             { return f.FType }
func (f *Field) DeclaringClass() ir.Class  { return f.FClass }
func (f *Field) IsStatic() bool            { return f.FStatic }

// Class is a declared class or interface.
type Class struct {
	CName        string
	CInterface   bool
	CAbstract    bool
	CSuper       *Class
	CMethods     map[string]*Method
}

func NewClass(name string, super *Class) *Class {
	return &Class{CName: name, CSuper: super, CMethods: make(map[string]*Method)}
}

func NewInterface(name string) *Class {
	return &Class{CName: name, CInterface: true, CMethods: make(map[string]*Method)}
}

func (c *Class) Name() string { return c.CName }
func (c *Class) String() string { return c.CName }
func (c *Class) Kind() ir.Kind {
	if c.CInterface {
		return ir.KindInterface
	}
	return ir.KindClass
}
func (c *Class) IsInterface() bool  { return c.CInterface }
func (c *Class) IsAbstract() bool   { return c.CAbstract }
func (c *Class) SuperClass() (ir.Class, bool) {
	if c.CSuper == nil {
		return nil, false
	}
	return c.CSuper, true
}
func (c *Class) DeclaredMethod(subsig string) (ir.Method, bool) {
	m, ok := c.CMethods[subsig]
	return m, ok
}

// AddMethod declares m directly on c, keyed by its subsignature.
func (c *Class) AddMethod(m *Method) {
	m.MClass = c
	c.CMethods[m.Subsignature()] = m
}

// ClassHierarchy is an explicit, manually-wired parent/child index: callers
// register edges with AddSubclass/AddImplementor as they build fixture
// classes.
type ClassHierarchy struct {
	subclasses    map[ir.Class][]ir.Class
	subinterfaces map[ir.Class][]ir.Class
	implementors  map[ir.Class][]ir.Class
}

func NewClassHierarchy() *ClassHierarchy {
	return &ClassHierarchy{
		subclasses:    make(map[ir.Class][]ir.Class),
		subinterfaces: make(map[ir.Class][]ir.Class),
		implementors:  make(map[ir.Class][]ir.Class),
	}
}

func (h *ClassHierarchy) AddSubclass(parent, child ir.Class) {
	h.subclasses[parent] = append(h.subclasses[parent], child)
}

func (h *ClassHierarchy) AddSubinterface(parent, child ir.Class) {
	h.subinterfaces[parent] = append(h.subinterfaces[parent], child)
}

func (h *ClassHierarchy) AddImplementor(iface, impl ir.Class) {
	h.implementors[iface] = append(h.implementors[iface], impl)
}

func (h *ClassHierarchy) DirectSubclassesOf(c ir.Class) []ir.Class    { return h.subclasses[c] }
func (h *ClassHierarchy) DirectSubinterfacesOf(c ir.Class) []ir.Class { return h.subinterfaces[c] }
func (h *ClassHierarchy) DirectImplementorsOf(c ir.Class) []ir.Class  { return h.implementors[c] }

// Method is a declared method, abstract or concrete.
type Method struct {
	MName    string
	MSubsig  string
	MClass   *Class
	MAbstract bool
	MStatic  bool
	MParams  []ir.Var
	MThis    ir.Var
	MIR      *IR
}

func (m *Method) Name() string         { return m.MName }
func (m *Method) Subsignature() string { return m.MSubsig }
func (m *Method) DeclaringClass() ir.Class { return m.MClass }
func (m *Method) IsAbstract() bool     { return m.MAbstract }
func (m *Method) IsStatic() bool       { return m.MStatic }
func (m *Method) Params() []ir.Var     { return m.MParams }
func (m *Method) ThisVar() (ir.Var, bool) {
	if m.MThis == nil {
		return nil, false
	}
	return m.MThis, true
}
func (m *Method) ReturnVars() []ir.Var {
	var vars []ir.Var
	if m.MIR == nil {
		return nil
	}
	for _, s := range m.MIR.Stmts() {
		if r, ok := s.(*ir.Return); ok {
			vars = append(vars, r.Results...)
		}
	}
	return vars
}
func (m *Method) IR() ir.IR {
	if m.MIR == nil {
		return nil
	}
	return m.MIR
}

// IR is a flat statement sequence with an explicit successor map, built by
// Attach.
type IR struct {
	stmts []ir.Stmt
	cfg   *CFG
}

func (b *IR) Stmts() []ir.Stmt { return b.stmts }
func (b *IR) CFG() ir.CFG      { return b.cfg }
