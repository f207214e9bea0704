package pointer

import "github.com/wpago/wpago/ir"

// Pointer is the closed tagged-variant vocabulary of points-to-set owners.
// Every variant is a plain comparable struct (never behind a further
// pointer), so two Pointer values compare equal with == exactly when they
// denote the same PFG node — which lets Pointer serve directly as a map key.
type Pointer interface {
	isPointer()
	String() string
}

// VarPtr is a local variable under some context.
type VarPtr struct{ V *CSVar }

func (VarPtr) isPointer()     {}
func (p VarPtr) String() string { return "var:" + p.V.String() }

// StaticFieldPtr is a static field, context-free: unlike instance fields,
// static fields have no receiver object to key a context off of.
type StaticFieldPtr struct{ F ir.Field }

func (StaticFieldPtr) isPointer()     {}
func (p StaticFieldPtr) String() string {
	return "static:" + p.F.DeclaringClass().Name() + "." + p.F.Name()
}

// InstanceFieldPtr is one (object, field) pair; all writes/reads through any
// alias of the object's holder collapse onto this one pointer.
type InstanceFieldPtr struct {
	Base *CSObj
	F    ir.Field
}

func (InstanceFieldPtr) isPointer() {}
func (p InstanceFieldPtr) String() string {
	return "field:" + p.Base.String() + "." + p.F.Name()
}

// ArrayIndexPtr is an array object's single collapsed index cell.
type ArrayIndexPtr struct{ Base *CSObj }

func (ArrayIndexPtr) isPointer()     {}
func (p ArrayIndexPtr) String() string { return "arr:" + p.Base.String() }
