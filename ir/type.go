// Package ir declares the external interfaces the analysis core consumes:
// a per-method statement sequence, a class hierarchy with sub-type queries,
// and the control-flow graphs built over that IR. Constructing any of these
// (parsing bytecode, loading classes, building a CFG) is out of scope for
// this module; ir only fixes the shape that the rest of the packages are
// written against.
package ir

// Kind classifies a Type for the purposes the core cares about: whether a
// variable of that type can ever hold a points-to set (reference types) or
// an integer value tracked by constant propagation.
type Kind int

const (
	KindInt Kind = iota
	KindByte
	KindShort
	KindChar
	KindBoolean
	KindLong
	KindFloat
	KindDouble
	KindClass
	KindInterface
	KindArray
	KindNull
)

// Type is the minimal type abstraction the core queries. Concrete IRs
// generally back this with the language's real declared-type representation.
type Type interface {
	Kind() Kind
	String() string
}

// IsReference reports whether typ is a heap-reference kind, i.e. can carry a
// points-to set (class, interface, array, or null).
func IsReference(typ Type) bool {
	switch typ.Kind() {
	case KindClass, KindInterface, KindArray, KindNull:
		return true
	default:
		return false
	}
}

// CanHoldInt reports whether v's declared type is one of the integer-like
// kinds constant propagation tracks: byte, short, int, char, boolean.
func CanHoldInt(v Var) bool {
	switch v.Type().Kind() {
	case KindByte, KindShort, KindInt, KindChar, KindBoolean:
		return true
	default:
		return false
	}
}

// BasicType is a ready-made Type for the integer-like and reference kinds
// used pervasively by fixtures and simple IR builders.
type BasicType struct {
	K    Kind
	Name string
}

func (b BasicType) Kind() Kind     { return b.K }
func (b BasicType) String() string { return b.Name }
