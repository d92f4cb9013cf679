// Package value implements the typed-variant cell value shared by columns,
// the JSON-document store, and the predicate engine: a tagged union over
// {null, bool, i64, u64, f64, interned-string, array-locator, object-locator}.
package value

import "fmt"

// Tag identifies which field of a Value is meaningful.
type Tag uint8

const (
	Null Tag = iota
	Bool
	I64
	U64
	F64
	Str // interned string: payload is a strtable.Locator stored in u64
	Arr // array locator: payload is a bento.DocID stored in u64
	Obj // object locator: payload is a bento.DocID stored in u64
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case I64:
		return "i64"
	case U64:
		return "u64"
	case F64:
		return "f64"
	case Str:
		return "string"
	case Arr:
		return "array"
	case Obj:
		return "object"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Value is the cell/locator value carried through the core components.
// It is intentionally a plain comparable struct (no interfaces, no
// allocation) so it can be stored by value in the predicate engine's row
// buffer and copied by value through column storage.
type Value struct {
	tag Tag
	u   uint64  // i64/u64/bool/Str-locator/Arr-locator/Obj-locator payload
	f   float64 // f64 payload
}

// NullValue returns the absent/null value.
func NullValue() Value { return Value{tag: Null} }

func FromBool(b bool) Value {
	var u uint64
	if b {
		u = 1
	}
	return Value{tag: Bool, u: u}
}

func FromI64(v int64) Value { return Value{tag: I64, u: uint64(v)} }
func FromU64(v uint64) Value { return Value{tag: U64, u: v} }
func FromF64(v float64) Value { return Value{tag: F64, f: v} }

// FromStrLocator wraps an interned-string locator (see internal/strtable).
func FromStrLocator(loc uint64) Value { return Value{tag: Str, u: loc} }

// FromArrLocator wraps a bento array DocID.
func FromArrLocator(id uint64) Value { return Value{tag: Arr, u: id} }

// FromObjLocator wraps a bento object DocID.
func FromObjLocator(id uint64) Value { return Value{tag: Obj, u: id} }

func (v Value) Tag() Tag    { return v.tag }
func (v Value) IsNull() bool { return v.tag == Null }

func (v Value) Bool() (bool, bool) {
	if v.tag != Bool {
		return false, false
	}
	return v.u != 0, true
}

func (v Value) I64() (int64, bool) {
	if v.tag != I64 {
		return 0, false
	}
	return int64(v.u), true
}

func (v Value) U64() (uint64, bool) {
	if v.tag != U64 {
		return 0, false
	}
	return v.u, true
}

func (v Value) F64() (float64, bool) {
	if v.tag != F64 {
		return 0, false
	}
	return v.f, true
}

func (v Value) StrLocator() (uint64, bool) {
	if v.tag != Str {
		return 0, false
	}
	return v.u, true
}

func (v Value) ArrLocator() (uint64, bool) {
	if v.tag != Arr {
		return 0, false
	}
	return v.u, true
}

func (v Value) ObjLocator() (uint64, bool) {
	if v.tag != Obj {
		return 0, false
	}
	return v.u, true
}

// AsF64 widens any numeric tag to float64, for the predicate engine's
// "mixed numeric types are compared by widening to f64" rule (spec.md §4.6).
// Bool widens to 0 or 1; the second return is false for every other
// non-numeric tag.
func (v Value) AsF64() (float64, bool) {
	switch v.tag {
	case I64:
		return float64(int64(v.u)), true
	case U64:
		return float64(v.u), true
	case F64:
		return v.f, true
	case Bool:
		if v.u != 0 {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.tag {
	case Null:
		return "null"
	case Bool:
		b, _ := v.Bool()
		return fmt.Sprintf("%v", b)
	case I64:
		i, _ := v.I64()
		return fmt.Sprintf("%d", i)
	case U64:
		u, _ := v.U64()
		return fmt.Sprintf("%d", u)
	case F64:
		f, _ := v.F64()
		return fmt.Sprintf("%g", f)
	case Str:
		return fmt.Sprintf("str#%d", v.u)
	case Arr:
		return fmt.Sprintf("arr#%d", v.u)
	case Obj:
		return fmt.Sprintf("obj#%d", v.u)
	default:
		return "?"
	}
}
