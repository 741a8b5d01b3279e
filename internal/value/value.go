package value

import (
	"math"
	"strconv"
)

// Kind is the runtime type tag of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is one of Nil, Bool, Number or String. The set is closed.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type Nil struct{}

type Bool bool

type Number float64

type String string

func (Nil) Kind() Kind    { return KindNil }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }

func (Nil) value()    {}
func (Bool) value()   {}
func (Number) value() {}
func (String) value() {}

func (Nil) String() string { return "nil" }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// String renders the shortest decimal that reads back to the same float64.
func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (s String) String() string { return string(s) }

// Truthy coerces v for conditional contexts: nil is false, booleans are
// themselves, everything else is true.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal compares by value. Values of different kinds are never equal.
func Equal(a, b Value) bool {
	a, b = orNil(a), orNil(b)
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case Nil:
		return true
	case Bool:
		return a == b.(Bool)
	case Number:
		return a == b.(Number)
	case String:
		return a == b.(String)
	}
	return false
}

// KindOf is Kind that treats a nil interface as Nil.
func KindOf(v Value) Kind {
	return orNil(v).Kind()
}

// Format renders v, treating a nil interface as Nil.
func Format(v Value) string {
	return orNil(v).String()
}

func orNil(v Value) Value {
	if v == nil {
		return Nil{}
	}
	return v
}

// Inspect renders v for display next to other values: like String, but
// strings are quoted so that "1" and 1 differ.
func Inspect(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return Format(v)
}
