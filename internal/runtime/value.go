// Package runtime implements the xen evaluator and its value model.
package runtime

import (
	"math"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNumber Kind = iota + 1
	KindText
	KindBoolean
	KindNil
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindNil:
		return "nil"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Value is an immutable runtime value. The set of implementations is closed
// to this package.
type Value interface {
	Kind() Kind
	// String returns the canonical display text (see AsText).
	String() string
	value()
}

// Number is a float64 value.
type Number float64

func (Number) Kind() Kind       { return KindNumber }
func (v Number) String() string { return FormatNumber(float64(v)) }
func (Number) value()           {}

// Text is a string value.
type Text string

func (Text) Kind() Kind       { return KindText }
func (v Text) String() string { return string(v) }
func (Text) value()           {}

// Boolean is a bool value.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (v Boolean) String() string {
	if v {
		return "true"
	}
	return "false"
}
func (Boolean) value() {}

type nilValue struct{}

func (nilValue) Kind() Kind     { return KindNil }
func (nilValue) String() string { return "nil" }
func (nilValue) value()         {}

type voidValue struct{}

func (voidValue) Kind() Kind     { return KindVoid }
func (voidValue) String() string { return "void" }
func (voidValue) value()         {}

var (
	// Nil is the language-level null.
	Nil Value = nilValue{}
	// Void is the result of statements that produce no value (if, while).
	// It is never bound to a variable and never used as an operand.
	Void Value = voidValue{}
)

// ---- Coercions ----

// AsNumber returns the payload of a Number.
func AsNumber(v Value) (float64, error) {
	if n, ok := v.(Number); ok {
		return float64(n), nil
	}
	return 0, mismatch(KindNumber, v)
}

// AsBoolean returns the payload of a Boolean.
func AsBoolean(v Value) (bool, error) {
	if b, ok := v.(Boolean); ok {
		return bool(b), nil
	}
	return false, mismatch(KindBoolean, v)
}

// AsText returns the display text of any value.
func AsText(v Value) string {
	return v.String()
}

// IsNumber reports whether v is a Number.
func IsNumber(v Value) bool {
	_, ok := v.(Number)
	return ok
}

// Equal reports whether a and b are the same variant with equal payloads.
// Numbers compare exactly; tolerant comparison belongs to the == operator.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Number:
		return float64(av) == float64(b.(Number))
	case Text:
		return av == b.(Text)
	case Boolean:
		return av == b.(Boolean)
	default:
		// Nil and Void are singletons.
		return true
	}
}

func mismatch(expected Kind, v Value) error {
	actual := Kind(0)
	if v != nil {
		actual = v.Kind()
	}
	return &TypeMismatchError{Expected: expected, Actual: actual}
}

// FormatNumber renders f as the shortest decimal that parses back to f.
// Magnitudes in [1e-6, 1e21) print without an exponent.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
