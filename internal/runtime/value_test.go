package runtime

import (
	"errors"
	"math"
	"testing"
)

func TestAsNumber(t *testing.T) {
	n, err := AsNumber(Number(2.5))
	if err != nil || n != 2.5 {
		t.Errorf("expected 2.5, got %v (%v)", n, err)
	}
	for _, v := range []Value{Text("1"), Boolean(true), Nil, Void} {
		_, err := AsNumber(v)
		var mm *TypeMismatchError
		if !errors.As(err, &mm) {
			t.Fatalf("AsNumber(%v): expected TypeMismatchError, got %v", v, err)
		}
		if mm.Expected != KindNumber || mm.Actual != v.Kind() {
			t.Errorf("AsNumber(%v): unexpected error %v", v, mm)
		}
	}
}

func TestAsBoolean(t *testing.T) {
	b, err := AsBoolean(Boolean(true))
	if err != nil || !b {
		t.Errorf("expected true, got %v (%v)", b, err)
	}
	for _, v := range []Value{Number(1), Text("true"), Nil} {
		if _, err := AsBoolean(v); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("AsBoolean(%v): expected ErrTypeMismatch, got %v", v, err)
		}
	}
}

func TestAsText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(5), "5"},
		{Number(-3), "-3"},
		{Number(0.5), "0.5"},
		{Number(1e21), "1e+21"},
		{Number(123456789), "123456789"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Inf(-1)), "-Infinity"},
		{Text("plain"), "plain"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
		{Nil, "nil"},
		{Void, "void"},
	}
	for _, tt := range tests {
		if got := AsText(tt.v); got != tt.want {
			t.Errorf("AsText(%#v): expected %q, got %q", tt.v, tt.want, got)
		}
	}
}

func TestIsNumber(t *testing.T) {
	if !IsNumber(Number(0)) {
		t.Error("Number should be a number")
	}
	for _, v := range []Value{Text("0"), Boolean(false), Nil, Void} {
		if IsNumber(v) {
			t.Errorf("%#v should not be a number", v)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Number(1), Number(1), true},
		{Number(0.30000000000000004), Number(0.3), false}, // exact, unlike ==
		{Number(1), Text("1"), false},
		{Text("a"), Text("a"), true},
		{Text("a"), Text("b"), false},
		{Boolean(true), Boolean(true), true},
		{Boolean(true), Boolean(false), false},
		{Nil, Nil, true},
		{Nil, Boolean(false), false},
		{Void, Void, true},
		{Void, Nil, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%#v, %#v): expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindText.String() != "text" || Kind(0).String() != "unknown" {
		t.Errorf("unexpected kind names: %s %s", KindText, Kind(0))
	}
}
