package runtime

import (
	"errors"
	"fmt"

	"xen-lang/internal/span"
)

// Sentinels for errors.Is on the typed runtime errors below.
var (
	ErrUndeclaredVariable  = errors.New("undeclared variable")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// UndeclaredVariableError reports a read of a name that was never assigned.
type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("undeclared variable '%s'", e.Name)
}

func (e *UndeclaredVariableError) Is(target error) bool {
	return target == ErrUndeclaredVariable
}

// TypeMismatchError reports a coercion applied to the wrong variant.
type TypeMismatchError struct {
	Expected Kind
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnsupportedOperatorError reports an operator the evaluator does not know.
// A conforming parser never produces one.
type UnsupportedOperatorError struct {
	Op string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator '%s'", e.Op)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// RuntimeError attaches the source location of the failing node.
type RuntimeError struct {
	Span span.Span
	Err  error
}

func (e *RuntimeError) Error() string {
	if !e.Span.Start.IsValid() {
		return fmt.Sprintf("runtime error: %s", e.Err)
	}
	return fmt.Sprintf("runtime error at %s: %s", e.Span.Start, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func runtimeErr(s span.Span, err error) *RuntimeError {
	return &RuntimeError{Span: s, Err: err}
}
