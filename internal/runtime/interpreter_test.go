package runtime

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"xen-lang/internal/ast"
	"xen-lang/internal/lexer"
	"xen-lang/internal/parser"
	"xen-lang/internal/span"
)

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, lexDiags := lexer.New(source, "test.xen").Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	prog, parseDiags := parser.New(tokens).ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return prog
}

// runSource parses and executes source code, returning captured stdout and any error.
func runSource(t *testing.T, source string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := NewInterpreter(&buf).Run(parseSource(t, source))
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(t, source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source string, target error, contains string) {
	t.Helper()
	_, err := runSource(t, source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !errors.Is(err, target) {
		t.Errorf("expected errors.Is(%v), got: %v", target, err)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// evalValue evaluates the expression assigned in `r = <expr>` and returns it.
func evalValue(t *testing.T, expr string) Value {
	t.Helper()
	v, err := NewInterpreter(&bytes.Buffer{}).Evaluate(parseSource(t, "r = "+expr))
	if err != nil {
		t.Fatalf("%s: runtime error: %v", expr, err)
	}
	return v
}

// ---- Tests ----

func TestConsoleLiterals(t *testing.T) {
	expectOutput(t, `console 42`, "42\n")
	expectOutput(t, `console "hello"`, "hello\n")
	expectOutput(t, `console true`, "true\n")
	expectOutput(t, `console nil`, "nil\n")
	expectOutput(t, `console 3.25`, "3.25\n")
}

func TestAssignmentRoundTrip(t *testing.T) {
	for _, a := range []float64{0, 1, -7, 3.14159, 1e300, 5e-324, 0.1, 123456789.125} {
		in := NewInterpreter(&bytes.Buffer{})
		prog := &ast.Program{Stmts: []ast.Stmt{
			&ast.AssignStmt{Name: "x", Value: &ast.NumberLit{Value: a}},
		}}
		if err := in.Run(prog); err != nil {
			t.Fatalf("run: %v", err)
		}
		got, err := in.Evaluate(&ast.Ident{Name: "x"})
		if err != nil {
			t.Fatalf("read x: %v", err)
		}
		if got != Number(a) {
			t.Errorf("expected Number(%v), got %#v", a, got)
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{`2 + 3`, Number(5)},
		{`1 + 2 * 3`, Number(7)},
		{`(1 + 2) * 3`, Number(9)},
		{`10 / 4`, Number(2.5)},
		{`10 % 3`, Number(1)},
		{`-7 % 3`, Number(-1)},
		{`2 ^ 10`, Number(1024)},
		{`2 ^ 3 ^ 2`, Number(512)},
		{`-2 ^ 2`, Number(-4)},
		{`10 - 4 - 3`, Number(3)},
		{`-(3)`, Number(-3)},
	}
	for _, tt := range tests {
		if got := evalValue(t, tt.expr); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestAddConcatenates(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{`"a" + 1`, Text("a1")},
		{`1 + "a"`, Text("1a")},
		{`"x" + "y"`, Text("xy")},
		{`"v=" + true`, Text("v=true")},
		{`nil + "!"`, Text("nil!")},
		{`true + false`, Text("truefalse")},
		{`"n" + 2.5`, Text("n2.5")},
	}
	for _, tt := range tests {
		if got := evalValue(t, tt.expr); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.expr, tt.want, got)
		}
	}
}

func TestDivisionByZeroIsIEEE(t *testing.T) {
	if got := evalValue(t, `1 / 0`); got != Number(math.Inf(1)) {
		t.Errorf("1/0: expected +Inf, got %v", got)
	}
	if got := evalValue(t, `-1 / 0`); got != Number(math.Inf(-1)) {
		t.Errorf("-1/0: expected -Inf, got %v", got)
	}
	got := evalValue(t, `5 % 0`)
	if n, ok := got.(Number); !ok || !math.IsNaN(float64(n)) {
		t.Errorf("5 %% 0: expected NaN, got %v", got)
	}
	expectOutput(t, "console 1 / 0\nconsole 0 / 0", "Infinity\nNaN\n")
}

func TestEpsilonEquality(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{`0.1 + 0.2 == 0.3`, true},
		{`0.1 + 0.2 != 0.3`, false},
		{`1 == 1.0000000001`, false},
		{`1 == 1.000000000001`, true},
		{`1 != 2`, true},
		{`"a" == "a"`, true},
		{`"a" == "b"`, false},
		{`"1" == 1`, false},
		{`nil == nil`, true},
		{`nil != 1`, true},
		{`true == true`, true},
		{`true != false`, true},
	}
	for _, tt := range tests {
		if got := evalValue(t, tt.expr); got != Boolean(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestComparison(t *testing.T) {
	expectOutput(t, `console 1 < 2`, "true\n")
	expectOutput(t, `console 2 <= 2`, "true\n")
	expectOutput(t, `console 3 > 4`, "false\n")
	expectOutput(t, `console 4 >= 5`, "false\n")
}

func TestLogicalOps(t *testing.T) {
	expectOutput(t, `console true && false`, "false\n")
	expectOutput(t, `console true or false`, "true\n")
	expectOutput(t, `console not true`, "false\n")
	expectOutput(t, `console !false and true`, "true\n")
}

func TestLogicalOpsEvaluateBothSides(t *testing.T) {
	// The left operand alone decides the result, yet the right one still runs.
	expectError(t, `x = false and undefinedName`, ErrUndeclaredVariable, "undefinedName")
	expectError(t, `x = true or undefinedName`, ErrUndeclaredVariable, "undefinedName")
	if got := evalValue(t, `true and (1 / 0 > 0)`); got != Boolean(true) {
		t.Errorf("expected true, got %v", got)
	}
}

func TestStringUnescape(t *testing.T) {
	expectOutput(t, `console "He said ""hi"""`, "He said \"hi\"\n")
	expectOutput(t, `console ""`, "\n")
	expectOutput(t, `console """"`, "\"\n")
	if got := unquote(`"a""b"`); got != `a"b` {
		t.Errorf("unquote: got %q", got)
	}
}

func TestNumberFormatting(t *testing.T) {
	expectOutput(t, `console 0.1 + 0.2`, "0.30000000000000004\n")
	expectOutput(t, `console 1000000 * 1000`, "1000000000\n")
	expectOutput(t, `console 10 / 4`, "2.5\n")
	expectOutput(t, `console 10 ^ 22`, "1e+22\n")
	expectOutput(t, `console 1 / 10000000`, "1e-07\n")
}

func TestIfFirstMatchWins(t *testing.T) {
	expectOutput(t, `if (false) { console 1 } elseif (true) { console 2 } else { console 3 }`, "2\n")
	expectOutput(t, `if true { console 1 } elseif true { console 2 }`, "1\n")
	expectOutput(t, `if false { console 1 } elseif false { console 2 } else { console 3 }`, "3\n")
	expectOutput(t, `if false { console 1 }`, "")
}

func TestIfSkipsLaterConditions(t *testing.T) {
	// The second condition would fail if it were evaluated.
	expectOutput(t, `if true { console "a" } elseif undefinedName { console "b" }`, "a\n")
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	expectError(t, `if 1 { console 1 }`, ErrTypeMismatch, "expected boolean, got number")
}

func TestWhileLoop(t *testing.T) {
	expectOutput(t, "x = 1; while (x < 4) { console x; x = x + 1 }", "1\n2\n3\n")
	expectOutput(t, "while false { console 1 }", "")
}

func TestWhileSum(t *testing.T) {
	expectOutput(t, `
i = 0
sum = 0
while i < 5 {
  sum = sum + i
  i = i + 1
}
console sum
`, "10\n")
}

func TestFlatScope(t *testing.T) {
	expectOutput(t, `
if true {
  inner = "visible"
}
console inner
`, "visible\n")
}

func TestStatementResults(t *testing.T) {
	in := NewInterpreter(&bytes.Buffer{})
	v, err := in.Evaluate(parseSource(t, "x = 5"))
	if err != nil || v != Number(5) {
		t.Errorf("assignment: expected 5, got %v (%v)", v, err)
	}
	v, err = in.Evaluate(parseSource(t, `console "s"`))
	if err != nil || v != Text("s") {
		t.Errorf("console: expected s, got %v (%v)", v, err)
	}
	v, err = in.Evaluate(parseSource(t, "if true { y = 1 }"))
	if err != nil || v != Void {
		t.Errorf("if: expected Void, got %v (%v)", v, err)
	}
	v, err = in.Evaluate(parseSource(t, "while false { y = 1 }"))
	if err != nil || v != Void {
		t.Errorf("while: expected Void, got %v (%v)", v, err)
	}
	v, err = in.Evaluate(&ast.Program{})
	if err != nil || v != Void {
		t.Errorf("empty program: expected Void, got %v (%v)", v, err)
	}
}

func TestUndeclaredVariable(t *testing.T) {
	expectError(t, `console y`, ErrUndeclaredVariable, "undeclared variable 'y'")

	_, err := runSource(t, "x = 1\nconsole y")
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rtErr.Span.Start.Line != 2 || rtErr.Span.Start.Column != 9 {
		t.Errorf("expected error at 2:9, got %s", rtErr.Span.Start)
	}
	var undeclared *UndeclaredVariableError
	if !errors.As(err, &undeclared) || undeclared.Name != "y" {
		t.Errorf("expected UndeclaredVariableError for y, got %v", err)
	}
}

func TestTypeMismatch(t *testing.T) {
	expectError(t, `x = "a" - 1`, ErrTypeMismatch, "expected number, got text")
	expectError(t, `x = -true`, ErrTypeMismatch, "expected number, got boolean")
	expectError(t, `x = !1`, ErrTypeMismatch, "expected boolean, got number")
	expectError(t, `x = 1 and true`, ErrTypeMismatch, "expected boolean")
	expectError(t, `x = nil < 1`, ErrTypeMismatch, "got nil")
	expectError(t, `x = 2 * "3"`, ErrTypeMismatch, "expected number, got text")

	_, err := runSource(t, `x = "a" - 1`)
	var mm *TypeMismatchError
	if !errors.As(err, &mm) || mm.Expected != KindNumber || mm.Actual != KindText {
		t.Errorf("expected TypeMismatchError{number, text}, got %#v", err)
	}
}

func TestErrorAbortsExecution(t *testing.T) {
	out, err := runSource(t, "console 1\nconsole missing\nconsole 2")
	if err == nil {
		t.Fatal("expected an error")
	}
	if out != "1\n" {
		t.Errorf("expected output to stop at the error, got %q", out)
	}
}

func TestUnsupportedOperator(t *testing.T) {
	in := NewInterpreter(&bytes.Buffer{})
	_, err := in.Evaluate(&ast.BinaryExpr{
		Op:    ast.BinaryOp(99),
		Left:  &ast.NumberLit{Value: 1},
		Right: &ast.NumberLit{Value: 2},
	})
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator, got %v", err)
	}
	_, err = in.Evaluate(&ast.UnaryExpr{Op: ast.UnaryOp(42), Operand: &ast.BoolLit{Value: true}})
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator, got %v", err)
	}
}

func TestAssignHook(t *testing.T) {
	type event struct {
		name    string
		prev    Value
		existed bool
		value   Value
	}
	var events []event
	in := NewInterpreter(&bytes.Buffer{}, WithAssignHook(func(name string, prev Value, existed bool, v Value) {
		events = append(events, event{name, prev, existed, v})
	}))
	if err := in.Run(parseSource(t, "x = 1\nx = \"two\"")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].existed || events[0].prev != nil {
		t.Errorf("first assignment should have no previous binding: %#v", events[0])
	}
	if !events[1].existed || events[1].prev != Number(1) || events[1].value != Text("two") {
		t.Errorf("unexpected second event: %#v", events[1])
	}
}

func TestInterpretersAreIndependent(t *testing.T) {
	a := NewInterpreter(&bytes.Buffer{})
	b := NewInterpreter(&bytes.Buffer{})
	if err := a.Run(parseSource(t, "shared = 1")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Env().Get("shared"); !errors.Is(err, ErrUndeclaredVariable) {
		t.Errorf("expected second interpreter to be unaffected, got %v", err)
	}
}

func TestEvaluateNil(t *testing.T) {
	_, err := NewInterpreter(&bytes.Buffer{}).Evaluate(nil)
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Span != (span.Span{}) {
		t.Errorf("expected a RuntimeError without location, got %v", err)
	}
	if err != nil && err.Error() != "runtime error: cannot evaluate nil node" {
		t.Errorf("unexpected message %q", err)
	}
}
