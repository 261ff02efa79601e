package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"xen-lang/internal/ast"
	"xen-lang/internal/span"
)

// Epsilon is the tolerance used by == and != when both operands are numbers.
const Epsilon = 1e-11

// AssignHook observes every assignment. prev and existed describe the binding
// that was replaced.
type AssignHook func(name string, prev Value, existed bool, value Value)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithAssignHook registers a callback run after each assignment.
func WithAssignHook(hook AssignHook) Option {
	return func(i *Interpreter) { i.onAssign = hook }
}

// WithLogger sets the logger used for debug tracing of control flow.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.log = logger }
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the syntax tree and evaluates it against one Environment.
//
// An Interpreter is not safe for concurrent use. A while loop whose condition
// never becomes false blocks Evaluate forever; bounding run time is up to the
// caller.
type Interpreter struct {
	env      *Environment
	output   io.Writer
	onAssign AssignHook
	log      *slog.Logger
}

// NewInterpreter creates an interpreter with an empty environment that
// writes console output to output.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		env:    NewEnvironment(),
		output: output,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Env returns the interpreter's environment (useful for the REPL).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Run evaluates a whole program.
func (i *Interpreter) Run(prog *ast.Program) error {
	_, err := i.Evaluate(prog)
	return err
}

// Evaluate evaluates any node. Statements yield their result value (Void for
// if and while), blocks and programs yield the value of their last
// statement, and expressions yield their value.
func (i *Interpreter) Evaluate(node ast.Node) (Value, error) {
	switch n := node.(type) {
	case *ast.Program:
		return i.execStmts(n.Stmts)
	case ast.Stmt:
		return i.execStmt(n)
	case ast.Expr:
		return i.evalExpr(n)
	case nil:
		return nil, runtimeErr(span.Span{}, fmt.Errorf("cannot evaluate nil node"))
	default:
		return nil, runtimeErr(node.GetSpan(), fmt.Errorf("unhandled node type %T", node))
	}
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmts(stmts []ast.Stmt) (Value, error) {
	result := Void
	for _, stmt := range stmts {
		v, err := i.execStmt(stmt)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (i *Interpreter) execStmt(stmt ast.Stmt) (Value, error) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		return i.execAssign(s)
	case *ast.ConsoleStmt:
		return i.execConsole(s)
	case *ast.IfStmt:
		return i.execIf(s)
	case *ast.WhileStmt:
		return i.execWhile(s)
	case *ast.Block:
		return i.execBlock(s)
	default:
		return nil, runtimeErr(stmt.GetSpan(), fmt.Errorf("unhandled statement type %T", stmt))
	}
}

func (i *Interpreter) execBlock(block *ast.Block) (Value, error) {
	if block == nil {
		return Void, nil
	}
	return i.execStmts(block.Stmts)
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) (Value, error) {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return nil, err
	}
	if val.Kind() == KindVoid {
		return nil, runtimeErr(s.Value.GetSpan(), fmt.Errorf("%w: void cannot be assigned to '%s'", ErrTypeMismatch, s.Name))
	}
	prev, existed := i.env.Set(s.Name, val)
	if i.onAssign != nil {
		i.onAssign(s.Name, prev, existed, val)
	}
	return val, nil
}

func (i *Interpreter) execConsole(s *ast.ConsoleStmt) (Value, error) {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(i.output, AsText(val)); err != nil {
		return nil, runtimeErr(s.GetSpan(), fmt.Errorf("console: %w", err))
	}
	return val, nil
}

// execIf runs the first branch whose condition is true, or the else block
// when none is. Later conditions are not evaluated once a branch matches.
func (i *Interpreter) execIf(s *ast.IfStmt) (Value, error) {
	for idx, branch := range s.Branches {
		ok, err := i.evalCondition(branch.Condition)
		if err != nil {
			return nil, err
		}
		if ok {
			i.log.Debug("if branch taken", slog.Int("branch", idx), slog.String("at", branch.Span.Start.String()))
			if _, err := i.execBlock(branch.Body); err != nil {
				return nil, err
			}
			return Void, nil
		}
	}
	if s.Else != nil {
		i.log.Debug("else branch taken", slog.String("at", s.Else.Span.Start.String()))
		if _, err := i.execBlock(s.Else); err != nil {
			return nil, err
		}
	}
	return Void, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (Value, error) {
	iterations := 0
	for {
		ok, err := i.evalCondition(s.Condition)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if _, err := i.execBlock(s.Body); err != nil {
			return nil, err
		}
		iterations++
	}
	i.log.Debug("while loop finished",
		slog.Int("iterations", iterations),
		slog.String("at", s.Span.Start.String()))
	return Void, nil
}

func (i *Interpreter) evalCondition(cond ast.Expr) (bool, error) {
	val, err := i.evalExpr(cond)
	if err != nil {
		return false, err
	}
	b, err := AsBoolean(val)
	if err != nil {
		return false, runtimeErr(cond.GetSpan(), err)
	}
	return b, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return Number(e.Value), nil
	case *ast.TextLit:
		return Text(unquote(e.Raw)), nil
	case *ast.BoolLit:
		return Boolean(e.Value), nil
	case *ast.NilLit:
		return Nil, nil
	case *ast.Ident:
		val, err := i.env.Get(e.Name)
		if err != nil {
			return nil, runtimeErr(e.GetSpan(), err)
		}
		return val, nil
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.ParenExpr:
		return i.evalExpr(e.Inner)
	case nil:
		return nil, runtimeErr(span.Span{}, fmt.Errorf("missing expression"))
	default:
		return nil, runtimeErr(expr.GetSpan(), fmt.Errorf("unhandled expression type %T", expr))
	}
}

// unquote strips the surrounding quotes of a string literal and collapses
// each doubled quote into one.
func unquote(raw string) string {
	s := raw
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `""`, `"`)
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.Neg:
		n, err := AsNumber(operand)
		if err != nil {
			return nil, runtimeErr(e.Operand.GetSpan(), err)
		}
		return Number(-n), nil
	case ast.Not:
		b, err := AsBoolean(operand)
		if err != nil {
			return nil, runtimeErr(e.Operand.GetSpan(), err)
		}
		return Boolean(!b), nil
	default:
		return nil, runtimeErr(e.GetSpan(), &UnsupportedOperatorError{Op: e.Op.String()})
	}
}

// evalBinary evaluates both operands, left first, before applying the
// operator. and/or do not short-circuit.
func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.Add:
		if IsNumber(left) && IsNumber(right) {
			return left.(Number) + right.(Number), nil
		}
		return Text(AsText(left) + AsText(right)), nil

	case ast.Eq, ast.Neq:
		var equal bool
		if IsNumber(left) && IsNumber(right) {
			diff := math.Abs(float64(left.(Number)) - float64(right.(Number)))
			if e.Op == ast.Neq {
				return Boolean(diff >= Epsilon), nil
			}
			equal = diff < Epsilon
		} else {
			equal = Equal(left, right)
		}
		if e.Op == ast.Neq {
			return Boolean(!equal), nil
		}
		return Boolean(equal), nil

	case ast.And, ast.Or:
		l, err := AsBoolean(left)
		if err != nil {
			return nil, runtimeErr(e.Left.GetSpan(), err)
		}
		r, err := AsBoolean(right)
		if err != nil {
			return nil, runtimeErr(e.Right.GetSpan(), err)
		}
		if e.Op == ast.And {
			return Boolean(l && r), nil
		}
		return Boolean(l || r), nil

	case ast.Pow, ast.Mul, ast.Div, ast.Mod, ast.Sub, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		l, err := AsNumber(left)
		if err != nil {
			return nil, runtimeErr(e.Left.GetSpan(), err)
		}
		r, err := AsNumber(right)
		if err != nil {
			return nil, runtimeErr(e.Right.GetSpan(), err)
		}
		return arith(e.Op, l, r), nil

	default:
		return nil, runtimeErr(e.GetSpan(), &UnsupportedOperatorError{Op: e.Op.String()})
	}
}

// arith applies a numeric operator. Division and modulo by zero follow
// IEEE-754 and never fail.
func arith(op ast.BinaryOp, l, r float64) Value {
	switch op {
	case ast.Pow:
		return Number(math.Pow(l, r))
	case ast.Mul:
		return Number(l * r)
	case ast.Div:
		return Number(l / r)
	case ast.Mod:
		return Number(math.Mod(l, r))
	case ast.Sub:
		return Number(l - r)
	case ast.Lt:
		return Boolean(l < r)
	case ast.Le:
		return Boolean(l <= r)
	case ast.Gt:
		return Boolean(l > r)
	default: // ast.Ge
		return Boolean(l >= r)
	}
}
