// Package ast defines the syntax tree consumed by the xen runtime.
//
// The node set is closed: Stmt and Expr carry unexported marker methods so
// only this package can add variants, and consumers switch over them
// exhaustively.
package ast

import (
	"xen-lang/internal/span"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Operators
// ============================================================

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	Neg UnaryOp = iota + 1 // -x
	Not                    // !x, not x
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	default:
		return "UnaryOp(?)"
	}
}

// BinaryOp is an infix operator.
type BinaryOp int

const (
	Pow BinaryOp = iota + 1
	Mul
	Div
	Mod
	Add
	Sub
	Lt
	Le
	Gt
	Ge
	Eq
	Neq
	And
	Or
)

var binaryOpNames = [...]string{
	Pow: "^",
	Mul: "*",
	Div: "/",
	Mod: "%",
	Add: "+",
	Sub: "-",
	Lt:  "<",
	Le:  "<=",
	Gt:  ">",
	Ge:  ">=",
	Eq:  "==",
	Neq: "!=",
	And: "&&",
	Or:  "||",
}

func (op BinaryOp) String() string {
	if op > 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "BinaryOp(?)"
}

// ============================================================
// Program and statements
// ============================================================

// Program is the root of a parsed source file.
type Program struct {
	NodeBase
	Stmts []Stmt
}

// Block is an ordered sequence of statements.
type Block struct {
	StmtBase
	Stmts []Stmt
}

// AssignStmt binds Name to the value of Value.
type AssignStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// ConsoleStmt prints the value of Value.
type ConsoleStmt struct {
	StmtBase
	Value Expr
}

// CondBlock is one "if" or "elseif" arm.
type CondBlock struct {
	Span      span.Span
	Condition Expr
	Body      *Block
}

// IfStmt is an if/elseif/else chain. Branches holds the if arm followed by
// every elseif arm in source order.
type IfStmt struct {
	StmtBase
	Branches []CondBlock
	Else     *Block // may be nil
}

// WhileStmt is a while loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *Block
}

// ============================================================
// Expressions
// ============================================================

// NumberLit is a numeric literal.
type NumberLit struct {
	ExprBase
	Value float64
}

// TextLit is a string literal. Raw is the source text including the
// surrounding quotes and any doubled quotes.
type TextLit struct {
	ExprBase
	Raw string
}

// BoolLit is true or false.
type BoolLit struct {
	ExprBase
	Value bool
}

// NilLit is nil.
type NilLit struct {
	ExprBase
}

// Ident is a variable reference.
type Ident struct {
	ExprBase
	Name string
}

// UnaryExpr is a prefix operation.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// BinaryExpr is an infix operation.
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	ExprBase
	Inner Expr
}
