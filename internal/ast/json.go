package ast

import (
	"xen-lang/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// Every node becomes a tagged object with "kind" and "span" fields.
func NodeToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "stmts", stmtSlice(n.Stmts))

	// ---- Statements ----
	case *Block:
		return m("Block", n.Span, "stmts", stmtSlice(n.Stmts))
	case *AssignStmt:
		return m("AssignStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *ConsoleStmt:
		return m("ConsoleStmt", n.Span, "value", NodeToMap(n.Value))
	case *IfStmt:
		branches := make([]any, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = map[string]any{
				"kind":      "CondBlock",
				"span":      spanToMap(b.Span),
				"condition": NodeToMap(b.Condition),
				"body":      NodeToMap(b.Body),
			}
		}
		result := m("IfStmt", n.Span, "branches", branches)
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))

	// ---- Expressions ----
	case *NumberLit:
		return m("NumberLit", n.Span, "value", n.Value)
	case *TextLit:
		return m("TextLit", n.Span, "raw", n.Raw)
	case *BoolLit:
		return m("BoolLit", n.Span, "value", n.Value)
	case *NilLit:
		return m("NilLit", n.Span)
	case *Ident:
		return m("Ident", n.Span, "name", n.Name)
	case *UnaryExpr:
		return m("UnaryExpr", n.Span, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return m("BinaryExpr", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *ParenExpr:
		return m("ParenExpr", n.Span, "inner", NodeToMap(n.Inner))

	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...any) map[string]any {
	result := map[string]any{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]any {
	return map[string]any{
		"start": posToMap(s.Start),
		"end":   posToMap(s.End),
	}
}

func posToMap(p span.Position) map[string]any {
	return map[string]any{
		"offset": p.Offset,
		"line":   p.Line,
		"column": p.Column,
	}
}

func stmtSlice(stmts []Stmt) []any {
	result := make([]any, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}
