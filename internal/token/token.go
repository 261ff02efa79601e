// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"

	"xen-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF
	NEWLINE

	// Literals
	IDENT  // x, total
	NUMBER // 123, 3.14, .5
	STRING // "hello" (lexeme keeps the quotes)

	// Operators
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	CARET   // ^
	BANG    // !

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	AND // && or 'and'
	OR  // || or 'or'

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	SEMICOLON // ;

	// Keywords
	KW_IF
	KW_ELSEIF
	KW_ELSE
	KW_WHILE
	KW_CONSOLE
	KW_TRUE
	KW_FALSE
	KW_NIL
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	ASSIGN:  "=",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",
	BANG:    "!",
	EQ:      "==",
	NEQ:     "!=",
	LT:      "<",
	LTE:     "<=",
	GT:      ">",
	GTE:     ">=",
	AND:     "&&",
	OR:      "||",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	SEMICOLON: ";",

	KW_IF:      "if",
	KW_ELSEIF:  "elseif",
	KW_ELSE:    "else",
	KW_WHILE:   "while",
	KW_CONSOLE: "console",
	KW_TRUE:    "true",
	KW_FALSE:   "false",
	KW_NIL:     "nil",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_IF && k <= KW_NIL
}

// IsLiteral returns true if the kind is a literal (ident/number/string).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

// Word operators are spelled as identifiers but lexed as operator kinds.
var keywords = map[string]Kind{
	"if":      KW_IF,
	"elseif":  KW_ELSEIF,
	"else":    KW_ELSE,
	"while":   KW_WHILE,
	"console": KW_CONSOLE,
	"true":    KW_TRUE,
	"false":   KW_FALSE,
	"nil":     KW_NIL,
	"and":     AND,
	"or":      OR,
	"not":     BANG,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token is a lexical token with its kind, source text and location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
