// Package parser builds the xen syntax tree from tokens.
// It uses Pratt parsing for expressions and recursive descent for statements.
package parser

import (
	"strconv"

	"xen-lang/internal/ast"
	"xen-lang/internal/diag"
	"xen-lang/internal/span"
	"xen-lang/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // || or
	bpAnd        = 20 // && and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpPrefix     = 70 // - ! not
	bpPower      = 80 // ^ (right-associative)
)

// infixBP returns the left binding power for an infix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.CARET:
		return bpPower
	default:
		return bpNone
	}
}

var binaryOps = map[token.Kind]ast.BinaryOp{
	token.CARET:   ast.Pow,
	token.STAR:    ast.Mul,
	token.SLASH:   ast.Div,
	token.PERCENT: ast.Mod,
	token.PLUS:    ast.Add,
	token.MINUS:   ast.Sub,
	token.LT:      ast.Lt,
	token.LTE:     ast.Le,
	token.GT:      ast.Gt,
	token.GTE:     ast.Ge,
	token.EQ:      ast.Eq,
	token.NEQ:     ast.Neq,
	token.AND:     ast.And,
	token.OR:      ast.Or,
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseProgram parses every statement up to EOF. The returned program is
// usable even when diagnostics were reported; erroneous statements are
// dropped.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	prog := &ast.Program{}
	start := p.peek().Span.Start

	p.skipSep()
	for !p.isAtEnd() {
		if stmt := p.parseStmt(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.skipSep()
	}

	prog.Span = span.Span{Start: start, End: p.peek().Span.End}
	return prog, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

// peekPastNewlines returns the kind of the first non-NEWLINE token ahead.
func (p *Parser) peekPastNewlines() token.Kind {
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].Kind != token.NEWLINE {
			return p.tokens[i].Kind
		}
	}
	return token.EOF
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.errorf(diag.CodeExpectedToken, tok.Span, "expected '%s', got '%s'", kind, describe(tok))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// skipSep skips NEWLINE and SEMICOLON tokens.
func (p *Parser) skipSep() {
	for p.match(token.NEWLINE, token.SEMICOLON) {
		p.advance()
	}
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) errorf(code string, s span.Span, format string, args ...any) {
	p.diags = append(p.diags, diag.Errorf(code, s, format, args...))
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "newline"
	}
	return tok.Lexeme
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.match(token.NEWLINE, token.SEMICOLON) {
			p.advance()
			return
		}
		if p.match(token.RBRACE, token.KW_IF, token.KW_WHILE, token.KW_CONSOLE) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_CONSOLE:
		return p.parseConsoleStmt()
	case token.LBRACE:
		return p.parseBracedBlock()
	default:
		return p.parseAssignStmt()
	}
}

// parseIfStmt parses: if expr block { elseif expr block } [ else block ]
// "else if" is accepted as a spelling of "elseif".
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // 'if'
	stmt := &ast.IfStmt{}
	stmt.Branches = append(stmt.Branches, p.parseCondBlock(start))

	for {
		next := p.peekPastNewlines()
		if next != token.KW_ELSEIF && next != token.KW_ELSE {
			break
		}
		p.skipNewlines()
		kw := p.advance()
		if kw.Kind == token.KW_ELSE && p.check(token.KW_IF) {
			kw = p.advance()
		} else if kw.Kind == token.KW_ELSE {
			stmt.Else = p.parseBlock()
			break
		}
		stmt.Branches = append(stmt.Branches, p.parseCondBlock(kw))
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseCondBlock parses the condition and body following kw.
func (p *Parser) parseCondBlock(kw token.Token) ast.CondBlock {
	cb := ast.CondBlock{Condition: p.parseExprOrError()}
	cb.Body = p.parseBlock()
	cb.Span = p.makeSpan(kw.Span.Start)
	return cb
}

// parseWhileStmt parses: while expr block
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // 'while'
	stmt := &ast.WhileStmt{}
	stmt.Condition = p.parseExprOrError()
	if lit, ok := stmt.Condition.(*ast.BoolLit); ok && lit.Value {
		p.diags = append(p.diags, diag.Warningf(diag.CodeConstantLoop, span.Join(start.Span, lit.Span),
			"loop condition is always true and the language has no break").
			WithHint("this loop never terminates"))
	}
	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseConsoleStmt parses: console expr
func (p *Parser) parseConsoleStmt() ast.Stmt {
	start := p.advance() // 'console'
	value := p.parseExprOrError()
	if value == nil {
		p.synchronize()
		return nil
	}
	return &ast.ConsoleStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Value:    value,
	}
}

// parseAssignStmt parses: IDENT = expr
func (p *Parser) parseAssignStmt() ast.Stmt {
	first := p.peek()
	target := p.parseExpr(bpNone)
	if target == nil {
		p.errorf(diag.CodeUnexpectedToken, first.Span, "unexpected token '%s'", describe(first))
		p.advance()
		p.synchronize()
		return nil
	}

	if !p.check(token.ASSIGN) {
		d := diag.Errorf(diag.CodeUnexpectedToken, target.GetSpan(), "expression is not a statement").
			WithHint("use 'console <expr>' to print a value")
		p.diags = append(p.diags, d)
		p.synchronize()
		return nil
	}
	p.advance() // '='

	ident, ok := target.(*ast.Ident)
	if !ok {
		p.errorf(diag.CodeInvalidTarget, target.GetSpan(), "cannot assign to this expression")
		p.synchronize()
		return nil
	}

	value := p.parseExprOrError()
	if value == nil {
		p.synchronize()
		return nil
	}
	return &ast.AssignStmt{
		StmtBase: makeStmtBase(first.Span.Start, p.prevEnd()),
		Name:     ident.Name,
		Value:    value,
	}
}

// parseBlock parses either a braced block or a single statement.
func (p *Parser) parseBlock() *ast.Block {
	if p.check(token.LBRACE) {
		return p.parseBracedBlock()
	}
	start := p.peek()
	block := &ast.Block{}
	if p.match(token.NEWLINE, token.SEMICOLON, token.EOF, token.RBRACE) {
		p.errorf(diag.CodeExpectedToken, start.Span, "expected '{' or a statement, got '%s'", describe(start))
		block.Span = start.Span
		return block
	}
	if stmt := p.parseStmt(); stmt != nil {
		block.Stmts = append(block.Stmts, stmt)
	}
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// parseBracedBlock parses: { stmts }
func (p *Parser) parseBracedBlock() *ast.Block {
	start := p.advance() // '{'
	block := &ast.Block{}

	p.skipSep()
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.parseStmt(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.skipSep()
	}

	p.expect(token.RBRACE)
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExprOrError parses an expression and reports a diagnostic if none is
// present.
func (p *Parser) parseExprOrError() ast.Expr {
	tok := p.peek()
	expr := p.parseExpr(bpNone)
	if expr == nil {
		p.errorf(diag.CodeExpectedToken, tok.Span, "expected expression, got '%s'", describe(tok))
	}
	return expr
}

// parseExpr parses an expression with the given minimum binding power.
// It returns nil without consuming input when no expression starts here.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		bp := infixBP(p.peekKind())
		if bp <= minBP {
			break
		}
		left = p.led(left, bp)
		if left == nil {
			return nil
		}
	}
	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorf(diag.CodeExpectedToken, tok.Span, "invalid number '%s'", tok.Lexeme)
		}
		return &ast.NumberLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Value: val}

	case token.STRING:
		p.advance()
		return &ast.TextLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Raw: tok.Lexeme}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLit{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Kind == token.KW_TRUE,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.NilLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End)}

	case token.IDENT:
		p.advance()
		return &ast.Ident{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Name: tok.Lexeme}

	case token.MINUS, token.BANG:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			p.errorf(diag.CodeExpectedToken, p.peek().Span, "expected operand after '%s'", tok.Lexeme)
			return nil
		}
		op := ast.Neg
		if tok.Kind == token.BANG {
			op = ast.Not
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Op:       op,
			Operand:  operand,
		}

	case token.LPAREN:
		p.advance()
		p.skipNewlines()
		inner := p.parseExprOrError()
		if inner == nil {
			return nil
		}
		p.skipNewlines()
		p.expect(token.RPAREN)
		return &ast.ParenExpr{ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()), Inner: inner}
	}
	return nil
}

// led handles infix (left denotation) parsing.
func (p *Parser) led(left ast.Expr, bp int) ast.Expr {
	opTok := p.advance()
	p.skipNewlines()

	rbp := bp
	if opTok.Kind == token.CARET {
		rbp = bp - 1
	}
	right := p.parseExpr(rbp)
	if right == nil {
		p.errorf(diag.CodeExpectedToken, p.peek().Span, "expected expression after '%s', got '%s'",
			opTok.Lexeme, describe(p.peek()))
		return nil
	}
	return &ast.BinaryExpr{
		ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
		Op:       binaryOps[opTok.Kind],
		Left:     left,
		Right:    right,
	}
}

// ============================================================
// Span helpers
// ============================================================

// prevEnd returns the end position of the most recently consumed token.
func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
