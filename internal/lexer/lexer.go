// Package lexer turns xen source text into tokens.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"xen-lang/internal/diag"
	"xen-lang/internal/span"
	"xen-lang/internal/token"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The last token is always EOF.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{File: l.filename, Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) make(kind token.Kind, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

// skipWhitespace skips spaces and tabs (not newlines).
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) addError(d diag.Diagnostic) {
	l.diags = append(l.diags, d)
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		l.skipWhitespace()
		ch := l.peek()
		if ch == '#' || (ch == '/' && l.peekNext() == '/') {
			l.skipLineComment()
			continue
		}
		break
	}

	start := l.curPos()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Span: l.makeSpan(start)}
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\\n", Span: l.makeSpan(start)}
	case ch == '"':
		return l.readString(start)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekNext())):
		return l.readNumber(start)
	case isIdentStart(l.source[l.pos:]):
		return l.readIdentifier(start)
	}
	return l.readOperator(start)
}

// readString reads a double-quoted literal in which "" stands for one quote.
// The lexeme keeps the surrounding quotes and the doubled quotes untouched.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == '"' {
			if l.peekNext() == '"' {
				l.advance()
				l.advance()
				continue
			}
			l.advance()
			return l.make(token.STRING, start)
		}
		if ch == '\n' {
			break
		}
		l.advance()
	}
	l.addError(diag.Errorf(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal").
		WithHint("strings end on the line they start; write \"\" for a literal quote"))
	return l.make(token.ILLEGAL, start)
}

// readNumber reads 12, 12.5, 12. or .5.
func (l *Lexer) readNumber(start span.Position) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.pos < len(l.source) && (isIdentStart(l.source[l.pos:]) || l.peek() == '.') {
		for l.pos < len(l.source) && (isIdentPart(l.source[l.pos:]) || l.peek() == '.') {
			l.advance()
		}
		l.addError(diag.Errorf(diag.CodeMalformedNumber, l.makeSpan(start),
			"malformed number literal '%s'", l.source[start.Offset:l.pos]))
		return l.make(token.ILLEGAL, start)
	}
	return l.make(token.NUMBER, start)
}

func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for l.pos < len(l.source) && isIdentPart(l.source[l.pos:]) {
		_, size := utf8.DecodeRuneInString(l.source[l.pos:])
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	tok := l.make(token.IDENT, start)
	tok.Kind = token.LookupIdent(tok.Lexeme)
	return tok
}

// twoChar returns the two-character kind when the next byte is second.
func (l *Lexer) twoChar(start span.Position, second byte, two, one token.Kind) token.Token {
	if l.peek() == second {
		l.advance()
		return l.make(two, start)
	}
	return l.make(one, start)
}

func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	switch ch {
	case '(':
		return l.make(token.LPAREN, start)
	case ')':
		return l.make(token.RPAREN, start)
	case '{':
		return l.make(token.LBRACE, start)
	case '}':
		return l.make(token.RBRACE, start)
	case ';':
		return l.make(token.SEMICOLON, start)
	case '+':
		return l.make(token.PLUS, start)
	case '-':
		return l.make(token.MINUS, start)
	case '*':
		return l.make(token.STAR, start)
	case '/':
		return l.make(token.SLASH, start)
	case '%':
		return l.make(token.PERCENT, start)
	case '^':
		return l.make(token.CARET, start)
	case '!':
		return l.twoChar(start, '=', token.NEQ, token.BANG)
	case '=':
		return l.twoChar(start, '=', token.EQ, token.ASSIGN)
	case '<':
		return l.twoChar(start, '=', token.LTE, token.LT)
	case '>':
		return l.twoChar(start, '=', token.GTE, token.GT)
	case '&':
		if l.peek() == '&' {
			l.advance()
			return l.make(token.AND, start)
		}
		l.addError(diag.Errorf(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character '&'").
			WithHint("did you mean '&&' or 'and'?"))
		return l.make(token.ILLEGAL, start)
	case '|':
		if l.peek() == '|' {
			l.advance()
			return l.make(token.OR, start)
		}
		l.addError(diag.Errorf(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character '|'").
			WithHint("did you mean '||' or 'or'?"))
		return l.make(token.ILLEGAL, start)
	}

	// Consume the rest of a multi-byte rune so the diagnostic shows all of it.
	if ch >= utf8.RuneSelf {
		for l.pos < len(l.source) && !utf8.RuneStart(l.peek()) {
			l.advance()
		}
	}
	tok := l.make(token.ILLEGAL, start)
	l.addError(diag.Errorf(diag.CodeUnexpectedChar, tok.Span, "unexpected character '%s'", tok.Lexeme))
	return tok
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(s string) bool {
	ch := s[0]
	if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		return true
	}
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRuneInString(s)
		return unicode.IsLetter(r)
	}
	return false
}

func isIdentPart(s string) bool {
	return isIdentStart(s) || isDigit(s[0])
}
