// Package lexer implements the LAVA scanner.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lava-lang/internal/diag"
	"lava-lang/internal/span"
	"lava-lang/internal/token"
)

// commentMarker opens a comment that runs to the next unescaped '}'.
const commentMarker = "on_read{"

// Lexer tokenizes LAVA source into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	prev  token.Kind // kind of the last emitted token
	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		col:      1,
		prev:     token.ILLEGAL,
	}
}

// Tokenize is the host entry point: it scans source and fails with a
// diag.List if any lexical error was found.
func Tokenize(source, filename string) ([]token.Token, error) {
	tokens, diags := New(source, filename).Tokenize()
	return tokens, diag.List(diags).Err()
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The returned slice always ends with an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok, ok := l.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		l.prev = tok.Kind
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

// advance consumes the current byte and returns it.
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
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipWhitespace discards spaces, tabs and newlines; LAVA has no separators.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) addError(code string, s span.Span, format string, args ...interface{}) {
	l.diags = append(l.diags, diag.Errorf(code, s, format, args...))
}

func (l *Lexer) emit(kind token.Kind, start span.Position) (token.Token, bool) {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}, true
}

// ---- token reading ----

// nextToken reads one token. ok is false when only a comment was consumed.
func (l *Lexer) nextToken() (token.Token, bool) {
	l.skipWhitespace()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Span: span.At(start)}, true
	}

	if strings.HasPrefix(l.source[l.pos:], commentMarker) {
		l.skipComment(start)
		return token.Token{}, false
	}

	ch := l.peek()
	switch {
	case isDigit(ch):
		return l.readNumber(start), true
	case ch == '-' && isDigit(l.peekNext()) && !l.prev.EndsOperand():
		return l.readNumber(start), true
	case ch == '"':
		return l.readString(start), true
	case isIdentStart(ch):
		return l.readIdentifier(start), true
	}
	return l.readOperator(start)
}

// skipComment consumes a comment up to and including the first '}' that is
// not preceded by a backslash. Braces inside the comment need not balance.
func (l *Lexer) skipComment(start span.Position) {
	for i := 0; i < len(commentMarker); i++ {
		l.advance()
	}
	for l.pos < len(l.source) {
		ch := l.advance()
		if ch == '\\' && l.peek() == '}' {
			l.advance()
			continue
		}
		if ch == '}' {
			return
		}
	}
	l.addError(diag.CodeUnclosedComment, l.makeSpan(start), "unclosed comment")
}

// readString reads a double-quoted string. There are no escapes and a string
// may not span lines. The lexeme keeps its quotes.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	for l.pos < len(l.source) {
		switch l.peek() {
		case '"':
			l.advance()
			tok, _ := l.emit(token.STRING, start)
			return tok
		case '\n':
			l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal")
			tok, _ := l.emit(token.ILLEGAL, start)
			return tok
		}
		l.advance()
	}
	l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal")
	tok, _ := l.emit(token.ILLEGAL, start)
	return tok
}

// readNumber reads an optionally signed integer or decimal literal.
func (l *Lexer) readNumber(start span.Position) token.Token {
	if l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	tok, _ := l.emit(token.NUMBER, start)
	return tok
}

// readIdentifier reads an identifier and folds it against the keyword table.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[start.Offset:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads comparison operators before single-character symbols.
func (l *Lexer) readOperator(start span.Position) (token.Token, bool) {
	ch := l.advance()

	switch ch {
	case '=':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.EQ, start)
		}
		return l.emit(token.ASSIGN, start)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.NEQ, start)
		}
		return l.emit(token.BANG, start)
	case '<':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.LTE, start)
		}
		return l.emit(token.LT, start)
	case '>':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.GTE, start)
		}
		return l.emit(token.GT, start)
	case '+':
		return l.emit(token.PLUS, start)
	case '-':
		return l.emit(token.MINUS, start)
	case '*':
		return l.emit(token.STAR, start)
	case '/':
		return l.emit(token.SLASH, start)
	case '(':
		return l.emit(token.LPAREN, start)
	case ')':
		return l.emit(token.RPAREN, start)
	case '{':
		return l.emit(token.LBRACE, start)
	case '}':
		return l.emit(token.RBRACE, start)
	case '[':
		return l.emit(token.LBRACKET, start)
	case ']':
		return l.emit(token.RBRACKET, start)
	case ',':
		return l.emit(token.COMMA, start)
	case '.':
		return l.emit(token.DOT, start)
	}

	// Report the whole rune, not just its first byte.
	if ch >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(l.source[start.Offset:])
		for i := 1; i < size && l.pos < len(l.source); i++ {
			l.advance()
		}
		l.col -= size - 1
		l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character %s", quoteRune(r))
		return l.emit(token.ILLEGAL, start)
	}
	l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), "unexpected character %s", quoteRune(rune(ch)))
	return l.emit(token.ILLEGAL, start)
}

func quoteRune(r rune) string {
	return fmt.Sprintf("'%c'", r)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
