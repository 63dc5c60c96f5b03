// Package parser implements the LAVA recursive-descent parser.
//
// Expressions have two tiers: a comparison chain in which every arithmetic
// and comparison operator has the same precedence and associates to the
// left, and a logic chain of frfr/maybe over comparison chains. A syntax
// error abandons the current top-level statement; the parser records it and
// resumes at the next synchronization token.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"lava-lang/internal/ast"
	"lava-lang/internal/diag"
	"lava-lang/internal/span"
	"lava-lang/internal/token"
)

// scoochMethod is the only method name the grammar accepts after a dot.
const scoochMethod = "scooch"

// syncKinds are the tokens at which parsing resumes after a syntax error.
var syncKinds = map[token.Kind]bool{
	token.EOF:           true,
	token.RBRACE:        true,
	token.KW_HAWK_TUAH:  true,
	token.KW_SIGMA:      true,
	token.KW_TWEET:      true,
	token.KW_SQUAD:      true,
	token.KW_YAP:        true,
	token.KW_FLEX:       true,
	token.KW_RIZZ_CHECK: true,
	token.KW_YEET:       true,
	token.KW_SKIBIDI:    true,
	token.KW_COOK:       true,
	token.KW_SUS:        true,
}

// Parser performs syntax analysis on a stream of tokens. A Parser is used
// for a single parse.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is a convenience wrapper around New(tokens).ParseFile().
func Parse(tokens []token.Token) (*ast.File, []diag.Diagnostic) {
	return New(tokens).ParseFile()
}

// ParseFile parses every top-level statement. It never fails: statements
// that do not parse are reported in the returned diagnostics and left out
// of the tree.
func (p *Parser) ParseFile() (*ast.File, []diag.Diagnostic) {
	file := &ast.File{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		stmtStart := p.pos
		node, err := p.parseTopLevel()
		if err != nil {
			p.report(err)
			p.synchronize(stmtStart)
			continue
		}
		file.Body = append(file.Body, node)
	}

	file.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

// peekAt looks offset tokens ahead without consuming anything.
func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return token.Token{Kind: token.EOF, Span: span.At(last.Span.End)}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[i]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
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

func (p *Parser) isAtEnd() bool {
	return p.check(token.EOF)
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, diag.Errorf(diag.CodeExpectedToken, tok.Span, "expected '%s', got %s", kind, describe(tok))
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

func (p *Parser) report(err error) {
	if d, ok := err.(diag.Diagnostic); ok {
		p.diags = append(p.diags, d)
		return
	}
	p.diags = append(p.diags, diag.Errorf(diag.CodeUnknownStatement, p.peek().Span, "%s", err))
}

// synchronize skips to the next synchronization token. If the failed
// statement consumed nothing, one token is dropped first so that a stray
// token such as '}' cannot stall the parser. Blocks the failed statement
// opened, or opens before the next synchronization token, are skipped up
// to their closing brace.
func (p *Parser) synchronize(stmtStart int) {
	if p.pos == stmtStart && !p.isAtEnd() {
		p.advance()
	}
	depth := 0
	for _, tok := range p.tokens[stmtStart:p.pos] {
		switch tok.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	depth = max(depth, 0)

	for !p.isAtEnd() {
		switch kind := p.peekKind(); {
		case kind == token.LBRACE:
			depth++
		case kind == token.RBRACE && depth > 0:
			depth--
		case depth == 0 && syncKinds[kind]:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations and statements
// ============================================================

func (p *Parser) parseTopLevel() (ast.Stmt, error) {
	if p.check(token.KW_COOK) {
		return p.parseFuncDecl()
	}
	return p.parseStatement()
}

// parseFuncDecl parses: cook IDENT ( params ) { body }
func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	start := p.advance() // consume 'cook'
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(token.RPAREN) {
		paramTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, paramTok.Lexeme)
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{
		StmtBase: p.stmtBase(start),
		Name:     nameTok.Lexeme,
		Params:   params,
		Body:     body,
	}, nil
}

// parseStatement dispatches on the leading tokens in a fixed order.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peekKind() {
	case token.KW_HAWK_TUAH:
		return p.parsePrint()
	case token.KW_SQUAD, token.KW_SIGMA, token.KW_TWEET:
		return p.parseDecl()
	case token.IDENT:
		switch p.peekAt(1).Kind {
		case token.LBRACKET:
			if p.peekAt(2).Kind != token.ASSIGN {
				return p.parseIndexAssign()
			}
		case token.ASSIGN:
			return p.parseAssign()
		case token.LPAREN:
			start := p.peek()
			call, err := p.parseCallOrMethod()
			if err != nil {
				return nil, err
			}
			return &ast.CallStmt{StmtBase: p.stmtBase(start), Call: call.(*ast.CallExpr)}, nil
		case token.DOT:
			start := p.peek()
			call, err := p.parseCallOrMethod()
			if err != nil {
				return nil, err
			}
			return &ast.MethodCallStmt{StmtBase: p.stmtBase(start), Call: call.(*ast.MethodCallExpr)}, nil
		}
	case token.KW_YAP:
		return p.parseYap()
	case token.KW_FLEX:
		return p.parseFlex()
	case token.KW_RIZZ_CHECK:
		return p.parseRizzCheck()
	case token.KW_YEET:
		start := p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.YeetStmt{StmtBase: p.stmtBase(start), Name: nameTok.Lexeme}, nil
	case token.KW_SKIBIDI:
		start := p.advance()
		return &ast.SkibidiStmt{StmtBase: p.stmtBase(start)}, nil
	case token.KW_SUS:
		return p.parseSus()
	}

	tok := p.peek()
	return nil, diag.Errorf(diag.CodeUnknownStatement, tok.Span, "unknown statement at %s", describe(tok))
}

// parsePrint parses: hawk_tuah ( expr )
func (p *Parser) parsePrint() (ast.Stmt, error) {
	start := p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{StmtBase: p.stmtBase(start), Value: value}, nil
}

// parseDecl parses: (sigma | tweet | squad) IDENT = expr
func (p *Parser) parseDecl() (ast.Stmt, error) {
	start := p.advance()
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	base := p.stmtBase(start)
	switch start.Kind {
	case token.KW_SIGMA:
		return &ast.SigmaDecl{StmtBase: base, Name: nameTok.Lexeme, Value: value}, nil
	case token.KW_TWEET:
		return &ast.TweetDecl{StmtBase: base, Name: nameTok.Lexeme, Value: value}, nil
	default:
		return &ast.SquadDecl{StmtBase: base, Name: nameTok.Lexeme, Value: value}, nil
	}
}

// parseIndexAssign parses: IDENT [ expr ] = expr
func (p *Parser) parseIndexAssign() (ast.Stmt, error) {
	nameTok := p.advance()
	p.advance() // '['
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.IndexAssignStmt{
		StmtBase: p.stmtBase(nameTok),
		Name:     nameTok.Lexeme,
		Index:    index,
		Value:    value,
	}, nil
}

// parseAssign parses: IDENT = expr
func (p *Parser) parseAssign() (ast.Stmt, error) {
	nameTok := p.advance()
	p.advance() // '='
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{StmtBase: p.stmtBase(nameTok), Name: nameTok.Lexeme, Value: value}, nil
}

// parseYap parses: yap IDENT till NUMBER to NUMBER { body }
func (p *Parser) parseYap() (ast.Stmt, error) {
	start := p.advance()
	varTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_TILL); err != nil {
		return nil, err
	}
	from, err := p.parseLoopBound()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_TO); err != nil {
		return nil, err
	}
	to, err := p.parseLoopBound()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.YapStmt{
		StmtBase: p.stmtBase(start),
		Var:      varTok.Lexeme,
		Start:    from,
		End:      to,
		Body:     body,
	}, nil
}

func (p *Parser) parseLoopBound() (int64, error) {
	tok, err := p.expect(token.NUMBER)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.ParseInt(tok.Lexeme, 10, 64)
	if convErr != nil {
		return 0, diag.Errorf(diag.CodeBadLoopBound, tok.Span, "loop bound must be an integer literal, got '%s'", tok.Lexeme)
	}
	return n, nil
}

// parseFlex parses: flex expr { body }
func (p *Parser) parseFlex() (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FlexStmt{StmtBase: p.stmtBase(start), Condition: cond, Body: body}, nil
}

// parseRizzCheck parses: rizz_check expr { then } [ nah_fam ( { else } | rizz_check ... ) ]
func (p *Parser) parseRizzCheck() (*ast.RizzCheckStmt, error) {
	start := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.RizzCheckStmt{Condition: cond, Then: then}

	if p.check(token.KW_NAH_FAM) {
		p.advance()
		if p.check(token.KW_RIZZ_CHECK) {
			nested, err := p.parseRizzCheck()
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Stmt{nested}
		} else {
			stmt.Else, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}

	stmt.StmtBase = p.stmtBase(start)
	return stmt, nil
}

// parseSus parses: sus { body } panik { handler }. The panik block is required.
func (p *Parser) parseSus() (ast.Stmt, error) {
	start := p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if !p.check(token.KW_PANIK) {
		tok := p.peek()
		return nil, diag.Errorf(diag.CodeMissingPanik, tok.Span, "expected 'panik' after 'sus' block, got %s", describe(tok)).
			WithHint("add a 'panik { }' block after the 'sus' block")
	}
	p.advance()
	handler, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SusStmt{StmtBase: p.stmtBase(start), Body: body, Handler: handler}, nil
}

// parseBlock parses: { statements }
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) {
		if p.isAtEnd() {
			_, err := p.expect(token.RBRACE)
			return nil, err
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // '}'
	return stmts, nil
}

// ============================================================
// Expressions
// ============================================================

// parseExpression parses the logic tier, including the nah prefix and a
// leading negated number literal.
func (p *Parser) parseExpression() (ast.Expr, error) {
	if p.check(token.KW_NAH) {
		start := p.advance()
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{ExprBase: p.exprBase(start), Operand: operand}, nil
	}

	var first ast.Expr
	if p.check(token.MINUS) && p.peekAt(1).Kind == token.NUMBER {
		minus := p.advance()
		num, err := p.parseNumber(p.advance())
		if err != nil {
			return nil, err
		}
		lit := num.(*ast.NumberLiteral)
		lit.Int, lit.Float = -lit.Int, -lit.Float
		lit.ExprBase = p.exprBase(minus)
		first = lit
	}

	left, err := p.parseComparison(first)
	if err != nil {
		return nil, err
	}
	for p.check(token.KW_FRFR) || p.check(token.KW_MAYBE) {
		op := p.advance()
		right, err := p.parseComparison(nil)
		if err != nil {
			return nil, err
		}
		left = &ast.LogicExpr{
			ExprBase: exprBaseSpan(span.Join(left.GetSpan(), right.GetSpan())),
			Op:       op.Kind,
			Left:     left,
			Right:    right,
		}
	}
	return left, nil
}

// parseComparison parses primary { op primary } with flat precedence. When
// first is non-nil it is used as the leftmost operand.
func (p *Parser) parseComparison(first ast.Expr) (ast.Expr, error) {
	left := first
	if left == nil {
		var err error
		if left, err = p.parsePrimary(); err != nil {
			return nil, err
		}
	}
	for p.peekKind().IsOperator() {
		op := p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			ExprBase: exprBaseSpan(span.Join(left.GetSpan(), right.GetSpan())),
			Op:       op.Kind,
			Left:     left,
			Right:    right,
		}
	}
	return left, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		return p.parseNumber(p.advance())
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: exprBaseSpan(tok.Span),
			Value:    strings.TrimSuffix(strings.TrimPrefix(tok.Lexeme, `"`), `"`),
		}, nil
	case token.KW_SLAY, token.KW_CAP:
		p.advance()
		return &ast.BoolLiteral{ExprBase: exprBaseSpan(tok.Span), Value: tok.Kind == token.KW_SLAY}, nil
	case token.KW_NVM:
		p.advance()
		return &ast.NullLiteral{ExprBase: exprBaseSpan(tok.Span)}, nil
	case token.KW_DELULU:
		p.advance()
		return &ast.UndecidedLiteral{ExprBase: exprBaseSpan(tok.Span)}, nil
	case token.IDENT:
		switch p.peekAt(1).Kind {
		case token.LPAREN, token.DOT:
			return p.parseCallOrMethod()
		case token.LBRACKET:
			p.advance() // name
			p.advance() // '['
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			return &ast.IndexExpr{ExprBase: p.exprBase(tok), Name: tok.Lexeme, Index: index}, nil
		}
		p.advance()
		return &ast.IdentExpr{ExprBase: exprBaseSpan(tok.Span), Name: tok.Lexeme}, nil
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}

	p.advance()
	return nil, diag.Errorf(diag.CodeUnknownStatement, tok.Span, "unexpected token %s", describe(tok))
}

// parseNumber converts a NUMBER token. Integers that overflow int64 become floats.
func (p *Parser) parseNumber(tok token.Token) (ast.Expr, error) {
	lit := &ast.NumberLiteral{ExprBase: exprBaseSpan(tok.Span)}
	if !strings.Contains(tok.Lexeme, ".") {
		if n, err := strconv.ParseInt(tok.Lexeme, 10, 64); err == nil {
			lit.Int = n
			return lit, nil
		}
	}
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, diag.Errorf(diag.CodeUnknownStatement, tok.Span, "invalid number literal '%s'", tok.Lexeme)
	}
	lit.IsFloat = true
	lit.Float = f
	return lit, nil
}

// parseCallOrMethod parses IDENT ( args ) or IDENT . scooch ( args ).
func (p *Parser) parseCallOrMethod() (ast.Expr, error) {
	nameTok := p.advance()

	if p.check(token.DOT) {
		p.advance()
		methodTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if methodTok.Lexeme != scoochMethod {
			return nil, diag.Errorf(diag.CodeUnknownMethod, methodTok.Span, "unknown method '%s'", methodTok.Lexeme).
				WithHint("only '" + scoochMethod + "' is supported")
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.MethodCallExpr{
			ExprBase: p.exprBase(nameTok),
			Receiver: nameTok.Lexeme,
			Method:   methodTok.Lexeme,
			Args:     args,
		}, nil
	}

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{ExprBase: p.exprBase(nameTok), Name: nameTok.Lexeme, Args: args}, nil
}

// parseArgs parses: ( [expr { , expr }] )
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.check(token.RPAREN) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArrayLiteral parses: [ expr, expr, ... ] with an optional trailing comma.
func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	start := p.advance() // '['
	var elements []ast.Expr
	for !p.check(token.RBRACKET) && !p.isAtEnd() {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{ExprBase: p.exprBase(start), Elements: elements}, nil
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) stmtBase(start token.Token) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start.Span.Start, End: p.prevEnd()}}}
}

func (p *Parser) exprBase(start token.Token) ast.ExprBase {
	return exprBaseSpan(span.Span{Start: start.Span.Start, End: p.prevEnd()})
}

func exprBaseSpan(s span.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}
