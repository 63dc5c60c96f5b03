package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"lava-lang/internal/ast"
	"lava-lang/internal/diag"
	"lava-lang/internal/lexer"
	"lava-lang/internal/token"
)

// helper: parse source and return AST + check for no errors
func parseOK(t *testing.T, source string) *ast.File {
	t.Helper()
	l := lexer.New(source, "test.lava")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	file, parseDiags := p.ParseFile()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return file
}

// helper: parse source that is expected to contain syntax errors
func parseWithErrors(t *testing.T, source string) (*ast.File, []diag.Diagnostic) {
	t.Helper()
	tokens, lexDiags := lexer.New(source, "test.lava").Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	file, diags := New(tokens).ParseFile()
	if len(diags) == 0 {
		t.Fatalf("expected parse errors for %q", source)
	}
	return file, diags
}

// helper: parse and return JSON string (for golden-test style checks)
func parseToJSON(t *testing.T, source string) string {
	t.Helper()
	file := parseOK(t, source)
	m := ast.NodeToMap(file)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	return string(data)
}

func TestParseSigmaDecl(t *testing.T) {
	file := parseOK(t, `sigma x = 42`)
	if len(file.Body) != 1 {
		t.Fatalf("expected 1 node, got %d", len(file.Body))
	}
	decl, ok := file.Body[0].(*ast.SigmaDecl)
	if !ok {
		t.Fatalf("expected SigmaDecl, got %T", file.Body[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	lit, ok := decl.Value.(*ast.NumberLiteral)
	if !ok || lit.IsFloat || lit.Int != 42 {
		t.Errorf("expected integer literal 42, got %#v", decl.Value)
	}
}

func TestParseTypedDecls(t *testing.T) {
	file := parseOK(t, "tweet s = \"hi\"\nsquad xs = [1, 2, 3]")
	tw, ok := file.Body[0].(*ast.TweetDecl)
	if !ok {
		t.Fatalf("expected TweetDecl, got %T", file.Body[0])
	}
	if str, ok := tw.Value.(*ast.StringLiteral); !ok || str.Value != "hi" {
		t.Errorf("expected string literal 'hi' without quotes, got %#v", tw.Value)
	}
	sq, ok := file.Body[1].(*ast.SquadDecl)
	if !ok {
		t.Fatalf("expected SquadDecl, got %T", file.Body[1])
	}
	arr, ok := sq.Value.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Errorf("expected 3-element array literal, got %#v", sq.Value)
	}
}

func TestParseFloatAndNegativeLiterals(t *testing.T) {
	file := parseOK(t, "sigma a = 3.5\nsigma b = - 2\nsigma c = -7")
	a := file.Body[0].(*ast.SigmaDecl).Value.(*ast.NumberLiteral)
	if !a.IsFloat || a.Float != 3.5 {
		t.Errorf("expected 3.5, got %#v", a)
	}
	b := file.Body[1].(*ast.SigmaDecl).Value.(*ast.NumberLiteral)
	if b.IsFloat || b.Int != -2 {
		t.Errorf("expected -2 from separated minus, got %#v", b)
	}
	c := file.Body[2].(*ast.SigmaDecl).Value.(*ast.NumberLiteral)
	if c.Int != -7 {
		t.Errorf("expected -7, got %#v", c)
	}
}

func TestParseFlatPrecedence(t *testing.T) {
	file := parseOK(t, `sigma z = 1 + 2 * 3`)
	decl := file.Body[0].(*ast.SigmaDecl)
	// flat, left-associative: (1 + 2) * 3
	outer, ok := decl.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", decl.Value)
	}
	if outer.Op != token.STAR {
		t.Errorf("expected '*' at the root, got %q", outer.Op)
	}
	inner, ok := outer.Left.(*ast.BinaryExpr)
	if !ok || inner.Op != token.PLUS {
		t.Fatalf("expected (1 + 2) on the left, got %#v", outer.Left)
	}
	if _, ok := outer.Right.(*ast.NumberLiteral); !ok {
		t.Errorf("expected literal 3 on the right, got %T", outer.Right)
	}
}

func TestParseComparisonInChain(t *testing.T) {
	file := parseOK(t, `hawk_tuah(a + 1 > b)`)
	stmt := file.Body[0].(*ast.PrintStmt)
	cmp, ok := stmt.Value.(*ast.BinaryExpr)
	if !ok || cmp.Op != token.GT {
		t.Fatalf("expected '>' at the root, got %#v", stmt.Value)
	}
	if add, ok := cmp.Left.(*ast.BinaryExpr); !ok || add.Op != token.PLUS {
		t.Errorf("expected a + 1 on the left, got %#v", cmp.Left)
	}
}

func TestParseParenthesesGroup(t *testing.T) {
	file := parseOK(t, `sigma z = 1 + (2 * 3)`)
	bin := file.Body[0].(*ast.SigmaDecl).Value.(*ast.BinaryExpr)
	if bin.Op != token.PLUS {
		t.Errorf("expected '+' at the root, got %q", bin.Op)
	}
	if right, ok := bin.Right.(*ast.BinaryExpr); !ok || right.Op != token.STAR {
		t.Errorf("expected grouped 2 * 3, got %#v", bin.Right)
	}
}

func TestParseLogicChain(t *testing.T) {
	file := parseOK(t, `hawk_tuah(a > 1 frfr b < 2 maybe c)`)
	stmt := file.Body[0].(*ast.PrintStmt)
	or, ok := stmt.Value.(*ast.LogicExpr)
	if !ok || or.Op != token.KW_MAYBE {
		t.Fatalf("expected maybe at the root, got %#v", stmt.Value)
	}
	and, ok := or.Left.(*ast.LogicExpr)
	if !ok || and.Op != token.KW_FRFR {
		t.Fatalf("expected frfr on the left, got %#v", or.Left)
	}
	if cmp, ok := and.Left.(*ast.BinaryExpr); !ok || cmp.Op != token.GT {
		t.Errorf("expected a > 1 inside frfr, got %#v", and.Left)
	}
}

func TestParseNah(t *testing.T) {
	file := parseOK(t, `hawk_tuah(nah a frfr b)`)
	not, ok := file.Body[0].(*ast.PrintStmt).Value.(*ast.NotExpr)
	if !ok {
		t.Fatalf("expected NotExpr, got %T", file.Body[0].(*ast.PrintStmt).Value)
	}
	// nah binds the whole expression that follows.
	if _, ok := not.Operand.(*ast.LogicExpr); !ok {
		t.Errorf("expected LogicExpr operand, got %T", not.Operand)
	}
}

func TestParseLiterals(t *testing.T) {
	file := parseOK(t, "hawk_tuah(slay)\nhawk_tuah(cap)\nhawk_tuah(nvm)\nhawk_tuah(delulu)")
	if b, ok := file.Body[0].(*ast.PrintStmt).Value.(*ast.BoolLiteral); !ok || !b.Value {
		t.Errorf("expected slay, got %#v", file.Body[0])
	}
	if b, ok := file.Body[1].(*ast.PrintStmt).Value.(*ast.BoolLiteral); !ok || b.Value {
		t.Errorf("expected cap, got %#v", file.Body[1])
	}
	if _, ok := file.Body[2].(*ast.PrintStmt).Value.(*ast.NullLiteral); !ok {
		t.Errorf("expected nvm, got %#v", file.Body[2])
	}
	if _, ok := file.Body[3].(*ast.PrintStmt).Value.(*ast.UndecidedLiteral); !ok {
		t.Errorf("expected delulu, got %#v", file.Body[3])
	}
}

func TestParseAssignments(t *testing.T) {
	file := parseOK(t, "x = 5\nxs[0] = 9\nxs[-1] = x")
	if a, ok := file.Body[0].(*ast.AssignStmt); !ok || a.Name != "x" {
		t.Errorf("expected AssignStmt for x, got %#v", file.Body[0])
	}
	ia, ok := file.Body[1].(*ast.IndexAssignStmt)
	if !ok {
		t.Fatalf("expected IndexAssignStmt, got %T", file.Body[1])
	}
	if ia.Name != "xs" {
		t.Errorf("expected name 'xs', got %q", ia.Name)
	}
	if idx := file.Body[2].(*ast.IndexAssignStmt).Index.(*ast.NumberLiteral); idx.Int != -1 {
		t.Errorf("expected index -1, got %d", idx.Int)
	}
}

func TestParseIndexAndCallExprs(t *testing.T) {
	file := parseOK(t, `hawk_tuah(add(xs[1], 2))`)
	call, ok := file.Body[0].(*ast.PrintStmt).Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", file.Body[0].(*ast.PrintStmt).Value)
	}
	if call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("expected add with 2 args, got %s/%d", call.Name, len(call.Args))
	}
	if idx, ok := call.Args[0].(*ast.IndexExpr); !ok || idx.Name != "xs" {
		t.Errorf("expected xs[1], got %#v", call.Args[0])
	}
}

func TestParseCallStatement(t *testing.T) {
	file := parseOK(t, `greet("bestie", 3)`)
	stmt, ok := file.Body[0].(*ast.CallStmt)
	if !ok {
		t.Fatalf("expected CallStmt, got %T", file.Body[0])
	}
	if stmt.Call.Name != "greet" || len(stmt.Call.Args) != 2 {
		t.Errorf("unexpected call %#v", stmt.Call)
	}
}

func TestParseScooch(t *testing.T) {
	file := parseOK(t, "xs.scooch(4)\nhawk_tuah(xs.scooch(5, 0))")
	stmt, ok := file.Body[0].(*ast.MethodCallStmt)
	if !ok {
		t.Fatalf("expected MethodCallStmt, got %T", file.Body[0])
	}
	if stmt.Call.Receiver != "xs" || stmt.Call.Method != "scooch" || len(stmt.Call.Args) != 1 {
		t.Errorf("unexpected method call %#v", stmt.Call)
	}
	expr, ok := file.Body[1].(*ast.PrintStmt).Value.(*ast.MethodCallExpr)
	if !ok || len(expr.Args) != 2 {
		t.Errorf("expected scooch expression with 2 args, got %#v", file.Body[1])
	}
}

func TestParseUnknownMethod(t *testing.T) {
	_, diags := parseWithErrors(t, `xs.push(4)`)
	if diags[0].Code != diag.CodeUnknownMethod {
		t.Errorf("expected %s, got %s", diag.CodeUnknownMethod, diags[0])
	}
	if diags[0].Hint != "only 'scooch' is supported" {
		t.Errorf("unexpected hint %q", diags[0].Hint)
	}
}

func TestParseFuncDecl(t *testing.T) {
	file := parseOK(t, `
cook add(a, b) {
  sigma r = a + b
  yeet r
}`)
	fn, ok := file.Body[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", file.Body[0])
	}
	if fn.Name != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name)
	}
	if strings.Join(fn.Params, ",") != "a,b" {
		t.Errorf("expected params a,b, got %v", fn.Params)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body))
	}
	if y, ok := fn.Body[1].(*ast.YeetStmt); !ok || y.Name != "r" {
		t.Errorf("expected yeet r, got %#v", fn.Body[1])
	}
}

func TestParseFuncNoParams(t *testing.T) {
	file := parseOK(t, `cook hi() { hawk_tuah("hi") }`)
	fn := file.Body[0].(*ast.FuncDecl)
	if len(fn.Params) != 0 {
		t.Errorf("expected no params, got %v", fn.Params)
	}
}

func TestParseCookOnlyAtTopLevel(t *testing.T) {
	_, diags := parseWithErrors(t, `flex slay { cook f() { skibidi } }`)
	if diags[0].Code != diag.CodeUnknownStatement {
		t.Errorf("expected %s, got %s", diag.CodeUnknownStatement, diags[0])
	}
}

func TestParseYap(t *testing.T) {
	file := parseOK(t, `yap i till -2 to 3 { hawk_tuah(i) }`)
	loop, ok := file.Body[0].(*ast.YapStmt)
	if !ok {
		t.Fatalf("expected YapStmt, got %T", file.Body[0])
	}
	if loop.Var != "i" || loop.Start != -2 || loop.End != 3 {
		t.Errorf("unexpected loop header %s %d..%d", loop.Var, loop.Start, loop.End)
	}
	if len(loop.Body) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(loop.Body))
	}
}

func TestParseYapRejectsNonInteger(t *testing.T) {
	_, diags := parseWithErrors(t, `yap i till 0 to 2.5 { hawk_tuah(i) }`)
	if diags[0].Code != diag.CodeBadLoopBound {
		t.Errorf("expected %s, got %s", diag.CodeBadLoopBound, diags[0])
	}

	_, diags = parseWithErrors(t, `yap i till n to 3 { hawk_tuah(i) }`)
	if diags[0].Code != diag.CodeExpectedToken {
		t.Errorf("expected %s, got %s", diag.CodeExpectedToken, diags[0])
	}
}

func TestParseFlexWithParens(t *testing.T) {
	file := parseOK(t, `flex (i < 3) { i = i + 1 }`)
	loop, ok := file.Body[0].(*ast.FlexStmt)
	if !ok {
		t.Fatalf("expected FlexStmt, got %T", file.Body[0])
	}
	if cmp, ok := loop.Condition.(*ast.BinaryExpr); !ok || cmp.Op != token.LT {
		t.Errorf("expected i < 3, got %#v", loop.Condition)
	}
}

func TestParseRizzCheckChain(t *testing.T) {
	file := parseOK(t, `
rizz_check x > 10 {
  hawk_tuah("big")
} nah_fam rizz_check x > 5 {
  hawk_tuah("mid")
} nah_fam {
  hawk_tuah("smol")
}`)
	outer, ok := file.Body[0].(*ast.RizzCheckStmt)
	if !ok {
		t.Fatalf("expected RizzCheckStmt, got %T", file.Body[0])
	}
	if len(outer.Else) != 1 {
		t.Fatalf("expected chained else, got %d statements", len(outer.Else))
	}
	inner, ok := outer.Else[0].(*ast.RizzCheckStmt)
	if !ok {
		t.Fatalf("expected nested RizzCheckStmt, got %T", outer.Else[0])
	}
	if len(inner.Else) != 1 {
		t.Errorf("expected final else block, got %d statements", len(inner.Else))
	}
}

func TestParseRizzCheckWithoutElse(t *testing.T) {
	file := parseOK(t, `rizz_check slay { hawk_tuah(1) }`)
	if stmt := file.Body[0].(*ast.RizzCheckStmt); stmt.Else != nil {
		t.Errorf("expected no else branch, got %v", stmt.Else)
	}
}

func TestParseSus(t *testing.T) {
	file := parseOK(t, `sus { hawk_tuah(1 / 0) } panik { hawk_tuah("caught") }`)
	stmt, ok := file.Body[0].(*ast.SusStmt)
	if !ok {
		t.Fatalf("expected SusStmt, got %T", file.Body[0])
	}
	if len(stmt.Body) != 1 || len(stmt.Handler) != 1 {
		t.Errorf("expected 1/1 statements, got %d/%d", len(stmt.Body), len(stmt.Handler))
	}
}

func TestParseSusRequiresPanik(t *testing.T) {
	_, diags := parseWithErrors(t, "sus { hawk_tuah(1) }\nhawk_tuah(2)")
	if diags[0].Code != diag.CodeMissingPanik {
		t.Errorf("expected %s, got %s", diag.CodeMissingPanik, diags[0])
	}
	if !strings.HasSuffix(diags[0].String(), "(hint: add a 'panik { }' block after the 'sus' block)") {
		t.Errorf("expected hint in rendered diagnostic, got %q", diags[0].String())
	}
}

func TestParseSkibidiAndYeet(t *testing.T) {
	file := parseOK(t, "yeet x\nskibidi")
	if _, ok := file.Body[0].(*ast.YeetStmt); !ok {
		t.Errorf("expected YeetStmt, got %T", file.Body[0])
	}
	if _, ok := file.Body[1].(*ast.SkibidiStmt); !ok {
		t.Errorf("expected SkibidiStmt, got %T", file.Body[1])
	}
}

func TestParseArrayTrailingComma(t *testing.T) {
	file := parseOK(t, `squad xs = [1, [2, 3], "a",]`)
	arr := file.Body[0].(*ast.SquadDecl).Value.(*ast.ArrayLiteral)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
	if nested, ok := arr.Elements[1].(*ast.ArrayLiteral); !ok || len(nested.Elements) != 2 {
		t.Errorf("expected nested array, got %#v", arr.Elements[1])
	}
}

// ---- error recovery ----

func TestParseRecoveryKeepsLaterStatements(t *testing.T) {
	file, diags := parseWithErrors(t, "sigma = 5\nhawk_tuah(\"still here\")")
	if len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %v", diags)
	}
	if len(file.Body) != 1 {
		t.Fatalf("expected 1 recovered statement, got %d", len(file.Body))
	}
	if _, ok := file.Body[0].(*ast.PrintStmt); !ok {
		t.Errorf("expected PrintStmt, got %T", file.Body[0])
	}
}

func TestParseRecoveryMultipleErrors(t *testing.T) {
	source := `
sigma a = 1
tweet = "x"
hawk_tuah(a)
squad b = [1, 2
sigma c = 3
`
	file, diags := parseWithErrors(t, source)
	if len(diags) != 2 {
		t.Errorf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	var names []string
	for _, stmt := range file.Body {
		if d, ok := stmt.(*ast.SigmaDecl); ok {
			names = append(names, d.Name)
		}
	}
	if strings.Join(names, ",") != "a,c" {
		t.Errorf("expected sigma a and c to survive, got %v", names)
	}
	if diags[0].Span.Start.Line != 3 {
		t.Errorf("expected first error on line 3, got %d", diags[0].Span.Start.Line)
	}
}

func TestParseStrayCloseBrace(t *testing.T) {
	file, diags := parseWithErrors(t, "}\nhawk_tuah(1)")
	if diags[0].Code != diag.CodeUnknownStatement {
		t.Errorf("expected %s, got %s", diag.CodeUnknownStatement, diags[0])
	}
	if len(file.Body) != 1 {
		t.Errorf("expected the print to survive, got %d statements", len(file.Body))
	}
}

func TestParseErrorInsideBlockReportedOnce(t *testing.T) {
	tests := []string{
		"cook f() { hawk_tuah(1 + ) }\nhawk_tuah(2)",
		"flex slay { rizz_check slay { sigma = 1 } }\nhawk_tuah(2)",
		"yap i till 0 to 2.5 { hawk_tuah(i) }\nhawk_tuah(2)",
		"cook f() { sigma = 1 hawk_tuah(3) }\nhawk_tuah(2)",
	}
	for _, source := range tests {
		t.Run(source, func(t *testing.T) {
			file, diags := parseWithErrors(t, source)
			if len(diags) != 1 {
				t.Errorf("expected 1 diagnostic, got %d: %v", len(diags), diags)
			}
			if len(file.Body) != 1 {
				t.Fatalf("expected only the trailing print to survive, got %d statements", len(file.Body))
			}
			if _, ok := file.Body[0].(*ast.PrintStmt); !ok {
				t.Errorf("expected PrintStmt, got %T", file.Body[0])
			}
		})
	}
}

func TestParseStrayCloseAfterError(t *testing.T) {
	_, diags := parseWithErrors(t, "sigma = 1\n}\nhawk_tuah(2)")
	if len(diags) != 2 {
		t.Fatalf("expected the stray '}' to be reported too, got %v", diags)
	}
	if diags[1].Code != diag.CodeUnknownStatement {
		t.Errorf("expected %s, got %s", diag.CodeUnknownStatement, diags[1])
	}
}

func TestParseUnknownStatement(t *testing.T) {
	_, diags := parseWithErrors(t, `42`)
	if diags[0].Code != diag.CodeUnknownStatement {
		t.Errorf("expected %s, got %s", diag.CodeUnknownStatement, diags[0])
	}
	if !strings.Contains(diags[0].Message, "'42'") {
		t.Errorf("expected message to name the token, got %q", diags[0].Message)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	_, diags := parseWithErrors(t, `flex slay { hawk_tuah(1)`)
	if diags[0].Code != diag.CodeExpectedToken {
		t.Errorf("expected %s, got %s", diag.CodeExpectedToken, diags[0])
	}
	if !strings.Contains(diags[0].Message, "end of input") {
		t.Errorf("expected message to mention end of input, got %q", diags[0].Message)
	}
}

func TestParseEmpty(t *testing.T) {
	file := parseOK(t, "")
	if len(file.Body) != 0 {
		t.Errorf("expected empty body, got %d", len(file.Body))
	}
}

func TestParseSpans(t *testing.T) {
	file := parseOK(t, "sigma a = 1\n  hawk_tuah(a + 2)")
	stmt := file.Body[1]
	s := stmt.GetSpan()
	if s.Start.Line != 2 || s.Start.Column != 3 {
		t.Errorf("expected print at 2:3, got %s", s.Start)
	}
	if s.End.Column != 19 {
		t.Errorf("expected print to end at column 19, got %d", s.End.Column)
	}
}

func TestParseJSON(t *testing.T) {
	out := parseToJSON(t, `squad xs = [1, 2]`)
	for _, want := range []string{`"kind": "SquadDecl"`, `"kind": "ArrayLiteral"`, `"name": "xs"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected JSON to contain %s\n%s", want, out)
		}
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"sigma a = 10\nhawk_tuah(a)",
		"cook f(a) { yeet a }\nf(1)",
		"sus { } panik { }",
		"}}}} {{{",
		"rizz_check a { } nah_fam rizz_check b { } nah_fam { }",
		"yap i till 1 to 2.5 { }",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, source string) {
		tokens, _ := lexer.New(source, "fuzz.lava").Tokenize()
		file, _ := New(tokens).ParseFile()
		if file == nil {
			t.Fatal("ParseFile returned nil file")
		}
	})
}
