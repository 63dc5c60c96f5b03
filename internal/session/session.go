// Package session runs LAVA source end to end: tokenize, parse, run.
// A Session keeps one interpreter alive so globals survive between inputs.
package session

import (
	"errors"
	"fmt"
	"io"

	"lava-lang/internal/ast"
	"lava-lang/internal/diag"
	"lava-lang/internal/lexer"
	"lava-lang/internal/parser"
	"lava-lang/internal/runtime"
	"lava-lang/internal/token"
)

// Result describes what happened to one piece of source.
type Result struct {
	Tokens []token.Token
	File   *ast.File
	Diags  []diag.Diagnostic
	// LexFailed is set when scanning failed and nothing was parsed or run.
	LexFailed bool
	Halted    bool
	Err       error
}

// OK reports whether the input produced no diagnostics and no runtime error.
func (r Result) OK() bool {
	return len(r.Diags) == 0 && r.Err == nil
}

// Session owns an interpreter and the sink problems are reported to.
type Session struct {
	interp  *runtime.Interpreter
	reports io.Writer
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	runtimeOpts []runtime.Option
	reports     io.Writer
	reportsSet  bool
}

// WithRuntime passes options through to the interpreter.
func WithRuntime(opts ...runtime.Option) Option {
	return func(c *sessionConfig) { c.runtimeOpts = append(c.runtimeOpts, opts...) }
}

// WithReportWriter sends error reports to w instead of the program output.
// A nil writer turns reporting off.
func WithReportWriter(w io.Writer) Option {
	return func(c *sessionConfig) {
		c.reports = w
		c.reportsSet = true
	}
}

// New creates a session whose program output goes to out.
func New(out io.Writer, opts ...Option) *Session {
	cfg := sessionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reports := out
	if cfg.reportsSet {
		reports = cfg.reports
	}
	return &Session{
		interp:  runtime.NewInterpreter(out, cfg.runtimeOpts...),
		reports: reports,
	}
}

// Interpreter exposes the underlying interpreter.
func (s *Session) Interpreter() *runtime.Interpreter {
	return s.interp
}

// Eval tokenizes, parses and runs source. Scanner errors stop the input
// before parsing. Syntax errors are reported and the recovered program
// still runs.
func (s *Session) Eval(source, filename string) Result {
	var res Result

	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	res.Tokens = tokens
	if len(lexDiags) > 0 {
		res.Diags = lexDiags
		res.LexFailed = true
		s.reportDiags(lexDiags)
		return res
	}

	file, parseDiags := parser.Parse(tokens)
	res.File = file
	res.Diags = parseDiags
	s.reportDiags(parseDiags)

	res.Halted, res.Err = s.interp.Run(file)
	if res.Err != nil && s.reports != nil {
		fmt.Fprintln(s.reports, FormatError(res.Err))
	}
	return res
}

func (s *Session) reportDiags(diags []diag.Diagnostic) {
	if s.reports == nil {
		return
	}
	for _, d := range diags {
		fmt.Fprintln(s.reports, FormatDiagnostic(d))
	}
}

// FormatDiagnostic renders a scanner or parser diagnostic as a report line.
func FormatDiagnostic(d diag.Diagnostic) string {
	return "Syntax Error: " + d.String()
}

// FormatError renders a runtime error as a report line.
func FormatError(err error) string {
	var re *runtime.RuntimeError
	if errors.As(err, &re) {
		return fmt.Sprintf("Runtime Error: %s (at %s)", re.Message, re.Span.Start)
	}
	return "Runtime Error: " + err.Error()
}
