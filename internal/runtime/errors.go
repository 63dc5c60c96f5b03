package runtime

import (
	"errors"
	"fmt"

	"lava-lang/internal/span"
)

// Kinds of runtime error. Every *RuntimeError unwraps to one of these.
var (
	ErrUndefined      = errors.New("undefined name")
	ErrArity          = errors.New("wrong number of arguments")
	ErrType           = errors.New("type mismatch")
	ErrIndex          = errors.New("index out of bounds")
	ErrDivisionByZero = errors.New("division by zero")
	ErrOperator       = errors.New("unknown operator")
	ErrInput          = errors.New("no input available")
	ErrControl        = errors.New("control statement out of place")
	ErrRecursion      = errors.New("maximum call depth exceeded")
)

// ErrHalted is returned by Eval when a function called from the expression
// executed skibidi. Exec and Run report a halt as SigHalt instead.
var ErrHalted = errors.New("program halted")

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Kind    error
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

func runtimeErr(kind error, s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// atSpan attaches a source location to errors raised away from the AST,
// such as by Environment.Set or a builtin.
func atSpan(err error, s span.Span) error {
	if err == nil || errors.Is(err, ErrHalted) {
		return err
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		if re.Span == (span.Span{}) {
			re.Span = s
		}
		return re
	}
	return &RuntimeError{Kind: err, Message: err.Error(), Span: s}
}
