// Package diag provides the diagnostics reported by the scanner and parser.
package diag

import (
	"fmt"
	"strings"

	"lava-lang/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. E1xxx come from the scanner, E2xxx from the parser.
const (
	CodeUnterminatedString = "E1001"
	CodeUnclosedComment    = "E1002"
	CodeUnexpectedChar     = "E1003"

	CodeExpectedToken    = "E2001"
	CodeUnknownStatement = "E2002"
	CodeBadLoopBound     = "E2003"
	CodeMissingPanik     = "E2004"
	CodeUnknownMethod    = "E2005"
)

// Diagnostic is a single scanner or parser message. Hint, when set, suggests
// a fix.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     span.Span `json:"span"`
	Hint     string    `json:"hint,omitempty"`
}

// String renders the diagnostic as "[E2001] error at 3:7: message".
func (d Diagnostic) String() string {
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, d.Severity, d.Span.Start, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// Error lets a Diagnostic travel as an error value inside the parser.
func (d Diagnostic) Error() string { return d.String() }

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// WithHint returns a copy of d carrying hint.
func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// List is a non-empty batch of diagnostics returned as one error.
type List []Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].String()
	}
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Err returns l as an error, or nil when it is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
