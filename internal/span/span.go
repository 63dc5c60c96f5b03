// Package span holds source positions shared by the scanner, parser and runtime.
package span

import "fmt"

// Position is a point in LAVA source text.
type Position struct {
	Offset int `json:"offset"` // byte offset
	Line   int `json:"line"`   // 1-based
	Column int `json:"column"` // 1-based
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open range [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// At returns an empty span located at p.
func At(p Position) Span {
	return Span{Start: p, End: p}
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	out := a
	if b.Start.Offset < out.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > out.End.Offset {
		out.End = b.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}
