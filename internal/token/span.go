package token

import "fmt"

// Span is a source range inside one compilation unit. Line and Column are
// 1-based; a zero Line means the position is unknown.
type Span struct {
	File   string
	Line   int
	Column int
	Start  int
	End    int
}

// NoSpan is used when nothing better is known.
var NoSpan = Span{}

func (s Span) IsZero() bool {
	return s.Line == 0 && s.Start == 0 && s.End == 0
}

func (s Span) String() string {
	if s.Line == 0 {
		if s.File == "" {
			return "<unknown>"
		}
		return s.File
	}
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Before orders spans by file, then line, then column.
func (s Span) Before(o Span) bool {
	if s.File != o.File {
		return s.File < o.File
	}
	if s.Line != o.Line {
		return s.Line < o.Line
	}
	return s.Column < o.Column
}
