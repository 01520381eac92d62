package typesystem

import "fmt"

// SyntaxError describes malformed type syntax.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}
