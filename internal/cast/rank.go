package cast

import "github.com/funvibe/classcore/internal/diagnostics"

//go:generate go tool stringer -type=Rank -output=rank_string.go

// Rank classifies a conversion. Ranks >= 0 succeed implicitly; higher ranks
// are preferred when an overload is applicable in several ways.
type Rank int8

const (
	Never             Rank = iota - 8 // no representation
	NoData                            // a class is unknown to the provider
	GenericArity                      // type argument counts differ
	PrimitiveToObject                 // primitive to unrelated reference
	ObjectToPrimitive                 // reference to primitive
	Downcast                          // checked reference downcast
	Lossy                             // narrowing from long, float or double
	Narrowing                         // narrowing inside the int width class
	Upcast                            // reference upcast or identity
	NumberUpcast                      // numeric widening
	Unboxing
	Boxing
)

// OK reports whether the conversion is allowed without an explicit cast.
func (r Rank) OK() bool { return r >= Upcast }

// DiagnosticCode maps a failing rank to its diagnostic code. Each rank below
// Upcast has its own code; successful ranks have none.
func DiagnosticCode(r Rank) diagnostics.ErrorCode {
	switch r {
	case Narrowing:
		return diagnostics.ErrC001
	case Lossy:
		return diagnostics.ErrC002
	case Downcast:
		return diagnostics.ErrC003
	case ObjectToPrimitive:
		return diagnostics.ErrC004
	case PrimitiveToObject:
		return diagnostics.ErrC005
	case GenericArity:
		return diagnostics.ErrC006
	case NoData:
		return diagnostics.ErrC007
	case Never:
		return diagnostics.ErrC008
	}
	return ""
}
