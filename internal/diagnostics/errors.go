package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/classcore/internal/token"
)

type ErrorCode string

// Severity of a diagnostic. Only Error and Fatal block stage progression.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal // the owning member is excluded from emission
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Structural parse
const (
	ErrP001 ErrorCode = "P001" // unit failed to parse
	ErrP002 ErrorCode = "P002" // duplicate class
	ErrP003 ErrorCode = "P003" // invalid declaration
)

// Symbol and type resolution
const (
	ErrS001 ErrorCode = "S001" // no such type
	ErrS002 ErrorCode = "S002" // no such member
	ErrS003 ErrorCode = "S003" // generic argument count
	ErrS004 ErrorCode = "S004" // generic arguments on a non-generic class
	ErrS005 ErrorCode = "S005" // raw type
	ErrS006 ErrorCode = "S006" // ambiguous import
	ErrS007 ErrorCode = "S007" // generic nesting through a static class
	ErrS008 ErrorCode = "S008" // array of array-incompatible generic
	ErrS009 ErrorCode = "S009" // nesting too deep
	ErrS010 ErrorCode = "S010" // primitive type argument
	ErrS011 ErrorCode = "S011" // ambiguous call
	ErrS012 ErrorCode = "S012" // no applicable overload
	ErrS013 ErrorCode = "S013" // cyclic inheritance
	ErrS014 ErrorCode = "S014" // illegal supertype
)

// Conversions, keyed by rank -1 .. -8
const (
	ErrC001 ErrorCode = "C001"
	ErrC002 ErrorCode = "C002"
	ErrC003 ErrorCode = "C003"
	ErrC004 ErrorCode = "C004"
	ErrC005 ErrorCode = "C005"
	ErrC006 ErrorCode = "C006"
	ErrC007 ErrorCode = "C007"
	ErrC008 ErrorCode = "C008"
)

// Access and assignment
const (
	ErrA001 ErrorCode = "A001" // access denied
	ErrA002 ErrorCode = "A002" // instance member from static context
	ErrA003 ErrorCode = "A003" // write to final
	ErrA004 ErrorCode = "A004" // write after write
	ErrA005 ErrorCode = "A005" // read before write
	ErrA006 ErrorCode = "A006" // recursive constructor
)

// Member checks and directives
const (
	ErrM001 ErrorCode = "M001" // override of final method
	ErrM002 ErrorCode = "M002" // weaker access on override
	ErrM003 ErrorCode = "M003" // incompatible return type
	ErrM004 ErrorCode = "M004" // static/instance clash
	ErrM005 ErrorCode = "M005" // missing implementation
	ErrM006 ErrorCode = "M006" // misplaced directive
	ErrM007 ErrorCode = "M007" // deprecated use
)

const ErrI001 ErrorCode = "I001" // internal fault

var messages = map[ErrorCode]string{
	ErrP001: "cannot parse unit: %v",
	ErrP002: "duplicate class %s",
	ErrP003: "invalid declaration: %v",

	ErrS001: "cannot find type %s%s",
	ErrS002: "cannot find %s %s in %s%s",
	ErrS003: "wrong number of type arguments for %s: got %d, want %d",
	ErrS004: "type %s is not generic; it cannot be parameterized",
	ErrS005: "raw use of generic type %s",
	ErrS006: "reference to %s is ambiguous: %s",
	ErrS007: "cannot select static class %s from parameterized type %s",
	ErrS008: "cannot create an array of generic type %s",
	ErrS009: "classes and lambdas nested too deeply",
	ErrS010: "primitive type argument %s is not supported for %s",
	ErrS011: "call to %s is ambiguous: %s",
	ErrS012: "no applicable overload of %s for arguments (%s)",
	ErrS013: "cyclic inheritance involving %s",
	ErrS014: "illegal supertype %s for %s: %s",

	ErrC001: "explicit cast required to convert %s to %s",
	ErrC002: "lossy conversion from %s to %s",
	ErrC003: "checked cast required to convert %s to %s",
	ErrC004: "cannot convert %s to primitive %s",
	ErrC005: "cannot convert primitive %s to %s",
	ErrC006: "type argument counts differ between %s and %s",
	ErrC007: "not enough information to convert %s to %s",
	ErrC008: "incompatible types: %s cannot be converted to %s",

	ErrA001: "%s is %s and cannot be accessed from %s",
	ErrA002: "instance %s %s.%s cannot be referenced from a static context",
	ErrA003: "cannot assign a value to final field %s.%s",
	ErrA004: "final field %s.%s may already have been assigned",
	ErrA005: "final field %s.%s may not have been initialized",
	ErrA006: "recursive constructor invocation in %s",

	ErrM001: "%s cannot override final method %s",
	ErrM002: "%s attempts to assign weaker access privileges; was %s",
	ErrM003: "return type %s of %s is not compatible with %s",
	ErrM004: "%s: %s",
	ErrM005: "%s is not abstract and does not override abstract method %s",
	ErrM006: "directive @%s is not applicable to %s: %s",
	ErrM007: "%s is deprecated",

	ErrI001: "internal error: %v",
}

// DiagnosticError is one reported problem. It implements error so it can flow
// through ordinary error returns as well as through a Sink.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Span     token.Span
	Args     []any
	// Hint carries an optional "did you mean" suffix.
	Hint string
}

func NewError(code ErrorCode, span token.Span, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: Error, Span: span, Args: args}
}

func NewWarning(code ErrorCode, span token.Span, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: Warning, Span: span, Args: args}
}

func NewFatal(code ErrorCode, span token.Span, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: Fatal, Span: span, Args: args}
}

// Message renders the diagnostic text without position or code.
func (e *DiagnosticError) Message() string {
	format, ok := messages[e.Code]
	if !ok {
		format = strings.TrimSpace(strings.Repeat("%v ", len(e.Args)))
	}
	msg := fmt.Sprintf(format, e.Args...)
	if e.Hint != "" {
		msg += "\n    " + e.Hint
	}
	return msg
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", e.Span, e.Severity, e.Code, e.Message())
}

// IsError reports whether the diagnostic blocks progression to the next stage.
func (e *DiagnosticError) IsError() bool {
	return e.Severity >= Error
}

// InternalError marks a provider contract violation. It aborts the current
// unit rather than being reported as bad input.
type InternalError struct {
	Unit string
	Err  error
}

func (e *InternalError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("internal error: %v", e.Err)
	}
	return fmt.Sprintf("internal error in %s: %v", e.Unit, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func NewInternalError(unit string, format string, args ...any) *InternalError {
	return &InternalError{Unit: unit, Err: fmt.Errorf(format, args...)}
}
