package access

import (
	"sort"

	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
)

// FinalSet holds the final fields a constructor (or static initializer) has
// not yet written. It is owned by one body resolution.
type FinalSet struct {
	unwritten map[string]bool
	// satisfied is set once control delegated to a constructor that
	// performs every assignment.
	satisfied bool
}

func NewFinalSet(fields ...string) *FinalSet {
	s := &FinalSet{unwritten: make(map[string]bool, len(fields))}
	for _, f := range fields {
		s.unwritten[f] = true
	}
	return s
}

// Unwritten reports whether field still needs its assignment.
func (s *FinalSet) Unwritten(field string) bool {
	return !s.satisfied && s.unwritten[field]
}

func (s *FinalSet) markWritten(field string) {
	delete(s.unwritten, field)
}

// Satisfy records a this(...) delegation.
func (s *FinalSet) Satisfy() {
	s.satisfied = true
}

func (s *FinalSet) Satisfied() bool { return s.satisfied }

// Remaining lists the unwritten fields in order.
func (s *FinalSet) Remaining() []string {
	if s.satisfied {
		return nil
	}
	out := make([]string, 0, len(s.unwritten))
	for f := range s.unwritten {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Outcome of a final-field access.
type Outcome int

const (
	OK Outcome = iota
	WriteFinal
	WriteAfterWrite
	ReadBeforeWrite
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case WriteFinal:
		return "write to final"
	case WriteAfterWrite:
		return "write after write"
	case ReadBeforeWrite:
		return "read before write"
	default:
		return "unknown"
	}
}

// Code maps a failed outcome onto its diagnostic code.
func (o Outcome) Code() diagnostics.ErrorCode {
	switch o {
	case WriteFinal:
		return diagnostics.ErrA003
	case WriteAfterWrite:
		return diagnostics.ErrA004
	case ReadBeforeWrite:
		return diagnostics.ErrA005
	}
	return ""
}

// Body describes the body being resolved.
type Body struct {
	Class string
	// Constructor is set for instance constructors and the static initializer.
	Constructor bool
	Static      bool
}

// Tracker runs the definite-assignment state machine for one class. Instance
// finals are tracked only inside instance constructors, static finals only
// inside the static initializer.
type Tracker struct {
	Instance *FinalSet
	Static   *FinalSet
}

// NewTracker collects the final fields of class that have no initializer.
// hasInit reports whether a field is initialized at its declaration.
func NewTracker(class *symbols.Symbol, hasInit func(*symbols.Symbol) bool) *Tracker {
	var inst, static []string
	for _, m := range class.Members {
		if m.Kind != symbols.FieldSymbol || !m.IsFinal() {
			continue
		}
		if hasInit != nil && hasInit(m) {
			continue
		}
		if m.IsStatic() {
			static = append(static, m.Name)
		} else {
			inst = append(inst, m.Name)
		}
	}
	return &Tracker{Instance: NewFinalSet(inst...), Static: NewFinalSet(static...)}
}

// Begin returns the set for a new body; instance constructors each get a
// fresh copy of the instance set.
func (t *Tracker) Begin(body Body) *FinalSet {
	switch {
	case !body.Constructor:
		return nil
	case body.Static:
		return t.Static
	default:
		return NewFinalSet(t.Instance.Remaining()...)
	}
}

// Access checks one read or write of field from body. set is the FinalSet
// returned by Begin for body.
func Access(field *symbols.Symbol, write bool, body Body, set *FinalSet) Outcome {
	if field.Kind != symbols.FieldSymbol || !field.IsFinal() {
		return OK
	}
	tracked := set != nil && body.Constructor &&
		field.Owner == body.Class && field.IsStatic() == body.Static

	if write {
		if !tracked {
			return WriteFinal
		}
		if !set.Unwritten(field.Name) {
			return WriteAfterWrite
		}
		set.markWritten(field.Name)
		return OK
	}
	if tracked && set.Unwritten(field.Name) {
		return ReadBeforeWrite
	}
	return OK
}
