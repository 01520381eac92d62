// Package backend is the body resolution and lowering stage. A body pass
// resolves each method body through the compilation context; the members
// that survive are handed to an emitter.
package backend

import (
	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// BodyPass resolves one method body. The context has the unit, class and
// member already set; the pass calls back into it for every name, cast and
// access check. A returned error is an internal fault and aborts the unit.
type BodyPass interface {
	Resolve(ctx *analyzer.Context, m *modules.Method) (*Lowered, error)
}

// Emitter receives each class that survived analysis with its lowered
// members. Excluded members are never passed. Emit is called concurrently
// for classes of different units.
type Emitter interface {
	Emit(cls *modules.Class, members []*Lowered) error
	// Name returns the emitter name for display.
	Name() string
}

// Lowered is what the body pass resolved for one member.
type Lowered struct {
	Symbol *symbols.Symbol
	Calls  []*analyzer.CallResult
	Casts  []*cast.Cast
	// Instances are the types created by `new`, diamonds filled in.
	Instances []typesystem.Type
	// Constants maps folded fields (Owner.name) to their values.
	Constants map[string]any
	// Captures lists the lambdas that capture the enclosing instance.
	Captures []string
}

func newLowered(sym *symbols.Symbol) *Lowered {
	return &Lowered{Symbol: sym, Constants: make(map[string]any)}
}
