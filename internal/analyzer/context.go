// Package analyzer is the compilation context: the single call surface the
// body pass uses for names, casts, access checks and calls, plus the
// processors of the name, type, member and directive stages.
package analyzer

import (
	"io"
	"log"

	"github.com/funvibe/classcore/internal/access"
	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/generics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
)

// DebugLogger traces context transitions. It discards output unless the
// driver redirects it.
var DebugLogger = log.New(io.Discard, "[analyzer] ", log.Ltime|log.Lmicroseconds)

func debugf(format string, args ...any) {
	DebugLogger.Printf(format, args...)
}

// Flags is the per-member resolution state.
type Flags struct {
	InStatic      bool
	InConstructor bool
	InReturn      bool
	// ConstructorCalled is set once this(...) or super(...) was seen.
	ConstructorCalled bool
	// ThisDelegated is set once this(...) was seen.
	ThisDelegated bool
}

type unresolvable struct{}

func (unresolvable) String() string { return "<unresolvable>" }

// Unresolvable stands in for a value that already failed to resolve.
// Diagnostics mentioning it are dropped, so one failure does not cascade.
var Unresolvable any = unresolvable{}

// Context owns one worker's resolution session. Nested contexts for
// reentrant resolution come from its Stack.
type Context struct {
	Options   *config.Options
	Table     *symbols.Table
	Linker    *symbols.Linker
	Caster    *cast.Caster
	Binder    *generics.Binder
	Registry  *modules.Registry
	Operators *OperatorTable

	Unit   *modules.Unit
	Class  *modules.Class
	Member *symbols.Symbol
	Flags

	// FieldImports and MethodImports are dynamic import hooks consulted
	// before the enclosing chain.
	FieldImports  func(name string) *Import
	MethodImports func(name string, args []typesystem.Type) *Import

	sink        diagnostics.Sink
	capture     func(d *diagnostics.DiagnosticError)
	span        token.Span
	override    token.Span
	hasOverride bool
	memberError bool

	enclosing []Enclosing
	tracker   *access.Tracker
	finals    *access.FinalSet
	body      access.Body
	ctors     *access.CtorArena
	ctorID    access.CtorID

	methodParams []symbols.TypeParam

	stack  *Stack
	parent *Context
	child  *Context
	depth  int

	// scratch buffers, cleared between calls
	names []string
	cands []candidate
}

// NewContext creates a root context reporting into sink, with its own
// Stack.
func NewContext(table *symbols.Table, opts *config.Options, sink diagnostics.Sink) *Context {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	c := newContext(table, symbols.NewLinker(table), opts, sink)
	c.Operators = DefaultOperators()
	NewStack(c)
	return c
}

func newContext(table *symbols.Table, linker *symbols.Linker, opts *config.Options, sink diagnostics.Sink) *Context {
	c := &Context{
		Options: opts,
		Table:   table,
		Linker:  linker,
		sink:    sink,
		ctors:   access.NewCtorArena(),
	}
	c.Caster = cast.NewCaster(linker)
	c.Caster.Scope = func(name string) []typesystem.Type {
		bounds, _ := c.typeParamBounds(name)
		return bounds
	}
	c.Binder = generics.NewBinder(linker, c.Caster, opts)
	c.Binder.Scope = c.typeParamBounds
	c.Binder.Report = c.reportResolved
	return c
}

// Stack returns the stack this context belongs to.
func (c *Context) Stack() *Stack { return c.stack }

// Depth is 0 for the root context.
func (c *Context) Depth() int { return c.depth }

// Reset drops all per-unit state.
func (c *Context) Reset() {
	c.Unit = nil
	c.Class = nil
	c.Member = nil
	c.Flags = Flags{}
	c.FieldImports = nil
	c.MethodImports = nil
	c.capture = nil
	c.span = token.NoSpan
	c.hasOverride = false
	c.memberError = false
	c.enclosing = c.enclosing[:0]
	c.tracker = nil
	c.finals = nil
	c.body = access.Body{}
	c.ctors.Reset()
	c.methodParams = nil
	c.names = c.names[:0]
	c.cands = c.cands[:0]
	c.Binder.BeginUnit(nil)
}

// Clear resets the context and invalidates the hierarchy and overload
// caches; it starts a new generation.
func (c *Context) Clear() {
	c.Reset()
	c.Linker.Clear()
	debugf("linker generation %s", c.Linker.Generation())
}

// BeginUnit prepares the context for a unit.
func (c *Context) BeginUnit(u *modules.Unit) {
	c.Reset()
	c.Unit = u
	c.Binder.BeginUnit(u.Imports)
	c.span = token.Span{File: u.Path}
}

// BeginClass makes cls the current class. The enclosing chain becomes the
// class nest, outermost first.
func (c *Context) BeginClass(cls *modules.Class) {
	c.Class = cls
	c.Member = nil
	c.Flags = Flags{}
	c.methodParams = nil
	c.Binder.Class = cls.Symbol
	c.tracker = nil
	c.finals = nil
	c.ctors.Reset()
	c.span = cls.Symbol.Span

	c.enclosing = c.enclosing[:0]
	var nest []*modules.Class
	for cur := cls; cur != nil; cur = cur.Outer {
		nest = append(nest, cur)
	}
	for i := len(nest) - 1; i >= 0; i-- {
		c.enclosing = append(c.enclosing, &ClassScope{Class: nest[i].Symbol})
	}
}

// BeginMember makes m the member being resolved and sets the static and
// constructor flags from it.
func (c *Context) BeginMember(m *symbols.Symbol) {
	c.Member = m
	c.memberError = false
	c.span = m.Span
	c.Flags = Flags{InStatic: m.IsStatic()}
	c.methodParams = nil
	c.finals = nil
	if m.Kind != symbols.MethodSymbol {
		return
	}
	c.methodParams = m.TypeParams()
	c.InConstructor = m.Name == config.ConstructorName || m.Name == config.StaticInitializerName
	c.body = access.Body{Class: m.Owner, Constructor: c.InConstructor, Static: m.IsStatic()}
	if c.InConstructor && c.Class != nil {
		c.finals = c.Tracker().Begin(c.body)
	}
	if m.Name == config.ConstructorName {
		c.ctorID = c.ctors.ID(m)
	}
}

// EndBody closes a member whose body was resolved. Final fields a
// constructor leaves unassigned are reported.
func (c *Context) EndBody() {
	if c.Member != nil && c.finals != nil && !c.finals.Satisfied() &&
		(c.Member.Name == config.ConstructorName || c.Member.Name == config.StaticInitializerName) {
		for _, f := range c.finals.Remaining() {
			c.Report(diagnostics.ErrA005, c.Member.Owner, f)
		}
	}
	c.EndMember()
}

// EndMember closes the current member. Declaration stages end members
// with it; nothing is checked about the body.
func (c *Context) EndMember() {
	if c.Member == nil {
		return
	}
	c.Member = nil
	c.finals = nil
	c.Flags = Flags{}
	c.methodParams = nil
}

// Tracker returns the final-field tracker of the current class, collecting
// it on first use.
func (c *Context) Tracker() *access.Tracker {
	if c.tracker == nil {
		if c.Class.Finals != nil {
			c.tracker = c.Class.Finals
		} else {
			c.tracker = access.NewTracker(c.Class.Symbol, HasInitializer(c.Class))
		}
	}
	return c.tracker
}

// HasInitializer reports fields of cls initialized at their declaration.
func HasInitializer(cls *modules.Class) func(*symbols.Symbol) bool {
	return func(f *symbols.Symbol) bool {
		if d := cls.Field(f.Name); d != nil && d.Decl != nil {
			return d.Decl.Value != nil
		}
		return f.ConstantExpr != nil
	}
}

// HasError reports whether an error was reported for the current member.
func (c *Context) HasError() bool { return c.memberError }

// ClassName is the qualified name of the current class, or "".
func (c *Context) ClassName() string {
	if c.Class == nil {
		return ""
	}
	return c.Class.Symbol.Name
}

// SelfType is the current class parameterized by its own type parameters.
func (c *Context) SelfType() typesystem.Type {
	if c.Class == nil {
		return typesystem.Object
	}
	return selfType(c.Class.Symbol)
}

func selfType(sym *symbols.Symbol) typesystem.Type {
	params := sym.TypeParams()
	if len(params) == 0 {
		return typesystem.Class{Name: sym.Name}
	}
	args := make([]typesystem.Type, len(params))
	for i, p := range params {
		args[i] = typesystem.Param{Name: p.Name}
	}
	return typesystem.Generic{Name: sym.Name, Args: args}
}

// typeParamBounds finds a type parameter in scope: the member's own, then
// those of the class and of enclosing classes up to a static level.
func (c *Context) typeParamBounds(name string) ([]typesystem.Type, bool) {
	for _, p := range c.methodParams {
		if p.Name == name {
			return p.Bounds, true
		}
	}
	if c.Member != nil && c.Member.IsStatic() {
		return nil, false
	}
	for cur := c.Class; cur != nil; cur = cur.Outer {
		for _, p := range cur.Symbol.TypeParams() {
			if p.Name == name {
				return p.Bounds, true
			}
		}
		if cur.Symbol.IsStatic() || cur.Symbol.IsInterface() {
			break
		}
	}
	return nil, false
}

// instanceOf adapts the linker to access.InstanceOf.
func (c *Context) instanceOf(sub, super string) bool {
	return c.Linker.IsSubclassOf(sub, super)
}
