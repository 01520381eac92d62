// Package generics resolves type syntax into canonical type references and
// binds, infers and erases generic type arguments.
package generics

import (
	"strings"

	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
	"github.com/funvibe/classcore/internal/utils"
)

// Binder resolves type references for one worker. The per-unit fields
// (Imports, Class, Scope) are set by the owning context before each use.
type Binder struct {
	Linker  *symbols.Linker
	Caster  *cast.Caster
	Options *config.Options
	// Report receives diagnostics; the span is filled in by the receiver.
	Report func(d *diagnostics.DiagnosticError)

	Imports *symbols.ImportList
	Class   *symbols.Symbol
	// Scope returns the bounds of a type parameter in scope, and whether
	// name is one.
	Scope func(name string) ([]typesystem.Type, bool)

	// seen holds the names reported missing in the unit. It is own unless
	// the binder inherited the set of an enclosing binder.
	seen map[string]bool
	own  map[string]bool
}

func NewBinder(linker *symbols.Linker, caster *cast.Caster, opts *config.Options) *Binder {
	own := make(map[string]bool)
	return &Binder{Linker: linker, Caster: caster, Options: opts, seen: own, own: own}
}

// BeginUnit resets per-unit state, including the set of names already
// reported as missing.
func (b *Binder) BeginUnit(imports *symbols.ImportList) {
	b.Imports = imports
	b.Class = nil
	clear(b.own)
	b.seen = b.own
}

// Inherit continues the unit of outer: a name outer already reported
// missing is not reported again, and names reported here count for outer.
// The next BeginUnit detaches the binder.
func (b *Binder) Inherit(outer *Binder) {
	b.Imports = outer.Imports
	b.Class = outer.Class
	b.seen = outer.seen
}

func (b *Binder) report(d *diagnostics.DiagnosticError) {
	if b.Report != nil {
		b.Report(d)
	}
}

// Flags merges a class's declared flags with the configured class lists.
func (b *Binder) Flags(sym *symbols.Symbol) symbols.TypeFlags {
	f := sym.Flags
	if b.Options == nil {
		return f
	}
	c := b.Options.Classes
	if config.Flagged(c.NoArray, sym.Name) {
		f |= symbols.NoArray
	}
	if config.Flagged(c.AnyArity, sym.Name) {
		f |= symbols.AnyArity
	}
	if config.Flagged(c.NoRaw, sym.Name) {
		f |= symbols.NoRaw
	}
	if config.Flagged(c.PrimitiveGeneric, sym.Name) {
		f |= symbols.PrimitiveGeneric
	}
	return f
}

// Resolve turns type syntax into a resolved type reference, checking
// generic arity, bounds and raw usage. Unknown names are reported once per
// unit and come back unchanged.
func (b *Binder) Resolve(t typesystem.Type) typesystem.Type {
	return b.resolve(t, true)
}

// Qualify resolves class names only. Arity, bounds and raw usage are left
// for Resolve.
func (b *Binder) Qualify(t typesystem.Type) typesystem.Type {
	return b.resolve(t, false)
}

func (b *Binder) resolve(t typesystem.Type, full bool) typesystem.Type {
	switch typ := t.(type) {
	case typesystem.Class:
		return b.resolveClass(typ, full)
	case typesystem.Generic:
		return b.resolveGeneric(typ, full)
	case typesystem.Wildcard:
		if typ.Bound != nil {
			typ.Bound = b.resolve(typ.Bound, full)
		}
		return typ
	default:
		return t
	}
}

func (b *Binder) scopeParam(name string) bool {
	if b.Scope == nil || strings.ContainsAny(name, "/$") {
		return false
	}
	_, ok := b.Scope(name)
	return ok
}

// lookup resolves a class name, reporting a missing class once per unit.
func (b *Binder) lookup(name string) *symbols.Symbol {
	qualified, ambiguous := b.Linker.ResolveClassName(name, b.Imports, b.Class)
	if len(ambiguous) > 1 {
		b.report(diagnostics.NewError(diagnostics.ErrS006, token.NoSpan, name, strings.Join(ambiguous, ", ")))
		return nil
	}
	if qualified != "" {
		if sym := b.Linker.ResolveQualifiedName(qualified); sym != nil {
			return sym
		}
	}
	if !b.seen[name] {
		b.seen[name] = true
		d := diagnostics.NewError(diagnostics.ErrS001, token.NoSpan, name, "")
		d.Hint = diagnostics.DidYouMean("class", b.similarClasses(name))
		b.report(d)
	}
	return nil
}

func (b *Binder) similarClasses(name string) []string {
	simple := utils.SimpleName(strings.ReplaceAll(name, ".", "/"))
	var shorts []string
	seen := make(map[string]bool)
	for _, q := range b.Linker.Table().KnownNames() {
		s := utils.SimpleName(q)
		if !seen[s] {
			seen[s] = true
			shorts = append(shorts, s)
		}
	}
	out := diagnostics.Suggest(simple, shorts)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func (b *Binder) resolveClass(t typesystem.Class, full bool) typesystem.Type {
	if b.scopeParam(t.Name) {
		return typesystem.Param{Name: t.Name, Dim: t.Dim}
	}
	sym := b.lookup(t.Name)
	if sym == nil {
		return t
	}
	out := typesystem.Class{Name: sym.Name, Dim: t.Dim}
	if !full {
		return out
	}
	b.checkWrittenOuter(t.Name, sym)
	b.checkRaw(sym)
	if t.Dim > 0 && b.Flags(sym).Has(symbols.NoArray) {
		b.report(diagnostics.NewError(diagnostics.ErrS008, token.NoSpan, sym.Name))
	}
	return out
}

// checkRaw reports a generic class used without type arguments, with the
// severity the raw-type policy gives it.
func (b *Binder) checkRaw(sym *symbols.Symbol) {
	flags := b.Flags(sym)
	if len(sym.TypeParams()) == 0 || flags.Has(symbols.AnyArity) {
		return
	}
	sev := diagnostics.Warning
	if b.Options != nil {
		sev = b.Options.RawTypes.Severity(flags.Has(symbols.NoRaw))
	}
	b.report(&diagnostics.DiagnosticError{Code: diagnostics.ErrS005, Severity: sev, Args: []any{sym.Name}})
}

// checkWrittenOuter reports the outer class of an inner class when the
// written name spells it without arguments, as in Outer.Inner<X>.
func (b *Binder) checkWrittenOuter(written string, head *symbols.Symbol) {
	if head.IsStatic() || head.IsInterface() || strings.Contains(written, "$") {
		return
	}
	outer := utils.OuterOf(head.Name)
	i := strings.LastIndexByte(written, '/')
	if outer == "" || i < 0 || utils.SimpleName(written[:i]) != utils.SimpleName(outer) {
		return
	}
	if sym := b.Linker.ResolveQualifiedName(outer); sym != nil {
		b.checkRaw(sym)
	}
}

type level struct {
	sym  *symbols.Symbol
	args []typesystem.Type
}

func (b *Binder) resolveGeneric(g typesystem.Generic, full bool) typesystem.Type {
	head := b.lookup(g.Name)
	if head == nil {
		return g
	}
	if full {
		b.checkWrittenOuter(g.Name, head)
	}

	levels := []level{{head, g.ArgList()}}
	for sub := g.Sub; sub != nil; sub = sub.Sub {
		prev := levels[len(levels)-1].sym
		inner := b.Linker.InnerClass(prev, sub.Name)
		var sym *symbols.Symbol
		if inner != "" {
			sym = b.Linker.ResolveQualifiedName(inner)
		}
		if sym == nil {
			missing := prev.Name + "$" + sub.Name
			if !b.seen[missing] {
				b.seen[missing] = true
				b.report(diagnostics.NewError(diagnostics.ErrS001, token.NoSpan, missing, ""))
			}
			return g
		}
		levels = append(levels, level{sym, sub.ArgList()})
	}

	live := false
	for i := range levels {
		lv := &levels[i]
		if full && i > 0 && lv.sym.IsStatic() && live {
			b.report(diagnostics.NewError(diagnostics.ErrS007, token.NoSpan, utils.SimpleName(lv.sym.Name), levels[i-1].sym.Name))
		}
		if len(lv.args) > 0 && !typesystem.IsDiamond(lv.args) {
			live = true
		}
		// an outer level only qualifies a static inner class
		if full && len(lv.args) == 0 && (i == len(levels)-1 || !levels[i+1].sym.IsStatic()) {
			b.checkRaw(lv.sym)
		}
		lv.args = b.bindArgs(lv.sym, lv.args, full)
	}

	// leading levels without arguments fold into the qualified name
	out := typesystem.Generic{Dim: g.Dim}
	start := 0
	for start < len(levels)-1 && len(levels[start].args) == 0 {
		start++
	}
	out.Name = levels[start].sym.Name
	out.Args = levels[start].args
	tail := &out
	for _, lv := range levels[start+1:] {
		sub := &typesystem.Generic{Name: utils.SimpleName(lv.sym.Name), Args: lv.args}
		tail.Sub = sub
		tail = sub
	}

	if full && g.Dim > 0 && b.Flags(levels[len(levels)-1].sym).Has(symbols.NoArray) {
		b.report(diagnostics.NewError(diagnostics.ErrS008, token.NoSpan, out.Name))
	}
	return out
}

// bindArgs checks one level's arguments against its class. On an arity
// error the arguments come back unchanged.
func (b *Binder) bindArgs(sym *symbols.Symbol, args []typesystem.Type, full bool) []typesystem.Type {
	if len(args) == 0 || typesystem.IsDiamond(args) {
		return args
	}
	params := sym.TypeParams()
	flags := b.Flags(sym)
	if full && !flags.Has(symbols.AnyArity) {
		if len(params) == 0 {
			b.report(diagnostics.NewError(diagnostics.ErrS004, token.NoSpan, sym.Name))
			return args
		}
		if len(args) != len(params) {
			b.report(diagnostics.NewError(diagnostics.ErrS003, token.NoSpan, sym.Name, len(args), len(params)))
			return args
		}
	}

	out := make([]typesystem.Type, len(args))
	for i, a := range args {
		out[i] = b.resolve(a, full)
	}
	if !full {
		return out
	}

	for _, a := range out {
		if typesystem.IsPrimitive(a) && !flags.Has(symbols.PrimitiveGeneric) {
			b.report(diagnostics.NewError(diagnostics.ErrS010, token.NoSpan, a, sym.Name))
		}
	}

	subst := typesystem.NewSubst(symbols.ParamNames(params), out)
	for i, a := range out {
		if i >= len(params) {
			break
		}
		arg := a
		if w, ok := a.(typesystem.Wildcard); ok {
			if w.Kind != typesystem.Extends {
				continue
			}
			arg = w.Bound
		}
		if typesystem.IsPrimitive(arg) {
			continue
		}
		for _, bound := range params[i].Bounds {
			bound = bound.Apply(subst)
			if r := b.Caster.Check(arg, bound); r.Rank < cast.Upcast {
				b.report(diagnostics.NewError(cast.DiagnosticCode(r.Rank), token.NoSpan, arg, bound))
			}
		}
	}
	return out
}
