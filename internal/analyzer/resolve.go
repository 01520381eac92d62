package analyzer

import (
	"github.com/funvibe/classcore/internal/access"
	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// ResolveType resolves a type reference against the current unit, class
// and type parameters in scope.
func (c *Context) ResolveType(t typesystem.Type) typesystem.Type {
	if t == nil {
		return nil
	}
	return c.Binder.Resolve(t)
}

// ResolveTypeSyntax parses and resolves type syntax. Malformed syntax is
// reported as P003 and yields nil.
func (c *Context) ResolveTypeSyntax(src string) typesystem.Type {
	t, err := typesystem.ParseIn(src, c.scopeParamNames()...)
	if err != nil {
		c.Report(diagnostics.ErrP003, err)
		return nil
	}
	return c.ResolveType(t)
}

func (c *Context) scopeParamNames() []string {
	names := c.names[:0]
	for _, p := range c.methodParams {
		names = append(names, p.Name)
	}
	if c.Member != nil && c.Member.IsStatic() {
		c.names = names
		return names
	}
	for cur := c.Class; cur != nil; cur = cur.Outer {
		names = append(names, cur.TypeParamNames()...)
		if cur.Symbol.IsStatic() || cur.Symbol.IsInterface() {
			break
		}
	}
	c.names = names
	return names
}

// CastTo computes the conversion from one type to another and reports it
// when its rank is below limit. Pass cast.Upcast for assignment contexts
// and cast.Downcast for explicit casts.
func (c *Context) CastTo(from, to typesystem.Type, limit cast.Rank) *cast.Cast {
	r := c.Caster.Check(from, to)
	if r.Rank < limit {
		if code := cast.DiagnosticCode(r.Rank); code != "" {
			c.Report(code, from, to)
		}
	}
	return r
}

// CheckAccessible reports whether member, declared in declaring, can be
// used from the current class. static marks an access without an instance.
func (c *Context) CheckAccessible(member *symbols.Symbol, static bool) bool {
	if static && !access.CheckStatic(member, true) {
		c.Report(diagnostics.ErrA002, member.Kind.String(), member.Owner, member.Name)
		return false
	}
	v := access.Check(member.Modifiers, member.DeclaringClass(), c.ClassName(), c.instanceOf)
	if !v.Allowed {
		c.Report(diagnostics.ErrA001, member.Display(), v.Modifier, c.ClassName())
		return false
	}
	return true
}

// CheckClassAccessible reports whether a class can be named from the
// current class.
func (c *Context) CheckClassAccessible(class *symbols.Symbol) bool {
	v := access.CheckSymbol(class, c.ClassName(), c.instanceOf)
	if !v.Allowed {
		c.Report(diagnostics.ErrA001, class.Name, v.Modifier, c.ClassName())
	}
	return v.Allowed
}

func (c *Context) accessible(member *symbols.Symbol) bool {
	return access.Check(member.Modifiers, member.DeclaringClass(), c.ClassName(), c.instanceOf).Allowed
}

// CheckFinalFieldAccess checks one read or write of field in the current
// body, advancing the definite-assignment state of the constructor.
func (c *Context) CheckFinalFieldAccess(field *symbols.Symbol, write bool) bool {
	if c.InStatic && !field.IsStatic() && field.Owner == c.ClassName() {
		c.Report(diagnostics.ErrA002, "field", field.Owner, field.Name)
		return false
	}
	out := access.Access(field, write, c.body, c.finals)
	if out == access.OK {
		return true
	}
	c.Report(out.Code(), field.Owner, field.Name)
	return false
}

// OnCallConstructor records an explicit this(...) or super(...) call in a
// constructor. Delegating to a constructor of the same class hands the
// final fields over to it; a delegation cycle is fatal for every
// constructor on it.
func (c *Context) OnCallConstructor(callee *symbols.Symbol) {
	c.ConstructorCalled = true
	if c.Member == nil || callee.Owner != c.Member.Owner {
		return
	}
	c.ThisDelegated = true
	if c.finals != nil {
		c.finals.Satisfy()
	}
	caller := c.ctorID
	if !c.ctors.Delegate(caller, c.ctors.ID(callee)) {
		return
	}
	cycle := c.ctors.Cycle(caller)
	c.Fatal(diagnostics.ErrA006, c.Member.Display())
	if c.Unit != nil {
		for _, m := range cycle {
			c.Unit.Exclude(m)
		}
	}
	debugf("constructor cycle of %d in %s", len(cycle), c.ClassName())
}
