package analyzer

import (
	"strings"

	"github.com/funvibe/classcore/internal/access"
	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// MemberResolution checks overrides against the inherited members, checks
// that concrete classes implement every abstract method and collects the
// final fields each constructor must assign.
type MemberResolution struct{}

func (MemberResolution) Stage() pipeline.Stage { return pipeline.StageMembers }

func (p MemberResolution) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return forEachClass(ctx, func(c *Context, cls *modules.Class) {
		for _, m := range cls.Methods {
			p.overrides(c, m.Symbol)
		}
		if !cls.Symbol.IsAbstract() {
			p.implements(c, cls)
		}
		cls.Finals = access.NewTracker(cls.Symbol, HasInitializer(cls))
	})
}

// Overridden returns the inherited methods m overrides or hides, nearest
// ancestor first.
func (c *Context) Overridden(m *symbols.Symbol) []*symbols.Symbol {
	if m.Kind != symbols.MethodSymbol || m.Modifiers.Has(symbols.Private) || isSpecial(m.Name) {
		return nil
	}
	owner := c.Linker.ResolveQualifiedName(m.Owner)
	if owner == nil {
		return nil
	}
	h, err := c.Linker.Hierarchy(owner)
	if err != nil {
		return nil
	}
	key := c.methodKey(m, owner, owner)
	var out []*symbols.Symbol
	for _, a := range h.Ancestors()[1:] {
		sym := c.Linker.ResolveQualifiedName(a.Name)
		if sym == nil {
			continue
		}
		for _, o := range sym.Members {
			if o.Kind != symbols.MethodSymbol || o.Name != m.Name || o.Modifiers.Has(symbols.Private) {
				continue
			}
			if a.Interface && o.IsStatic() {
				continue
			}
			if len(o.Signature().Params) == len(m.Signature().Params) && c.methodKey(o, sym, owner) == key {
				out = append(out, o)
			}
		}
	}
	return out
}

func (MemberResolution) overrides(c *Context, m *symbols.Symbol) {
	c.BeginMember(m)
	defer c.EndMember()
	reported := map[diagnostics.ErrorCode]bool{}
	report := func(code diagnostics.ErrorCode, args ...any) {
		if !reported[code] {
			reported[code] = true
			c.Report(code, args...)
		}
	}
	for _, o := range c.Overridden(m) {
		switch {
		case m.IsStatic() && !o.IsStatic():
			report(diagnostics.ErrM004, m.Display(), "static method cannot hide instance method "+o.Display())
			continue
		case !m.IsStatic() && o.IsStatic():
			report(diagnostics.ErrM004, m.Display(), "instance method cannot override static method "+o.Display())
			continue
		}
		if o.IsFinal() {
			report(diagnostics.ErrM001, m.Display(), o.Display())
		}
		if m.Modifiers.AccessLevel() < o.Modifiers.AccessLevel() {
			report(diagnostics.ErrM002, m.Display(), o.Modifiers.Visibility())
		}
		mRet := m.Signature().Return
		oRet := c.inherited(o, m.Owner).Return
		if !c.returnCompatible(mRet, oRet) {
			report(diagnostics.ErrM003, mRet, m.Display(), oRet)
		}
	}
}

// returnCompatible allows identical primitives and reference upcasts.
func (c *Context) returnCompatible(ret, parent typesystem.Type) bool {
	if ret == nil || parent == nil {
		return true
	}
	if typesystem.IsPrimitive(ret) || typesystem.IsPrimitive(parent) {
		return typesystem.Equal(ret, parent)
	}
	return c.Caster.Check(ret, parent).Rank == cast.Upcast
}

func (MemberResolution) implements(c *Context, cls *modules.Class) {
	sym := cls.Symbol
	h, err := c.Linker.Hierarchy(sym)
	if err != nil {
		return
	}
	missing := map[string]bool{}
	for _, a := range h.Ancestors() {
		owner := sym
		if a.Name != sym.Name {
			owner = c.Linker.ResolveQualifiedName(a.Name)
		}
		if owner == nil {
			continue
		}
		for _, m := range owner.Members {
			if m.Kind != symbols.MethodSymbol || !m.Modifiers.Has(symbols.Abstract) || m.IsStatic() {
				continue
			}
			key := m.Name + "(" + c.methodKey(m, owner, sym) + ")"
			if missing[key] || c.implemented(sym, h, m, owner) {
				continue
			}
			missing[key] = true
			c.SetPosition(sym.Span)
			c.Report(diagnostics.ErrM005, sym.Name, m.Display())
		}
	}
}

// implemented reports whether a concrete method matching abstract, seen
// from class, exists in class or an ancestor.
func (c *Context) implemented(class *symbols.Symbol, h *symbols.Hierarchy, abstract, declaring *symbols.Symbol) bool {
	key := c.methodKey(abstract, declaring, class)
	for _, a := range h.Ancestors() {
		owner := class
		if a.Name != class.Name {
			owner = c.Linker.ResolveQualifiedName(a.Name)
		}
		if owner == nil {
			continue
		}
		for _, m := range owner.Members {
			if m.Kind != symbols.MethodSymbol || m.Name != abstract.Name || m.IsStatic() || m.Modifiers.Has(symbols.Abstract) {
				continue
			}
			if owner != class && m.Modifiers.Has(symbols.Private) {
				continue
			}
			if len(m.Signature().Params) == len(abstract.Signature().Params) && c.methodKey(m, owner, class) == key {
				return true
			}
		}
	}
	return false
}

// inherited returns the signature of m, declared in an ancestor of class,
// with the ancestor's type parameters replaced as seen from class.
func (c *Context) inherited(m *symbols.Symbol, class string) symbols.Signature {
	sig := m.Signature()
	subst := c.viewFrom(m.Owner, class)
	if len(subst) == 0 {
		return sig
	}
	params := make([]typesystem.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.Apply(subst)
	}
	sig.Params = params
	if sig.Return != nil {
		sig.Return = sig.Return.Apply(subst)
	}
	return sig
}

// viewFrom maps the type parameters of ancestor to the arguments class
// passes to it; a raw path maps them to their erasure.
func (c *Context) viewFrom(ancestor, class string) typesystem.Subst {
	if ancestor == class {
		return nil
	}
	sym := c.Linker.ResolveQualifiedName(ancestor)
	cls := c.Linker.ResolveQualifiedName(class)
	if sym == nil || cls == nil {
		return nil
	}
	params := sym.TypeParams()
	if len(params) == 0 {
		return nil
	}
	names := symbols.ParamNames(params)
	if args := c.Binder.InferArgs(selfType(cls), ancestor); len(args) == len(params) {
		return typesystem.NewSubst(names, args)
	}
	erased := make([]typesystem.Type, len(params))
	for i, p := range params {
		erased[i] = typesystem.Raw(p.FirstBound())
	}
	return typesystem.NewSubst(names, erased)
}

// methodKey is the erased parameter list of m, declared in owner, as seen
// from class. Method type variables erase to their first bound.
func (c *Context) methodKey(m, owner, class *symbols.Symbol) string {
	sig := m.Signature()
	view := c.viewFrom(owner.Name, class.Name)
	own := typesystem.Subst{}
	for _, tp := range sig.TypeParams {
		own[tp.Name] = typesystem.Raw(tp.FirstBound())
	}
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		if len(own) > 0 {
			p = p.Apply(own)
		}
		if len(view) > 0 {
			p = p.Apply(view)
		}
		parts[i] = c.eraseIn(p, class).String()
	}
	return strings.Join(parts, ",")
}

// eraseIn erases t, resolving the remaining type variables against the
// parameters of class.
func (c *Context) eraseIn(t typesystem.Type, class *symbols.Symbol) typesystem.Type {
	p, ok := t.(typesystem.Param)
	if !ok {
		return c.Binder.Erase(t)
	}
	for _, tp := range class.TypeParams() {
		if tp.Name == p.Name {
			b := typesystem.Raw(tp.FirstBound())
			if _, nested := b.(typesystem.Param); nested {
				b = typesystem.Object
			}
			return b.WithDim(b.ArrayDim() + p.Dim)
		}
	}
	return typesystem.Object.WithDim(p.Dim)
}

func isSpecial(name string) bool {
	return name == config.ConstructorName || name == config.StaticInitializerName
}
