package analyzer

import (
	"sort"
	"sync"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// Directive checks one annotated declaration. target is the class or member
// carrying the annotation; cls is the class declaring it.
type Directive func(c *Context, target *symbols.Symbol, cls *modules.Class)

// DirectiveRegistry maps annotation names to their directives.
type DirectiveRegistry struct {
	mu         sync.RWMutex
	directives map[string]Directive
}

func NewDirectiveRegistry() *DirectiveRegistry {
	return &DirectiveRegistry{directives: make(map[string]Directive)}
}

// Register installs d for name, replacing a previous directive.
func (r *DirectiveRegistry) Register(name string, d Directive) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directives[name] = d
}

func (r *DirectiveRegistry) Lookup(name string) (Directive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.directives[name]
	return d, ok
}

// Names lists the registered directives in sorted order.
func (r *DirectiveRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.directives))
	for n := range r.directives {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultDirectives returns a registry with the built-in directives.
func DefaultDirectives() *DirectiveRegistry {
	r := NewDirectiveRegistry()
	r.Register(config.OverrideDirective, checkOverride)
	r.Register(config.FunctionalInterfaceDirective, checkFunctionalInterface)
	// a marker; uses are checked by checkDeprecated
	r.Register(config.DeprecatedDirective, func(*Context, *symbols.Symbol, *modules.Class) {})
	return r
}

// Directives runs the registered directives over every annotated
// declaration and warns about signatures naming deprecated classes.
type Directives struct {
	Registry *DirectiveRegistry
}

func (Directives) Stage() pipeline.Stage { return pipeline.StageDirectives }

func (p Directives) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	reg := p.Registry
	if reg == nil {
		reg = DefaultDirectives()
	}
	return forEachClass(ctx, func(c *Context, cls *modules.Class) {
		apply(c, reg, cls.Symbol, cls)
		for _, f := range cls.Fields {
			c.BeginMember(f.Symbol)
			apply(c, reg, f.Symbol, cls)
			c.EndMember()
		}
		for _, m := range cls.Methods {
			c.BeginMember(m.Symbol)
			apply(c, reg, m.Symbol, cls)
			c.EndMember()
		}
		checkDeprecated(c, cls)
	})
}

func apply(c *Context, reg *DirectiveRegistry, target *symbols.Symbol, cls *modules.Class) {
	for _, name := range target.Annotations {
		d, ok := reg.Lookup(name)
		if !ok {
			debugf("no directive %s on %s", name, target.Display())
			continue
		}
		c.SetPosition(target.Span)
		d(c, target, cls)
	}
}

func checkOverride(c *Context, target *symbols.Symbol, _ *modules.Class) {
	switch {
	case target.Kind != symbols.MethodSymbol:
		c.Report(diagnostics.ErrM006, config.OverrideDirective, target.Display(), "only methods can override")
	case target.IsStatic():
		c.Report(diagnostics.ErrM006, config.OverrideDirective, target.Display(), "static methods do not override")
	case len(c.Overridden(target)) == 0:
		c.Report(diagnostics.ErrM006, config.OverrideDirective, target.Display(), "method does not override a supertype method")
	}
}

func checkFunctionalInterface(c *Context, target *symbols.Symbol, _ *modules.Class) {
	if target.Kind != symbols.ClassSymbol || !target.IsInterface() {
		c.Report(diagnostics.ErrM006, config.FunctionalInterfaceDirective, target.Display(), "not an interface")
		return
	}
	if n := len(c.AbstractMethods(target)); n != 1 {
		reason := "no abstract method"
		if n > 1 {
			reason = "multiple abstract methods"
		}
		c.Report(diagnostics.ErrM006, config.FunctionalInterfaceDirective, target.Display(), reason)
	}
}

// AbstractMethods lists the distinct abstract methods of class, declared or
// inherited, that nothing in the hierarchy implements.
func (c *Context) AbstractMethods(class *symbols.Symbol) []*symbols.Symbol {
	h, err := c.Linker.Hierarchy(class)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var out []*symbols.Symbol
	for _, a := range h.Ancestors() {
		owner := class
		if a.Name != class.Name {
			owner = c.Linker.ResolveQualifiedName(a.Name)
		}
		if owner == nil {
			continue
		}
		for _, m := range owner.Members {
			if m.Kind != symbols.MethodSymbol || !m.Modifiers.Has(symbols.Abstract) || m.IsStatic() {
				continue
			}
			key := m.Name + "(" + c.methodKey(m, owner, class) + ")"
			if seen[key] || c.implemented(class, h, m, owner) {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}

// checkDeprecated warns once per declaration about each deprecated class its
// signature names. Deprecated declarations may use deprecated classes.
func checkDeprecated(c *Context, cls *modules.Class) {
	if cls.Symbol.HasAnnotation(config.DeprecatedDirective) {
		return
	}
	check := func(sym *symbols.Symbol, types []typesystem.Type) {
		if sym.HasAnnotation(config.DeprecatedDirective) {
			return
		}
		seen := map[string]bool{}
		for _, t := range types {
			eachClass(t, func(name string) {
				if seen[name] || name == cls.Symbol.Name {
					return
				}
				seen[name] = true
				if d := c.Linker.ResolveQualifiedName(name); d != nil && d.HasAnnotation(config.DeprecatedDirective) {
					c.SetPosition(sym.Span)
					c.Warn(diagnostics.ErrM007, name)
				}
			})
		}
	}

	sig := cls.Symbol.Signature()
	check(cls.Symbol, append(boundTypes(sig.TypeParams), sig.SuperTypes...))
	for _, f := range cls.Fields {
		check(f.Symbol, []typesystem.Type{f.Symbol.Signature().Type})
	}
	for _, m := range cls.Methods {
		s := m.Symbol.Signature()
		types := append(boundTypes(s.TypeParams), s.Params...)
		types = append(types, s.Return)
		check(m.Symbol, append(types, s.Throws...))
	}
}

func boundTypes(params []symbols.TypeParam) []typesystem.Type {
	var out []typesystem.Type
	for _, p := range params {
		out = append(out, p.Bounds...)
	}
	return out
}

// eachClass calls fn for every class named in t.
func eachClass(t typesystem.Type, fn func(name string)) {
	switch typ := t.(type) {
	case typesystem.Class:
		fn(typ.Name)
	case typesystem.Generic:
		fn(typesystem.ClassName(typ))
		for g := &typ; g != nil; g = g.Sub {
			for _, a := range g.ArgList() {
				eachClass(a, fn)
			}
		}
	case typesystem.Wildcard:
		if typ.Bound != nil {
			eachClass(typ.Bound, fn)
		}
	}
}
