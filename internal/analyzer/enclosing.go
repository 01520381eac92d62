package analyzer

import (
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// Import is an unqualified name resolved to a member of some class: a
// member of an enclosing class, a statically imported member or the result
// of a dynamic import hook.
type Import struct {
	Owner  *symbols.Symbol
	Name   string
	Symbol *symbols.Symbol
	// Methods is the overload set an imported method name resolved to;
	// Call is the selected overload when the call could be resolved.
	Methods *symbols.OverloadSet
	Call    *CallResult
	Static  bool
	// Through lists the classes and lambdas, innermost last, through which
	// the implicit outer instance is captured.
	Through []string
	// Denied is set when the reference cannot be carried inward.
	Denied bool
}

// Enclosing is one lexical nesting level: a class being compiled or a
// lambda body.
type Enclosing interface {
	// ResolveField and ResolveMethod look a name up at this level only.
	ResolveField(ctx *Context, name string) *Import
	ResolveMethod(ctx *Context, name string, args []typesystem.Type) *Import
	// TransferInto carries a reference found at an outer level into this
	// one, e.g. by capturing the outer instance.
	TransferInto(ctx *Context, imp *Import) *Import
	OnPop(ctx *Context)
}

// ClassScope resolves names against the members of a class.
type ClassScope struct {
	Class *symbols.Symbol
}

func (s *ClassScope) ResolveField(ctx *Context, name string) *Import {
	set := ctx.Linker.DeclaredMembers(s.Class, name, symbols.FieldSymbol)
	if set.Empty() {
		return nil
	}
	f := set.Members[0]
	return &Import{Owner: s.Class, Name: name, Symbol: f, Static: f.IsStatic()}
}

func (s *ClassScope) ResolveMethod(ctx *Context, name string, args []typesystem.Type) *Import {
	set := ctx.Linker.DeclaredMembers(s.Class, name, symbols.MethodSymbol)
	if set.Empty() {
		return nil
	}
	imp := &Import{Owner: s.Class, Name: name, Methods: set}
	if call := ctx.ResolveCall(set, selfType(s.Class), args); call != nil {
		imp.Call = call
		imp.Symbol = call.Method
		imp.Static = call.Method.IsStatic()
	}
	return imp
}

// TransferInto captures the outer instance. A static class has none, so an
// instance member of an outer class is out of reach.
func (s *ClassScope) TransferInto(ctx *Context, imp *Import) *Import {
	if s.Class.IsStatic() || s.Class.IsInterface() {
		kind := "field"
		if imp.Symbol != nil && imp.Symbol.Kind == symbols.MethodSymbol {
			kind = "method"
		}
		ctx.Report(diagnostics.ErrA002, kind, imp.Owner.Name, imp.Name)
		imp.Denied = true
		return imp
	}
	imp.Through = append(imp.Through, s.Class.Name)
	return imp
}

func (s *ClassScope) OnPop(*Context) {}

// LambdaScope is the nesting level of a lambda body. It declares no
// members; references to instance members of enclosing classes capture
// this.
type LambdaScope struct {
	Name         string
	CapturesThis bool
	Popped       bool
}

func (s *LambdaScope) ResolveField(*Context, string) *Import { return nil }

func (s *LambdaScope) ResolveMethod(*Context, string, []typesystem.Type) *Import { return nil }

func (s *LambdaScope) TransferInto(_ *Context, imp *Import) *Import {
	s.CapturesThis = true
	imp.Through = append(imp.Through, s.Name)
	return imp
}

func (s *LambdaScope) OnPop(*Context) {
	s.Popped = true
	debugf("lambda %s popped, captures this: %v", s.Name, s.CapturesThis)
}

// Enter pushes a nesting level. Past Options.MaxNestDepth levels it reports
// S009 and refuses; the caller must then skip the nested body.
func (c *Context) Enter(e Enclosing) bool {
	if len(c.enclosing) >= c.Options.MaxNestDepth {
		c.Report(diagnostics.ErrS009)
		return false
	}
	c.enclosing = append(c.enclosing, e)
	return true
}

// Leave pops the innermost nesting level.
func (c *Context) Leave() {
	n := len(c.enclosing)
	if n == 0 {
		return
	}
	e := c.enclosing[n-1]
	c.enclosing = c.enclosing[:n-1]
	e.OnPop(c)
}

// Enclosing returns the nesting chain, outermost first.
func (c *Context) Enclosing() []Enclosing { return c.enclosing }

// TryImportField resolves an unqualified field name: dynamic hooks first,
// then the enclosing chain innermost to outermost, then static imports.
func (c *Context) TryImportField(name string) *Import {
	if c.FieldImports != nil {
		if imp := c.FieldImports(name); imp != nil {
			return imp
		}
	}
	for i := len(c.enclosing) - 1; i >= 0; i-- {
		if imp := c.enclosing[i].ResolveField(c, name); imp != nil {
			return c.transfer(imp, i)
		}
	}
	if c.Unit == nil {
		return nil
	}
	for _, owner := range c.Unit.Imports.StaticOwners(name) {
		sym := c.Linker.ResolveQualifiedName(owner)
		if sym == nil {
			continue
		}
		for _, f := range c.Linker.DeclaredMembers(sym, name, symbols.FieldSymbol).Members {
			if f.IsStatic() {
				return &Import{Owner: sym, Name: name, Symbol: f, Static: true}
			}
		}
	}
	return nil
}

// TryImportMethod resolves an unqualified method call the same way. The
// first level declaring the name wins even if no overload applies.
func (c *Context) TryImportMethod(name string, args []typesystem.Type) *Import {
	if c.MethodImports != nil {
		if imp := c.MethodImports(name, args); imp != nil {
			return imp
		}
	}
	for i := len(c.enclosing) - 1; i >= 0; i-- {
		if imp := c.enclosing[i].ResolveMethod(c, name, args); imp != nil {
			return c.transfer(imp, i)
		}
	}
	if c.Unit == nil {
		return nil
	}
	for _, owner := range c.Unit.Imports.StaticOwners(name) {
		sym := c.Linker.ResolveQualifiedName(owner)
		if sym == nil {
			continue
		}
		set := c.Linker.DeclaredMembers(sym, name, symbols.MethodSymbol)
		statics := &symbols.OverloadSet{Owner: set.Owner, Name: name, Kind: symbols.MethodSymbol}
		for _, m := range set.Members {
			if m.IsStatic() {
				statics.Members = append(statics.Members, m)
			}
		}
		if statics.Empty() {
			continue
		}
		imp := &Import{Owner: sym, Name: name, Methods: statics, Static: true}
		if call := c.ResolveCall(statics, nil, args); call != nil {
			imp.Call = call
			imp.Symbol = call.Method
		}
		return imp
	}
	return nil
}

// transfer carries a hit at level i through every inner level, unless it
// is static. An instance member is out of reach of a static body.
func (c *Context) transfer(imp *Import, i int) *Import {
	for j := i + 1; j < len(c.enclosing); j++ {
		if imp.Static || imp.Denied {
			break
		}
		imp = c.enclosing[j].TransferInto(c, imp)
	}
	if imp.Symbol != nil && !imp.Static && !imp.Denied && c.InStatic {
		c.Report(diagnostics.ErrA002, imp.Symbol.Kind.String(), imp.Owner.Name, imp.Name)
		imp.Denied = true
	}
	return imp
}
