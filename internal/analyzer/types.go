package analyzer

import (
	"errors"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// TypeResolution checks the inheritance graph and turns every declared
// signature into resolved type references.
type TypeResolution struct{}

func (TypeResolution) Stage() pipeline.Stage { return pipeline.StageTypes }

func (p TypeResolution) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return forEachClass(ctx, func(c *Context, cls *modules.Class) {
		p.supertypes(c, cls)
		p.signature(c, cls)
		for _, f := range cls.Fields {
			p.field(c, f.Symbol)
		}
		for _, m := range cls.Methods {
			p.method(c, m.Symbol)
		}
	})
}

func (TypeResolution) supertypes(c *Context, cls *modules.Class) {
	sym := cls.Symbol
	if _, err := c.Linker.Hierarchy(sym); err != nil {
		var cycle *symbols.CycleError
		if errors.As(err, &cycle) {
			c.Report(diagnostics.ErrS013, sym.Name)
			return
		}
	}

	super, ifaces := sym.Supers()
	if super != "" {
		if s := c.Linker.ResolveQualifiedName(super); s != nil {
			c.CheckClassAccessible(s)
			switch {
			case sym.IsInterface() && !s.IsInterface() && super != config.ObjectClass:
				c.Report(diagnostics.ErrS014, super, sym.Name, "an interface can only extend interfaces")
			case !sym.IsInterface() && s.IsInterface():
				c.Report(diagnostics.ErrS014, super, sym.Name, "cannot extend an interface")
			case s.IsFinal():
				c.Report(diagnostics.ErrS014, super, sym.Name, "cannot inherit from final class")
			}
		}
	}
	for _, name := range ifaces {
		s := c.Linker.ResolveQualifiedName(name)
		if s == nil {
			continue
		}
		c.CheckClassAccessible(s)
		if !s.IsInterface() {
			c.Report(diagnostics.ErrS014, name, sym.Name, "not an interface")
		}
	}
}

// signature resolves the bounds first: supertype arguments are checked
// against them.
func (TypeResolution) signature(c *Context, cls *modules.Class) {
	sym := cls.Symbol
	sig := sym.Signature()
	sig.TypeParams = resolveParams(c, sig.TypeParams)
	sym.SetSignature(sig, false)

	supers := make([]typesystem.Type, len(sig.SuperTypes))
	for i, st := range sig.SuperTypes {
		supers[i] = c.ResolveType(st)
	}
	sig.SuperTypes = supers
	sym.SetSignature(sig, true)
}

func (TypeResolution) field(c *Context, f *symbols.Symbol) {
	c.BeginMember(f)
	defer c.EndMember()
	sig := f.Signature()
	sig.Type = c.ResolveType(sig.Type)
	f.SetSignature(sig, true)
}

func (TypeResolution) method(c *Context, m *symbols.Symbol) {
	c.BeginMember(m)
	defer c.EndMember()
	sig := m.Signature()
	sig.TypeParams = resolveParams(c, sig.TypeParams)
	c.methodParams = sig.TypeParams

	params := make([]typesystem.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = c.ResolveType(p)
	}
	sig.Params = params
	sig.Return = c.ResolveType(sig.Return)
	if len(sig.Throws) > 0 {
		throws := make([]typesystem.Type, len(sig.Throws))
		for i, t := range sig.Throws {
			throws[i] = c.ResolveType(t)
		}
		sig.Throws = throws
	}
	m.SetSignature(sig, true)
}

func resolveParams(c *Context, params []symbols.TypeParam) []symbols.TypeParam {
	if len(params) == 0 {
		return params
	}
	out := make([]symbols.TypeParam, len(params))
	for i, p := range params {
		out[i].Name = p.Name
		for _, b := range p.Bounds {
			out[i].Bounds = append(out[i].Bounds, c.ResolveType(b))
		}
	}
	return out
}
