package analyzer

import (
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
)

// NewWorker returns a factory of root contexts for the units of ctx. Each
// stage builds fresh workers so linker caches never outlive the stage that
// filled them.
func NewWorker(ctx *pipeline.PipelineContext) func() *Context {
	return func() *Context {
		c := NewContext(ctx.Table, ctx.Options, ctx.Diagnostics)
		c.Registry = ctx.Registry
		return c
	}
}

// forEachClass runs fn for every class of every live unit, on the worker
// pool, and records a run-level fault.
func forEachClass(ctx *pipeline.PipelineContext, fn func(c *Context, cls *modules.Class)) *pipeline.PipelineContext {
	err := pipeline.ForEachUnit(ctx, NewWorker(ctx), func(c *Context, u *modules.Unit) {
		c.BeginUnit(u)
		for _, cls := range u.Classes {
			c.BeginClass(cls)
			fn(c, cls)
		}
		c.Reset()
	})
	if err != nil {
		ctx.Fault = err
	}
	return ctx
}

// NameResolution binds the imports of each unit and qualifies the names of
// supertypes and type parameter bounds. Arity and bounds are left for
// TypeResolution.
type NameResolution struct{}

func (NameResolution) Stage() pipeline.Stage { return pipeline.StageNames }

func (p NameResolution) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	err := pipeline.ForEachUnit(ctx, NewWorker(ctx), func(c *Context, u *modules.Unit) {
		c.BeginUnit(u)
		p.imports(c, u)
		for _, cls := range u.Classes {
			c.BeginClass(cls)
			p.class(c, cls)
		}
		c.Reset()
	})
	if err != nil {
		ctx.Fault = err
	}
	return ctx
}

func (NameResolution) imports(c *Context, u *modules.Unit) {
	if u.Decl == nil {
		return
	}
	for _, decl := range u.Decl.Imports {
		c.SetPosition(token.Span{File: u.Path})
		imp, err := symbols.ParseImport(decl)
		if err != nil {
			c.Report(diagnostics.ErrP003, err)
			continue
		}
		if err := u.Imports.Add(imp); err != nil {
			c.Report(diagnostics.ErrS006, imp.Name, err)
			continue
		}
		if !c.Linker.CheckImport(imp) {
			c.Report(diagnostics.ErrS001, imp.Name, "")
		}
	}
}

func (NameResolution) class(c *Context, cls *modules.Class) {
	sym := cls.Symbol
	sig := sym.Signature()

	sig.TypeParams = qualifyParams(c, sig.TypeParams)
	super, _ := sym.Supers()
	var ifaces []string
	supers := make([]typesystem.Type, len(sig.SuperTypes))
	for i, st := range sig.SuperTypes {
		st = c.Binder.Qualify(st)
		supers[i] = st
		name := typesystem.ClassName(st)
		if i == 0 && super != "" {
			super = name
			continue
		}
		ifaces = append(ifaces, name)
	}
	sig.SuperTypes = supers
	sym.SetSupers(super, ifaces)
	sym.SetSignature(sig, false)
	debugf("names %s: super %s, interfaces %v", sym.Name, super, ifaces)
}

func qualifyParams(c *Context, params []symbols.TypeParam) []symbols.TypeParam {
	if len(params) == 0 {
		return params
	}
	out := make([]symbols.TypeParam, len(params))
	for i, p := range params {
		out[i].Name = p.Name
		for _, b := range p.Bounds {
			out[i].Bounds = append(out[i].Bounds, c.Binder.Qualify(b))
		}
	}
	return out
}
