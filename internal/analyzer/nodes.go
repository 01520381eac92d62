package analyzer

import (
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
)

// Expr is an expression node supplied by a body pass. Resolve calls back
// into the context for every name, cast and access check it needs.
type Expr interface {
	Span() token.Span
	Resolve(c *Context) Resolved
}

// Call is an expression invoking a method.
type Call interface {
	Expr
	// ArgCount narrows did-you-mean candidates when the method is missing.
	ArgCount() int
}

// ResolveExpr resolves e at its own position and restores the current
// position afterwards.
func (c *Context) ResolveExpr(e Expr) Resolved {
	prev := c.span
	if span := e.Span(); span.Line > 0 {
		c.SetPosition(span)
	}
	defer func() { c.span = prev }()
	return e.Resolve(c)
}

// MethodsFor is MethodListOrReport for a call node.
func (c *Context) MethodsFor(class *symbols.Symbol, name string, call Call) *symbols.OverloadSet {
	return c.MethodListOrReport(class, name, call.ArgCount())
}
