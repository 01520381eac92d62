package analyzer

import (
	"math"
	"strings"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// ConstantValue folds the initializer of a final field and returns its
// value converted to the field type. The initializer is evaluated in the
// context of the declaring class, which may belong to another unit.
// Reference cycles and anything not computable at compile time yield no
// constant. Diagnostics of the initializer belong to its own declaration
// and are not reported here.
func (c *Context) ConstantValue(field *symbols.Symbol) (any, bool) {
	if v, ok := field.Constant(); ok {
		return v, v != nil
	}
	expr, ok := field.ConstantExpr.(*ast.Expr)
	if !ok || !field.IsFinal() {
		return nil, false
	}
	if c.stack.folding[field] {
		debugf("constant cycle through %s", field.Display())
		return nil, false
	}
	c.stack.folding[field] = true
	defer delete(c.stack.folding, field)

	var v any
	var cycle bool
	c.stack.Nested(func(ctx *Context) {
		if u, cls := c.Registry.Lookup(field.Owner); u != nil && cls != nil {
			ctx.BeginUnit(u)
			ctx.BeginClass(cls)
			ctx.BeginMember(field)
		}
		ctx.Speculate(func() {
			op := ctx.fold(expr)
			cycle = op.cycle
			if op.Constant {
				v = Convert(op.Value, op.Type, field.Signature().Type)
			}
		})
	})
	if cycle {
		return nil, false
	}
	// nil records a definite non-constant
	field.SetConstant(v)
	return v, v != nil
}

// Evaluate types an expression of a body in the current context, folding it
// when it is constant. Unresolved references are reported.
func (c *Context) Evaluate(e *ast.Expr) Operand {
	return c.fold(e).Operand
}

type folded struct {
	Operand
	// cycle marks a result that depended on a field still being folded.
	cycle bool
}

func (c *Context) fold(e *ast.Expr) folded {
	if e == nil {
		return folded{}
	}
	if e.Span.Line > 0 {
		c.SetPosition(e.Span)
	}
	switch {
	case e.Op != "":
		ops := make([]Operand, len(e.Args))
		cycle := false
		for i, a := range e.Args {
			f := c.fold(a)
			ops[i] = f.Operand
			cycle = cycle || f.cycle
		}
		r, ok := c.Operators.Resolve(c, e.Op, ops)
		if !ok {
			return folded{cycle: cycle}
		}
		return folded{Operand: Operand{Type: r.Type, Value: r.Value, Constant: r.Constant}, cycle: cycle}
	case e.Ref != "":
		return c.foldRef(e.Ref)
	default:
		return literal(e.Lit)
	}
}

func (c *Context) foldRef(ref string) folded {
	var field *symbols.Symbol
	if i := strings.LastIndexByte(ref, '.'); i > 0 {
		var from *symbols.Symbol
		var imports *symbols.ImportList
		if c.Class != nil {
			from = c.Class.Symbol
		}
		if c.Unit != nil {
			imports = c.Unit.Imports
		}
		name, _ := c.Linker.ResolveClassName(ref[:i], imports, from)
		if name == "" {
			return folded{}
		}
		owner := c.Linker.ResolveQualifiedName(name)
		if owner == nil {
			return folded{}
		}
		field = c.FieldListOrReport(owner, ref[i+1:])
	} else if imp := c.TryImportField(ref); imp != nil {
		field = imp.Symbol
	}
	if field == nil || field.Kind != symbols.FieldSymbol {
		return folded{}
	}
	t := field.Signature().Type
	if c.stack.folding[field] {
		return folded{Operand: Operand{Type: t}, cycle: true}
	}
	v, ok := c.ConstantValue(field)
	return folded{Operand: Operand{Type: t, Value: v, Constant: ok}}
}

// literal types a decoded literal: integers are int when they fit and long
// otherwise.
func literal(v any) folded {
	switch x := v.(type) {
	case int:
		return literal(int64(x))
	case int64:
		t := tInt
		if x != int64(int32(x)) {
			t = typesystem.Prim{Tag: typesystem.Long}
		}
		return folded{Operand: Operand{Type: t, Value: x, Constant: true}}
	case uint64:
		if x > math.MaxInt64 {
			return folded{}
		}
		return literal(int64(x))
	case float64:
		return folded{Operand: Operand{Type: typesystem.Prim{Tag: typesystem.Double}, Value: x, Constant: true}}
	case bool:
		return folded{Operand: Operand{Type: tBoolean, Value: x, Constant: true}}
	case string:
		return folded{Operand: Operand{Type: tString, Value: x, Constant: true}}
	}
	return folded{}
}

// Convert converts a constant of type from to type to under assignment
// rules: widening always, and narrowing of an int constant to byte, short
// or char when the value fits. It returns nil when the value cannot be
// assigned.
func Convert(v any, from, to typesystem.Type) any {
	if v == nil || to == nil {
		return nil
	}
	if c, ok := to.(typesystem.Class); ok && c.Dim == 0 {
		if c.Name == config.StringClass {
			if s, ok := v.(string); ok {
				return s
			}
			return nil
		}
		if tag, ok := typesystem.Unwrap(c.Name); ok {
			// boxing keeps the primitive value
			return Convert(v, from, typesystem.Prim{Tag: tag})
		}
		return nil
	}
	target, ok := to.(typesystem.Prim)
	if !ok || target.Dim != 0 {
		return nil
	}
	src, ok := primOf(from)
	if !ok {
		return nil
	}
	switch target.Tag {
	case typesystem.Boolean:
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	case typesystem.Float, typesystem.Double:
		if !src.Numeric() {
			return nil
		}
		f := asFloat(v)
		if target.Tag == typesystem.Float {
			f = float64(float32(f))
		}
		return f
	}
	if !integral(src) || !integral(target.Tag) {
		return nil
	}
	n := asInt(v)
	if widens(src, target.Tag) {
		return n
	}
	if src == typesystem.Int || src == typesystem.Short || src == typesystem.Char || src == typesystem.Byte {
		if fits(n, target.Tag) {
			return n
		}
	}
	return nil
}

func widens(from, to typesystem.PrimTag) bool {
	if from == to {
		return true
	}
	switch to {
	case typesystem.Short:
		return from == typesystem.Byte
	case typesystem.Int:
		return from == typesystem.Byte || from == typesystem.Short || from == typesystem.Char
	case typesystem.Long:
		return from != typesystem.Long && integral(from)
	}
	return false
}

func fits(n int64, tag typesystem.PrimTag) bool {
	switch tag {
	case typesystem.Byte:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case typesystem.Short:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case typesystem.Char:
		return n >= 0 && n <= math.MaxUint16
	case typesystem.Int:
		return n >= math.MinInt32 && n <= math.MaxInt32
	}
	return true
}
