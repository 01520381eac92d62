package modules

import (
	"fmt"
	"strings"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
	"github.com/funvibe/classcore/internal/utils"
)

var flagNames = map[string]symbols.TypeFlags{
	"no_array":          symbols.NoArray,
	"any_arity":         symbols.AnyArity,
	"no_raw":            symbols.NoRaw,
	"primitive_generic": symbols.PrimitiveGeneric,
}

// declarer builds class symbols from declarations. In qualified mode (library
// files) every type is already a qualified name and signatures are final;
// otherwise they hold syntax until the analysis stages resolve them.
type declarer struct {
	origin    string
	qualified bool
	errs      []*diagnostics.DiagnosticError
}

// Declare builds the symbols of the classes of one unit or library file.
// Class names are qualified with pkg unless they already contain a package.
// Outer classes come before their inner classes.
func Declare(pkg string, decls []*ast.ClassDecl, origin string, qualified bool) ([]*Class, []*diagnostics.DiagnosticError) {
	d := &declarer{origin: origin, qualified: qualified}
	var out []*Class
	for _, decl := range decls {
		name := strings.ReplaceAll(decl.Name, ".", "/")
		if !strings.Contains(name, "/") {
			name = utils.Qualify(pkg, name)
		}
		out = d.class(name, decl, nil, out)
	}
	return out, d.errs
}

func (d *declarer) errorf(span token.Span, format string, args ...any) {
	d.errs = append(d.errs, diagnostics.NewError(diagnostics.ErrP003, span, fmt.Sprintf(format, args...)))
}

func (d *declarer) modifiers(names []string, span token.Span, what string) symbols.Modifier {
	var mods symbols.Modifier
	for _, n := range names {
		m, ok := symbols.ParseModifier(n)
		if !ok {
			d.errorf(span, "unknown modifier %q on %s", n, what)
			continue
		}
		mods |= m
	}
	access := 0
	for _, m := range []symbols.Modifier{symbols.Public, symbols.Protected, symbols.Private} {
		if mods.Has(m) {
			access++
		}
	}
	if access > 1 {
		d.errorf(span, "conflicting access modifiers on %s", what)
	}
	return mods
}

func (d *declarer) parse(src string, span token.Span, scope []string) typesystem.Type {
	t, err := typesystem.ParseIn(src, scope...)
	if err != nil {
		d.errorf(span, "%v", err)
		return typesystem.Object
	}
	return t
}

func (d *declarer) typeParams(decls []ast.TypeParamDecl, span token.Span, scope []string) []symbols.TypeParam {
	if len(decls) == 0 {
		return nil
	}
	names := append([]string(nil), scope...)
	for _, p := range decls {
		names = append(names, p.Name)
	}
	out := make([]symbols.TypeParam, len(decls))
	for i, p := range decls {
		out[i].Name = p.Name
		for _, b := range p.Bounds {
			out[i].Bounds = append(out[i].Bounds, d.parse(b, span, names))
		}
	}
	return out
}

func (d *declarer) class(name string, decl *ast.ClassDecl, outer *Class, out []*Class) []*Class {
	mods := d.modifiers(decl.Modifiers, decl.Span, name)
	if outer != nil && outer.Symbol.IsInterface() {
		mods |= symbols.Public | symbols.Static
	}
	if mods.Has(symbols.Interface) {
		mods |= symbols.Abstract
		if outer != nil {
			mods |= symbols.Static
		}
	}

	sym := symbols.NewClass(name, mods, "")
	sym.Span = decl.Span
	sym.Origin = d.origin
	sym.Annotations = decl.Annotations
	for _, f := range decl.Flags {
		flag, ok := flagNames[f]
		if !ok {
			d.errorf(decl.Span, "unknown type flag %q on %s", f, name)
			continue
		}
		sym.Flags |= flag
	}

	c := &Class{Symbol: sym, Decl: decl, Outer: outer}
	var scope []string
	if outer != nil && !mods.Has(symbols.Static) {
		scope = outer.TypeParamNames()
	}

	var sig symbols.Signature
	sig.TypeParams = d.typeParams(decl.TypeParams, decl.Span, scope)
	scope = append(scope, symbols.ParamNames(sig.TypeParams)...)

	super := ""
	switch {
	case decl.Extends != "":
		st := d.parse(decl.Extends, decl.Span, scope)
		sig.SuperTypes = append(sig.SuperTypes, st)
		super = typesystem.ClassName(st)
	case mods.Has(symbols.Interface) || name == config.ObjectClass:
	case mods.Has(symbols.Enum):
		st := typesystem.Generic{Name: config.EnumClass, Args: []typesystem.Type{typesystem.Class{Name: name}}}
		sig.SuperTypes = append(sig.SuperTypes, st)
		super = config.EnumClass
	default:
		sig.SuperTypes = append(sig.SuperTypes, typesystem.Object)
		super = config.ObjectClass
	}
	var ifaces []string
	for _, src := range decl.Implements {
		it := d.parse(src, decl.Span, scope)
		sig.SuperTypes = append(sig.SuperTypes, it)
		ifaces = append(ifaces, typesystem.ClassName(it))
	}
	sym.SetSupers(super, ifaces)
	sym.SetSignature(sig, d.qualified)

	for _, fd := range decl.Fields {
		c.Fields = append(c.Fields, d.field(c, fd, scope))
	}
	hasCtor := false
	for _, md := range decl.Methods {
		if md.Name == config.ConstructorName {
			hasCtor = true
		}
		c.Methods = append(c.Methods, d.method(c, md, scope))
	}
	if !hasCtor && !mods.Has(symbols.Interface) {
		ctor := symbols.NewMethod(name, config.ConstructorName, symbols.Public|symbols.Synthetic, typesystem.Prim{Tag: typesystem.Void})
		ctor.SetSignature(symbols.Signature{Return: typesystem.Prim{Tag: typesystem.Void}}, true)
		ctor.Origin = d.origin
		ctor.Span = decl.Span
		sym.AddMember(ctor)
		c.Methods = append(c.Methods, &Method{Symbol: ctor})
	}

	out = append(out, c)
	for _, in := range decl.Inner {
		innerName := name + "$" + in.Name
		before := len(out)
		out = d.class(innerName, in, c, out)
		sym.AddInner(out[before].Symbol)
	}
	return out
}

func (d *declarer) field(c *Class, decl *ast.FieldDecl, scope []string) *Field {
	mods := d.modifiers(decl.Modifiers, decl.Span, c.Symbol.Name+"."+decl.Name)
	if c.Symbol.IsInterface() {
		mods |= symbols.Public | symbols.Static | symbols.Final
	}
	var t typesystem.Type = typesystem.Object
	if decl.Type == "" {
		d.errorf(decl.Span, "field %s has no type", decl.Name)
	} else {
		t = d.parse(decl.Type, decl.Span, scope)
	}
	f := symbols.NewField(c.Symbol.Name, decl.Name, mods, nil)
	f.SetSignature(symbols.Signature{Type: t}, d.qualified)
	f.Span = decl.Span
	f.Origin = d.origin
	f.Annotations = decl.Annotations
	if decl.Value != nil && mods.Has(symbols.Final) {
		f.ConstantExpr = decl.Value
	}
	c.Symbol.AddMember(f)
	return &Field{Symbol: f, Decl: decl}
}

func (d *declarer) method(c *Class, decl *ast.MethodDecl, scope []string) *Method {
	what := c.Symbol.Name + "." + decl.Name
	mods := d.modifiers(decl.Modifiers, decl.Span, what)
	switch {
	case decl.Name == config.StaticInitializerName:
		mods |= symbols.Static
	case c.Symbol.IsInterface():
		if mods&symbols.AccessMask == 0 {
			mods |= symbols.Public
		}
		if !mods.Has(symbols.Static|symbols.Default|symbols.Private) && len(decl.Body) == 0 {
			mods |= symbols.Abstract
		}
	}
	if decl.Name == config.ConstructorName && mods.Has(symbols.Static|symbols.Abstract) {
		d.errorf(decl.Span, "constructor %s cannot be static or abstract", what)
	}

	var sig symbols.Signature
	sig.TypeParams = d.typeParams(decl.TypeParams, decl.Span, scope)
	if !mods.Has(symbols.Static) {
		scope = append(scope, symbols.ParamNames(sig.TypeParams)...)
	} else {
		scope = symbols.ParamNames(sig.TypeParams)
	}
	for _, p := range decl.Params {
		sig.Params = append(sig.Params, d.parse(p, decl.Span, scope))
	}
	if decl.Returns == "" || decl.Name == config.ConstructorName || decl.Name == config.StaticInitializerName {
		sig.Return = typesystem.Prim{Tag: typesystem.Void}
	} else {
		sig.Return = d.parse(decl.Returns, decl.Span, scope)
	}
	for _, th := range decl.Throws {
		sig.Throws = append(sig.Throws, d.parse(th, decl.Span, scope))
	}
	if mods.Has(symbols.Varargs) && (len(sig.Params) == 0 || sig.Params[len(sig.Params)-1].ArrayDim() == 0) {
		d.errorf(decl.Span, "varargs method %s must end with an array parameter", what)
	}

	m := symbols.NewMethod(c.Symbol.Name, decl.Name, mods, nil)
	m.SetSignature(sig, d.qualified)
	m.Span = decl.Span
	m.Origin = d.origin
	m.Annotations = decl.Annotations
	c.Symbol.AddMember(m)
	return &Method{Symbol: m, Decl: decl}
}
