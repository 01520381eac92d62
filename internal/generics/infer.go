package generics

import (
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// Erase maps a type to its runtime erasure: type variables become their
// first bound, generic references become raw.
func (b *Binder) Erase(t typesystem.Type) typesystem.Type {
	return b.erase(t, 0)
}

func (b *Binder) erase(t typesystem.Type, depth int) typesystem.Type {
	if depth > 16 {
		return typesystem.Object
	}
	switch typ := t.(type) {
	case typesystem.Param:
		var bound typesystem.Type = typesystem.Object
		if b.Scope != nil {
			if bounds, ok := b.Scope(typ.Name); ok && len(bounds) > 0 {
				bound = bounds[0]
			}
		}
		e := b.erase(bound, depth+1)
		return e.WithDim(e.ArrayDim() + typ.Dim)
	case typesystem.Generic:
		return typesystem.Raw(typ)
	case typesystem.Wildcard:
		if typ.Kind == typesystem.Extends {
			return b.erase(typ.Bound, depth+1)
		}
		return typesystem.Object
	case *typesystem.Inferred:
		return typesystem.Object
	}
	return t
}

// InferArgs returns the type arguments an instance type supplies to owner,
// one of its ancestors, with wildcards captured to their bounds. It returns
// nil for a raw path.
func (b *Binder) InferArgs(inst typesystem.Type, owner string) []typesystem.Type {
	if inst == nil {
		return nil
	}
	args, ok := b.Linker.TypeArgumentsFor(inst, owner)
	if !ok || len(args) == 0 {
		return nil
	}
	var params []symbols.TypeParam
	if sym := b.Linker.ResolveQualifiedName(owner); sym != nil {
		params = sym.TypeParams()
	}
	out := make([]typesystem.Type, len(args))
	for i, a := range args {
		out[i] = a
		w, ok := a.(typesystem.Wildcard)
		if !ok {
			continue
		}
		switch {
		case w.Kind == typesystem.Extends:
			out[i] = w.Bound
		case i < len(params):
			out[i] = b.Erase(params[i].FirstBound())
		default:
			out[i] = typesystem.Object
		}
	}
	return out
}

// ownerSubst maps the owner's type parameters for a member accessed through
// inst. A raw or missing instance maps them to their erasure.
func (b *Binder) ownerSubst(owner string, inst typesystem.Type) typesystem.Subst {
	sym := b.Linker.ResolveQualifiedName(owner)
	if sym == nil {
		return nil
	}
	params := sym.TypeParams()
	if len(params) == 0 {
		return nil
	}
	names := symbols.ParamNames(params)
	if args := b.InferArgs(inst, owner); len(args) == len(params) {
		return typesystem.NewSubst(names, args)
	}
	erased := make([]typesystem.Type, len(params))
	for i, p := range params {
		erased[i] = b.Erase(p.FirstBound())
	}
	return typesystem.NewSubst(names, erased)
}

// MemberType returns the type of a field seen through inst.
func (b *Binder) MemberType(field *symbols.Symbol, inst typesystem.Type) typesystem.Type {
	t := field.Signature().Type
	if t == nil {
		return nil
	}
	if field.IsStatic() {
		return t
	}
	return t.Apply(b.ownerSubst(field.Owner, inst))
}

// Instantiate substitutes a method's parameter and return types for a call
// through inst with the given argument types. Method type variables are
// inferred from the arguments; candidates for the same variable merge into
// their common ancestor, and variables with no candidate are erased.
func (b *Binder) Instantiate(method *symbols.Symbol, inst typesystem.Type, argTypes []typesystem.Type) ([]typesystem.Type, typesystem.Type) {
	sig := method.Signature()
	subst := typesystem.Subst{}
	if !method.IsStatic() {
		for k, v := range b.ownerSubst(method.Owner, inst) {
			subst[k] = v
		}
	}

	if len(sig.TypeParams) > 0 {
		in := newInference(b, symbols.ParamNames(sig.TypeParams))
		params := sig.Params
		for i, a := range argTypes {
			if a == nil {
				continue
			}
			p, ok := paramFor(method, params, i, a)
			if !ok {
				continue
			}
			in.unify(p.Apply(subst), a, 0)
		}
		for _, tp := range sig.TypeParams {
			if t, ok := in.bound[tp.Name]; ok {
				subst[tp.Name] = t
				continue
			}
			subst[tp.Name] = b.Erase(tp.FirstBound().Apply(subst))
		}
	}

	out := make([]typesystem.Type, len(sig.Params))
	for i, p := range sig.Params {
		out[i] = p.Apply(subst)
	}
	var ret typesystem.Type
	if sig.Return != nil {
		ret = sig.Return.Apply(subst)
	}
	return out, ret
}

// paramFor picks the declared parameter that receives argument i, spreading
// a trailing varargs array over the extra arguments.
func paramFor(method *symbols.Symbol, params []typesystem.Type, i int, arg typesystem.Type) (typesystem.Type, bool) {
	n := len(params)
	if n == 0 {
		return nil, false
	}
	if !method.Modifiers.Has(symbols.Varargs) || i < n-1 {
		if i >= n {
			return nil, false
		}
		return params[i], true
	}
	last := params[n-1]
	if i == n-1 && arg.ArrayDim() == last.ArrayDim() {
		return last, true
	}
	return typesystem.ElementType(last), true
}

// FinalizeDiamond fills in the `<>` arguments of g from the type it is
// assigned to. Arguments that cannot be inferred become their bound.
// Finalizing twice returns the first result.
func (b *Binder) FinalizeDiamond(g typesystem.Generic, target typesystem.Type) typesystem.Generic {
	inner := g.Innermost()
	if !typesystem.IsDiamond(inner.Args) {
		return g
	}
	placeholder := inner.Args[0].(*typesystem.Inferred)
	cls := b.Linker.ResolveQualifiedName(typesystem.ClassName(g))
	if cls == nil {
		return g
	}
	params := cls.TypeParams()
	if len(params) == 0 {
		return g
	}

	names := symbols.ParamNames(params)
	self := make([]typesystem.Type, len(params))
	for i, n := range names {
		self[i] = typesystem.Param{Name: n}
	}

	in := newInference(b, names)
	if tn := typesystem.ClassName(target); tn != "" {
		selfType := typesystem.Generic{Name: typesystem.ClassName(g), Args: self}
		want, okWant := b.Linker.TypeArgumentsFor(selfType, tn)
		var have []typesystem.Type
		if tg, ok := target.(typesystem.Generic); ok {
			have = tg.Innermost().ArgList()
		}
		if okWant && len(want) == len(have) {
			for i := range want {
				in.unify(want[i], have[i], 0)
			}
		}
	}

	args := make([]typesystem.Type, len(params))
	for i, p := range params {
		if t, ok := in.bound[p.Name]; ok {
			args[i] = t
		} else {
			args[i] = b.Erase(p.FirstBound())
		}
	}
	placeholder.Resolve(args)
	return g
}

// inference collects candidate bindings for a set of type variables.
type inference struct {
	b     *Binder
	vars  map[string]bool
	bound map[string]typesystem.Type
}

func newInference(b *Binder, names []string) *inference {
	in := &inference{b: b, vars: make(map[string]bool), bound: make(map[string]typesystem.Type)}
	for _, n := range names {
		in.vars[n] = true
	}
	return in
}

func (in *inference) unify(p, a typesystem.Type, depth int) {
	if depth > 16 || p == nil || a == nil {
		return
	}
	switch pt := p.(type) {
	case typesystem.Param:
		if !in.vars[pt.Name] {
			return
		}
		if w, ok := a.(typesystem.Wildcard); ok {
			if w.Bound == nil {
				return
			}
			a = w.Bound
		}
		if pt.Dim > 0 {
			if a.ArrayDim() < pt.Dim {
				return
			}
			a = a.WithDim(a.ArrayDim() - pt.Dim)
		}
		if prim, ok := a.(typesystem.Prim); ok && prim.Dim == 0 {
			if prim.Tag == typesystem.Void {
				return
			}
			a = typesystem.Class{Name: prim.Tag.Wrapper()}
		}
		if prev, ok := in.bound[pt.Name]; ok {
			in.bound[pt.Name] = in.b.Caster.CommonAncestor(prev, a)
		} else {
			in.bound[pt.Name] = a
		}
	case typesystem.Wildcard:
		if pt.Bound != nil {
			in.unify(pt.Bound, a, depth+1)
		}
	case typesystem.Generic:
		pargs := pt.Innermost().ArgList()
		if pt.Dim > 0 {
			if a.ArrayDim() != pt.Dim {
				return
			}
			a = a.WithDim(0)
			pt.Dim = 0
		}
		aargs, ok := in.b.Linker.TypeArgumentsFor(a, typesystem.ClassName(pt))
		if !ok || len(aargs) != len(pargs) {
			return
		}
		for i := range pargs {
			in.unify(pargs[i], aargs[i], depth+1)
		}
	}
}
