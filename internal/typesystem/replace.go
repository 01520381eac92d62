package typesystem

// Subst maps type parameter names to replacements.
type Subst map[string]Type

// NewSubst pairs parameter names with arguments; extra names stay unmapped.
func NewSubst(names []string, args []Type) Subst {
	s := make(Subst, len(names))
	for i, n := range names {
		if i < len(args) {
			s[n] = args[i]
		}
	}
	return s
}

func applyGeneric(t Generic, s Subst) Type {
	if len(s) == 0 {
		return t
	}
	out := Generic{Name: t.Name, Dim: t.Dim}
	if args := t.ArgList(); args != nil && !IsDiamond(args) {
		out.Args = make([]Type, len(args))
		for i, a := range args {
			out.Args[i] = a.Apply(s)
		}
	} else {
		out.Args = args
	}
	if t.Sub != nil {
		sub := applyGeneric(*t.Sub, s).(Generic)
		out.Sub = &sub
	}
	return out
}

// ReplaceClass replaces raw class references named name with the replacement
// type. It is used to turn names that match a type parameter in scope into
// Param references after parsing.
func ReplaceClass(t Type, name string, replacement Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case Class:
		if typ.Name == name {
			return replacement.WithDim(replacement.ArrayDim() + typ.Dim)
		}
		return typ
	case Generic:
		out := Generic{Name: typ.Name, Dim: typ.Dim}
		if args := typ.ArgList(); args != nil && !IsDiamond(args) {
			out.Args = make([]Type, len(args))
			for i, a := range args {
				out.Args[i] = ReplaceClass(a, name, replacement)
			}
		} else {
			out.Args = args
		}
		if typ.Sub != nil {
			sub := ReplaceClass(*typ.Sub, name, replacement).(Generic)
			out.Sub = &sub
		}
		return out
	case Wildcard:
		if typ.Bound != nil {
			typ.Bound = ReplaceClass(typ.Bound, name, replacement)
		}
		return typ
	default:
		return t
	}
}

// Equal compares two type references structurally. Unresolved diamond
// placeholders are equal to each other; resolved ones compare by arguments.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Prim:
		y, ok := b.(Prim)
		return ok && x == y
	case Class:
		y, ok := b.(Class)
		return ok && x == y
	case Param:
		y, ok := b.(Param)
		return ok && x == y
	case Wildcard:
		y, ok := b.(Wildcard)
		return ok && x.Kind == y.Kind && Equal(x.Bound, y.Bound)
	case Generic:
		y, ok := b.(Generic)
		if !ok || x.Name != y.Name || x.Dim != y.Dim || !equalList(x.ArgList(), y.ArgList()) {
			return false
		}
		if (x.Sub == nil) != (y.Sub == nil) {
			return false
		}
		return x.Sub == nil || Equal(*x.Sub, *y.Sub)
	case *Inferred:
		y, ok := b.(*Inferred)
		return ok && x.resolved == y.resolved && equalList(x.args, y.args)
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
