package cast

import (
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/typesystem"
)

// CommonAncestor returns the nearest type both a and b convert to, as used
// for conditional expressions and inferred generic arguments.
func (c *Caster) CommonAncestor(a, b typesystem.Type) typesystem.Type {
	return c.commonAncestor(a, b, 0)
}

func (c *Caster) commonAncestor(a, b typesystem.Type, depth int) typesystem.Type {
	a, b = settle(a), settle(b)
	if depth > maxDepth {
		return typesystem.Object
	}
	if typesystem.Equal(a, b) {
		return a
	}
	if p, ok := a.(typesystem.Param); ok {
		a = c.bound(p)
	}
	if p, ok := b.(typesystem.Param); ok {
		b = c.bound(p)
	}

	pa, aPrim := a.(typesystem.Prim)
	pb, bPrim := b.(typesystem.Prim)
	aPrim = aPrim && pa.Dim == 0
	bPrim = bPrim && pb.Dim == 0
	switch {
	case aPrim && bPrim:
		if pa.Tag.Numeric() && pb.Tag.Numeric() {
			return typesystem.Class{Name: config.NumberClass}
		}
		return typesystem.Object
	case aPrim:
		a = typesystem.Class{Name: pa.Tag.Wrapper()}
	case bPrim:
		b = typesystem.Class{Name: pb.Tag.Wrapper()}
	}

	ad, bd := a.ArrayDim(), b.ArrayDim()
	if ad > 0 || bd > 0 {
		if ad != bd || ad == 0 || bd == 0 {
			if ad > 0 && bd > 0 {
				return typesystem.Class{Name: config.CloneableClass}
			}
			return typesystem.Object
		}
		ae, be := a.WithDim(0), b.WithDim(0)
		if typesystem.IsPrimitive(ae) || typesystem.IsPrimitive(be) {
			return typesystem.Class{Name: config.CloneableClass}
		}
		return c.commonAncestor(ae, be, depth+1).WithDim(ad)
	}

	an, bn := typesystem.ClassName(a), typesystem.ClassName(b)
	as, bs := c.Query.ResolveQualifiedName(an), c.Query.ResolveQualifiedName(bn)
	if as == nil || bs == nil {
		return typesystem.Object
	}
	ah, err1 := c.Query.Hierarchy(as)
	bh, err2 := c.Query.Hierarchy(bs)
	if err1 != nil || err2 != nil {
		return typesystem.Object
	}

	// superclass chain first, then interfaces in distance order
	ancestor := ""
	for _, name := range bh.SuperChain() {
		if name != config.ObjectClass && ah.Contains(name) {
			ancestor = name
			break
		}
	}
	if ancestor == "" {
		for _, anc := range bh.Ancestors() {
			if anc.Interface && ah.Contains(anc.Name) {
				ancestor = anc.Name
				break
			}
		}
	}
	if ancestor == "" {
		return typesystem.Object
	}

	sym := c.Query.ResolveQualifiedName(ancestor)
	if sym == nil || len(sym.TypeParams()) == 0 {
		return typesystem.Class{Name: ancestor}
	}
	aArgs, ok1 := c.Query.TypeArgumentsFor(a, ancestor)
	bArgs, ok2 := c.Query.TypeArgumentsFor(b, ancestor)
	if !ok1 || !ok2 || len(aArgs) != len(bArgs) || len(aArgs) == 0 {
		return typesystem.Class{Name: ancestor}
	}
	args := make([]typesystem.Type, len(aArgs))
	for i := range aArgs {
		if typesystem.Equal(aArgs[i], bArgs[i]) {
			args[i] = aArgs[i]
			continue
		}
		args[i] = typesystem.Wildcard{Kind: typesystem.Extends, Bound: c.commonAncestor(aArgs[i], bArgs[i], depth+1)}
	}
	return typesystem.Generic{Name: ancestor, Args: args}
}
