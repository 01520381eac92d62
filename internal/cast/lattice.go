package cast

import (
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

// HierarchyQuery is the part of the symbol provider the lattice needs.
type HierarchyQuery interface {
	ResolveQualifiedName(name string) *symbols.Symbol
	Hierarchy(class *symbols.Symbol) (*symbols.Hierarchy, error)
	TypeArgumentsFor(t typesystem.Type, target string) ([]typesystem.Type, bool)
}

// maxDepth bounds recursion through type parameter bounds and arguments.
const maxDepth = 32

// Caster computes conversion descriptors. It is owned by one worker.
type Caster struct {
	Query HierarchyQuery
	// Scope returns the bounds of a type parameter in scope; nil means the
	// parameter is bounded by Object.
	Scope    func(name string) []typesystem.Type
	interner *Interner
}

func NewCaster(q HierarchyQuery) *Caster {
	return &Caster{Query: q, interner: NewInterner()}
}

// Check computes the conversion from one type to another. It never fails;
// impossible conversions come back with a rank below Downcast.
func (c *Caster) Check(from, to typesystem.Type) *Cast {
	return c.check(from, to, 0)
}

func (c *Caster) check(from, to typesystem.Type, depth int) *Cast {
	if depth > maxDepth || from == nil || to == nil {
		return Failure(Never)
	}
	from, to = settle(from), settle(to)
	if typesystem.Equal(from, to) {
		return Identity
	}

	if p, ok := from.(typesystem.Param); ok {
		return c.check(c.bound(p), to, depth+1)
	}
	if p, ok := to.(typesystem.Param); ok {
		b := c.bound(p)
		r := c.check(from, b, depth+1)
		if r.Rank >= Downcast {
			return c.intern(from, to, Cast{Rank: Downcast, Repr: ReprCheckcast, Class: typesystem.ClassName(b)})
		}
		return r
	}

	fp, fromPrim := from.(typesystem.Prim)
	tp, toPrim := to.(typesystem.Prim)
	fromPrim = fromPrim && fp.Dim == 0
	toPrim = toPrim && tp.Dim == 0
	switch {
	case fromPrim && toPrim:
		return c.intern(from, to, primCast(fp.Tag, tp.Tag))
	case fromPrim:
		return c.boxing(fp.Tag, from, to, depth)
	case toPrim:
		return c.unboxing(from, tp.Tag, to)
	}

	if from.ArrayDim() > 0 || to.ArrayDim() > 0 {
		return c.arrayCast(from, to, depth)
	}
	return c.classCast(from, to, depth)
}

// settle replaces wildcards with their upper bound. A bare diamond
// placeholder is an Object.
func settle(t typesystem.Type) typesystem.Type {
	switch x := t.(type) {
	case typesystem.Wildcard:
		if x.Kind == typesystem.Extends {
			return x.Bound
		}
		return typesystem.Object
	case *typesystem.Inferred:
		return typesystem.Object
	}
	return t
}

func (c *Caster) bound(p typesystem.Param) typesystem.Type {
	var b typesystem.Type = typesystem.Object
	if c.Scope != nil {
		if bounds := c.Scope(p.Name); len(bounds) > 0 {
			b = bounds[0]
		}
	}
	if p.Dim > 0 {
		b = b.WithDim(b.ArrayDim() + p.Dim)
	}
	return b
}

func (c *Caster) intern(from, to typesystem.Type, r Cast) *Cast {
	return c.interner.Intern(from, to, r)
}

// widening position along byte -> short -> int -> long -> float -> double;
// char enters at short's position so char -> int is one step.
var numericPos = map[typesystem.PrimTag]int{
	typesystem.Byte: 0, typesystem.Short: 1, typesystem.Char: 1,
	typesystem.Int: 2, typesystem.Long: 3, typesystem.Float: 4, typesystem.Double: 5,
}

// Widens reports whether f converts to t by numeric widening.
func Widens(f, t typesystem.PrimTag) bool {
	if !f.Numeric() || !t.Numeric() || f == t || t == typesystem.Char {
		return false
	}
	if f == typesystem.Char {
		return t >= typesystem.Int
	}
	return numericPos[t] > numericPos[f]
}

func primCast(f, t typesystem.PrimTag) Cast {
	if f == t {
		return Cast{Rank: Upcast}
	}
	if !f.Numeric() || !t.Numeric() {
		return Cast{Rank: Never}
	}
	if Widens(f, t) {
		return Cast{Rank: NumberUpcast, Distance: numericPos[t] - numericPos[f], Repr: ReprPrimitive, Prim: f, Target: t}
	}
	rank := Narrowing
	if f == typesystem.Long || f == typesystem.Float || f == typesystem.Double {
		rank = Lossy
	}
	return Cast{Rank: rank, Repr: ReprPrimitive, Prim: f, Target: t}
}

// boxing converts a primitive to a reference: box to the wrapper and upcast,
// or convert to the primitive the target wraps and box that.
func (c *Caster) boxing(f typesystem.PrimTag, from, to typesystem.Type, depth int) *Cast {
	if f == typesystem.Void {
		return Failure(Never)
	}
	wrapper := f.Wrapper()
	if r := c.check(typesystem.Class{Name: wrapper}, to, depth+1); r.Rank == Upcast {
		return c.intern(from, to, Cast{Rank: Boxing, Distance: 1 + r.Distance, Repr: ReprBox, Prim: f, Target: f, Class: wrapper})
	}
	if t, ok := typesystem.Unwrap(typesystem.ClassName(to)); ok && to.ArrayDim() == 0 {
		p := primCast(f, t)
		switch {
		case p.Rank.OK():
			return c.intern(from, to, Cast{Rank: Boxing, Distance: 1 + p.Distance, Repr: ReprBox, Prim: f, Target: t, Class: t.Wrapper()})
		case p.Rank >= Lossy:
			return c.intern(from, to, Cast{Rank: p.Rank, Repr: ReprBox, Prim: f, Target: t, Class: t.Wrapper()})
		}
	}
	return Failure(PrimitiveToObject)
}

func (c *Caster) unboxing(from typesystem.Type, t typesystem.PrimTag, to typesystem.Type) *Cast {
	f, ok := typesystem.Unwrap(typesystem.ClassName(from))
	if !ok || from.ArrayDim() > 0 {
		return Failure(ObjectToPrimitive)
	}
	p := primCast(f, t)
	switch {
	case p.Rank.OK():
		return c.intern(from, to, Cast{Rank: Unboxing, Distance: 1 + p.Distance, Repr: ReprUnbox, Prim: f, Target: t, Class: f.Wrapper()})
	case p.Rank >= Lossy:
		return c.intern(from, to, Cast{Rank: p.Rank, Repr: ReprUnbox, Prim: f, Target: t, Class: f.Wrapper()})
	}
	return Failure(p.Rank)
}

func isArrayInterface(name string) bool {
	return name == config.CloneableClass || name == config.SerializableClass
}

func (c *Caster) arrayCast(from, to typesystem.Type, depth int) *Cast {
	fd, td := from.ArrayDim(), to.ArrayDim()
	if fd > 0 && td > 0 {
		n := min(fd, td)
		fe, te := from.WithDim(fd-n), to.WithDim(td-n)
		if typesystem.IsPrimitive(fe) || typesystem.IsPrimitive(te) {
			return Failure(Never)
		}
		r := c.check(fe, te, depth+1)
		switch r.Rank {
		case Upcast:
			return c.intern(from, to, Cast{Rank: Upcast, Distance: r.Distance})
		case Downcast:
			return c.intern(from, to, Cast{Rank: Downcast, Repr: ReprCheckcast, Class: to.String()})
		case NoData, GenericArity:
			return r
		}
		return Failure(Never)
	}

	if fd > 0 {
		switch name := typesystem.ClassName(to); {
		case name == config.ObjectClass:
			return c.intern(from, to, Cast{Rank: Upcast, Distance: 2})
		case isArrayInterface(name):
			return c.intern(from, to, Cast{Rank: Upcast, Distance: 1})
		}
		return Failure(Never)
	}

	if name := typesystem.ClassName(from); name == config.ObjectClass || isArrayInterface(name) {
		return c.intern(from, to, Cast{Rank: Downcast, Repr: ReprCheckcast, Class: to.String()})
	}
	return Failure(Never)
}

func (c *Caster) classCast(from, to typesystem.Type, depth int) *Cast {
	fn, tn := typesystem.ClassName(from), typesystem.ClassName(to)
	if fn == "" || tn == "" {
		return Failure(Never)
	}
	fs, ts := c.Query.ResolveQualifiedName(fn), c.Query.ResolveQualifiedName(tn)
	if fs == nil || ts == nil {
		return Failure(NoData)
	}
	h, err := c.Query.Hierarchy(fs)
	if err != nil {
		return Failure(NoData)
	}

	if d, ok := h.Distance(tn); ok {
		if r := c.checkArgs(from, to, tn, depth); r != nil {
			return r
		}
		return c.intern(from, to, Cast{Rank: Upcast, Distance: d})
	}

	down := false
	if th, err := c.Query.Hierarchy(ts); err == nil && th.Contains(fn) {
		down = true
	} else if fs.IsInterface() && !ts.IsFinal() || ts.IsInterface() && !fs.IsFinal() {
		down = true
	}
	if down {
		return c.intern(from, to, Cast{Rank: Downcast, Repr: ReprCheckcast, Class: tn})
	}
	return Failure(Never)
}

// checkArgs validates type arguments once the raw upcast succeeded. It
// returns nil when the arguments are compatible.
func (c *Caster) checkArgs(from, to typesystem.Type, target string, depth int) *Cast {
	tg, ok := to.(typesystem.Generic)
	if !ok {
		return nil
	}
	targs := tg.Innermost().ArgList()
	if len(targs) == 0 || typesystem.IsDiamond(targs) {
		return nil
	}
	if fg, ok := from.(typesystem.Generic); ok && typesystem.IsDiamond(fg.Innermost().ArgList()) {
		return nil
	}
	fargs, ok := c.Query.TypeArgumentsFor(from, target)
	if !ok || len(fargs) == 0 {
		// raw source
		return nil
	}
	if len(fargs) != len(targs) {
		return Failure(GenericArity)
	}
	for i := range targs {
		if !c.argOK(fargs[i], targs[i], depth+1) {
			return Failure(Never)
		}
	}
	return nil
}

func (c *Caster) argOK(fa, ta typesystem.Type, depth int) bool {
	if w, ok := ta.(typesystem.Wildcard); ok {
		switch w.Kind {
		case typesystem.Unbounded:
			return true
		case typesystem.Extends:
			return c.check(settle(fa), w.Bound, depth).Rank == Upcast
		default:
			if fw, ok := fa.(typesystem.Wildcard); ok {
				if fw.Kind != typesystem.Super {
					return false
				}
				fa = fw.Bound
			}
			return c.check(w.Bound, fa, depth).Rank == Upcast
		}
	}
	if fw, ok := fa.(typesystem.Wildcard); ok {
		if fw.Kind != typesystem.Extends {
			return false
		}
		fa = fw.Bound
	}
	return c.check(fa, ta, depth).Rank == Upcast
}
