package typesystem

import (
	"strings"

	"github.com/funvibe/classcore/internal/config"
)

// Type is a usage-site type reference. Implementations are values; operations
// return fresh values and never modify their receiver. The one exception is
// *Inferred, which is resolved exactly once.
type Type interface {
	String() string
	Apply(Subst) Type
	// FreeTypeVariables returns the names of type parameters referenced by the type.
	FreeTypeVariables() []string
	ArrayDim() int
	// WithDim returns a copy with the given array depth.
	WithDim(dim int) Type
}

// PrimTag identifies a primitive type.
type PrimTag int

const (
	Void PrimTag = iota
	Boolean
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

var primNames = [...]string{"void", "boolean", "byte", "char", "short", "int", "long", "float", "double"}

var primWrappers = [...]string{
	config.VoidClass, config.BooleanClass, config.ByteClass, config.CharacterClass,
	config.ShortClass, config.IntegerClass, config.LongClass, config.FloatClass, config.DoubleClass,
}

func (p PrimTag) String() string {
	if p < 0 || int(p) >= len(primNames) {
		return "?"
	}
	return primNames[p]
}

// Wrapper returns the qualified name of the boxed class.
func (p PrimTag) Wrapper() string {
	return primWrappers[p]
}

// Numeric reports whether the tag participates in numeric conversions.
// char counts as numeric.
func (p PrimTag) Numeric() bool {
	return p >= Byte && p <= Double
}

// PrimByName looks up a primitive tag by its source name.
func PrimByName(name string) (PrimTag, bool) {
	for i, n := range primNames {
		if n == name {
			return PrimTag(i), true
		}
	}
	return 0, false
}

// Unwrap returns the primitive tag boxed by the named class.
func Unwrap(class string) (PrimTag, bool) {
	for i, w := range primWrappers {
		if w == class && PrimTag(i) != Void {
			return PrimTag(i), true
		}
	}
	return 0, false
}

// Prim is a primitive type or an array of one.
type Prim struct {
	Tag PrimTag
	Dim int
}

func (t Prim) String() string                { return t.Tag.String() + dims(t.Dim) }
func (t Prim) Apply(Subst) Type              { return t }
func (t Prim) FreeTypeVariables() []string   { return nil }
func (t Prim) ArrayDim() int                 { return t.Dim }
func (t Prim) WithDim(dim int) Type          { t.Dim = dim; return t }

// Class is a raw class reference. Before name resolution Name may be a short
// or partially qualified name.
type Class struct {
	Name string
	Dim  int
}

func (t Class) String() string              { return t.Name + dims(t.Dim) }
func (t Class) Apply(Subst) Type            { return t }
func (t Class) FreeTypeVariables() []string { return nil }
func (t Class) ArrayDim() int               { return t.Dim }
func (t Class) WithDim(dim int) Type        { t.Dim = dim; return t }

// Generic is a parameterized class reference. Sub continues a nested chain:
// Outer<A>.Inner<B> is Generic{Name: Outer, Args: [A], Sub: &Generic{Name: Inner, Args: [B]}}
// where the inner name is the simple name. Dim of a Sub is ignored.
type Generic struct {
	Name string
	Args []Type
	Sub  *Generic
	Dim  int
}

func (t Generic) String() string {
	var sb strings.Builder
	t.write(&sb)
	sb.WriteString(dims(t.Dim))
	return sb.String()
}

func (t Generic) write(sb *strings.Builder) {
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		if IsDiamond(t.Args) {
			sb.WriteString("<>")
		} else {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(a.String())
			}
			sb.WriteByte('>')
		}
	}
	if t.Sub != nil {
		sb.WriteByte('.')
		t.Sub.write(sb)
	}
}

func (t Generic) Apply(s Subst) Type {
	return applyGeneric(t, s)
}

func (t Generic) FreeTypeVariables() []string {
	var out []string
	for _, a := range t.ArgList() {
		out = append(out, a.FreeTypeVariables()...)
	}
	if t.Sub != nil {
		out = append(out, t.Sub.FreeTypeVariables()...)
	}
	return out
}

func (t Generic) ArrayDim() int        { return t.Dim }
func (t Generic) WithDim(dim int) Type { t.Dim = dim; return t }

// Innermost returns the last element of the nested chain.
func (t Generic) Innermost() Generic {
	for t.Sub != nil {
		t = *t.Sub
	}
	return t
}

// Param is a reference to a type variable.
type Param struct {
	Name string
	Dim  int
}

func (t Param) String() string              { return t.Name + dims(t.Dim) }
func (t Param) FreeTypeVariables() []string { return []string{t.Name} }
func (t Param) ArrayDim() int               { return t.Dim }
func (t Param) WithDim(dim int) Type        { t.Dim = dim; return t }

func (t Param) Apply(s Subst) Type {
	r, ok := s[t.Name]
	if !ok {
		return t
	}
	if p, ok := r.(Param); ok && p.Name == t.Name {
		return t
	}
	if t.Dim == 0 {
		return r
	}
	return r.WithDim(r.ArrayDim() + t.Dim)
}

type WildcardKind int

const (
	Unbounded WildcardKind = iota
	Extends
	Super
)

// Wildcard is a type argument `?`, `? extends Bound` or `? super Bound`.
type Wildcard struct {
	Kind  WildcardKind
	Bound Type
}

func (t Wildcard) String() string {
	switch t.Kind {
	case Extends:
		return "? extends " + t.Bound.String()
	case Super:
		return "? super " + t.Bound.String()
	default:
		return "?"
	}
}

func (t Wildcard) Apply(s Subst) Type {
	if t.Bound != nil {
		t.Bound = t.Bound.Apply(s)
	}
	return t
}

func (t Wildcard) FreeTypeVariables() []string {
	if t.Bound == nil {
		return nil
	}
	return t.Bound.FreeTypeVariables()
}

func (t Wildcard) ArrayDim() int        { return 0 }
func (t Wildcard) WithDim(int) Type     { return t }

// Inferred is the diamond placeholder: it stands for the whole argument
// list of a `<>` usage and is filled in once the target type is known.
// Resolve is the only mutation of a type reference.
type Inferred struct {
	args     []Type
	resolved bool
}

// NewInferred returns an unresolved diamond placeholder.
func NewInferred() *Inferred { return &Inferred{} }

// Resolve fixes the inferred arguments. It reports false if already resolved.
func (t *Inferred) Resolve(args []Type) bool {
	if t.resolved || len(args) == 0 {
		return false
	}
	t.args = args
	t.resolved = true
	return true
}

// Args returns the resolved arguments, or nil.
func (t *Inferred) Args() []Type { return t.args }

func (t *Inferred) IsResolved() bool { return t.resolved }

func (t *Inferred) String() string {
	if !t.resolved {
		return "<>"
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Apply leaves the placeholder alone; Generic.Apply expands resolved lists.
func (t *Inferred) Apply(Subst) Type { return t }

func (t *Inferred) FreeTypeVariables() []string {
	var out []string
	for _, a := range t.args {
		out = append(out, a.FreeTypeVariables()...)
	}
	return out
}

func (t *Inferred) ArrayDim() int    { return 0 }
func (t *Inferred) WithDim(int) Type { return t }

// Diamond returns the argument list of a `<>` usage.
func Diamond() []Type { return []Type{NewInferred()} }

// IsDiamond reports whether args is an unresolved `<>` list.
func IsDiamond(args []Type) bool {
	if len(args) != 1 {
		return false
	}
	inf, ok := args[0].(*Inferred)
	return ok && !inf.resolved
}

// ArgList returns the type arguments with a resolved diamond expanded.
func (t Generic) ArgList() []Type {
	if len(t.Args) == 1 {
		if inf, ok := t.Args[0].(*Inferred); ok && inf.resolved {
			return inf.args
		}
	}
	return t.Args
}

// Object is the root reference type.
var Object Type = Class{Name: config.ObjectClass}

// ClassName returns the raw class name of a reference type, the wrapper of a
// primitive, or "" for type variables and wildcards.
func ClassName(t Type) string {
	switch t := t.(type) {
	case Class:
		return t.Name
	case Generic:
		return qualifiedChainName(t)
	}
	return ""
}

func qualifiedChainName(g Generic) string {
	name := g.Name
	for s := g.Sub; s != nil; s = s.Sub {
		name += "$" + s.Name
	}
	return name
}

// IsPrimitive reports whether t is a primitive non-array type.
func IsPrimitive(t Type) bool {
	p, ok := t.(Prim)
	return ok && p.Dim == 0
}

// IsReference reports whether t is a reference type (anything but a
// primitive non-array and void).
func IsReference(t Type) bool {
	return !IsPrimitive(t)
}

// Raw strips type arguments, keeping the array depth.
func Raw(t Type) Type {
	if g, ok := t.(Generic); ok {
		return Class{Name: qualifiedChainName(g), Dim: g.Dim}
	}
	return t
}

// ElementType strips one array level.
func ElementType(t Type) Type {
	if t.ArrayDim() == 0 {
		return t
	}
	return t.WithDim(t.ArrayDim() - 1)
}

func dims(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("[]", n)
}
