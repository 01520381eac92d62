package symbols

import (
	"strings"
	"sync"

	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
	"github.com/funvibe/classcore/internal/utils"
)

type SymbolKind int

const (
	ClassSymbol SymbolKind = iota
	FieldSymbol
	MethodSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case ClassSymbol:
		return "class"
	case FieldSymbol:
		return "field"
	case MethodSymbol:
		return "method"
	default:
		return "symbol"
	}
}

// Modifier is a bit set of access and kind flags.
type Modifier uint32

const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Final
	Abstract
	Interface
	Varargs
	Synthetic
	Enum
	Annotation
	Default // interface method with a body
)

var modifierNames = []struct {
	flag Modifier
	name string
}{
	{Public, "public"}, {Protected, "protected"}, {Private, "private"},
	{Static, "static"}, {Final, "final"}, {Abstract, "abstract"},
	{Interface, "interface"}, {Varargs, "varargs"}, {Synthetic, "synthetic"},
	{Enum, "enum"}, {Annotation, "annotation"}, {Default, "default"},
}

const AccessMask = Public | Protected | Private

func (m Modifier) Has(f Modifier) bool { return m&f != 0 }

// Visibility names the access level.
func (m Modifier) Visibility() string {
	switch {
	case m.Has(Public):
		return "public"
	case m.Has(Protected):
		return "protected"
	case m.Has(Private):
		return "private"
	default:
		return "package-private"
	}
}

// AccessLevel orders visibilities from private (0) to public (3).
func (m Modifier) AccessLevel() int {
	switch {
	case m.Has(Public):
		return 3
	case m.Has(Protected):
		return 2
	case m.Has(Private):
		return 0
	default:
		return 1
	}
}

func (m Modifier) String() string {
	var parts []string
	for _, n := range modifierNames {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier looks up a modifier by its source keyword.
func ParseModifier(name string) (Modifier, bool) {
	for _, n := range modifierNames {
		if n.name == name {
			return n.flag, true
		}
	}
	return 0, false
}

// TypeFlags restrict how a generic class may be used.
type TypeFlags uint8

const (
	NoArray TypeFlags = 1 << iota
	AnyArity
	NoRaw
	PrimitiveGeneric
)

func (f TypeFlags) Has(x TypeFlags) bool { return f&x != 0 }

type TypeParam struct {
	Name   string
	Bounds []typesystem.Type
}

// FirstBound is the erasure of the parameter.
func (p TypeParam) FirstBound() typesystem.Type {
	if len(p.Bounds) == 0 {
		return typesystem.Object
	}
	return p.Bounds[0]
}

// ParamNames lists the names of params in order.
func ParamNames(params []TypeParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// InnerClass is an entry of a class's inner class table.
type InnerClass struct {
	Name      string // qualified
	Modifiers Modifier
}

// Signature holds the type references of a declaration. For classes only
// TypeParams and SuperTypes are used; for fields only Type.
type Signature struct {
	TypeParams []TypeParam
	SuperTypes []typesystem.Type // superclass first, then interfaces
	Type       typesystem.Type
	Params     []typesystem.Type
	Return     typesystem.Type
	Throws     []typesystem.Type
}

// Symbol is a class, field or method. Declaration fields are fixed once the
// declaring unit leaves name resolution; derived attributes are set through
// methods guarded by the symbol's lock.
type Symbol struct {
	Kind      SymbolKind
	Name      string // qualified for classes, simple for members
	Owner     string // declaring class of a member
	Modifiers Modifier
	Flags     TypeFlags
	Inner     map[string]InnerClass // simple name -> inner class
	Members   []*Symbol
	// Annotations are directive names.
	Annotations []string
	// Origin names the library or unit that declared the symbol.
	Origin string
	Span   token.Span

	mu         sync.Mutex
	super      string
	interfaces []string
	sig        Signature
	resolved   bool
	constant   any
	hasConst   bool
	// ConstantExpr is the unevaluated initializer of a constant field.
	ConstantExpr any
}

// NewClass creates a class symbol.
func NewClass(name string, mods Modifier, super string, interfaces ...string) *Symbol {
	return &Symbol{Kind: ClassSymbol, Name: name, Modifiers: mods, super: super, interfaces: interfaces}
}

// NewField creates a field symbol.
func NewField(owner, name string, mods Modifier, t typesystem.Type) *Symbol {
	return &Symbol{Kind: FieldSymbol, Owner: owner, Name: name, Modifiers: mods, sig: Signature{Type: t}}
}

// NewMethod creates a method symbol.
func NewMethod(owner, name string, mods Modifier, ret typesystem.Type, params ...typesystem.Type) *Symbol {
	return &Symbol{Kind: MethodSymbol, Owner: owner, Name: name, Modifiers: mods, sig: Signature{Return: ret, Params: params}}
}

func (s *Symbol) IsStatic() bool    { return s.Modifiers.Has(Static) }
func (s *Symbol) IsFinal() bool     { return s.Modifiers.Has(Final) }
func (s *Symbol) IsInterface() bool { return s.Modifiers.Has(Interface) }
func (s *Symbol) IsAbstract() bool  { return s.Modifiers.Has(Abstract | Interface) }

// Package returns the declaring package.
func (s *Symbol) Package() string {
	if s.Kind == ClassSymbol {
		return utils.PackageOf(s.Name)
	}
	return utils.PackageOf(s.Owner)
}

// DeclaringClass is the class itself for classes and the owner for members.
func (s *Symbol) DeclaringClass() string {
	if s.Kind == ClassSymbol {
		return s.Name
	}
	return s.Owner
}

// Display returns Owner.name for members and the name for classes.
func (s *Symbol) Display() string {
	if s.Kind == ClassSymbol {
		return s.Name
	}
	return s.Owner + "." + s.Name
}

func (s *Symbol) String() string {
	return s.Display()
}

// Supers returns the superclass and interface names.
func (s *Symbol) Supers() (string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.super, s.interfaces
}

// SetSupers replaces superclass and interface names. Only the declaring
// unit calls it, during name resolution.
func (s *Symbol) SetSupers(super string, interfaces []string) {
	s.mu.Lock()
	s.super, s.interfaces = super, interfaces
	s.mu.Unlock()
}

// Signature returns the current signature.
func (s *Symbol) Signature() Signature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sig
}

// SetSignature attaches a signature. Resolved marks it as fully resolved
// type references.
func (s *Symbol) SetSignature(sig Signature, resolved bool) {
	s.mu.Lock()
	s.sig = sig
	s.resolved = resolved
	s.mu.Unlock()
}

// Resolved reports whether the signature holds resolved type references.
func (s *Symbol) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// TypeParams is shorthand for Signature().TypeParams.
func (s *Symbol) TypeParams() []TypeParam {
	return s.Signature().TypeParams
}

// Constant returns the folded constant value of a field.
func (s *Symbol) Constant() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constant, s.hasConst
}

// SetConstant records the folded value; the first value wins.
func (s *Symbol) SetConstant(v any) {
	s.mu.Lock()
	if !s.hasConst {
		s.constant, s.hasConst = v, true
	}
	s.mu.Unlock()
}

// Member returns the first declared member with the name and kind.
func (s *Symbol) Member(name string, kind SymbolKind) *Symbol {
	for _, m := range s.Members {
		if m.Name == name && m.Kind == kind {
			return m
		}
	}
	return nil
}

// AddMember appends a member and sets its owner.
func (s *Symbol) AddMember(m *Symbol) *Symbol {
	m.Owner = s.Name
	s.Members = append(s.Members, m)
	return m
}

// AddInner registers an inner class by simple name.
func (s *Symbol) AddInner(inner *Symbol) {
	if s.Inner == nil {
		s.Inner = make(map[string]InnerClass)
	}
	s.Inner[utils.SimpleName(inner.Name)] = InnerClass{Name: inner.Name, Modifiers: inner.Modifiers}
}

// HasAnnotation reports whether the symbol carries the directive.
func (s *Symbol) HasAnnotation(name string) bool {
	for _, a := range s.Annotations {
		if a == name {
			return true
		}
	}
	return false
}
