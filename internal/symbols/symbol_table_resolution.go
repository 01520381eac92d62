package symbols

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/typesystem"
)

// OverloadSet holds every same-named field or method visible from a class,
// before arity and visibility filtering. Nearer declarations come first.
type OverloadSet struct {
	Owner   string
	Name    string
	Kind    SymbolKind
	Members []*Symbol
}

func (o *OverloadSet) Empty() bool { return o == nil || len(o.Members) == 0 }

// WithArgCount returns the methods that can take n arguments.
func (o *OverloadSet) WithArgCount(n int) []*Symbol {
	var out []*Symbol
	for _, m := range o.Members {
		params := len(m.Signature().Params)
		if params == n || m.Modifiers.Has(Varargs) && n >= params-1 {
			out = append(out, m)
		}
	}
	return out
}

type overloadKey struct {
	class string
	name  string
	kind  SymbolKind
}

// Linker answers hierarchy and member queries over a Table. It caches per
// generation and is owned by one worker; Clear starts a new generation.
type Linker struct {
	table       *Table
	generation  uuid.UUID
	hierarchies map[string]*Hierarchy
	hierErrs    map[string]error
	overloads   map[overloadKey]*OverloadSet
	names       map[overloadKey][]string
}

func NewLinker(t *Table) *Linker {
	l := &Linker{table: t}
	l.Clear()
	return l
}

func (l *Linker) Table() *Table { return l.table }

// Generation identifies the current cache generation.
func (l *Linker) Generation() uuid.UUID { return l.generation }

// Clear drops all caches.
func (l *Linker) Clear() {
	l.generation = uuid.New()
	l.hierarchies = make(map[string]*Hierarchy)
	l.hierErrs = make(map[string]error)
	l.overloads = make(map[overloadKey]*OverloadSet)
	l.names = make(map[overloadKey][]string)
}

// ResolveQualifiedName returns the class or nil. A failing library is a
// provider fault and panics with *diagnostics.InternalError; the pipeline
// recovers it and aborts the unit.
func (l *Linker) ResolveQualifiedName(name string) *Symbol {
	sym, err := l.table.Resolve(name)
	if err != nil {
		panic(&diagnostics.InternalError{Err: err})
	}
	return sym
}

func (l *Linker) Hierarchy(class *Symbol) (*Hierarchy, error) {
	if h, ok := l.hierarchies[class.Name]; ok {
		return h, nil
	}
	if err, ok := l.hierErrs[class.Name]; ok {
		return nil, err
	}
	h, err := buildHierarchy(class, l.ResolveQualifiedName)
	if err != nil {
		l.hierErrs[class.Name] = err
		return nil, err
	}
	l.hierarchies[class.Name] = h
	return h, nil
}

// HierarchyOf returns the hierarchy of a named class, or nil when the class
// is unknown or cyclic.
func (l *Linker) HierarchyOf(name string) *Hierarchy {
	sym := l.ResolveQualifiedName(name)
	if sym == nil {
		return nil
	}
	h, err := l.Hierarchy(sym)
	if err != nil {
		return nil
	}
	return h
}

// IsSubclassOf reports whether sub is super or inherits from it.
func (l *Linker) IsSubclassOf(sub, super string) bool {
	if sub == super {
		return true
	}
	h := l.HierarchyOf(sub)
	return h != nil && h.Contains(super)
}

func (l *Linker) DeclaredMembers(class *Symbol, name string, kind SymbolKind) *OverloadSet {
	key := overloadKey{class.Name, name, kind}
	if set, ok := l.overloads[key]; ok {
		return set
	}
	set := &OverloadSet{Owner: class.Name, Name: name, Kind: kind}
	seen := make(map[string]bool)
	l.eachInherited(class, kind, func(m *Symbol) {
		if m.Name != name {
			return
		}
		if kind == MethodSymbol {
			k := ErasedParams(m)
			if seen[k] {
				return
			}
			seen[k] = true
		}
		set.Members = append(set.Members, m)
	})
	l.overloads[key] = set
	return set
}

// MemberNames lists the distinct member names of a kind visible from class.
func (l *Linker) MemberNames(class *Symbol, kind SymbolKind) []string {
	key := overloadKey{class.Name, "", kind}
	if names, ok := l.names[key]; ok {
		return names
	}
	seen := make(map[string]bool)
	var names []string
	l.eachInherited(class, kind, func(m *Symbol) {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	})
	sort.Strings(names)
	l.names[key] = names
	return names
}

func (l *Linker) eachInherited(class *Symbol, kind SymbolKind, fn func(*Symbol)) {
	ancestors := []Ancestor{{Name: class.Name}}
	if h, err := l.Hierarchy(class); err == nil {
		ancestors = h.Ancestors()
	}
	for i, a := range ancestors {
		owner := class
		if i > 0 {
			owner = l.ResolveQualifiedName(a.Name)
			if owner == nil {
				continue
			}
		}
		for _, m := range owner.Members {
			if m.Kind != kind {
				continue
			}
			if i > 0 {
				if m.Modifiers.Has(Private) || isSpecialMethod(m.Name) {
					continue
				}
				if a.Interface && m.Kind == MethodSymbol && m.IsStatic() {
					continue
				}
			}
			fn(m)
		}
	}
}

func isSpecialMethod(name string) bool {
	return name == config.ConstructorName || name == config.StaticInitializerName
}

// ErasedParams renders a method's parameter list with type arguments removed.
// Methods with equal keys override each other.
func ErasedParams(m *Symbol) string {
	params := m.Signature().Params
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typesystem.Raw(p).String()
	}
	return strings.Join(parts, ",")
}

// TypeArgumentsFor re-expresses the type arguments of t relative to the
// ancestor target, following generic supertype declarations:
// given ArrayList<String> and java/util/Collection it returns [String].
// It reports false when the path is raw or target is not an ancestor.
func (l *Linker) TypeArgumentsFor(t typesystem.Type, target string) ([]typesystem.Type, bool) {
	return l.typeArgsFor(t, target, make(map[string]bool))
}

func (l *Linker) typeArgsFor(t typesystem.Type, target string, visited map[string]bool) ([]typesystem.Type, bool) {
	name := typesystem.ClassName(t)
	if name == "" || visited[name] {
		return nil, false
	}
	var args []typesystem.Type
	if g, ok := t.(typesystem.Generic); ok {
		args = g.Innermost().ArgList()
	}
	if typesystem.IsDiamond(args) {
		return nil, false
	}
	if name == target {
		return args, true
	}

	sym := l.ResolveQualifiedName(name)
	if sym == nil {
		return nil, false
	}
	sig := sym.Signature()
	if len(args) == 0 && len(sig.TypeParams) > 0 {
		return nil, false
	}
	visited[name] = true
	subst := typesystem.NewSubst(ParamNames(sig.TypeParams), args)
	for _, st := range sig.SuperTypes {
		if got, ok := l.typeArgsFor(st.Apply(subst), target, visited); ok {
			return got, true
		}
	}
	return nil, false
}
