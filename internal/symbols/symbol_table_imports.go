package symbols

import (
	"fmt"
	"strings"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/utils"
)

type ImportKind int

const (
	SingleTypeImport ImportKind = iota
	OnDemandImport
	StaticImport
	StaticOnDemandImport
)

// Import is one import directive. Name is a class, or a package for
// on-demand imports; Member is the imported static member name.
type Import struct {
	Kind   ImportKind
	Name   string
	Member string
	Span   token.Span
}

func (i Import) String() string {
	switch i.Kind {
	case OnDemandImport:
		return i.Name + "/*"
	case StaticImport:
		return "static " + i.Name + "." + i.Member
	case StaticOnDemandImport:
		return "static " + i.Name + ".*"
	default:
		return i.Name
	}
}

// ParseImport reads "a/b/C", "a/b/*", "static a/b/C.m" or "static a/b/C.*".
// Dots are accepted as package separators.
func ParseImport(decl string) (Import, error) {
	decl = strings.TrimSpace(decl)
	if rest, ok := strings.CutPrefix(decl, "static "); ok {
		rest = strings.TrimSpace(rest)
		i := strings.LastIndexByte(rest, '.')
		if i <= 0 || i == len(rest)-1 {
			return Import{}, fmt.Errorf("static import %q: expected Class.member", decl)
		}
		owner := strings.ReplaceAll(rest[:i], ".", "/")
		if rest[i+1:] == "*" {
			return Import{Kind: StaticOnDemandImport, Name: owner}, nil
		}
		return Import{Kind: StaticImport, Name: owner, Member: rest[i+1:]}, nil
	}
	name := strings.ReplaceAll(decl, ".", "/")
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "//") {
		return Import{}, fmt.Errorf("import %q: malformed name", decl)
	}
	if pkg, ok := strings.CutSuffix(name, "/*"); ok {
		return Import{Kind: OnDemandImport, Name: pkg}, nil
	}
	if strings.Contains(name, "*") {
		return Import{}, fmt.Errorf("import %q: misplaced '*'", decl)
	}
	return Import{Kind: SingleTypeImport, Name: name}, nil
}

// ImportList is the ordered import rules of one unit.
type ImportList struct {
	Package string
	Imports []Import
	single  map[string]string
}

func NewImportList(pkg string) *ImportList {
	return &ImportList{Package: pkg, single: make(map[string]string)}
}

// Add appends an import. Two single-type imports of different classes with
// the same short name conflict.
func (il *ImportList) Add(imp Import) error {
	if imp.Kind == SingleTypeImport {
		short := utils.SimpleName(imp.Name)
		if prev, ok := il.single[short]; ok && prev != imp.Name {
			return fmt.Errorf("%s conflicts with single-type import %s", imp.Name, prev)
		}
		il.single[short] = imp.Name
	}
	il.Imports = append(il.Imports, imp)
	return nil
}

// StaticOwners returns the classes that may provide an imported static
// member: explicit static imports first, then static on-demand imports.
func (il *ImportList) StaticOwners(member string) []string {
	if il == nil {
		return nil
	}
	var explicit, demand []string
	for _, imp := range il.Imports {
		switch {
		case imp.Kind == StaticImport && imp.Member == member:
			explicit = append(explicit, imp.Name)
		case imp.Kind == StaticOnDemandImport:
			demand = append(demand, imp.Name)
		}
	}
	return append(explicit, demand...)
}

// CheckImport reports whether the imported class or package exists.
func (l *Linker) CheckImport(imp Import) bool {
	if imp.Kind == OnDemandImport {
		return l.table.HasPackage(imp.Name) || l.ResolveQualifiedName(imp.Name) != nil
	}
	return l.ResolveQualifiedName(imp.Name) != nil
}

// ResolveClassName resolves a short, nested or qualified class name as seen
// from class from (may be nil) under imports. Lookup order: enclosing and
// inherited member classes, single-type imports, the same package, on-demand
// imports, java/lang. It returns "" when nothing matches, and the candidates
// when an on-demand lookup is ambiguous.
func (l *Linker) ResolveClassName(name string, imports *ImportList, from *Symbol) (string, []string) {
	parts := strings.Split(strings.ReplaceAll(name, ".", "/"), "/")
	for i := len(parts); i >= 1; i-- {
		head := strings.Join(parts[:i], "/")
		var cls string
		if i == 1 {
			var ambiguous []string
			cls, ambiguous = l.resolveShort(head, imports, from)
			if len(ambiguous) > 1 {
				return "", ambiguous
			}
		} else if l.ResolveQualifiedName(head) != nil {
			cls = head
		}
		if cls == "" {
			continue
		}
		if resolved := l.walkInner(cls, parts[i:]); resolved != "" {
			return resolved, nil
		}
	}
	return "", nil
}

func (l *Linker) walkInner(cls string, rest []string) string {
	for _, simple := range rest {
		sym := l.ResolveQualifiedName(cls)
		if sym == nil {
			return ""
		}
		cls = l.InnerClass(sym, simple)
		if cls == "" {
			return ""
		}
	}
	return cls
}

// InnerClass finds a member class declared in or inherited by class.
func (l *Linker) InnerClass(class *Symbol, simple string) string {
	if in, ok := class.Inner[simple]; ok {
		return in.Name
	}
	h, err := l.Hierarchy(class)
	if err != nil {
		return ""
	}
	for _, a := range h.Ancestors()[1:] {
		sym := l.ResolveQualifiedName(a.Name)
		if sym == nil {
			continue
		}
		if in, ok := sym.Inner[simple]; ok && !in.Modifiers.Has(Private) {
			return in.Name
		}
	}
	return ""
}

func (l *Linker) resolveShort(name string, imports *ImportList, from *Symbol) (string, []string) {
	for c := from; c != nil; {
		if utils.SimpleName(c.Name) == name && !strings.Contains(utils.ShortName(c.Name), "$") {
			return c.Name, nil
		}
		if in := l.InnerClass(c, name); in != "" {
			return in, nil
		}
		outer := utils.OuterOf(c.Name)
		if outer == "" {
			break
		}
		c = l.ResolveQualifiedName(outer)
	}
	if from != nil && utils.SimpleName(from.Name) == name {
		return from.Name, nil
	}

	pkg := ""
	if imports != nil {
		pkg = imports.Package
		if q, ok := imports.single[name]; ok {
			return q, nil
		}
	} else if from != nil {
		pkg = from.Package()
	}

	if q := utils.Qualify(pkg, name); l.ResolveQualifiedName(q) != nil {
		return q, nil
	}

	if imports != nil {
		var found []string
		for _, imp := range imports.Imports {
			if imp.Kind != OnDemandImport {
				continue
			}
			var cand string
			if q := utils.Qualify(imp.Name, name); l.ResolveQualifiedName(q) != nil {
				cand = q
			} else if owner := l.ResolveQualifiedName(imp.Name); owner != nil {
				cand = l.InnerClass(owner, name)
			}
			if cand != "" && !contains(found, cand) {
				found = append(found, cand)
			}
		}
		switch len(found) {
		case 1:
			return found[0], nil
		case 0:
		default:
			return "", found
		}
	}

	if q := utils.Qualify(config.ImplicitPackage, name); l.ResolveQualifiedName(q) != nil {
		return q, nil
	}
	return "", nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
