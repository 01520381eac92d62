package symbols

import (
	"fmt"
	"sort"
	"sync"

	"github.com/funvibe/classcore/internal/utils"
)

// DuplicateError is returned by Declare for a class already in the table.
type DuplicateError struct {
	Name     string
	Previous string // origin of the existing declaration
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate class %s (already declared by %s)", e.Name, e.Previous)
}

// Table is the global, append-only class table shared by all workers.
// Classes come from declarations and are pulled lazily from libraries.
type Table struct {
	mu        sync.RWMutex
	classes   map[string]*Symbol
	missing   map[string]bool
	packages  map[string]map[string]bool // package -> short names
	libraries []Library
}

// NewTable creates a table backed by the prelude and the given libraries,
// consulted in order.
func NewTable(libs ...Library) *Table {
	t := &Table{
		classes:  make(map[string]*Symbol),
		missing:  make(map[string]bool),
		packages: make(map[string]map[string]bool),
	}
	t.AddLibrary(GetPrelude())
	for _, l := range libs {
		t.AddLibrary(l)
	}
	return t
}

// AddLibrary appends a library and indexes its package content.
func (t *Table) AddLibrary(l Library) {
	content := l.Content()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.libraries = append(t.libraries, l)
	for _, name := range content {
		t.indexLocked(name)
	}
	clear(t.missing)
}

func (t *Table) indexLocked(name string) {
	pkg := utils.PackageOf(name)
	if t.packages[pkg] == nil {
		t.packages[pkg] = make(map[string]bool)
	}
	t.packages[pkg][utils.ShortName(name)] = true
}

// Declare adds a source-declared class. A class already declared or loaded
// from a library is a duplicate.
func (t *Table) Declare(sym *Symbol) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.classes[sym.Name]; ok {
		return &DuplicateError{Name: sym.Name, Previous: prev.Origin}
	}
	t.classes[sym.Name] = sym
	delete(t.missing, sym.Name)
	t.indexLocked(sym.Name)
	return nil
}

// Lookup returns an already known class without consulting libraries.
func (t *Table) Lookup(name string) *Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classes[name]
}

// Resolve returns the class, loading it from the first library that has it.
// A nil symbol with nil error means the class does not exist.
func (t *Table) Resolve(name string) (*Symbol, error) {
	t.mu.RLock()
	sym, ok := t.classes[name]
	miss := t.missing[name]
	libs := t.libraries
	t.mu.RUnlock()
	if ok {
		return sym, nil
	}
	if miss || name == "" {
		return nil, nil
	}

	for _, l := range libs {
		found, err := l.Get(name)
		if err != nil {
			return nil, fmt.Errorf("library %s: loading %s: %w", l.Name(), name, err)
		}
		if found == nil {
			continue
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		// first writer wins
		if existing, ok := t.classes[name]; ok {
			return existing, nil
		}
		t.classes[name] = found
		t.indexLocked(name)
		return found, nil
	}

	t.mu.Lock()
	if _, ok := t.classes[name]; !ok {
		t.missing[name] = true
	}
	sym = t.classes[name]
	t.mu.Unlock()
	return sym, nil
}

// HasPackage reports whether any known class lives in pkg.
func (t *Table) HasPackage(pkg string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.packages[pkg]) > 0
}

// PackageClasses returns the qualified names of the classes in pkg, sorted.
func (t *Table) PackageClasses(pkg string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.packages[pkg]))
	for short := range t.packages[pkg] {
		out = append(out, utils.Qualify(pkg, short))
	}
	sort.Strings(out)
	return out
}

// KnownNames returns every indexed class name, for suggestions.
func (t *Table) KnownNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for pkg, shorts := range t.packages {
		for short := range shorts {
			out = append(out, utils.Qualify(pkg, short))
		}
	}
	sort.Strings(out)
	return out
}

// Declared returns the source-declared and loaded classes, sorted by name.
func (t *Table) Declared() []*Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Symbol, 0, len(t.classes))
	for _, s := range t.classes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
