package symbols

import (
	"sort"
	"sync"
)

// Library is a source of class symbols. Get returns nil, nil for classes the
// library does not contain; errors are provider faults.
type Library interface {
	Name() string
	// Content lists the qualified names of all classes in the library.
	Content() []string
	Get(name string) (*Symbol, error)
}

// MemoryLibrary holds prebuilt class symbols.
type MemoryLibrary struct {
	name    string
	mu      sync.RWMutex
	classes map[string]*Symbol
}

func NewMemoryLibrary(name string, classes ...*Symbol) *MemoryLibrary {
	l := &MemoryLibrary{name: name, classes: make(map[string]*Symbol, len(classes))}
	for _, c := range classes {
		l.Add(c)
	}
	return l
}

func (l *MemoryLibrary) Name() string { return l.name }

// Add registers a class and its inner classes' owner links.
func (l *MemoryLibrary) Add(class *Symbol) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if class.Origin == "" {
		class.Origin = l.name
	}
	for _, m := range class.Members {
		m.Owner = class.Name
		if m.Origin == "" {
			m.Origin = l.name
		}
	}
	l.classes[class.Name] = class
}

func (l *MemoryLibrary) Content() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.classes))
	for n := range l.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (l *MemoryLibrary) Get(name string) (*Symbol, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.classes[name], nil
}
