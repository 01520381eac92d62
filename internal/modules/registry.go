package modules

import "sync"

// Registry maps source-declared class names to their declarations. It is
// filled during the structural parse and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
	units   map[string]*Unit
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class), units: make(map[string]*Unit)}
}

// Add records the classes of a unit.
func (r *Registry) Add(u *Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range u.Classes {
		r.classes[c.Symbol.Name] = c
		r.units[c.Symbol.Name] = u
	}
}

// Lookup returns the declaration of a class and its unit, or nils for
// library classes.
func (r *Registry) Lookup(name string) (*Unit, *Class) {
	if r == nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.units[name], r.classes[name]
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}
