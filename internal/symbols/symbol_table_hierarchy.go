package symbols

import (
	"fmt"
	"strings"

	"github.com/funvibe/classcore/internal/config"
)

// Ancestor is one entry of a class hierarchy.
type Ancestor struct {
	Name      string
	Distance  int // hierarchy edges from the class
	Interface bool
}

// Hierarchy lists a class, its superclass chain and its interfaces ordered
// by distance. The superclass chain comes first so the common ancestor of
// two classes can be found by walking one chain against the other's index.
type Hierarchy struct {
	Class string
	order []Ancestor
	index map[string]int
	// Missing names supertypes the provider does not know.
	Missing []string
}

// CycleError reports a class that is its own ancestor.
type CycleError struct {
	Class string
	Path  []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic inheritance involving %s: %s", e.Class, strings.Join(e.Path, " -> "))
}

// Distance returns the edge count from the class to ancestor.
func (h *Hierarchy) Distance(ancestor string) (int, bool) {
	i, ok := h.index[ancestor]
	if !ok {
		return 0, false
	}
	return h.order[i].Distance, true
}

// Contains reports whether name is the class or one of its ancestors.
func (h *Hierarchy) Contains(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Ancestors returns the ordered entries, the class itself first.
func (h *Hierarchy) Ancestors() []Ancestor {
	return h.order
}

// SuperChain returns the class and its superclasses, nearest first.
func (h *Hierarchy) SuperChain() []string {
	var out []string
	for i, a := range h.order {
		if i == 0 || !a.Interface {
			out = append(out, a.Name)
		}
	}
	return out
}

func (h *Hierarchy) add(name string, dist int, iface bool) {
	if _, ok := h.index[name]; ok {
		return
	}
	h.index[name] = len(h.order)
	h.order = append(h.order, Ancestor{Name: name, Distance: dist, Interface: iface})
}

// buildHierarchy walks superclasses first, then interfaces breadth first so
// each interface gets its shortest distance.
func buildHierarchy(class *Symbol, resolve func(string) *Symbol) (*Hierarchy, error) {
	h := &Hierarchy{Class: class.Name, index: make(map[string]int)}
	h.add(class.Name, 0, class.IsInterface())

	type pending struct {
		sym  *Symbol
		dist int
	}
	var chain []pending
	path := []string{class.Name}
	cur := class
	for dist := 1; ; dist++ {
		chain = append(chain, pending{cur, dist - 1})
		super, _ := cur.Supers()
		if super == "" {
			break
		}
		if super == class.Name {
			return nil, &CycleError{Class: class.Name, Path: append(path, super)}
		}
		if h.Contains(super) {
			// cycle above this class; it is reported for the classes on it
			break
		}
		next := resolve(super)
		if next == nil {
			h.Missing = append(h.Missing, super)
			break
		}
		path = append(path, super)
		h.add(super, dist, false)
		cur = next
	}

	queue := chain
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		_, ifaces := p.sym.Supers()
		for _, name := range ifaces {
			if name == class.Name {
				return nil, &CycleError{Class: class.Name, Path: []string{p.sym.Name, name}}
			}
			if h.Contains(name) {
				continue
			}
			next := resolve(name)
			if next == nil {
				h.Missing = append(h.Missing, name)
				continue
			}
			h.add(name, p.dist+1, true)
			queue = append(queue, pending{next, p.dist + 1})
		}
	}

	if !h.Contains(config.ObjectClass) {
		// interfaces are assignable to Object
		h.add(config.ObjectClass, 1, false)
	}
	return h, nil
}
