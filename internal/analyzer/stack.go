package analyzer

import (
	"fmt"

	"github.com/funvibe/classcore/internal/diagnostics"
)

// Stack holds the chain of active contexts of one worker. Reentrant
// resolution (folding a constant of another class, resolving a lambda
// body) pushes a nested context and releases it when done; the parent is
// left untouched meanwhile.
type Stack struct {
	root   *Context
	active *Context
	// folding guards constant folding against reference cycles.
	folding map[any]bool
}

// NewStack makes root the bottom of a new stack.
func NewStack(root *Context) *Stack {
	s := &Stack{root: root, active: root, folding: make(map[any]bool)}
	root.stack = s
	return s
}

// Active returns the innermost context.
func (s *Stack) Active() *Context { return s.active }

// Depth is the number of pushed contexts.
func (s *Stack) Depth() int { return s.active.depth }

// Push activates a nested context and returns it with its release func.
// The child is cached on the parent and reused by later pushes. The
// enclosing chain, unit, class and member are copied forward; the
// constructor and final-field state starts empty. Release must run exactly once, innermost first:
//
//	ctx, release := stack.Push()
//	defer release()
func (s *Stack) Push() (*Context, func()) {
	parent := s.active
	child := parent.child
	if child == nil {
		child = newContext(parent.Table, parent.Linker, parent.Options, parent.sink)
		child.Registry = parent.Registry
		child.Operators = parent.Operators
		child.stack = s
		child.parent = parent
		child.depth = parent.depth + 1
		parent.child = child
	}
	child.enter(parent)
	s.active = child
	debugf("push depth %d", child.depth)

	released := false
	return child, func() {
		if released {
			return
		}
		if s.active != child {
			panic(&diagnostics.InternalError{Err: fmt.Errorf("context stack: releasing depth %d while depth %d is active", child.depth, s.active.depth)})
		}
		released = true
		child.leave(len(parent.enclosing))
		s.active = parent
		debugf("pop depth %d", child.depth)
	}
}

// Nested runs fn under a pushed context. The context is released on every
// exit path, including panics.
func (s *Stack) Nested(fn func(ctx *Context)) {
	ctx, release := s.Push()
	defer release()
	fn(ctx)
}

func (c *Context) enter(parent *Context) {
	c.Reset()
	c.sink = parent.sink
	c.capture = parent.capture
	c.Unit = parent.Unit
	c.Class = parent.Class
	c.Member = parent.Member
	c.InStatic = parent.InStatic
	c.InConstructor = parent.InConstructor
	c.methodParams = parent.methodParams
	c.span = parent.Position()
	c.FieldImports = parent.FieldImports
	c.MethodImports = parent.MethodImports
	c.enclosing = append(c.enclosing[:0], parent.enclosing...)
	c.Binder.Inherit(parent.Binder)
}

// leave pops the enclosing levels added in this context, innermost first,
// then drops its state.
func (c *Context) leave(inherited int) {
	for i := len(c.enclosing) - 1; i >= inherited && i >= 0; i-- {
		c.enclosing[i].OnPop(c)
	}
	c.Reset()
}
