package ast

import (
	"fmt"
	"strings"

	"github.com/funvibe/classcore/internal/token"
)

// Statement operations understood by the built-in body pass.
const (
	OpWrite  = "write"  // assign Field (of Owner, default this class)
	OpRead   = "read"   // read Field
	OpThis   = "this"   // delegate to a constructor of this class with Args
	OpSuper  = "super"  // call a superclass constructor with Args
	OpCall   = "call"   // call Name on Target (type, "" for unqualified) with Args
	OpCast   = "cast"   // convert From to To with Limit as the lowest rank
	OpConst  = "const"  // fold the constant Field of Owner
	OpLambda = "lambda" // resolve Body in a nested context
	OpNew    = "new"    // instantiate Type, assigned to To (diamond inference)
	OpReturn = "return" // return Value or From
)

var Ops = []string{OpWrite, OpRead, OpThis, OpSuper, OpCall, OpCast, OpConst, OpLambda, OpNew, OpReturn}

// Stmt is one statement of a method body. Which fields are used depends on Op.
type Stmt struct {
	Op     string   `yaml:"op"`
	Field  string   `yaml:"field,omitempty"`
	Owner  string   `yaml:"owner,omitempty"`
	Target string   `yaml:"target,omitempty"`
	Name   string   `yaml:"name,omitempty"`
	Args   []string `yaml:"args,omitempty"`
	Type   string   `yaml:"type,omitempty"`
	From   string   `yaml:"from,omitempty"`
	To     string   `yaml:"to,omitempty"`
	Limit  *int     `yaml:"limit,omitempty"`
	Value  *Expr    `yaml:"value,omitempty"`
	Body   []*Stmt  `yaml:"body,omitempty"`

	Span token.Span `yaml:"-"`
}

func (s *Stmt) String() string {
	switch s.Op {
	case OpWrite, OpRead, OpConst:
		if s.Owner != "" {
			return s.Op + " " + s.Owner + "." + s.Field
		}
		return s.Op + " " + s.Field
	case OpThis, OpSuper:
		return s.Op + "(" + strings.Join(s.Args, ", ") + ")"
	case OpCall:
		name := s.Name
		if s.Target != "" {
			name = s.Target + "." + name
		}
		return "call " + name + "(" + strings.Join(s.Args, ", ") + ")"
	case OpCast:
		return "cast " + s.From + " -> " + s.To
	case OpNew:
		return "new " + s.Type
	}
	return s.Op
}

// Expr is a constant expression: a literal, a field reference
// ([Class.]field), or an operator applied to Args.
type Expr struct {
	Lit  any     `yaml:"lit,omitempty"`
	Ref  string  `yaml:"ref,omitempty"`
	Op   string  `yaml:"op,omitempty"`
	Args []*Expr `yaml:"args,omitempty"`

	Span token.Span `yaml:"-"`
}

func (e *Expr) String() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Ref != "":
		return e.Ref
	case e.Op != "":
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, " "+e.Op+" ") + ")"
	default:
		return fmt.Sprint(e.Lit)
	}
}

func (e *Expr) setFile(file string) {
	e.Span.File = file
	for _, a := range e.Args {
		a.setFile(file)
	}
}
