// Package ast is the declaration model of a compilation unit, as read from a
// unit file, plus the small statement model used by the built-in body pass.
package ast

import "github.com/funvibe/classcore/internal/token"

// Unit is one compilation unit.
type Unit struct {
	File    string       `yaml:"-"`
	Package string       `yaml:"package"`
	Imports []string     `yaml:"imports,omitempty"`
	Classes []*ClassDecl `yaml:"classes"`
}

// TypeParamDecl declares a type parameter with optional bounds.
type TypeParamDecl struct {
	Name   string   `yaml:"name"`
	Bounds []string `yaml:"bounds,omitempty"`
}

// ClassDecl declares a class or interface. Name is simple for top-level
// classes of a unit and for inner classes; library files use qualified
// names.
type ClassDecl struct {
	Name        string          `yaml:"name"`
	Modifiers   []string        `yaml:"modifiers,omitempty"`
	TypeParams  []TypeParamDecl `yaml:"typeParams,omitempty"`
	Extends     string          `yaml:"extends,omitempty"`
	Implements  []string        `yaml:"implements,omitempty"`
	Annotations []string        `yaml:"annotations,omitempty"`
	// Flags are type flags: no_array, any_arity, no_raw, primitive_generic.
	Flags   []string      `yaml:"flags,omitempty"`
	Fields  []*FieldDecl  `yaml:"fields,omitempty"`
	Methods []*MethodDecl `yaml:"methods,omitempty"`
	Inner   []*ClassDecl  `yaml:"inner,omitempty"`

	Span token.Span `yaml:"-"`
}

type FieldDecl struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Modifiers   []string `yaml:"modifiers,omitempty"`
	Annotations []string `yaml:"annotations,omitempty"`
	// Value is the initializer; a final field with a Value is not tracked
	// for definite assignment.
	Value *Expr `yaml:"value,omitempty"`

	Span token.Span `yaml:"-"`
}

type MethodDecl struct {
	Name        string          `yaml:"name"`
	Modifiers   []string        `yaml:"modifiers,omitempty"`
	TypeParams  []TypeParamDecl `yaml:"typeParams,omitempty"`
	Params      []string        `yaml:"params,omitempty"`
	Returns     string          `yaml:"returns,omitempty"`
	Throws      []string        `yaml:"throws,omitempty"`
	Annotations []string        `yaml:"annotations,omitempty"`
	Body        []*Stmt         `yaml:"body,omitempty"`

	Span token.Span `yaml:"-"`
}

// Walk calls fn for every class declaration, outer before inner.
func (u *Unit) Walk(fn func(c *ClassDecl)) {
	var visit func(cs []*ClassDecl)
	visit = func(cs []*ClassDecl) {
		for _, c := range cs {
			fn(c)
			visit(c.Inner)
		}
	}
	visit(u.Classes)
}

// SetFile stamps the unit file on every span.
func (u *Unit) SetFile(file string) {
	u.File = file
	u.Walk(func(c *ClassDecl) {
		c.Span.File = file
		for _, f := range c.Fields {
			f.Span.File = file
			if f.Value != nil {
				f.Value.setFile(file)
			}
		}
		for _, m := range c.Methods {
			m.Span.File = file
			setStmtFile(m.Body, file)
		}
	})
}

func setStmtFile(body []*Stmt, file string) {
	for _, s := range body {
		s.Span.File = file
		setStmtFile(s.Body, file)
		if s.Value != nil {
			s.Value.setFile(file)
		}
	}
}
