package modules

import (
	"github.com/funvibe/classcore/internal/access"
	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/utils"
)

// Unit is one compilation unit moving through the pipeline. A unit is owned
// by the worker processing it within a stage.
type Unit struct {
	Path    string
	Decl    *ast.Unit
	Imports *symbols.ImportList
	Classes []*Class

	// Fault is set when an internal fault aborted the unit.
	Fault error

	excluded map[*symbols.Symbol]bool
}

func NewUnit(path string, decl *ast.Unit) *Unit {
	return &Unit{Path: path, Decl: decl, excluded: make(map[*symbols.Symbol]bool)}
}

// Name is the unit file name without its extension.
func (u *Unit) Name() string {
	return utils.ExtractUnitName(u.Path)
}

// Package of the unit.
func (u *Unit) Package() string {
	if u.Decl == nil {
		return ""
	}
	return u.Decl.Package
}

// Exclude marks a member (or class) as excluded from emission after a
// fatal-to-unit error.
func (u *Unit) Exclude(sym *symbols.Symbol) {
	u.excluded[sym] = true
}

func (u *Unit) Excluded(sym *symbols.Symbol) bool {
	return u.excluded[sym]
}

// Class pairs a declared class symbol with its declaration.
type Class struct {
	Symbol  *symbols.Symbol
	Decl    *ast.ClassDecl
	Outer   *Class
	Fields  []*Field
	Methods []*Method
	// Finals holds the final fields collected by member resolution.
	Finals *access.Tracker
}

type Field struct {
	Symbol *symbols.Symbol
	Decl   *ast.FieldDecl
}

// Method pairs a method symbol with its declaration; Decl is nil for
// synthetic members such as default constructors.
type Method struct {
	Symbol *symbols.Symbol
	Decl   *ast.MethodDecl
}

// TypeParamNames lists the type parameters visible in the class body: its
// own, then those of enclosing classes up to the first static level.
func (c *Class) TypeParamNames() []string {
	var names []string
	for cur := c; cur != nil; cur = cur.Outer {
		names = append(names, symbols.ParamNames(cur.Symbol.TypeParams())...)
		if cur.Symbol.IsStatic() || cur.Symbol.IsInterface() {
			break
		}
	}
	return names
}

// Field returns the declared field with the name.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Symbol.Name == name {
			return f
		}
	}
	return nil
}
