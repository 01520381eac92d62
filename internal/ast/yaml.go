package ast

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/classcore/internal/token"
)

// The decode hooks below record the node position as the declaration span.

func nodeSpan(n *yaml.Node) token.Span {
	return token.Span{Line: n.Line, Column: n.Column}
}

func (c *ClassDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain ClassDecl
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Span = nodeSpan(n)
	return nil
}

func (f *FieldDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain FieldDecl
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.Span = nodeSpan(n)
	return nil
}

func (m *MethodDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain MethodDecl
	if err := n.Decode((*plain)(m)); err != nil {
		return err
	}
	m.Span = nodeSpan(n)
	return nil
}

func (s *Stmt) UnmarshalYAML(n *yaml.Node) error {
	type plain Stmt
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Span = nodeSpan(n)
	return nil
}

// A scalar decodes as a literal: `value: 3` is `value: {lit: 3}`.
func (e *Expr) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		*e = Expr{Lit: v, Span: nodeSpan(n)}
		return nil
	}
	type plain Expr
	if err := n.Decode((*plain)(e)); err != nil {
		return err
	}
	e.Span = nodeSpan(n)
	return nil
}
