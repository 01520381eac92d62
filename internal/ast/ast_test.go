package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `package: app/model
imports: [java/util/*]
classes:
  - name: Point
    modifiers: [public, final]
    fields:
      - {name: x, type: int, modifiers: [private, final]}
      - name: ORIGIN
        type: int
        modifiers: [public, static, final]
        value: {op: "+", args: [{ref: Consts.BASE}, 1]}
    methods:
      - name: <init>
        params: [int]
        body:
          - {op: write, field: x}
          - op: lambda
            body:
              - {op: read, field: x}
    inner:
      - name: Helper
        modifiers: [static]
`

func TestDecodeUnit(t *testing.T) {
	var u Unit
	require.NoError(t, yaml.Unmarshal([]byte(sample), &u))
	u.SetFile("point.unit.yaml")

	assert.Equal(t, "app/model", u.Package)
	require.Len(t, u.Classes, 1)
	point := u.Classes[0]
	assert.Equal(t, 4, point.Span.Line)
	assert.Equal(t, "point.unit.yaml", point.Span.File)

	origin := point.Fields[1]
	require.NotNil(t, origin.Value)
	assert.Equal(t, "+", origin.Value.Op)
	assert.Equal(t, "Consts.BASE", origin.Value.Args[0].Ref)
	assert.Equal(t, 1, origin.Value.Args[1].Lit)
	assert.Equal(t, "(Consts.BASE + 1)", origin.Value.String())
	assert.Equal(t, "point.unit.yaml", origin.Value.Args[1].Span.File)

	ctor := point.Methods[0]
	require.Len(t, ctor.Body, 2)
	assert.Equal(t, "write x", ctor.Body[0].String())
	assert.Equal(t, 16, ctor.Body[0].Span.Line)
	assert.Equal(t, OpRead, ctor.Body[1].Body[0].Op)
	assert.Equal(t, "point.unit.yaml", ctor.Body[1].Body[0].Span.File)

	var names []string
	u.Walk(func(c *ClassDecl) { names = append(names, c.Name) })
	assert.Equal(t, []string{"Point", "Helper"}, names)
}

func TestStmtString(t *testing.T) {
	assert.Equal(t, "call Math.max(int, int)", (&Stmt{Op: OpCall, Target: "Math", Name: "max", Args: []string{"int", "int"}}).String())
	assert.Equal(t, "this(int)", (&Stmt{Op: OpThis, Args: []string{"int"}}).String())
	assert.Equal(t, "cast long -> int", (&Stmt{Op: OpCast, From: "long", To: "int"}).String())
}
