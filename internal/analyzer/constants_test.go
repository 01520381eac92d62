package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

const constantsUnit = `package: app
classes:
  - name: K
    fields:
      - {name: A, type: int, modifiers: [static, final], value: 40}
      - {name: B, type: int, modifiers: [static, final], value: {op: "+", args: [{ref: A}, 2]}}
      - {name: S, type: String, modifiers: [static, final], value: {op: "+", args: ["n=", {ref: B}]}}
      - {name: SMALL, type: byte, modifiers: [static, final], value: 100}
      - {name: BIG, type: byte, modifiers: [static, final], value: 300}
      - {name: X, type: int, modifiers: [static, final], value: {ref: Y}}
      - {name: Y, type: int, modifiers: [static, final], value: {ref: X}}
      - {name: D, type: int, modifiers: [static, final], value: {op: "/", args: [1, 0]}}
      - {name: L, type: long, modifiers: [static, final], value: {ref: A}}
      - {name: F, type: double, modifiers: [static, final], value: {op: "*", args: [{ref: A}, 0.5]}}
      - {name: BOX, type: Integer, modifiers: [static, final], value: 7}
      - {name: MISSING, type: int, modifiers: [static, final], value: {ref: Nope.X}}
      - {name: plain, type: int, value: 1}
`

const userUnit = `package: app
classes:
  - name: User
    fields:
      - {name: C, type: int, modifiers: [static, final], value: {op: "*", args: [{ref: K.B}, 2]}}
      - {name: P, type: double, modifiers: [static, final], value: {ref: Math.PI}}
`

func constant(t *testing.T, c *Context, name string) (any, bool) {
	t.Helper()
	f := c.Class.Symbol.Member(name, symbols.FieldSymbol)
	require.NotNil(t, f, name)
	return c.ConstantValue(f)
}

func TestConstantFolding(t *testing.T) {
	ctx := analyze(t, constantsUnit, userUnit)
	require.Empty(t, codes(ctx))
	c := at(t, ctx, "app/K", "")

	for _, tc := range []struct {
		field string
		want  any
	}{
		{"A", int64(40)},
		{"B", int64(42)},
		{"S", "n=42"},
		{"SMALL", int64(100)},
		{"L", int64(40)},
		{"F", 20.0},
		{"BOX", int64(7)},
	} {
		v, ok := constant(t, c, tc.field)
		assert.True(t, ok, tc.field)
		assert.Equal(t, tc.want, v, tc.field)
	}

	for _, name := range []string{"BIG", "X", "Y", "D", "MISSING", "plain"} {
		_, ok := constant(t, c, name)
		assert.False(t, ok, name)
	}
	assert.Empty(t, codes(ctx), "folding is silent")
}

func TestConstantFromAnotherUnit(t *testing.T) {
	ctx := analyze(t, constantsUnit, userUnit)
	c := at(t, ctx, "app/User", "")

	v, ok := constant(t, c, "C")
	require.True(t, ok)
	assert.Equal(t, int64(84), v)
	assert.Same(t, c, c.Stack().Active(), "nested contexts are released")

	_, ok = constant(t, c, "P")
	assert.False(t, ok, "library fields without a value are not constants")
}

func TestConstantsAreCached(t *testing.T) {
	ctx := analyze(t, constantsUnit)
	c := at(t, ctx, "app/K", "")
	b := c.Class.Symbol.Member("B", symbols.FieldSymbol)

	_, ok := b.Constant()
	require.False(t, ok)
	c.ConstantValue(b)
	v, ok := b.Constant()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	// cycles are not cached, so a later fold can retry
	x := c.Class.Symbol.Member("X", symbols.FieldSymbol)
	c.ConstantValue(x)
	_, cachedX := x.Constant()
	y := c.Class.Symbol.Member("Y", symbols.FieldSymbol)
	_, cachedY := y.Constant()
	assert.False(t, cachedY)
	assert.True(t, cachedX, "the field that started the fold records a definite non-constant")
}

func TestConvert(t *testing.T) {
	intT := typesystem.Prim{Tag: typesystem.Int}
	charT := typesystem.Prim{Tag: typesystem.Char}
	longT := typesystem.Prim{Tag: typesystem.Long}
	floatT := typesystem.Prim{Tag: typesystem.Float}
	boolT := typesystem.Prim{Tag: typesystem.Boolean}

	assert.Equal(t, int64(65), Convert(int64(65), intT, charT))
	assert.Nil(t, Convert(int64(-1), intT, charT))
	assert.Nil(t, Convert(int64(1), longT, intT), "long constants never narrow")
	assert.Equal(t, 0.5, Convert(0.5, typesystem.Prim{Tag: typesystem.Double}, floatT))
	assert.Equal(t, float64(float32(0.1)), Convert(0.1, typesystem.Prim{Tag: typesystem.Double}, floatT))
	assert.Equal(t, true, Convert(true, boolT, typesystem.Class{Name: "java/lang/Boolean"}))
	assert.Nil(t, Convert(true, boolT, intT))
	assert.Nil(t, Convert(int64(1), intT, typesystem.Object))
}
