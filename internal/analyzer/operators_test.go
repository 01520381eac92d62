package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/typesystem"
)

func prim(tag typesystem.PrimTag, v any) Operand {
	return Operand{Type: typesystem.Prim{Tag: tag}, Value: v, Constant: true}
}

func str(v string) Operand {
	return Operand{Type: tString, Value: v, Constant: true}
}

func TestDefaultOperators(t *testing.T) {
	ops := DefaultOperators()
	i := func(v int64) Operand { return prim(typesystem.Int, v) }
	l := func(v int64) Operand { return prim(typesystem.Long, v) }
	d := func(v float64) Operand { return prim(typesystem.Double, v) }
	b := func(v bool) Operand { return prim(typesystem.Boolean, v) }

	for _, tc := range []struct {
		name     string
		op       string
		operands []Operand
		want     any
		typ      typesystem.Type
	}{
		{"int add", "+", []Operand{i(40), i(2)}, int64(42), tInt},
		{"int overflow wraps", "+", []Operand{i(math.MaxInt32), i(1)}, int64(math.MinInt32), tInt},
		{"long add", "+", []Operand{i(1), l(math.MaxInt32)}, int64(math.MaxInt32 + 1), typesystem.Prim{Tag: typesystem.Long}},
		{"double promotion", "*", []Operand{i(3), d(0.5)}, 1.5, typesystem.Prim{Tag: typesystem.Double}},
		{"remainder", "%", []Operand{i(-7), i(3)}, int64(-1), tInt},
		{"concat", "+", []Operand{str("a"), i(1)}, "a1", tString},
		{"concat char", "+", []Operand{str("x"), prim(typesystem.Char, int64('y'))}, "xy", tString},
		{"concat double", "+", []Operand{d(2), str("!")}, "2.0!", tString},
		{"bitwise", "&", []Operand{i(6), i(3)}, int64(2), tInt},
		{"logical", "^", []Operand{b(true), b(false)}, true, tBoolean},
		{"shift masks count", "<<", []Operand{i(1), i(33)}, int64(2), tInt},
		{"unsigned shift", ">>>", []Operand{i(-1), i(28)}, int64(15), tInt},
		{"compare", "<", []Operand{i(1), d(1.5)}, true, tBoolean},
		{"nan compare", "==", []Operand{d(math.NaN()), d(math.NaN())}, false, tBoolean},
		{"boolean equality", "!=", []Operand{b(true), b(true)}, false, tBoolean},
		{"and", "&&", []Operand{b(true), b(false)}, false, tBoolean},
		{"not", "!", []Operand{b(false)}, true, tBoolean},
		{"negate", "neg", []Operand{i(5)}, int64(-5), tInt},
		{"complement", "~", []Operand{i(0)}, int64(-1), tInt},
		{"hash boolean", ".hashCode", []Operand{b(true)}, int64(1231), tInt},
		{"hash long", ".hashCode", []Operand{l(1 << 32)}, int64(1), tInt},
		{"toString", ".toString", []Operand{d(math.Inf(1))}, "Infinity", tString},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := ops.Resolve(nil, tc.op, tc.operands)
			require.True(t, ok)
			assert.True(t, r.Constant)
			assert.Equal(t, tc.want, r.Value)
			assert.Equal(t, tc.typ, r.Type)
		})
	}
}

func TestOperatorsRejectMismatchedOperands(t *testing.T) {
	ops := DefaultOperators()
	_, ok := ops.Resolve(nil, "-", []Operand{str("a"), prim(typesystem.Int, int64(1))})
	assert.False(t, ok)
	_, ok = ops.Resolve(nil, "&&", []Operand{prim(typesystem.Int, int64(1)), prim(typesystem.Boolean, true)})
	assert.False(t, ok)
	_, ok = ops.Resolve(nil, "<<", []Operand{prim(typesystem.Double, 1.0), prim(typesystem.Int, int64(1))})
	assert.False(t, ok)
	_, ok = ops.Resolve(nil, "??", nil)
	assert.False(t, ok)
}

func TestNonConstantOperands(t *testing.T) {
	ops := DefaultOperators()
	r, ok := ops.Resolve(nil, "+", []Operand{{Type: tInt}, prim(typesystem.Int, int64(1))})
	require.True(t, ok)
	assert.False(t, r.Constant)
	assert.Equal(t, tInt, r.Type)

	div, ok := ops.Resolve(nil, "/", []Operand{prim(typesystem.Int, int64(1)), prim(typesystem.Int, int64(0))})
	require.True(t, ok)
	assert.False(t, div.Constant, "division by zero is not a constant")

	boxed, ok := ops.Resolve(nil, "+", []Operand{{Type: typesystem.Class{Name: "java/lang/Integer"}, Value: int64(1), Constant: true}, prim(typesystem.Int, int64(2))})
	require.True(t, ok)
	assert.Equal(t, int64(3), boxed.Value)
}

func TestRegisteredOperatorsWin(t *testing.T) {
	ops := NewOperatorTable()
	ops.Register("+", func(*Context, []Operand) (Resolved, bool) {
		return Resolved{Type: tString, Value: "custom", Constant: true}, true
	})
	ops.Register("+", concat)
	r, ok := ops.Resolve(nil, "+", []Operand{str("a"), str("b")})
	require.True(t, ok)
	assert.Equal(t, "custom", r.Value)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.1", Format(0.1, typesystem.Prim{Tag: typesystem.Double}))
	assert.Equal(t, "-3.0", Format(-3.0, typesystem.Prim{Tag: typesystem.Float}))
	assert.Equal(t, "NaN", Format(math.NaN(), typesystem.Prim{Tag: typesystem.Double}))
	assert.Equal(t, "null", Format(nil, tString))
	assert.Equal(t, "A", Format(int64(65), typesystem.Class{Name: "java/lang/Character"}))
}
