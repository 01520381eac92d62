package cast

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

func newTestCaster(t *testing.T) *Caster {
	t.Helper()
	lib := symbols.NewMemoryLibrary("test",
		symbols.DefineClass("a/A", symbols.Public, nil, ""),
		symbols.DefineClass("a/B", symbols.Public, nil, "a/A"),
		symbols.DefineClass("a/C", symbols.Public|symbols.Final, nil, "a/B"),
	)
	return NewCaster(symbols.NewLinker(symbols.NewTable(lib)))
}

func ty(src string) typesystem.Type { return typesystem.MustParse(src) }

func TestNumericWidening(t *testing.T) {
	c := newTestCaster(t)
	tests := []struct {
		from, to string
		dist     int
	}{
		{"byte", "short", 1}, {"byte", "int", 2}, {"byte", "long", 3}, {"byte", "float", 4}, {"byte", "double", 5},
		{"short", "int", 1}, {"short", "long", 2}, {"short", "float", 3}, {"short", "double", 4},
		{"char", "int", 1}, {"char", "long", 2}, {"char", "float", 3}, {"char", "double", 4},
		{"int", "long", 1}, {"int", "float", 2}, {"int", "double", 3},
		{"long", "float", 1}, {"long", "double", 2},
		{"float", "double", 1},
	}
	for _, tt := range tests {
		up := c.Check(ty(tt.from), ty(tt.to))
		assert.Equal(t, NumberUpcast, up.Rank, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.dist, up.Distance, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, ReprPrimitive, up.Repr)

		down := c.Check(ty(tt.to), ty(tt.from))
		assert.LessOrEqual(t, down.Rank, Narrowing, "%s -> %s", tt.to, tt.from)
	}

	assert.Equal(t, Narrowing, c.Check(ty("int"), ty("byte")).Rank)
	assert.Equal(t, Narrowing, c.Check(ty("byte"), ty("char")).Rank)
	assert.Equal(t, Lossy, c.Check(ty("long"), ty("int")).Rank)
	assert.Equal(t, Lossy, c.Check(ty("double"), ty("float")).Rank)
	assert.Equal(t, Never, c.Check(ty("boolean"), ty("int")).Rank)
}

func TestClassHierarchyCasts(t *testing.T) {
	c := newTestCaster(t)

	up := c.Check(ty("a/C"), ty("a/A"))
	assert.Equal(t, Upcast, up.Rank)
	assert.Equal(t, 2, up.Distance)
	assert.Equal(t, 1, c.Check(ty("a/C"), ty("a/B")).Distance)
	assert.Equal(t, 3, c.Check(ty("a/C"), ty("java/lang/Object")).Distance)

	down := c.Check(ty("a/A"), ty("a/C"))
	assert.Equal(t, Downcast, down.Rank)
	assert.Equal(t, ReprCheckcast, down.Repr)
	assert.Equal(t, "a/C", down.Class)

	assert.Equal(t, Downcast, c.Check(ty("java/lang/Number"), ty("java/lang/Comparable")).Rank)
	assert.Equal(t, Never, c.Check(ty("java/lang/String"), ty("java/lang/Integer")).Rank)
	assert.Equal(t, NoData, c.Check(ty("a/Missing"), ty("a/A")).Rank)

	assert.Same(t, Identity, c.Check(ty("a/A"), ty("a/A")))
	assert.Same(t, c.Check(ty("a/C"), ty("a/A")), c.Check(ty("a/C"), ty("a/A")), "interned")
}

func TestBoxing(t *testing.T) {
	c := newTestCaster(t)

	box := c.Check(ty("int"), ty("java/lang/Integer"))
	assert.Equal(t, Boxing, box.Rank)
	assert.Equal(t, 1, box.Distance)
	assert.Equal(t, ReprBox, box.Repr)

	unbox := c.Check(ty("java/lang/Integer"), ty("int"))
	assert.Equal(t, Unboxing, unbox.Rank)
	assert.Equal(t, 1, unbox.Distance)
	assert.Equal(t, ReprUnbox, unbox.Repr)

	obj := c.Check(ty("int"), ty("java/lang/Object"))
	assert.Equal(t, Boxing, obj.Rank)
	assert.Equal(t, 3, obj.Distance, "box, then Integer -> Number -> Object")
	assert.Equal(t, 2, c.Check(ty("int"), ty("java/lang/Number")).Distance)

	widenBox := c.Check(ty("int"), ty("java/lang/Long"))
	assert.Equal(t, Boxing, widenBox.Rank)
	assert.Equal(t, 2, widenBox.Distance)
	assert.Equal(t, typesystem.Long, widenBox.Target)

	assert.Equal(t, Narrowing, c.Check(ty("int"), ty("java/lang/Short")).Rank)
	unboxWiden := c.Check(ty("java/lang/Integer"), ty("long"))
	assert.Equal(t, Unboxing, unboxWiden.Rank)
	assert.Equal(t, 2, unboxWiden.Distance)

	assert.Equal(t, PrimitiveToObject, c.Check(ty("int"), ty("java/lang/String")).Rank)
	assert.Equal(t, ObjectToPrimitive, c.Check(ty("java/lang/String"), ty("int")).Rank)
	assert.Equal(t, Never, c.Check(ty("java/lang/Boolean"), ty("int")).Rank)
}

func TestGenericCasts(t *testing.T) {
	c := newTestCaster(t)
	tests := []struct {
		from, to string
		rank     Rank
	}{
		{"java/util/ArrayList<java/lang/String>", "java/util/List<java/lang/String>", Upcast},
		{"java/util/ArrayList<java/lang/String>", "java/util/List<java/lang/Integer>", Never},
		{"java/util/ArrayList<java/lang/String>", "java/util/List<? extends java/lang/CharSequence>", Upcast},
		{"java/util/ArrayList<java/lang/String>", "java/util/List<? extends java/lang/Number>", Never},
		{"java/util/List<java/lang/Object>", "java/util/Collection<? super java/lang/String>", Upcast},
		{"java/util/List<java/lang/String>", "java/util/Collection<? super java/lang/Object>", Never},
		{"java/util/List<java/lang/String>", "java/lang/Iterable<?>", Upcast},
		{"java/util/List<? extends java/lang/String>", "java/util/List<? extends java/lang/Object>", Upcast},
		{"java/util/HashMap<java/lang/String, java/lang/Integer>", "java/util/Map<java/lang/String>", GenericArity},
		{"java/util/ArrayList", "java/util/List<java/lang/String>", Upcast},
		{"java/util/ArrayList<>", "java/util/List<java/lang/String>", Upcast},
		{"java/util/ArrayList<java/lang/String>", "java/util/List", Upcast},
	}
	for _, tt := range tests {
		got := c.Check(ty(tt.from), ty(tt.to))
		assert.Equal(t, tt.rank, got.Rank, "%s -> %s: %s", tt.from, tt.to, spew.Sdump(got))
	}

	// argument distances are not aggregated
	assert.Equal(t, 1, c.Check(ty("java/util/ArrayList<a/C>"), ty("java/util/List<? extends a/A>")).Distance)
}

func TestArrayCasts(t *testing.T) {
	c := newTestCaster(t)
	tests := []struct {
		from, to string
		rank     Rank
		dist     int
	}{
		{"java/lang/String[]", "java/lang/Object[]", Upcast, 1},
		{"a/C[][]", "a/A[][]", Upcast, 2},
		{"java/lang/String[]", "java/lang/Object", Upcast, 2},
		{"int[]", "java/lang/Cloneable", Upcast, 1},
		{"int[][]", "java/lang/Object[]", Upcast, 2},
		{"int[]", "java/lang/Object[]", Never, 0},
		{"int[]", "long[]", Never, 0},
		{"java/lang/Object[]", "java/lang/String[]", Downcast, 0},
		{"java/lang/Object", "int[]", Downcast, 0},
		{"java/lang/String", "int[]", Never, 0},
	}
	for _, tt := range tests {
		got := c.Check(ty(tt.from), ty(tt.to))
		assert.Equal(t, tt.rank, got.Rank, "%s -> %s", tt.from, tt.to)
		if tt.rank.OK() {
			assert.Equal(t, tt.dist, got.Distance, "%s -> %s", tt.from, tt.to)
		}
	}
}

func TestTypeParameterBounds(t *testing.T) {
	c := newTestCaster(t)
	c.Scope = func(name string) []typesystem.Type {
		if name == "T" {
			return []typesystem.Type{ty("java/lang/Number")}
		}
		return nil
	}
	T := typesystem.Param{Name: "T"}

	assert.Same(t, Identity, c.Check(T, ty("java/lang/Number")))
	assert.Equal(t, 1, c.Check(T, ty("java/lang/Object")).Distance)
	assert.Equal(t, Downcast, c.Check(ty("java/lang/Integer"), T).Rank)
	assert.Equal(t, Never, c.Check(T, ty("java/lang/String")).Rank)
	assert.Equal(t, Upcast, c.Check(typesystem.Param{Name: "U"}, ty("java/lang/Object")).Rank)
}

func TestDiagnosticCodes(t *testing.T) {
	seen := make(map[diagnostics.ErrorCode]Rank)
	for r := Never; r < Upcast; r++ {
		code := DiagnosticCode(r)
		require.NotEmpty(t, code, r.String())
		_, dup := seen[code]
		assert.False(t, dup, "rank %s shares code %s", r, code)
		seen[code] = r
	}
	assert.Empty(t, DiagnosticCode(Boxing))
	assert.Equal(t, "NumberUpcast", NumberUpcast.String())
	assert.Equal(t, "Never", Never.String())
	assert.Equal(t, "Rank(9)", Rank(9).String())
}

func TestCommonAncestor(t *testing.T) {
	c := newTestCaster(t)
	tests := []struct {
		a, b, want string
	}{
		{"java/lang/Integer", "java/lang/Long", "java/lang/Number"},
		{"a/C", "a/B", "a/B"},
		{"a/C", "java/lang/String", "java/lang/Object"},
		{"int", "long", "java/lang/Number"},
		{"int", "java/lang/Integer", "java/lang/Integer"},
		{"java/lang/Integer", "java/lang/String", "java/io/Serializable"},
		{"a/C[]", "a/B[]", "a/B[]"},
		{"int[]", "long[]", "java/lang/Cloneable"},
		{"java/util/ArrayList<java/lang/String>", "java/util/ArrayList<java/lang/String>", "java/util/ArrayList<java/lang/String>"},
		{"java/util/ArrayList<java/lang/Integer>", "java/util/ArrayList<java/lang/Long>", "java/util/ArrayList<? extends java/lang/Number>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.CommonAncestor(ty(tt.a), ty(tt.b)).String(), "%s, %s", tt.a, tt.b)
	}
}
