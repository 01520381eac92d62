package typesystem

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"double[][]", "double[][]"},
		{"java/lang/String", "java/lang/String"},
		{"java.lang.String[]", "java/lang/String[]"},
		{"java/util/Map<K, ? extends V>", "java/util/Map<K, ? extends V>"},
		{"java/util/List<? super java/lang/Integer>[]", "java/util/List<? super java/lang/Integer>[]"},
		{"java/util/List<?>", "java/util/List<?>"},
		{"Outer<T>.Inner<U>[]", "Outer<T>.Inner<U>[]"},
		{"Outer<T>.Inner", "Outer<T>.Inner"},
		{"java/util/ArrayList<>", "java/util/ArrayList<>"},
		{"Box<int[]>", "Box<int[]>"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, got.String(), tt.src)
	}
}

func TestParseStructure(t *testing.T) {
	got := MustParse("Outer<T>.Inner<U>[]")
	g, ok := got.(Generic)
	require.True(t, ok, spew.Sdump(got))
	assert.Equal(t, "Outer", g.Name)
	assert.Equal(t, 1, g.Dim)
	require.NotNil(t, g.Sub)
	assert.Equal(t, "Inner", g.Sub.Name)
	assert.Equal(t, "Outer$Inner", ClassName(g))
	assert.Equal(t, Class{Name: "Outer$Inner", Dim: 1}, Raw(g))

	d := MustParse("java/util/ArrayList<>").(Generic)
	assert.True(t, IsDiamond(d.Args))
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "List<", "List<int,>", "?", "int[", "List<? foo X>", "void[]", "List<void>", "A B"} {
		_, err := Parse(src)
		assert.Error(t, err, "%q", src)
	}
}

func TestApplySubst(t *testing.T) {
	m := MustParse("java/util/Map<K, java/util/List<V>>")
	m = ReplaceClass(m, "K", Param{Name: "K"})
	m = ReplaceClass(m, "V", Param{Name: "V"})
	assert.ElementsMatch(t, []string{"K", "V"}, m.FreeTypeVariables())

	s := NewSubst([]string{"K", "V"}, []Type{Class{Name: "java/lang/String"}, Prim{Tag: Int, Dim: 1}})
	got := m.Apply(s)
	assert.Equal(t, "java/util/Map<java/lang/String, java/util/List<int[]>>", got.String())
	// receiver untouched
	assert.Equal(t, "java/util/Map<K, java/util/List<V>>", m.String())

	arr := Param{Name: "T", Dim: 2}.Apply(Subst{"T": Class{Name: "X", Dim: 1}})
	assert.Equal(t, "X[][][]", arr.String())
}

func TestInferredResolvesOnce(t *testing.T) {
	g := MustParse("java/util/ArrayList<>").(Generic)
	inf := g.Args[0].(*Inferred)
	assert.True(t, Equal(inf, NewInferred()))

	str := Class{Name: "java/lang/String"}
	require.True(t, inf.Resolve([]Type{str}))
	assert.False(t, inf.Resolve([]Type{Class{Name: "java/lang/Integer"}}))

	// every holder of the placeholder sees the inferred arguments
	assert.Equal(t, "java/util/ArrayList<java/lang/String>", g.String())
	assert.False(t, IsDiamond(g.Args))
	assert.True(t, Equal(g, MustParse("java/util/ArrayList<java/lang/String>")))
	assert.Len(t, g.Apply(Subst{"X": str}).(Generic).Args, 1)
}

func TestEqual(t *testing.T) {
	a := MustParse("java/util/Map<K, ? extends V>")
	b := MustParse("java/util/Map<K, ? extends V>")
	c := MustParse("java/util/Map<K, ? super V>")
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(Prim{Tag: Int}, Class{Name: "int"}))
}

func TestPrimTags(t *testing.T) {
	tag, ok := Unwrap("java/lang/Integer")
	require.True(t, ok)
	assert.Equal(t, Int, tag)
	assert.Equal(t, "java/lang/Character", Char.Wrapper())
	_, ok = Unwrap("java/lang/Void")
	assert.False(t, ok)
	assert.True(t, Char.Numeric())
	assert.False(t, Boolean.Numeric())
}
