package symbols

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/typesystem"
)

func newTestLinker(t *testing.T, classes ...*Symbol) *Linker {
	t.Helper()
	return NewLinker(NewTable(NewMemoryLibrary("test", classes...)))
}

func TestTableLazyResolve(t *testing.T) {
	lib := NewMemoryLibrary("lib", DefineClass("p/A", Public, nil, ""))
	table := NewTable(lib)

	assert.Nil(t, table.Lookup("p/A"), "library classes load lazily")
	assert.True(t, table.HasPackage("p"))

	a, err := table.Resolve("p/A")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "lib", a.Origin)
	assert.Same(t, a, table.Lookup("p/A"))

	missing, err := table.Resolve("p/Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = table.Declare(NewClass("p/A", Public, ""))
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "lib", dup.Previous)

	require.NoError(t, table.Declare(NewClass("p/B", Public, "")))
	assert.Equal(t, []string{"p/A", "p/B"}, table.PackageClasses("p"))
}

func TestHierarchyDistances(t *testing.T) {
	l := newTestLinker(t)
	h := l.HierarchyOf("java/util/ArrayList")
	require.NotNil(t, h)

	want := map[string]int{
		"java/util/ArrayList":  0,
		"java/lang/Object":     1,
		"java/util/List":       1,
		"java/lang/Cloneable":  1,
		"java/util/Collection": 2,
		"java/lang/Iterable":   3,
	}
	for name, d := range want {
		got, ok := h.Distance(name)
		assert.True(t, ok, name)
		assert.Equal(t, d, got, name)
	}
	assert.Equal(t, []string{"java/util/ArrayList", "java/lang/Object"}, h.SuperChain())

	ih := l.HierarchyOf("java/util/List")
	require.NotNil(t, ih)
	d, ok := ih.Distance("java/lang/Object")
	assert.True(t, ok, "interfaces reach Object")
	assert.Equal(t, 1, d)

	assert.True(t, l.IsSubclassOf("java/lang/Integer", "java/lang/Number"))
	assert.False(t, l.IsSubclassOf("java/lang/Number", "java/lang/Integer"))
}

func TestHierarchyCycle(t *testing.T) {
	l := newTestLinker(t,
		DefineClass("c/A", Public, nil, "c/B"),
		DefineClass("c/B", Public, nil, "c/A"),
		DefineClass("c/C", Public, nil, "c/A"),
	)
	_, err := l.Hierarchy(l.ResolveQualifiedName("c/A"))
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "c/A", cycle.Class)

	// a class below the cycle is not itself cyclic
	h, err := l.Hierarchy(l.ResolveQualifiedName("c/C"))
	require.NoError(t, err)
	assert.True(t, h.Contains("c/B"))
}

func TestOverloadSets(t *testing.T) {
	l := newTestLinker(t)
	list := l.ResolveQualifiedName("java/util/ArrayList")
	require.NotNil(t, list)

	size := l.DeclaredMembers(list, "size", MethodSymbol)
	require.Len(t, size.Members, 1, "Collection.size is overridden")
	assert.Equal(t, "java/util/ArrayList", size.Members[0].Owner)
	assert.Same(t, size, l.DeclaredMembers(list, "size", MethodSymbol), "cached per generation")

	toString := l.DeclaredMembers(list, "toString", MethodSymbol)
	require.Len(t, toString.Members, 1)
	assert.Equal(t, "java/lang/Object", toString.Members[0].Owner)

	ctors := l.DeclaredMembers(list, "<init>", MethodSymbol)
	assert.Len(t, ctors.Members, 2, "constructors are not inherited")

	str := l.ResolveQualifiedName("java/lang/String")
	valueOf := l.DeclaredMembers(str, "valueOf", MethodSymbol)
	assert.Len(t, valueOf.WithArgCount(1), 4)
	assert.Len(t, l.DeclaredMembers(str, "format", MethodSymbol).WithArgCount(3), 1, "varargs")

	assert.Contains(t, l.MemberNames(list, MethodSymbol), "hashCode")

	gen := l.Generation()
	l.Clear()
	assert.NotEqual(t, gen, l.Generation())
	assert.NotSame(t, size, l.DeclaredMembers(list, "size", MethodSymbol))
}

func TestTypeArgumentsFor(t *testing.T) {
	l := newTestLinker(t)
	str := typesystem.Class{Name: "java/lang/String"}
	inst := typesystem.Generic{Name: "java/util/ArrayList", Args: []typesystem.Type{str}}

	args, ok := l.TypeArgumentsFor(inst, "java/lang/Iterable")
	require.True(t, ok)
	require.Len(t, args, 1)
	assert.True(t, typesystem.Equal(str, args[0]))

	m := typesystem.MustParse("java/util/HashMap<java/lang/String, java/lang/Integer>")
	args, ok = l.TypeArgumentsFor(m, "java/util/Map")
	require.True(t, ok)
	assert.Equal(t, "java/lang/Integer", args[1].String())

	_, ok = l.TypeArgumentsFor(typesystem.Class{Name: "java/util/ArrayList"}, "java/util/List")
	assert.False(t, ok, "raw source")

	args, ok = l.TypeArgumentsFor(typesystem.Class{Name: "java/lang/Integer"}, "java/lang/Comparable")
	require.True(t, ok)
	assert.Equal(t, "java/lang/Integer", args[0].String())
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		decl string
		want Import
	}{
		{"java/util/List", Import{Kind: SingleTypeImport, Name: "java/util/List"}},
		{"java.util.*", Import{Kind: OnDemandImport, Name: "java/util"}},
		{"static java/lang/Math.max", Import{Kind: StaticImport, Name: "java/lang/Math", Member: "max"}},
		{"static java.lang.Math.*", Import{Kind: StaticOnDemandImport, Name: "java/lang/Math"}},
	}
	for _, tt := range tests {
		got, err := ParseImport(tt.decl)
		require.NoError(t, err, tt.decl)
		assert.Equal(t, tt.want, got, tt.decl)
		assert.NotEmpty(t, got.String())
	}
	for _, bad := range []string{"", "static Math", "a/*/b", "/x"} {
		_, err := ParseImport(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveClassName(t *testing.T) {
	outer := DefineClass("app/Outer", Public, nil, "")
	inner := DefineClass("app/Outer$Inner", Public|Static, nil, "")
	outer.AddInner(inner)
	l := newTestLinker(t, outer, inner,
		DefineClass("app/Sibling", Public, nil, ""),
		DefineClass("other/List", Public, nil, ""),
	)

	imports := NewImportList("app")
	for _, d := range []string{"java/util/*", "static java/lang/Math.*"} {
		imp, err := ParseImport(d)
		require.NoError(t, err)
		require.NoError(t, imports.Add(imp))
	}
	from := l.ResolveQualifiedName("app/Outer")

	resolve := func(name string) string {
		got, amb := l.ResolveClassName(name, imports, from)
		require.Empty(t, amb, name)
		return got
	}
	assert.Equal(t, "app/Outer$Inner", resolve("Inner"))
	assert.Equal(t, "app/Sibling", resolve("Sibling"))
	assert.Equal(t, "java/util/List", resolve("List"))
	assert.Equal(t, "java/lang/String", resolve("String"))
	assert.Equal(t, "java/util/Map$Entry", resolve("Map.Entry"))
	assert.Equal(t, "java/util/Map$Entry", resolve("java/util/Map/Entry"))
	assert.Equal(t, "", resolve("Missing"))

	amb, err := ParseImport("other/*")
	require.NoError(t, err)
	require.NoError(t, imports.Add(amb))
	_, candidates := l.ResolveClassName("List", imports, from)
	assert.ElementsMatch(t, []string{"java/util/List", "other/List"}, candidates)

	single, _ := ParseImport("other/List")
	require.NoError(t, imports.Add(single))
	assert.Equal(t, "other/List", resolve("List"), "single-type import wins")

	clash, _ := ParseImport("java/util/List")
	assert.Error(t, imports.Add(clash))

	assert.Equal(t, []string{"java/lang/Math"}, imports.StaticOwners("max"))
}

func TestSymbolAttributes(t *testing.T) {
	f := NewField("p/A", "X", Public|Static|Final, typesystem.Prim{Tag: typesystem.Int})
	_, ok := f.Constant()
	assert.False(t, ok)
	f.SetConstant(int32(3))
	f.SetConstant(int32(4))
	v, ok := f.Constant()
	assert.True(t, ok)
	assert.Equal(t, int32(3), v)

	assert.Equal(t, "public static final", f.Modifiers.String())
	assert.Equal(t, "package-private", Modifier(0).Visibility())
	m, ok := ParseModifier("abstract")
	assert.True(t, ok)
	assert.Equal(t, Abstract, m)
}
