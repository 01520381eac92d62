package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/typesystem"
)

const unitSrc = `package: app
classes:
  - name: Box
    modifiers: [public]
    typeParams: [{name: T, bounds: [Number]}]
    implements: [Comparable<Box<T>>]
    fields:
      - {name: value, type: T, modifiers: [private, final]}
      - {name: LIMIT, type: int, modifiers: [static, final], value: 10}
    methods:
      - {name: get, returns: T}
      - name: map
        typeParams: [{name: R}]
        params: ["R[]"]
        returns: Box<R>
    inner:
      - name: Node
        fields:
          - {name: item, type: T}
  - name: Shape
    modifiers: [interface]
    fields:
      - {name: SIDES, type: int, value: 0}
    methods:
      - {name: area, returns: double}
  - name: Color
    modifiers: [enum]
`

func declareUnit(t *testing.T, src string) ([]*Class, []*diagnostics.DiagnosticError) {
	t.Helper()
	var u ast.Unit
	require.NoError(t, yaml.Unmarshal([]byte(src), &u))
	return Declare(u.Package, u.Classes, "test", false)
}

func TestDeclareUnit(t *testing.T) {
	classes, errs := declareUnit(t, unitSrc)
	require.Empty(t, errs)
	require.Len(t, classes, 4)

	box := classes[0]
	assert.Equal(t, "app/Box", box.Symbol.Name)
	super, ifaces := box.Symbol.Supers()
	assert.Equal(t, config.ObjectClass, super)
	assert.Equal(t, []string{"Comparable"}, ifaces)
	assert.False(t, box.Symbol.Resolved())

	sig := box.Symbol.Signature()
	require.Len(t, sig.TypeParams, 1)
	assert.Equal(t, "Number", sig.TypeParams[0].Bounds[0].String())
	assert.Equal(t, "Comparable<Box<T>>", sig.SuperTypes[1].String())
	assert.Equal(t, typesystem.Param{Name: "T"}, box.Field("value").Symbol.Signature().Type)

	limit := box.Field("LIMIT").Symbol
	require.NotNil(t, limit.ConstantExpr)
	assert.Equal(t, 10, limit.ConstantExpr.(*ast.Expr).Lit)

	mapM := box.Symbol.Member("map", symbols.MethodSymbol).Signature()
	assert.Equal(t, typesystem.Param{Name: "R", Dim: 1}, mapM.Params[0])
	assert.Equal(t, "Box<R>", mapM.Return.String())

	// a class without constructors gets a synthetic one
	ctor := box.Symbol.Member(config.ConstructorName, symbols.MethodSymbol)
	require.NotNil(t, ctor)
	assert.True(t, ctor.Modifiers.Has(symbols.Synthetic))

	node := classes[1]
	assert.Equal(t, "app/Box$Node", node.Symbol.Name)
	assert.Same(t, box, node.Outer)
	assert.Equal(t, typesystem.Param{Name: "T"}, node.Field("item").Symbol.Signature().Type)
	assert.Equal(t, "app/Box$Node", box.Symbol.Inner["Node"].Name)

	shape := classes[2].Symbol
	assert.True(t, shape.IsAbstract())
	sides := shape.Member("SIDES", symbols.FieldSymbol)
	assert.True(t, sides.IsStatic() && sides.IsFinal())
	area := shape.Member("area", symbols.MethodSymbol)
	assert.True(t, area.Modifiers.Has(symbols.Abstract|symbols.Public))
	assert.Nil(t, shape.Member(config.ConstructorName, symbols.MethodSymbol))

	color := classes[3].Symbol
	super, _ = color.Supers()
	assert.Equal(t, config.EnumClass, super)
	assert.Equal(t, "java/lang/Enum<app/Color>", color.Signature().SuperTypes[0].String())
}

func TestDeclareErrors(t *testing.T) {
	_, errs := declareUnit(t, `package: app
classes:
  - name: Bad
    modifiers: [public, private, sealed]
    fields:
      - {name: x, type: "List<"}
    methods:
      - {name: f, modifiers: [varargs], params: [int]}
`)
	require.Len(t, errs, 4)
	var lines []int
	for _, e := range errs {
		assert.Equal(t, diagnostics.ErrP003, e.Code)
		lines = append(lines, e.Span.Line)
	}
	assert.Equal(t, []int{3, 3, 6, 8}, lines)
}

const libSrc = `package: lib/geo
classes:
  - name: Shape
    modifiers: [public, interface]
    methods:
      - {name: area, returns: double}
  - name: lib/geo/Circle
    modifiers: [public]
    implements: [lib/geo/Shape]
    fields:
      - {name: radius, type: double, modifiers: [public, final]}
    methods:
      - {name: <init>, modifiers: [public], params: [double]}
      - {name: area, modifiers: [public], returns: double}
    inner:
      - name: Builder
        modifiers: [public, static]
        methods:
          - {name: build, modifiers: [public], returns: lib/geo/Circle}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestYAMLLibrary(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.yaml", libSrc)
	lib, err := LoadYAMLLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/geo/Circle", "lib/geo/Circle$Builder", "lib/geo/Shape"}, lib.Content())

	table := symbols.NewTable(lib)
	linker := symbols.NewLinker(table)
	circle := linker.ResolveQualifiedName("lib/geo/Circle")
	require.NotNil(t, circle)
	assert.True(t, circle.Resolved())
	assert.True(t, linker.IsSubclassOf("lib/geo/Circle", "lib/geo/Shape"))
	assert.Equal(t, path, circle.Origin)
}

func TestYAMLLibraryRejectsBadDeclarations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "classes:\n  - name: x/Y\n    modifiers: [bogus]\n")
	_, err := LoadYAMLLibrary(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestSQLiteIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "geo.yaml", libSrc)
	out := filepath.Join(dir, "geo.db")

	n, err := BuildIndex(context.Background(), out, []string{src})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lib, err := OpenSQLiteLibrary(out)
	require.NoError(t, err)
	defer lib.Close()
	assert.Equal(t, []string{"lib/geo/Circle", "lib/geo/Circle$Builder", "lib/geo/Shape"}, lib.Content())

	builder, err := lib.Get("lib/geo/Circle$Builder")
	require.NoError(t, err)
	require.NotNil(t, builder)
	assert.True(t, builder.IsStatic())
	build := builder.Member("build", symbols.MethodSymbol)
	require.NotNil(t, build)
	assert.Equal(t, "lib/geo/Circle", build.Signature().Return.String())

	// the nest host was decoded together with its inner class
	circle, err := lib.Get("lib/geo/Circle")
	require.NoError(t, err)
	assert.Equal(t, "lib/geo/Circle$Builder", circle.Inner["Builder"].Name)
	assert.Equal(t, "radius", circle.Member("radius", symbols.FieldSymbol).Name)

	missing, err := lib.Get("lib/geo/Square")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// rebuilding replaces rows instead of failing
	n, err = BuildIndex(context.Background(), out, []string{src})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLoadLibrariesAndCollectUnits(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "libs/geo.yaml", libSrc)
	idx := filepath.Join(dir, "libs/geo.db")
	_, err := BuildIndex(context.Background(), idx, []string{src})
	require.NoError(t, err)

	libs, err := LoadLibraries([]string{src, idx})
	require.NoError(t, err)
	require.Len(t, libs.List, 2)
	assert.IsType(t, &symbols.MemoryLibrary{}, libs.List[0])
	assert.IsType(t, &SQLiteLibrary{}, libs.List[1])
	require.NoError(t, libs.Close())

	a := writeFile(t, dir, "src/a.unit.yaml", "package: p\n")
	b := writeFile(t, dir, "src/sub/b.unit.yml", "package: p\n")
	writeFile(t, dir, "src/notes.yaml", "x: 1\n")
	got, err := CollectUnits([]string{filepath.Join(dir, "src"), a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	sources, err := ReadSources(got)
	require.NoError(t, err)
	assert.Equal(t, "package: p\n", string(sources[0].Data))

	_, err = CollectUnits([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestUnitExclusion(t *testing.T) {
	u := NewUnit("src/point.unit.yaml", &ast.Unit{Package: "app"})
	assert.Equal(t, "point", u.Name())
	assert.Equal(t, "app", u.Package())
	m := symbols.NewMethod("app/P", "f", 0, nil)
	assert.False(t, u.Excluded(m))
	u.Exclude(m)
	assert.True(t, u.Excluded(m))
}
