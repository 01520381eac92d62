package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
)

func run(t *testing.T, sources ...modules.Source) *pipeline.PipelineContext {
	t.Helper()
	opts := config.DefaultOptions()
	opts.Workers = 2
	ctx := pipeline.NewContext(context.Background(), opts, nil)
	ctx.Sources = sources
	return pipeline.New(Processor{}).Run(ctx)
}

func src(path, data string) modules.Source {
	return modules.Source{Path: path, Data: []byte(data)}
}

func TestParseDeclaresClasses(t *testing.T) {
	ctx := run(t, src("a.unit.yaml", `package: com.acme
imports: [java.util.List]
classes:
  - name: Widget
    modifiers: [public]
    fields:
      - {name: size, type: int}
    inner:
      - name: Part
`))
	require.True(t, ctx.Succeeded(), "%v", ctx.Diagnostics.Diagnostics())
	require.Len(t, ctx.Units, 1)

	u := ctx.Units[0]
	assert.Equal(t, "com/acme", u.Package())
	assert.Equal(t, "com/acme", u.Imports.Package)
	require.Len(t, u.Classes, 2)
	assert.Equal(t, "com/acme/Widget", u.Classes[0].Symbol.Name)
	assert.Equal(t, "com/acme/Widget$Part", u.Classes[1].Symbol.Name)
	assert.Equal(t, "a.unit.yaml", u.Classes[0].Symbol.Span.File)

	assert.NotNil(t, ctx.Table.Lookup("com/acme/Widget"))
	pu, cls := ctx.Registry.Lookup("com/acme/Widget$Part")
	assert.Same(t, u, pu)
	assert.Same(t, u.Classes[1], cls)
}

func TestBrokenUnitIsDropped(t *testing.T) {
	ctx := run(t,
		src("bad.unit.yaml", "package: p\nclasses:\n  - name: [\n"),
		src("good.unit.yaml", "package: p\nclasses:\n  - name: Fine\n"),
		src("empty.unit.yaml", ""),
	)
	assert.Equal(t, pipeline.StageParse, ctx.FailedStage)
	p001 := ctx.Diagnostics.WithCode(diagnostics.ErrP001)
	require.Len(t, p001, 2)
	assert.Equal(t, "bad.unit.yaml", p001[0].Span.File)
	assert.Equal(t, "empty.unit.yaml", p001[1].Span.File)

	require.Len(t, ctx.Units, 1)
	assert.Equal(t, "good.unit.yaml", ctx.Units[0].Path)
	assert.NotNil(t, ctx.Table.Lookup("p/Fine"))
}

func TestUnknownKeysAreRejected(t *testing.T) {
	ctx := run(t, src("x.unit.yaml", "package: p\nclass:\n  - name: A\n"))
	require.Len(t, ctx.Diagnostics.WithCode(diagnostics.ErrP001), 1)
	assert.Empty(t, ctx.Units)
}

func TestDuplicateClass(t *testing.T) {
	ctx := run(t,
		src("a.unit.yaml", "package: p\nclasses:\n  - name: Twice\n    modifiers: [public]\n"),
		src("b.unit.yaml", "package: p\nclasses:\n  - name: Twice\n  - name: Once\n"),
	)
	dups := ctx.Diagnostics.WithCode(diagnostics.ErrP002)
	require.Len(t, dups, 1)
	assert.Equal(t, "b.unit.yaml", dups[0].Span.File)

	require.Len(t, ctx.Units, 2)
	assert.Len(t, ctx.Units[1].Classes, 1)
	assert.True(t, ctx.Table.Lookup("p/Twice").Modifiers.Has(symbols.Public), "first declaration wins")
}

func TestInvalidDeclaration(t *testing.T) {
	ctx := run(t, src("m.unit.yaml", "package: p\nclasses:\n  - name: A\n    modifiers: [public, private]\n"))
	d := ctx.Diagnostics.WithCode(diagnostics.ErrP003)
	require.Len(t, d, 1)
	assert.Equal(t, "m.unit.yaml", d[0].Span.File)
}

func TestErrorSpanLine(t *testing.T) {
	_, err := Decode(src("l.unit.yaml", "package: p\nclasses:\n  - name: A\n   bad: [\n"))
	require.Error(t, err)
	assert.Positive(t, errorSpan("l.unit.yaml", err).Line)
}

func TestArrayParamsInFlowLists(t *testing.T) {
	ctx := run(t,
		src("plain.unit.yaml", "package: p\nclasses:\n  - name: A\n    methods:\n      - {name: m, params: [int[]]}\n"),
		src("quoted.unit.yaml", "package: p\nclasses:\n  - name: B\n    methods:\n      - {name: m, params: [\"int[]\", String]}\n"),
		src("block.unit.yaml", "package: p\nclasses:\n  - name: C\n    methods:\n      - name: m\n        params:\n          - int[]\n"),
	)
	p001 := ctx.Diagnostics.WithCode(diagnostics.ErrP001)
	require.Len(t, p001, 1, "brackets end a plain scalar inside a flow list")
	assert.Equal(t, "plain.unit.yaml", p001[0].Span.File)

	require.Len(t, ctx.Units, 2)
	assert.Equal(t, []string{"int[]", "String"}, ctx.Units[0].Classes[0].Decl.Methods[0].Params)
	assert.Equal(t, []string{"int[]"}, ctx.Units[1].Classes[0].Decl.Methods[0].Params)
}
