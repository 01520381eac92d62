package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/token"
)

type stageFunc struct {
	stage Stage
	fn    func(ctx *PipelineContext)
}

func (s stageFunc) Stage() Stage { return s.stage }

func (s stageFunc) Process(ctx *PipelineContext) *PipelineContext {
	s.fn(ctx)
	return ctx
}

func newTestContext(units int) *PipelineContext {
	opts := config.DefaultOptions()
	opts.Workers = 3
	ctx := NewContext(context.Background(), opts, nil)
	for i := range units {
		ctx.Units = append(ctx.Units, modules.NewUnit(string(rune('a'+i))+".unit.yaml", &ast.Unit{}))
	}
	return ctx
}

func TestStagesRunInOrder(t *testing.T) {
	var order []Stage
	record := func(s Stage) Processor {
		return stageFunc{s, func(*PipelineContext) { order = append(order, s) }}
	}
	ctx := New(record(StageParse), record(StageNames), record(StageTypes)).Run(newTestContext(0))

	assert.Equal(t, []Stage{StageParse, StageNames, StageTypes}, order)
	assert.Equal(t, order, ctx.Completed)
	assert.True(t, ctx.Succeeded())
	assert.Len(t, ctx.Timings, 3)
	assert.NotEqual(t, ctx.RunID.String(), NewContext(nil, nil, nil).RunID.String())
}

func TestErrorsGateLaterStages(t *testing.T) {
	ran := map[Stage]bool{}
	ctx := New(
		stageFunc{StageParse, func(c *PipelineContext) {
			ran[StageParse] = true
			c.Report(diagnostics.NewWarning(diagnostics.ErrS005, token.NoSpan, "x"))
		}},
		stageFunc{StageNames, func(c *PipelineContext) {
			ran[StageNames] = true
			c.Report(diagnostics.NewError(diagnostics.ErrS001, token.NoSpan, "A", ""))
			c.Report(diagnostics.NewError(diagnostics.ErrS001, token.NoSpan, "B", ""))
		}},
		stageFunc{StageTypes, func(*PipelineContext) { ran[StageTypes] = true }},
	).Run(newTestContext(0))

	assert.True(t, ran[StageParse])
	assert.True(t, ran[StageNames])
	assert.False(t, ran[StageTypes])
	assert.Equal(t, StageNames, ctx.FailedStage)
	assert.Equal(t, []Stage{StageParse}, ctx.Completed)
	// the failing stage still reports every independent error
	assert.Len(t, ctx.Diagnostics.WithCode(diagnostics.ErrS001), 2)
	assert.False(t, ctx.Succeeded())
}

func TestForEachUnitVisitsAllWithBoundedWorkers(t *testing.T) {
	ctx := newTestContext(20)
	var created atomic.Int32
	var mu sync.Mutex
	seen := map[string]int{}

	err := ForEachUnit(ctx, func() *int {
		created.Add(1)
		return new(int)
	}, func(w *int, u *modules.Unit) {
		*w++
		mu.Lock()
		seen[u.Path]++
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Len(t, seen, 20)
	for path, n := range seen {
		assert.Equal(t, 1, n, path)
	}
	assert.LessOrEqual(t, created.Load(), int32(3))
}

func TestInternalFaultAbortsOnlyItsUnit(t *testing.T) {
	ctx := newTestContext(4)
	var done atomic.Int32
	err := ForEachUnit(ctx, func() struct{} { return struct{}{} }, func(_ struct{}, u *modules.Unit) {
		switch u.Path {
		case "b.unit.yaml":
			panic(diagnostics.NewInternalError("", "missing bound list on %s", "p/T"))
		case "c.unit.yaml":
			panic(errors.New("plain failure"))
		}
		done.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), done.Load())

	faults := ctx.Diagnostics.WithCode(diagnostics.ErrI001)
	require.Len(t, faults, 2)
	assert.Equal(t, "b.unit.yaml", faults[0].Span.File)
	assert.Contains(t, faults[0].Message(), "missing bound list on p/T")

	live := ctx.LiveUnits()
	require.Len(t, live, 2)
	assert.Equal(t, "a.unit.yaml", live[0].Path)
	assert.Equal(t, "d.unit.yaml", live[1].Path)

	var fault *diagnostics.InternalError
	require.ErrorAs(t, ctx.Units[1].Fault, &fault)
	assert.Equal(t, "b.unit.yaml", fault.Unit)
}

func TestCancellationStopsRun(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := NewContext(parent, nil, nil)
	ran := false
	ctx = New(stageFunc{StageParse, func(*PipelineContext) { ran = true }}).Run(ctx)
	assert.False(t, ran)
	assert.ErrorIs(t, ctx.Fault, context.Canceled)
	assert.Equal(t, StageParse, ctx.FailedStage)
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "directives", StageDirectives.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.Len(t, Stages(), 6)
}
