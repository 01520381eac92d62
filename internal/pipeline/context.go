package pipeline

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/symbols"
)

// DebugLogger receives stage progress. It discards output unless the driver
// redirects it.
var DebugLogger = log.New(io.Discard, "[pipeline] ", log.Ltime|log.Lmicroseconds)

func debugf(format string, args ...any) {
	DebugLogger.Printf(format, args...)
}

// Timing records how long a stage took.
type Timing struct {
	Stage   Stage
	Elapsed time.Duration
}

// PipelineContext carries the state of one run through the stages.
type PipelineContext struct {
	Context context.Context
	RunID   uuid.UUID
	Options *config.Options

	Sources []modules.Source
	Units   []*modules.Unit
	Table   *symbols.Table
	// Registry maps source-declared classes to their units.
	Registry *modules.Registry

	Diagnostics *diagnostics.Collector

	// FailedStage is the stage after which the run stopped, or StageNone.
	FailedStage Stage
	Completed   []Stage
	Timings     []Timing
	// Fault is a run-level failure: cancellation or impossible internal state.
	Fault error
}

// NewContext creates the context for one run.
func NewContext(parent context.Context, opts *config.Options, table *symbols.Table) *PipelineContext {
	if parent == nil {
		parent = context.Background()
	}
	if opts == nil {
		opts = config.DefaultOptions()
	}
	if table == nil {
		table = symbols.NewTable()
	}
	return &PipelineContext{
		Context:     parent,
		RunID:       uuid.New(),
		Options:     opts,
		Table:       table,
		Registry:    modules.NewRegistry(),
		Diagnostics: diagnostics.NewCollector(),
	}
}

// Err reports cancellation of the run.
func (c *PipelineContext) Err() error {
	if c.Context == nil {
		return nil
	}
	return c.Context.Err()
}

// Report adds a diagnostic and returns whether it is an error.
func (c *PipelineContext) Report(d *diagnostics.DiagnosticError) bool {
	return c.Diagnostics.Report(d)
}

// LiveUnits returns the units not aborted by an internal fault.
func (c *PipelineContext) LiveUnits() []*modules.Unit {
	out := make([]*modules.Unit, 0, len(c.Units))
	for _, u := range c.Units {
		if u.Fault == nil {
			out = append(out, u)
		}
	}
	return out
}

// Succeeded reports whether every stage ran without errors.
func (c *PipelineContext) Succeeded() bool {
	return c.FailedStage == StageNone && c.Fault == nil
}
