package pipeline

import (
	"time"
)

// Processor is one pipeline stage. It processes every live unit before
// returning.
type Processor interface {
	Stage() Stage
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. A stage that leaves an error-severity
// diagnostic, or a run-level fault, stops the pipeline after that stage; the
// stage is recorded in FailedStage.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		stage := processor.Stage()
		if err := ctx.Err(); err != nil {
			ctx.Fault = err
			ctx.FailedStage = stage
			break
		}

		start := time.Now()
		debugf("run %s: stage %s starting", ctx.RunID, stage)
		ctx = processor.Process(ctx)
		ctx.Timings = append(ctx.Timings, Timing{Stage: stage, Elapsed: time.Since(start)})

		if ctx.Fault != nil || ctx.Diagnostics.HasErrors() {
			ctx.FailedStage = stage
			debugf("run %s: stage %s failed", ctx.RunID, stage)
			break
		}
		ctx.Completed = append(ctx.Completed, stage)
	}
	return ctx
}
