package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/token"
)

// ForEachUnit runs fn over every live unit on Options.Workers goroutines.
// Each goroutine owns one worker value from newWorker. A panic carrying an
// internal fault aborts only its unit: the unit records the fault and an
// I001 diagnostic is reported. Cancellation of the run context stops the
// remaining units and is returned.
func ForEachUnit[W any](ctx *PipelineContext, newWorker func() W, fn func(w W, u *modules.Unit)) error {
	units := ctx.LiveUnits()
	if len(units) == 0 {
		return nil
	}
	workers := max(1, min(ctx.Options.Workers, len(units)))

	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}
	queue := make(chan *modules.Unit)
	g, gctx := errgroup.WithContext(parent)
	g.SetLimit(workers + 1)

	g.Go(func() error {
		defer close(queue)
		for _, u := range units {
			select {
			case queue <- u:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			w := newWorker()
			for u := range queue {
				runUnit(ctx, u, func() { fn(w, u) })
			}
			return nil
		})
	}
	return g.Wait()
}

func runUnit(ctx *PipelineContext, u *modules.Unit, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var fault *diagnostics.InternalError
		switch v := r.(type) {
		case *diagnostics.InternalError:
			fault = v
		case error:
			if !errors.As(v, &fault) {
				fault = &diagnostics.InternalError{Err: v}
			}
		default:
			fault = &diagnostics.InternalError{Err: fmt.Errorf("%v", v)}
		}
		if fault.Unit == "" {
			fault.Unit = u.Path
		}
		u.Fault = fault
		debugf("unit %s aborted: %v\n%s", u.Path, fault, debug.Stack())
		ctx.Report(diagnostics.NewError(diagnostics.ErrI001, token.Span{File: u.Path}, fault.Err))
	}()
	fn()
}
