package main

import (
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	"github.com/pterm/pterm"

	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/backend"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/parser"
	"github.com/funvibe/classcore/internal/pipeline"
)

var (
	SuccessStyle = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	ErrorStyle   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	SkippedStyle = pterm.NewStyle(pterm.FgGray)
)

// printSummary renders the per-stage table and a final banner.
func printSummary(w io.Writer, ctx *pipeline.PipelineContext, mode diagnostics.ColorMode) {
	if mode == diagnostics.ColorNever {
		pterm.DisableStyling()
		defer pterm.EnableStyling()
	}

	timings := make(map[pipeline.Stage]time.Duration, len(ctx.Timings))
	for _, t := range ctx.Timings {
		timings[t.Stage] = t.Elapsed
	}
	data := pterm.TableData{{"Stage", "Status", "Time"}}
	for _, s := range pipeline.Stages() {
		status := SkippedStyle.Sprint("skipped")
		switch {
		case slices.Contains(ctx.Completed, s):
			status = SuccessStyle.Sprint(" ok ")
		case s == ctx.FailedStage:
			status = ErrorStyle.Sprint(" failed ")
		}
		elapsed := "-"
		if d, ok := timings[s]; ok {
			elapsed = d.Round(time.Microsecond).String()
		}
		data = append(data, []string{s.String(), status, elapsed})
	}
	if table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
		fmt.Fprintln(w, table)
	}

	errs, warnings := ctx.Diagnostics.Counts()
	summary := fmt.Sprintf("%d unit(s), %d error(s), %d warning(s) [run %s]", len(ctx.Units), errs, warnings, ctx.RunID)
	if ctx.Succeeded() {
		fmt.Fprint(w, pterm.Success.Sprintln(summary))
	} else {
		fmt.Fprint(w, pterm.Error.Sprintln(summary))
	}
}

// enableDebug points every package debug logger at w.
func enableDebug(w io.Writer) {
	for _, l := range []*log.Logger{
		parser.DebugLogger,
		analyzer.DebugLogger,
		pipeline.DebugLogger,
		backend.DebugLogger,
	} {
		l.SetOutput(w)
	}
}
