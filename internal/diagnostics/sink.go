package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/mattn/go-isatty"
)

// Sink receives diagnostics. Report returns true when the diagnostic is an
// error that should stop the pipeline after the current stage.
type Sink interface {
	Report(d *DiagnosticError) bool
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(d *DiagnosticError) bool

func (f SinkFunc) Report(d *DiagnosticError) bool { return f(d) }

// Collector gathers diagnostics from concurrent workers.
type Collector struct {
	mu       sync.Mutex
	items    []*DiagnosticError
	errors   int
	warnings int
	// Forward, if set, receives every diagnostic as it arrives.
	Forward Sink
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d *DiagnosticError) bool {
	c.mu.Lock()
	c.items = append(c.items, d)
	if d.IsError() {
		c.errors++
	} else {
		c.warnings++
	}
	fwd := c.Forward
	c.mu.Unlock()

	if fwd != nil {
		fwd.Report(d)
	}
	return d.IsError()
}

func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors > 0
}

func (c *Collector) Counts() (errors, warnings int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors, c.warnings
}

// Diagnostics returns a copy sorted by position, then code.
func (c *Collector) Diagnostics() []*DiagnosticError {
	c.mu.Lock()
	result := make([]*DiagnosticError, len(c.items))
	copy(result, c.items)
	c.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Span != b.Span {
			return a.Span.Before(b.Span)
		}
		return a.Code < b.Code
	})
	return result
}

// WithCode filters diagnostics by code.
func (c *Collector) WithCode(code ErrorCode) []*DiagnosticError {
	var out []*DiagnosticError
	for _, d := range c.Diagnostics() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// ColorMode controls ANSI coloring of TextSink output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
)

// TextSink prints diagnostics as they arrive.
type TextSink struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

func NewTextSink(out io.Writer, mode ColorMode) *TextSink {
	return &TextSink{out: out, color: useColor(out, mode)}
}

func useColor(out io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *TextSink) Report(d *DiagnosticError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.color {
		fmt.Fprintln(s.out, d.Error())
		return d.IsError()
	}

	color := ansiYellow
	if d.IsError() {
		color = ansiRed
	}
	fmt.Fprintf(s.out, "%s%s:%s %s%s %s%s: %s\n",
		ansiBold, d.Span, ansiReset,
		color, d.Severity, d.Code, ansiReset,
		d.Message())
	return d.IsError()
}
