package analyzer

import (
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/token"
)

// Position is the best-known source position: the override if one is
// active, else the last position set.
func (c *Context) Position() token.Span {
	if c.hasOverride {
		return c.override
	}
	return c.span
}

// SetPosition records the position of the construct being resolved.
func (c *Context) SetPosition(span token.Span) {
	if span.File == "" && c.Unit != nil {
		span.File = c.Unit.Path
	}
	c.span = span
}

// WithPosition runs fn with every diagnostic attached to span.
func (c *Context) WithPosition(span token.Span, fn func()) {
	prev, had := c.override, c.hasOverride
	c.override, c.hasOverride = span, true
	defer func() { c.override, c.hasOverride = prev, had }()
	fn()
}

// Report emits an error at the current position and returns whether the
// sink saw an error. Diagnostics with an Unresolvable argument are dropped.
func (c *Context) Report(code diagnostics.ErrorCode, args ...any) bool {
	return c.ReportDiagnostic(diagnostics.NewError(code, token.NoSpan, args...))
}

// Warn emits a warning at the current position.
func (c *Context) Warn(code diagnostics.ErrorCode, args ...any) {
	c.ReportDiagnostic(diagnostics.NewWarning(code, token.NoSpan, args...))
}

// Fatal emits a fatal-to-unit error and excludes the current member from
// emission.
func (c *Context) Fatal(code diagnostics.ErrorCode, args ...any) {
	c.ReportDiagnostic(diagnostics.NewFatal(code, token.NoSpan, args...))
}

// ReportDiagnostic routes d through the capture hook or to the sink. A zero
// span is replaced with the current position.
func (c *Context) ReportDiagnostic(d *diagnostics.DiagnosticError) bool {
	for _, a := range d.Args {
		if a == Unresolvable {
			return false
		}
	}
	if d.Span.IsZero() {
		file := d.Span.File
		d.Span = c.Position()
		if d.Span.File == "" {
			d.Span.File = file
		}
	}
	if c.capture != nil {
		c.capture(d)
		return d.IsError()
	}
	if d.IsError() {
		c.memberError = true
	}
	if d.Severity == diagnostics.Fatal && c.Unit != nil && c.Member != nil {
		c.Unit.Exclude(c.Member)
	}
	if c.sink == nil {
		return d.IsError()
	}
	return c.sink.Report(d)
}

// reportResolved receives binder diagnostics.
func (c *Context) reportResolved(d *diagnostics.DiagnosticError) {
	c.ReportDiagnostic(d)
}

// Capture redirects diagnostics to fn until the returned restore func runs.
func (c *Context) Capture(fn func(d *diagnostics.DiagnosticError)) (restore func()) {
	prev := c.capture
	c.capture = fn
	return func() { c.capture = prev }
}

// Speculate runs fn with diagnostics captured and returns them instead of
// reporting them, for try-resolve call sites.
func (c *Context) Speculate(fn func()) []*diagnostics.DiagnosticError {
	var out []*diagnostics.DiagnosticError
	restore := c.Capture(func(d *diagnostics.DiagnosticError) { out = append(out, d) })
	defer restore()
	fn()
	return out
}
