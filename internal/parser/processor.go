// Package parser is the structural parse stage: it decodes unit files into
// declarations and declares their classes in the symbol table.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
)

// DebugLogger traces declared classes. It discards output unless the driver
// redirects it.
var DebugLogger = log.New(io.Discard, "[parser] ", log.Ltime|log.Lmicroseconds)

// Processor decodes ctx.Sources into units. A unit that fails to decode is
// dropped with P001 and its siblings go on; a class declared twice is P002
// and the first declaration, in source order, is kept.
type Processor struct{}

func (Processor) Stage() pipeline.Stage { return pipeline.StageParse }

func (Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	decls := make([]*ast.Unit, len(ctx.Sources))
	errs := make([]error, len(ctx.Sources))

	var g errgroup.Group
	g.SetLimit(max(1, ctx.Options.Workers))
	for i, src := range ctx.Sources {
		g.Go(func() error {
			decls[i], errs[i] = Decode(src)
			return nil
		})
	}
	_ = g.Wait()

	for i, src := range ctx.Sources {
		if errs[i] != nil {
			ctx.Report(diagnostics.NewError(diagnostics.ErrP001, errorSpan(src.Path, errs[i]), errs[i]))
			continue
		}
		if u := declare(ctx, src.Path, decls[i]); u != nil {
			ctx.Units = append(ctx.Units, u)
		}
	}
	return ctx
}

// Decode reads one unit file. An empty file is an error.
func Decode(src modules.Source) (*ast.Unit, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src.Data))
	dec.KnownFields(true)
	var u ast.Unit
	if err := dec.Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty unit", src.Path)
		}
		return nil, err
	}
	u.Package = strings.ReplaceAll(u.Package, ".", "/")
	u.SetFile(src.Path)
	return &u, nil
}

func declare(ctx *pipeline.PipelineContext, path string, decl *ast.Unit) *modules.Unit {
	u := modules.NewUnit(path, decl)
	u.Imports = symbols.NewImportList(decl.Package)

	classes, errs := modules.Declare(decl.Package, decl.Classes, path, false)
	for _, d := range errs {
		if d.Span.File == "" {
			d.Span.File = path
		}
		ctx.Report(d)
	}
	for _, c := range classes {
		if err := ctx.Table.Declare(c.Symbol); err != nil {
			var dup *symbols.DuplicateError
			if errors.As(err, &dup) {
				ctx.Report(diagnostics.NewError(diagnostics.ErrP002, c.Symbol.Span, c.Symbol.Name))
				continue
			}
			ctx.Report(diagnostics.NewError(diagnostics.ErrP003, c.Symbol.Span, err))
			continue
		}
		u.Classes = append(u.Classes, c)
		DebugLogger.Printf("declared %s from %s", c.Symbol.Name, path)
	}
	ctx.Registry.Add(u)
	return u
}

// errorSpan extracts the line of a YAML error message.
func errorSpan(path string, err error) token.Span {
	span := token.Span{File: path}
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		var line int
		if _, scanErr := fmt.Sscanf(msg[i:], "line %d", &line); scanErr == nil {
			span.Line = line
		}
	}
	return span
}
