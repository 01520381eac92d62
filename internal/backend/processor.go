package backend

import (
	"fmt"

	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/pipeline"
)

// Processor is the last pipeline stage. Every method of every class,
// synthetic constructors included, goes through the body pass; then the
// unit's classes go to the emitter. Emission waits for the whole unit
// because a constructor cycle found late excludes constructors resolved
// earlier.
type Processor struct {
	Pass    BodyPass
	Emitter Emitter
}

// NewProcessor creates the stage. A nil pass means the statement pass; a
// nil emitter skips lowering.
func NewProcessor(pass BodyPass, emitter Emitter) *Processor {
	if pass == nil {
		pass = StmtPass{}
	}
	return &Processor{Pass: pass, Emitter: emitter}
}

func (p *Processor) Stage() pipeline.Stage { return pipeline.StageBodies }

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	pass := p.Pass
	if pass == nil {
		pass = StmtPass{}
	}
	err := pipeline.ForEachUnit(ctx, analyzer.NewWorker(ctx), func(c *analyzer.Context, u *modules.Unit) {
		c.BeginUnit(u)
		lowered := make([][]*Lowered, len(u.Classes))
		for i, cls := range u.Classes {
			c.BeginClass(cls)
			for _, m := range cls.Methods {
				lowered[i] = append(lowered[i], p.method(c, pass, m))
			}
		}
		c.Reset()
		if p.Emitter != nil {
			p.emit(u, lowered)
		}
	})
	if err != nil {
		ctx.Fault = err
	}
	return ctx
}

func (p *Processor) method(c *analyzer.Context, pass BodyPass, m *modules.Method) *Lowered {
	c.BeginMember(m.Symbol)
	defer c.EndBody()
	out, err := pass.Resolve(c, m)
	if err != nil {
		panic(&diagnostics.InternalError{Unit: c.Unit.Path, Err: fmt.Errorf("%s: %w", m.Symbol.Display(), err)})
	}
	if out == nil {
		out = newLowered(m.Symbol)
	}
	return out
}

func (p *Processor) emit(u *modules.Unit, lowered [][]*Lowered) {
	for i, cls := range u.Classes {
		if u.Excluded(cls.Symbol) {
			continue
		}
		members := make([]*Lowered, 0, len(lowered[i]))
		for _, l := range lowered[i] {
			if u.Excluded(l.Symbol) {
				debugf("%s excluded from %s", l.Symbol.Display(), p.Emitter.Name())
				continue
			}
			members = append(members, l)
		}
		if err := p.Emitter.Emit(cls, members); err != nil {
			panic(&diagnostics.InternalError{Unit: u.Path, Err: fmt.Errorf("emit %s: %w", cls.Symbol.Name, err)})
		}
	}
}
