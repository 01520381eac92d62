package backend

import (
	"fmt"
	"io"
	"log"

	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
)

// DebugLogger traces lowering. It discards output unless the driver
// redirects it.
var DebugLogger = log.New(io.Discard, "[backend] ", log.Ltime|log.Lmicroseconds)

func debugf(format string, args ...any) {
	DebugLogger.Printf(format, args...)
}

// nullArg is the argument type spelling of the null literal.
const nullArg = "null"

// StmtPass resolves the statement bodies of unit declarations.
type StmtPass struct{}

func (StmtPass) Resolve(c *analyzer.Context, m *modules.Method) (*Lowered, error) {
	out := newLowered(m.Symbol)
	if m.Decl == nil {
		return out, nil
	}
	r := &stmtResolver{out: out, base: c.Depth()}
	r.block(c, m.Decl.Body)
	return out, nil
}

type stmtResolver struct {
	out     *Lowered
	base    int
	lambdas int
}

func (r *stmtResolver) block(c *analyzer.Context, body []*ast.Stmt) {
	for _, s := range body {
		r.stmt(c, s)
	}
}

func (r *stmtResolver) stmt(c *analyzer.Context, s *ast.Stmt) {
	if s.Span.Line > 0 {
		c.SetPosition(s.Span)
	}
	switch s.Op {
	case ast.OpWrite, ast.OpRead:
		if f := r.field(c, s); f != nil {
			c.CheckFinalFieldAccess(f, s.Op == ast.OpWrite)
		}
	case ast.OpConst:
		if f := r.field(c, s); f != nil {
			if v, ok := c.ConstantValue(f); ok {
				r.out.Constants[f.Display()] = v
			}
		}
	case ast.OpThis, ast.OpSuper:
		r.constructorCall(c, s)
	case ast.OpCall:
		r.call(c, s)
	case ast.OpCast:
		r.cast(c, s)
	case ast.OpLambda:
		r.lambda(c, s)
	case ast.OpNew:
		r.instantiate(c, s)
	case ast.OpReturn:
		r.ret(c, s)
	default:
		c.Report(diagnostics.ErrP003, fmt.Errorf("unknown statement %q", s.Op))
	}
}

// class resolves a type name used as a qualifier.
func (r *stmtResolver) class(c *analyzer.Context, name string) (*symbols.Symbol, typesystem.Type) {
	t := c.ResolveTypeSyntax(name)
	if t == nil || typesystem.IsPrimitive(t) {
		return nil, nil
	}
	return c.Linker.ResolveQualifiedName(typesystem.ClassName(t)), t
}

func (r *stmtResolver) args(c *analyzer.Context, src []string) []typesystem.Type {
	if len(src) == 0 {
		return nil
	}
	out := make([]typesystem.Type, len(src))
	for i, a := range src {
		if a == nullArg {
			continue
		}
		out[i] = c.ResolveTypeSyntax(a)
	}
	return out
}

// field finds the field a statement names. An unqualified name goes
// through the enclosing chain and static imports.
func (r *stmtResolver) field(c *analyzer.Context, s *ast.Stmt) *symbols.Symbol {
	if s.Owner == "" {
		if imp := c.TryImportField(s.Field); imp != nil {
			if imp.Denied {
				return nil
			}
			return imp.Symbol
		}
		if c.Class == nil {
			return nil
		}
		return c.FieldListOrReport(c.Class.Symbol, s.Field)
	}
	owner, _ := r.class(c, s.Owner)
	if owner == nil {
		return nil
	}
	f := c.FieldListOrReport(owner, s.Field)
	if f == nil {
		return nil
	}
	// through this when the owner is the current class or a superclass
	static := c.InStatic || !c.Linker.IsSubclassOf(c.ClassName(), owner.Name)
	if !c.CheckAccessible(f, static) {
		return nil
	}
	return f
}

func (r *stmtResolver) constructorCall(c *analyzer.Context, s *ast.Stmt) {
	if !c.InConstructor || c.Member.Name != config.ConstructorName {
		c.Report(diagnostics.ErrP003, fmt.Errorf("%s(...) outside a constructor", s.Op))
		return
	}
	if c.ConstructorCalled {
		c.Report(diagnostics.ErrP003, fmt.Errorf("%s(...) after a constructor call", s.Op))
		return
	}
	self := c.Class.Symbol
	target, inst := self, c.SelfType()
	if s.Op == ast.OpSuper {
		super, _ := self.Supers()
		if super == "" {
			return
		}
		target = c.Linker.ResolveQualifiedName(super)
		if target == nil {
			return
		}
		inst = typesystem.Class{Name: super}
		if sts := self.Signature().SuperTypes; len(sts) > 0 {
			inst = sts[0]
		}
	}
	args := r.args(c, s.Args)
	set := c.MethodListOrReport(target, config.ConstructorName, len(args))
	if set == nil {
		return
	}
	call := c.ResolveCall(set, inst, args)
	if call == nil {
		return
	}
	r.out.Calls = append(r.out.Calls, call)
	c.OnCallConstructor(call.Method)
}

// callExpr is a method call statement as an expression node.
type callExpr struct {
	r    *stmtResolver
	s    *ast.Stmt
	args []typesystem.Type
}

func (e *callExpr) Span() token.Span { return e.s.Span }
func (e *callExpr) ArgCount() int    { return len(e.s.Args) }

func (e *callExpr) Resolve(c *analyzer.Context) analyzer.Resolved {
	call := e.r.resolveCall(c, e)
	if call == nil {
		return analyzer.Resolved{}
	}
	e.r.out.Calls = append(e.r.out.Calls, call)
	return analyzer.Resolved{Type: call.Return, Method: call.Method}
}

func (r *stmtResolver) call(c *analyzer.Context, s *ast.Stmt) {
	c.ResolveExpr(&callExpr{r: r, s: s, args: r.args(c, s.Args)})
}

func (r *stmtResolver) resolveCall(c *analyzer.Context, e *callExpr) *analyzer.CallResult {
	s := e.s
	if s.Target == "" {
		imp := c.TryImportMethod(s.Name, e.args)
		if imp == nil {
			if c.Class != nil {
				c.MethodsFor(c.Class.Symbol, s.Name, e)
			}
			return nil
		}
		if imp.Denied {
			return nil
		}
		return imp.Call
	}
	owner, inst := r.class(c, s.Target)
	if owner == nil {
		return nil
	}
	set := c.MethodsFor(owner, s.Name, e)
	if set == nil {
		return nil
	}
	call := c.ResolveCall(set, inst, e.args)
	if call == nil {
		return nil
	}
	static := c.InStatic || !c.Linker.IsSubclassOf(c.ClassName(), owner.Name)
	if !c.CheckAccessible(call.Method, static) {
		return nil
	}
	return call
}

func (r *stmtResolver) cast(c *analyzer.Context, s *ast.Stmt) {
	from, to := c.ResolveTypeSyntax(s.From), c.ResolveTypeSyntax(s.To)
	if from == nil || to == nil {
		return
	}
	limit := cast.Upcast
	if s.Limit != nil {
		limit = cast.Rank(*s.Limit)
	}
	r.out.Casts = append(r.out.Casts, c.CastTo(from, to, limit))
}

// lambda resolves the body in a nested context with its own nesting
// level, leaving the enclosing body untouched.
func (r *stmtResolver) lambda(c *analyzer.Context, s *ast.Stmt) {
	scope := &analyzer.LambdaScope{Name: fmt.Sprintf("lambda$%d", r.lambdas)}
	r.lambdas++
	c.Stack().Nested(func(n *analyzer.Context) {
		if !n.Enter(scope) {
			return
		}
		r.block(n, s.Body)
	})
	if scope.CapturesThis {
		r.out.Captures = append(r.out.Captures, scope.Name)
	}
}

func (r *stmtResolver) instantiate(c *analyzer.Context, s *ast.Stmt) {
	owner, t := r.class(c, s.Type)
	if owner == nil {
		return
	}
	var target typesystem.Type
	if s.To != "" {
		target = c.ResolveTypeSyntax(s.To)
	}
	if g, ok := t.(typesystem.Generic); ok {
		if target != nil {
			t = c.Binder.FinalizeDiamond(g, target)
		} else {
			t = c.Binder.FinalizeDiamond(g, typesystem.Object)
		}
	}
	r.out.Instances = append(r.out.Instances, t)

	args := r.args(c, s.Args)
	if set := c.MethodListOrReport(owner, config.ConstructorName, len(args)); set != nil {
		if call := c.ResolveCall(set, t, args); call != nil {
			r.out.Calls = append(r.out.Calls, call)
		}
	}
	if target != nil {
		r.out.Casts = append(r.out.Casts, c.CastTo(t, target, cast.Upcast))
	}
}

// ret checks the returned value against the member's return type. Returns
// inside lambdas are not checked: the lambda type is not known here.
func (r *stmtResolver) ret(c *analyzer.Context, s *ast.Stmt) {
	if c.Depth() > r.base {
		return
	}
	want := c.Member.Signature().Return
	if want == nil {
		return
	}
	c.InReturn = true
	defer func() { c.InReturn = false }()

	var have typesystem.Type
	switch {
	case s.Value != nil:
		op := c.Evaluate(s.Value)
		if op.Type == nil {
			return
		}
		if op.Constant && analyzer.Convert(op.Value, op.Type, want) != nil {
			return
		}
		have = op.Type
	case s.From != "":
		have = c.ResolveTypeSyntax(s.From)
	default:
		have = typesystem.Prim{Tag: typesystem.Void}
	}
	if have == nil {
		return
	}
	r.out.Casts = append(r.out.Casts, c.CastTo(have, want, cast.Upcast))
}
