package analyzer

import (
	"strings"

	"github.com/funvibe/classcore/internal/cast"
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/token"
	"github.com/funvibe/classcore/internal/typesystem"
)

// phaseCost separates the three applicability phases: a candidate that
// needs boxing always ranks behind one that does not, and one that needs
// varargs spreading behind both.
const phaseCost = 5120

// CallResult is the selected overload of a call.
type CallResult struct {
	Method *symbols.Symbol
	// Params and Return are instantiated for the call.
	Params []typesystem.Type
	Return typesystem.Type
	// Casts holds the conversion of each argument.
	Casts    []*cast.Cast
	Distance int
	// Varargs is set when trailing arguments are spread into an array.
	Varargs bool
}

type candidate struct {
	res    CallResult
	failed int // index of the first argument that does not convert, or -1
}

// ResolveCall selects the overload of set applicable to args with the
// smallest distance. inst is the receiver type, nil for static calls.
// Equal distances are ambiguous: S011 is reported and the first of them
// is returned. Nothing applicable reports S012 and returns nil.
func (c *Context) ResolveCall(set *symbols.OverloadSet, inst typesystem.Type, args []typesystem.Type) *CallResult {
	if set.Empty() {
		return nil
	}
	byCount := set.WithArgCount(len(args))
	var denied *symbols.Symbol
	cands := c.cands[:0]
	for _, m := range byCount {
		if !c.accessible(m) {
			if denied == nil {
				denied = m
			}
			continue
		}
		cands = append(cands, c.applicable(m, inst, args))
	}
	c.cands = cands

	best := -1
	for i := range cands {
		if cands[i].failed >= 0 {
			continue
		}
		if best < 0 || cands[i].res.Distance < cands[best].res.Distance {
			best = i
		}
	}
	if best < 0 {
		if len(cands) == 0 && denied != nil {
			c.CheckAccessible(denied, false)
			return nil
		}
		c.Report(diagnostics.ErrS012, set.Owner+"."+displayName(set.Name), typeList(args))
		return nil
	}

	var tied []string
	for i := range cands {
		if cands[i].failed < 0 && cands[i].res.Distance == cands[best].res.Distance {
			m := cands[i].res.Method
			tied = append(tied, m.Owner+"."+displayName(m.Name)+"("+symbols.ErasedParams(m)+")")
		}
	}
	if len(tied) > 1 {
		c.Report(diagnostics.ErrS011, displayName(set.Name), strings.Join(tied, ", "))
	}
	res := cands[best].res
	debugf("call %s.%s -> %s distance %d", set.Owner, set.Name, symbols.ErasedParams(res.Method), res.Distance)
	return &res
}

// applicable computes the distance of one candidate.
func (c *Context) applicable(m *symbols.Symbol, inst typesystem.Type, args []typesystem.Type) candidate {
	params, ret := c.Binder.Instantiate(m, inst, args)
	cand := candidate{
		res:    CallResult{Method: m, Params: params, Return: ret, Casts: make([]*cast.Cast, len(args))},
		failed: -1,
	}
	fixed := len(params)
	varargs := m.Modifiers.Has(symbols.Varargs) && fixed > 0
	if varargs {
		fixed--
		cand.res.Distance += 2 * phaseCost
	}

	boxed := false
	step := func(i int, to typesystem.Type) bool {
		from := args[i]
		if from == nil {
			// null converts to any reference type
			if typesystem.IsPrimitive(to) {
				cand.failed = i
				return false
			}
			cand.res.Casts[i] = cast.Identity
			return true
		}
		r := c.Caster.Check(from, to)
		if !r.OK() {
			cand.failed = i
			return false
		}
		if r.Rank == cast.Boxing || r.Rank == cast.Unboxing {
			boxed = true
		}
		cand.res.Casts[i] = r
		cand.res.Distance += r.Distance
		return true
	}

	for i := 0; i < fixed && i < len(args); i++ {
		if !step(i, params[i]) {
			return cand
		}
	}
	if varargs {
		last := params[fixed]
		rest := args[fixed:]
		// a single array argument is passed as the array itself
		if len(rest) == 1 && rest[0] != nil && c.Caster.Check(rest[0], last).OK() {
			if !step(fixed, last) {
				return cand
			}
		} else {
			cand.res.Varargs = true
			elem := typesystem.ElementType(last)
			for i := fixed; i < len(args); i++ {
				if !step(i, elem) {
					return cand
				}
			}
		}
	}
	if boxed {
		cand.res.Distance += phaseCost
	}
	return cand
}

// MethodListOrReport returns the overloads of name visible in class, or
// reports S002 with the similarly named methods that could take argc
// arguments.
func (c *Context) MethodListOrReport(class *symbols.Symbol, name string, argc int) *symbols.OverloadSet {
	set := c.Linker.DeclaredMembers(class, name, symbols.MethodSymbol)
	if !set.Empty() {
		return set
	}
	kind := "method"
	if name == config.ConstructorName {
		kind = "constructor"
	}
	var names []string
	for _, n := range c.Linker.MemberNames(class, symbols.MethodSymbol) {
		if k := minArity(c.Linker.DeclaredMembers(class, n, symbols.MethodSymbol)); k >= 0 && k <= argc {
			names = append(names, n)
		}
	}
	d := diagnostics.NewError(diagnostics.ErrS002, token.NoSpan, kind, displayName(name), class.Name, "")
	d.Hint = diagnostics.DidYouMean(kind, diagnostics.Suggest(name, names))
	c.ReportDiagnostic(d)
	return nil
}

// FieldListOrReport returns the field name visible in class, or reports
// S002 with similarly named fields.
func (c *Context) FieldListOrReport(class *symbols.Symbol, name string) *symbols.Symbol {
	set := c.Linker.DeclaredMembers(class, name, symbols.FieldSymbol)
	if !set.Empty() {
		return set.Members[0]
	}
	d := diagnostics.NewError(diagnostics.ErrS002, token.NoSpan, "field", name, class.Name, "")
	d.Hint = diagnostics.DidYouMean("field", diagnostics.Suggest(name, c.Linker.MemberNames(class, symbols.FieldSymbol)))
	c.ReportDiagnostic(d)
	return nil
}

// minArity is the fewest arguments any of the overloads accepts, -1 for
// an empty set.
func minArity(set *symbols.OverloadSet) int {
	n := -1
	for _, m := range set.Members {
		k := len(m.Signature().Params)
		if m.Modifiers.Has(symbols.Varargs) && k > 0 {
			k--
		}
		if n < 0 || k < n {
			n = k
		}
	}
	return n
}

func displayName(name string) string {
	if name == config.ConstructorName {
		return "constructor"
	}
	return name
}

func typeList(args []typesystem.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
