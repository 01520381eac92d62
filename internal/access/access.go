// Package access decides member visibility and tracks definite assignment of
// final fields inside constructors and static initializers.
package access

import (
	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/utils"
)

// Verdict is the result of an access check. Modifier names the visibility
// that denied access.
type Verdict struct {
	Allowed  bool
	Modifier string
}

var allowed = Verdict{Allowed: true}

// InstanceOf reports whether sub equals super or is a subtype of it.
type InstanceOf func(sub, super string) bool

// Check decides whether a member with the target modifiers, declared in
// class declaring, may be used from class accessing.
//
//	public          always
//	protected       same package, or accessing (or a class enclosing it) is a subtype of declaring
//	package-private same package
//	private         same nest
func Check(target symbols.Modifier, declaring, accessing string, instanceOf InstanceOf) Verdict {
	switch {
	case target.Has(symbols.Public):
		return allowed
	case target.Has(symbols.Private):
		if utils.SameNest(declaring, accessing) {
			return allowed
		}
	case target.Has(symbols.Protected):
		if utils.SamePackage(declaring, accessing) {
			return allowed
		}
		for c := accessing; c != "" && instanceOf != nil; c = utils.OuterOf(c) {
			if instanceOf(c, declaring) {
				return allowed
			}
		}
	default:
		if utils.SamePackage(declaring, accessing) {
			return allowed
		}
	}
	return Verdict{Modifier: target.Visibility()}
}

// CheckSymbol checks a class or member symbol. A member must be visible
// itself and its declaring class must be visible too.
func CheckSymbol(sym *symbols.Symbol, accessing string, instanceOf InstanceOf) Verdict {
	if sym.Kind != symbols.ClassSymbol {
		return Check(sym.Modifiers, sym.Owner, accessing, instanceOf)
	}
	if outer := utils.OuterOf(sym.Name); outer != "" {
		// member class: visibility relative to the enclosing class
		return Check(sym.Modifiers, outer, accessing, instanceOf)
	}
	if sym.Modifiers.Has(symbols.Public) {
		return allowed
	}
	return Check(0, sym.Name, accessing, instanceOf)
}

// CheckStatic reports whether member may be referenced from the context.
// Instance fields and methods are rejected in a static context; classes and
// constructors are not members in this sense.
func CheckStatic(member *symbols.Symbol, staticContext bool) bool {
	if !staticContext || member.Kind == symbols.ClassSymbol || member.IsStatic() {
		return true
	}
	return member.Name == config.ConstructorName
}
