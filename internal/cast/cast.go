package cast

import (
	"fmt"

	"github.com/funvibe/classcore/internal/typesystem"
)

// Repr tells the emitter how a conversion is represented.
type Repr uint8

const (
	ReprNone      Repr = iota // no instruction
	ReprCheckcast             // checked reference cast
	ReprBox                   // box Prim into Class, after converting to Prim
	ReprUnbox                 // unbox Class into Prim, then convert to Target
	ReprPrimitive             // primitive conversion to Target
)

func (r Repr) String() string {
	switch r {
	case ReprCheckcast:
		return "checkcast"
	case ReprBox:
		return "box"
	case ReprUnbox:
		return "unbox"
	case ReprPrimitive:
		return "prim"
	default:
		return "none"
	}
}

// Cast is an immutable conversion descriptor.
type Cast struct {
	Rank Rank
	// Distance ranks successful overloads; smaller is preferred. It is zero
	// for failed conversions.
	Distance int
	Repr     Repr
	// Prim is the boxed or unboxed primitive; Target the primitive the value
	// ends up as for ReprPrimitive and ReprUnbox, or is converted to before
	// ReprBox.
	Prim   typesystem.PrimTag
	Target typesystem.PrimTag
	// Class is the checkcast target or the wrapper class.
	Class string
}

func (c *Cast) OK() bool { return c.Rank.OK() }

func (c *Cast) String() string {
	if c.Rank.OK() {
		return fmt.Sprintf("%s(%d, %s)", c.Rank, c.Distance, c.Repr)
	}
	return c.Rank.String()
}

// Identity is the shared result of converting a type to itself.
var Identity = &Cast{Rank: Upcast}

var failed [Upcast - Never]*Cast

func init() {
	for r := Never; r < Upcast; r++ {
		failed[r-Never] = &Cast{Rank: r}
	}
}

// Failure returns the shared descriptor of a failing rank. Explicit-cast
// ranks (Downcast, Lossy, Narrowing) normally carry a representation and
// come from the interner instead.
func Failure(r Rank) *Cast {
	if r >= Upcast || r < Never {
		panic(fmt.Sprintf("cast: %s is not a failing rank", r))
	}
	return failed[r-Never]
}

type internKey struct {
	from, to string
	cast     Cast
}

// Interner deduplicates descriptors by source, target and content so equal
// conversions compare by pointer. It is owned by one worker.
type Interner struct {
	m map[internKey]*Cast
}

func NewInterner() *Interner {
	return &Interner{m: make(map[internKey]*Cast)}
}

func (in *Interner) Intern(from, to typesystem.Type, c Cast) *Cast {
	if c.Rank == Upcast && c.Distance == 0 && c.Repr == ReprNone {
		return Identity
	}
	if c.Rank < Downcast {
		return Failure(c.Rank)
	}
	key := internKey{from.String(), to.String(), c}
	if p, ok := in.m[key]; ok {
		return p
	}
	p := &c
	in.m[key] = p
	return p
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int { return len(in.m) }
