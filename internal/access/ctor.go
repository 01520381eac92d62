package access

import (
	"github.com/funvibe/classcore/internal/symbols"
)

// CtorID addresses a constructor record in a CtorArena.
type CtorID int

// CtorArena records this(...) delegations between the constructors of the
// class being resolved.
type CtorArena struct {
	records   []*symbols.Symbol
	index     map[string]CtorID
	delegates map[CtorID]CtorID
	reported  map[CtorID]bool
}

func NewCtorArena() *CtorArena {
	return &CtorArena{
		index:     make(map[string]CtorID),
		delegates: make(map[CtorID]CtorID),
		reported:  make(map[CtorID]bool),
	}
}

func ctorKey(ctor *symbols.Symbol) string {
	return ctor.Owner + "(" + symbols.ErasedParams(ctor) + ")"
}

// ID returns the index of ctor, adding a record on first use.
func (a *CtorArena) ID(ctor *symbols.Symbol) CtorID {
	key := ctorKey(ctor)
	if id, ok := a.index[key]; ok {
		return id
	}
	id := CtorID(len(a.records))
	a.records = append(a.records, ctor)
	a.index[key] = id
	return id
}

func (a *CtorArena) Symbol(id CtorID) *symbols.Symbol {
	return a.records[id]
}

// Delegate records that caller delegates to callee and reports whether this
// closes a cycle through caller. A cycle is reported once, by the
// constructor whose delegation closes it; walks that enter a cycle not
// containing caller stop without a report.
func (a *CtorArena) Delegate(caller, callee CtorID) bool {
	a.delegates[caller] = callee
	visited := map[CtorID]bool{}
	for cur := callee; cur != caller; {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		next, ok := a.delegates[cur]
		if !ok {
			return false
		}
		cur = next
	}

	cycle := a.cycleIDs(caller)
	for _, id := range cycle {
		if a.reported[id] {
			return false
		}
	}
	for _, id := range cycle {
		a.reported[id] = true
	}
	return true
}

// Cycle returns the constructors on the delegation cycle through id, starting
// at id, or nil.
func (a *CtorArena) Cycle(id CtorID) []*symbols.Symbol {
	ids := a.cycleIDs(id)
	if ids == nil {
		return nil
	}
	out := make([]*symbols.Symbol, len(ids))
	for i, c := range ids {
		out[i] = a.records[c]
	}
	return out
}

func (a *CtorArena) cycleIDs(id CtorID) []CtorID {
	var out []CtorID
	visited := map[CtorID]bool{}
	for cur := id; !visited[cur]; {
		visited[cur] = true
		out = append(out, cur)
		next, ok := a.delegates[cur]
		if !ok {
			return nil
		}
		if next == id {
			return out
		}
		cur = next
	}
	return nil
}

// Reset drops all records; the arena is reused for the next class.
func (a *CtorArena) Reset() {
	a.records = a.records[:0]
	clear(a.index)
	clear(a.delegates)
	clear(a.reported)
}
