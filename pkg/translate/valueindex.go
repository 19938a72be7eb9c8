package translate

import "github.com/dcol97/souffle/pkg/ram"

// Location names where a variable's value can be read back: the tuple id
// introduced by some Scan/IndexScan/Choice/Lookup/Aggregate, the column
// within that tuple, and the original variable name (carried through as
// ElementAccess's optional dump label).
type Location struct {
	Level  uint
	Column uint
	Label  string
}

func (l Location) value() ram.Value {
	return &ram.ElementAccess{Tuple: l.Level, Column: l.Column, Label: l.Label}
}

// ValueIndex is the per-clause auxiliary table described in spec §4.3.3: it
// binds variable names to the locations they have been seen at (the first
// recorded occurrence is the canonical definition point used for every
// later reference), tracks record-construction bindings (a variable bound
// directly to a Pack value rather than a tuple location), and records
// where an aggregator's result is bound.
//
// A ValueIndex is scoped to a single clause lowering; Fork produces an
// independent copy for use inside an aggregator's nested scope so that
// locals introduced there do not leak back into the enclosing clause.
type ValueIndex struct {
	locations map[string]Location
	packs     map[string]ram.Value
}

// NewValueIndex returns an empty index.
func NewValueIndex() *ValueIndex {
	return &ValueIndex{locations: map[string]Location{}, packs: map[string]ram.Value{}}
}

// Fork returns an independent copy of vi, for translating a nested scope
// (an aggregator body) whose local bindings must not be visible afterward.
func (vi *ValueIndex) Fork() *ValueIndex {
	out := NewValueIndex()
	for k, v := range vi.locations {
		out.locations[k] = v
	}

	for k, v := range vi.packs {
		out.packs[k] = v
	}

	return out
}

// Define records a variable's occurrence at loc. If name is already bound
// (to a location or a pack), the existing canonical binding is kept: the
// first recorded occurrence is the definition point, per spec §4.3.3.
func (vi *ValueIndex) Define(name string, loc Location) {
	if _, ok := vi.locations[name]; ok {
		return
	}

	if _, ok := vi.packs[name]; ok {
		return
	}

	vi.locations[name] = loc
}

// DefinePack records name as bound to a constructed record value rather
// than a tuple location.
func (vi *ValueIndex) DefinePack(name string, value ram.Value) {
	if _, ok := vi.locations[name]; ok {
		return
	}

	if _, ok := vi.packs[name]; ok {
		return
	}

	vi.packs[name] = value
}

// IsBound reports whether name has already been recorded, by either
// Define or DefinePack.
func (vi *ValueIndex) IsBound(name string) bool {
	if _, ok := vi.locations[name]; ok {
		return true
	}

	_, ok := vi.packs[name]

	return ok
}

// Resolve returns the Value a variable reference should translate to: an
// ElementAccess at its canonical location, or the Pack it was constructed
// as (cloned, since subtrees are never shared). Resolve never fails
// silently: ok is false when name has no recorded binding, which signals a
// fatal translator invariant violation to the caller (spec §4.3.3).
func (vi *ValueIndex) Resolve(name string) (ram.Value, bool) {
	if loc, ok := vi.locations[name]; ok {
		return loc.value(), true
	}

	if pack, ok := vi.packs[name]; ok {
		return pack.Clone().(ram.Value), true
	}

	return nil, false
}

// Location returns the canonical tuple/column binding for name, if any
// (packs have no single location).
func (vi *ValueIndex) Location(name string) (Location, bool) {
	loc, ok := vi.locations[name]
	return loc, ok
}
