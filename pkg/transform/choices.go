package transform

import "github.com/dcol97/souffle/pkg/ram"

// SearchesToChoices implements spec §4.4.4: a Scan/IndexScan whose bound
// tuple is referenced by the condition of its immediately guarding Filter
// but by nothing past that guard commits to its first matching tuple rather
// than enumerating every match, since no downstream projection, aggregation
// source or lookup could ever distinguish one witness from another. This is
// the Open Question's resolution: the safe policy requires the tuple id to
// be referenced in the enclosing filter's condition but not downstream of
// it. ConvertExistenceChecks is applied first in the pipeline and already
// claims the subset of this shape where the scan's own relation membership
// is all that is being tested; whatever it leaves behind still needs the
// bound columns for the filter's comparison itself, so collapsing all the
// way to a boolean check is unsound and a Choice is used instead.
func SearchesToChoices(op ram.Operation) (ram.Operation, bool) {
	switch o := op.(type) {
	case *ram.Scan:
		nested, changed := SearchesToChoices(o.Nested)

		if cond, rest, ok := choiceGuard(o.TupleID, nested); ok {
			return &ram.Choice{Relation: o.Relation, TupleID: o.TupleID, Condition: cond, Nested: rest}, true
		}

		return &ram.Scan{Relation: o.Relation, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.IndexScan:
		nested, changed := SearchesToChoices(o.Nested)

		if cond, rest, ok := choiceGuard(o.TupleID, nested); ok {
			return &ram.IndexChoice{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Condition: cond, Nested: rest}, true
		}

		return &ram.IndexScan{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Nested: nested}, changed

	case *ram.Choice:
		nested, changed := SearchesToChoices(o.Nested)
		return &ram.Choice{Relation: o.Relation, TupleID: o.TupleID, Condition: o.Condition, Nested: nested}, changed

	case *ram.IndexChoice:
		nested, changed := SearchesToChoices(o.Nested)
		return &ram.IndexChoice{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Condition: o.Condition, Nested: nested}, changed

	case *ram.Filter:
		nested, changed := SearchesToChoices(o.Nested)
		return &ram.Filter{Condition: o.Condition, Nested: nested}, changed

	case *ram.Lookup:
		nested, changed := SearchesToChoices(o.Nested)
		return &ram.Lookup{Value: o.Value, Arity: o.Arity, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.Aggregate:
		nested, changed := SearchesToChoices(o.Nested)
		na := *o
		na.Nested = nested

		return &na, changed

	default: // *ram.Project, *ram.Return: leaves
		return op, false
	}
}

// choiceGuard reports whether nested is a Filter whose condition references
// tid but whose continuation never does, the shape that lets a scan commit
// to its first witness. It returns the guard condition and the filter's own
// continuation, unwrapped from the Filter that carried them.
func choiceGuard(tid uint, nested ram.Operation) (cond ram.Condition, rest ram.Operation, ok bool) {
	f, isFilter := nested.(*ram.Filter)
	if !isFilter {
		return nil, nil, false
	}

	if !escapesTuple(f.Condition, tid) || escapesTuple(f.Nested, tid) {
		return nil, nil, false
	}

	return f.Condition, f.Nested, true
}
