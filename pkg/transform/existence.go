package transform

import (
	"github.com/dcol97/souffle/pkg/analysis"
	"github.com/dcol97/souffle/pkg/ram"
)

// ConvertExistenceChecks implements spec §4.4.3: a Scan/IndexScan whose
// bound tuple is referenced only by the Filter that immediately guards it —
// never by anything nested further inside — and, within that guard, only by
// equalities ElementAccess(tid,col) = E with E computable before tid binds,
// contributes nothing but a membership test. The scan is eliminated, those
// equalities move into the pattern of an ExistenceCheck, and the guard's
// other conjuncts stay in the same Filter. A guard that reads the tuple any
// other way is left for SearchesToChoices. Only ExistenceCheck is produced:
// a negated literal is already lowered straight to Filter+NotExistenceCheck
// upstream in pkg/translate without ever producing a bare Scan.
func ConvertExistenceChecks(op ram.Operation) (ram.Operation, bool) {
	switch o := op.(type) {
	case *ram.Scan:
		nested, changed := ConvertExistenceChecks(o.Nested)

		if collapsed, ok := collapseToExistence(o.TupleID, o.Relation, nil, nested); ok {
			return collapsed, true
		}

		return &ram.Scan{Relation: o.Relation, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.IndexScan:
		nested, changed := ConvertExistenceChecks(o.Nested)

		if collapsed, ok := collapseToExistence(o.TupleID, o.Relation, o.Pattern, nested); ok {
			return collapsed, true
		}

		return &ram.IndexScan{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Nested: nested}, changed

	case *ram.Choice:
		nested, changed := ConvertExistenceChecks(o.Nested)
		return &ram.Choice{Relation: o.Relation, TupleID: o.TupleID, Condition: o.Condition, Nested: nested}, changed

	case *ram.IndexChoice:
		nested, changed := ConvertExistenceChecks(o.Nested)
		return &ram.IndexChoice{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Condition: o.Condition, Nested: nested}, changed

	case *ram.Filter:
		nested, changed := ConvertExistenceChecks(o.Nested)
		return &ram.Filter{Condition: o.Condition, Nested: nested}, changed

	case *ram.Lookup:
		nested, changed := ConvertExistenceChecks(o.Nested)
		return &ram.Lookup{Value: o.Value, Arity: o.Arity, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.Aggregate:
		nested, changed := ConvertExistenceChecks(o.Nested)
		na := *o
		na.Nested = nested

		return &na, changed

	default: // *ram.Project, *ram.Return: leaves
		return op, false
	}
}

// collapseToExistence checks whether nested is a Filter guarding tid that
// nothing past the guard still needs, and if so folds it into a single
// Filter over an ExistenceCheck in place of the scan. When
// CreateIndices has already absorbed the guarding equality wholesale into
// the scan's own pattern, no Filter survives to unwrap — in that case the
// scan itself already contributes nothing but membership (already encoded
// in pattern, or all-wildcard for a plain Scan) whenever nothing further
// nested still references tid, and collapses directly.
func collapseToExistence(tid uint, rel ram.RelationRef, pattern []ram.Value, nested ram.Operation) (ram.Operation, bool) {
	if f, ok := nested.(*ram.Filter); ok {
		if escapesTuple(f.Nested, tid) {
			return nil, false
		}

		check := existenceCheck(rel, pattern, f.Condition, tid)
		if check == nil {
			return nil, false
		}

		return &ram.Filter{Condition: ram.Conjoin(check, residualWithoutTuple(f.Condition, tid)), Nested: f.Nested}, true
	}

	if escapesTuple(nested, tid) {
		return nil, false
	}

	if pattern == nil {
		pattern = make([]ram.Value, rel.Arity)
	}

	return &ram.Filter{Condition: &ram.ExistenceCheck{Relation: rel, Pattern: pattern}, Nested: nested}, true
}

// existenceCheck returns an ExistenceCheck for rel when cond references tid
// only through equalities ElementAccess(tid,col) = E that fill a still-free
// column with a value computable before tid binds; the check's pattern is
// pattern (or, for a plain Scan, all wildcards) plus those columns. It
// returns nil when cond does not reference tid, or references it any other
// way.
func existenceCheck(rel ram.RelationRef, pattern []ram.Value, cond ram.Condition, tid uint) ram.Condition {
	if !escapesTuple(cond, tid) {
		return nil
	}

	full := make([]ram.Value, rel.Arity)
	copy(full, pattern)

	for _, c := range ram.FlattenConjunction(cond) {
		if !escapesTuple(c, tid) {
			continue
		}

		cmp, isCmp := c.(*ram.Comparison)
		if !isCmp || cmp.Op != "=" {
			return nil
		}

		col, val, matched := matchColumn(tid, cmp)
		if !matched || col >= rel.Arity || full[col] != nil || analysis.ExpressionLevel(val) >= int(tid) {
			return nil
		}

		full[col] = val
	}

	return &ram.ExistenceCheck{Relation: rel, Pattern: full}
}

// residualWithoutTuple returns cond's conjuncts that do not reference tid,
// re-joined, or nil if every conjunct referenced it.
func residualWithoutTuple(cond ram.Condition, tid uint) ram.Condition {
	var kept []ram.Condition

	for _, c := range ram.FlattenConjunction(cond) {
		if !escapesTuple(c, tid) {
			kept = append(kept, c)
		}
	}

	return ram.Conjoin(kept...)
}
