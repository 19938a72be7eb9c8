package transform

import (
	"github.com/dcol97/souffle/pkg/analysis"
	"github.com/dcol97/souffle/pkg/ram"
)

// CreateIndices implements spec §4.4.2: a Scan immediately guarded by a
// Filter whose condition conjoins one or more column-equals-expression
// constraints on the scan's own tuple, where the expression is computable
// before the scan runs, is rewritten into an IndexScan carrying those
// equalities as its Pattern. Any conjunct that cannot be absorbed — because
// it does not pin a column of this tuple, or because the column it pins is
// already claimed by an earlier conjunct — survives as a residual Filter
// wrapping the IndexScan.
func CreateIndices(op ram.Operation) (ram.Operation, bool) {
	switch o := op.(type) {
	case *ram.Scan:
		nested, changed := CreateIndices(o.Nested)

		if f, ok := nested.(*ram.Filter); ok {
			if pattern, residual, ok := extractPattern(o.TupleID, o.Relation.Arity, f); ok {
				idx := &ram.IndexScan{Relation: o.Relation, TupleID: o.TupleID, Pattern: pattern, Nested: residual}
				return idx, true
			}
		}

		return &ram.Scan{Relation: o.Relation, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.IndexScan:
		nested, changed := CreateIndices(o.Nested)
		return &ram.IndexScan{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Nested: nested}, changed

	case *ram.Choice:
		nested, changed := CreateIndices(o.Nested)
		return &ram.Choice{Relation: o.Relation, TupleID: o.TupleID, Condition: o.Condition, Nested: nested}, changed

	case *ram.IndexChoice:
		nested, changed := CreateIndices(o.Nested)
		return &ram.IndexChoice{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Condition: o.Condition, Nested: nested}, changed

	case *ram.Filter:
		nested, changed := CreateIndices(o.Nested)
		return &ram.Filter{Condition: o.Condition, Nested: nested}, changed

	case *ram.Lookup:
		nested, changed := CreateIndices(o.Nested)
		return &ram.Lookup{Value: o.Value, Arity: o.Arity, TupleID: o.TupleID, Nested: nested}, changed

	case *ram.Aggregate:
		nested, changed := CreateIndices(o.Nested)
		na := *o
		na.Nested = nested

		return &na, changed

	default: // *ram.Project, *ram.Return: leaves
		return op, false
	}
}

// extractPattern scans f's flattened conjuncts for equalities of the shape
// ElementAccess(tid, col) = E (or E = ElementAccess(tid, col)) with
// analysis.ExpressionLevel(E) < int(tid), claiming each column at most once
// on a first-wins basis. It reports ok=false if no conjunct qualifies, in
// which case the Scan is left untouched.
func extractPattern(tid uint, arity uint, f *ram.Filter) (pattern []ram.Value, residual ram.Operation, ok bool) {
	conjuncts := ram.FlattenConjunction(f.Condition)
	pattern = make([]ram.Value, arity)

	var leftover []ram.Condition

	for _, c := range conjuncts {
		cmp, isCmp := c.(*ram.Comparison)
		if !isCmp || cmp.Op != "=" {
			leftover = append(leftover, c)
			continue
		}

		col, val, matched := matchColumn(tid, cmp)
		if !matched || col >= arity || pattern[col] != nil || analysis.ExpressionLevel(val) >= int(tid) {
			leftover = append(leftover, c)
			continue
		}

		pattern[col] = val
		ok = true
	}

	if !ok {
		return nil, nil, false
	}

	var res ram.Operation = f.Nested
	if rest := ram.Conjoin(leftover...); rest != nil {
		res = &ram.Filter{Condition: rest, Nested: f.Nested}
	}

	return pattern, res, true
}

// matchColumn reports whether cmp pins tid's column to a value, trying both
// operand orders, and returns the pinned column and the opposite operand.
func matchColumn(tid uint, cmp *ram.Comparison) (col uint, val ram.Value, ok bool) {
	if ea, isEA := cmp.Lhs.(*ram.ElementAccess); isEA && ea.Tuple == tid {
		return ea.Column, cmp.Rhs, true
	}

	if ea, isEA := cmp.Rhs.(*ram.ElementAccess); isEA && ea.Tuple == tid {
		return ea.Column, cmp.Lhs, true
	}

	return 0, nil, false
}
