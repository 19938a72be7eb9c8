package transform

import (
	"github.com/dcol97/souffle/pkg/analysis"
	"github.com/dcol97/souffle/pkg/ram"
)

// LevelConditions implements spec §4.4.1: every Filter's conjuncts are
// split apart and each is hoisted up through enclosing scans until it sits
// immediately inside the scan that introduces the tuple id it depends on.
// Processing is postorder: a node's Nested is transformed first, so a
// conjunct bubbles past one enclosing operation per return up the call
// stack, eventually settling at its proper level however many operations
// it needed to cross.
func LevelConditions(op ram.Operation) (ram.Operation, bool) {
	switch o := op.(type) {
	case *ram.Filter:
		nested, changed := LevelConditions(o.Nested)
		conds := ram.FlattenConjunction(o.Condition)

		var rebuilt ram.Operation = nested
		for i := len(conds) - 1; i >= 0; i-- {
			rebuilt = &ram.Filter{Condition: conds[i], Nested: rebuilt}
		}

		return rebuilt, changed || len(conds) > 1

	case *ram.Scan:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)
		result := wrap(hoisted, &ram.Scan{Relation: o.Relation, TupleID: o.TupleID, Nested: residual})

		return result, changed || moved

	case *ram.IndexScan:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)
		result := wrap(hoisted, &ram.IndexScan{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Nested: residual})

		return result, changed || moved

	case *ram.Choice:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)
		result := wrap(hoisted, &ram.Choice{Relation: o.Relation, TupleID: o.TupleID, Condition: o.Condition, Nested: residual})

		return result, changed || moved

	case *ram.IndexChoice:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)
		result := wrap(hoisted, &ram.IndexChoice{Relation: o.Relation, TupleID: o.TupleID, Pattern: o.Pattern, Condition: o.Condition, Nested: residual})

		return result, changed || moved

	case *ram.Lookup:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)
		result := wrap(hoisted, &ram.Lookup{Value: o.Value, Arity: o.Arity, TupleID: o.TupleID, Nested: residual})

		return result, changed || moved

	case *ram.Aggregate:
		nested, changed := LevelConditions(o.Nested)
		residual, hoisted, moved := peelFilters(o.TupleID, nested)

		na := *o
		na.Nested = residual
		result := wrap(hoisted, &na)

		return result, changed || moved

	default: // *ram.Project, *ram.Return: leaves
		return op, false
	}
}

// peelFilters strips every leading Filter off nested whose ConditionLevel
// is strictly shallower than tid (so it is computable before the operation
// that binds tid even exists), returning the remaining operation plus the
// stripped conditions in encounter order, shallowest first.
func peelFilters(tid uint, nested ram.Operation) (residual ram.Operation, hoisted []ram.Condition, moved bool) {
	cur := nested

	for {
		f, ok := cur.(*ram.Filter)
		if !ok {
			break
		}

		if analysis.ConditionLevel(f.Condition) >= int(tid) {
			break
		}

		hoisted = append(hoisted, f.Condition)
		cur = f.Nested
	}

	return cur, hoisted, len(hoisted) > 0
}

// wrap re-applies hoisted conditions as Filters around op, outermost first.
func wrap(hoisted []ram.Condition, op ram.Operation) ram.Operation {
	result := op
	for i := len(hoisted) - 1; i >= 0; i-- {
		result = &ram.Filter{Condition: hoisted[i], Nested: result}
	}

	return result
}
