// Package analysis implements the pure, read-only analyses that
// pkg/transform's rewrites are built on: ExpressionLevel, ConditionLevel,
// ConstValue and IndexScanKeys. None of them mutate the tree they inspect.
package analysis

import "github.com/dcol97/souffle/pkg/ram"

// NoLevel is the level of a tuple-free value or condition.
const NoLevel = -1

// ExpressionLevel returns the deepest (largest) tuple id referenced inside
// v, or NoLevel if v references no tuple at all. This is the earliest loop
// level at which v is computable: every ElementAccess(t, _) nested inside v
// requires tuple t to already be bound.
func ExpressionLevel(v ram.Value) int {
	level := NoLevel

	ram.Map(v, func(n ram.Node) ram.Node {
		if ea, ok := n.(*ram.ElementAccess); ok {
			if int(ea.Tuple) > level {
				level = int(ea.Tuple)
			}
		}

		return n
	})

	return level
}

// ConditionLevel returns the deepest tuple id that c depends on, taken over
// every comparand and every existence-check pattern slot. A condition can be
// placed immediately inside the scan that introduces that tuple id.
func ConditionLevel(c ram.Condition) int {
	level := NoLevel

	ram.Map(c, func(n ram.Node) ram.Node {
		if ea, ok := n.(*ram.ElementAccess); ok {
			if int(ea.Tuple) > level {
				level = int(ea.Tuple)
			}
		}

		return n
	})

	return level
}

// ConstValue reports whether v is a compile-time constant: a Number, an
// AutoIncrement (fixed at the point of evaluation, not tuple-dependent), or
// an Intrinsic/Pack whose arguments are all themselves constant.
func ConstValue(v ram.Value) bool {
	switch p := v.(type) {
	case *ram.Number:
		return true
	case *ram.AutoIncrement:
		return true
	case *ram.Intrinsic:
		for _, a := range p.Args {
			if a == nil || !ConstValue(a) {
				return false
			}
		}

		return true
	case *ram.Pack:
		for _, a := range p.Args {
			if a != nil && !ConstValue(a) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// IndexScanKeys returns a bitmask where bit i is set iff pattern[i] is
// non-nil (concrete). Mirrors Souffle's RamIndexScanKeysAnalysis, which
// represents SearchColumns the same way: a plain integer with one bit per
// non-null range-pattern slot.
func IndexScanKeys(pattern []ram.Value) uint64 {
	var mask uint64

	for i, v := range pattern {
		if v != nil {
			mask |= 1 << uint(i)
		}
	}

	return mask
}
