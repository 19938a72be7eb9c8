// Package transform implements the RAM rewrite pipeline: four loop-nest
// transformers applied in a fixed order, each inspecting and rewriting the
// Operation tree under every Query in a translation unit. None of them
// touch the Statement skeleton (Stratum/Sequence/Loop/...) surrounding
// those queries; pipeline.go is the only file that walks statements.
package transform

import "github.com/dcol97/souffle/pkg/ram"

// escapesTuple reports whether n references tuple id t anywhere within it.
// Mirrors Souffle's escape-analysis walk used by ConvertExistenceChecks and
// SearchesToChoices to decide whether a scan's bound tuple is needed beyond
// the filter that currently guards it.
func escapesTuple(n ram.Node, t uint) bool {
	if n == nil {
		return false
	}

	found := false

	ram.Map(n, func(node ram.Node) ram.Node {
		if ea, ok := node.(*ram.ElementAccess); ok && ea.Tuple == t {
			found = true
		}

		return node
	})

	return found
}
