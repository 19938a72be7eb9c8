package translate

import (
	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/schedule"
)

// lowerNonRecursiveSCC translates every clause of an acyclic SCC's
// relations into one Query per clause, in clause declaration order.
func (t *Translator) lowerNonRecursiveSCC(relations []string) []ram.Statement {
	var stmts []ram.Statement

	for _, rel := range relations {
		for _, c := range t.prog.ClausesFor(rel) {
			if c.Info {
				continue
			}

			stmts = append(stmts, &ram.Query{Op: t.lowerClause(c, nil, -1, nil)})
		}
	}

	return stmts
}

// lowerRecursiveSCC implements spec §4.3.4's semi-naive evaluation: seed
// every relation's base case (and its delta mirror), then iterate a
// Parallel block of delta-substituted recursive clause variants until no
// new_R relation gains a tuple.
func (t *Translator) lowerRecursiveSCC(relations []string, rc *schedule.RecursiveClauses) []ram.Statement {
	var stmts []ram.Statement

	// 1. Base case into R and its delta mirror.
	for _, rel := range relations {
		for _, c := range t.prog.ClausesFor(rel) {
			if c.Info || clauseIsRecursive(rc, c) {
				continue
			}

			relRef := t.relRef(rel)
			stmts = append(stmts, &ram.Query{Op: t.lowerClause(c, nil, -1, nil)})
			stmts = append(stmts, &ram.Query{Op: t.lowerClause(c, &ram.RelationRef{Name: deltaName(rel), Arity: relRef.Arity}, -1, nil)})
		}
	}

	// 2. Loop over a Parallel block of delta-substituted clause variants.
	var variants []ram.Statement

	for _, rel := range relations {
		for _, c := range t.prog.ClausesFor(rel) {
			if c.Info || !clauseIsRecursive(rc, c) {
				continue
			}

			variants = append(variants, t.lowerRecursiveVariants(rel, c, rc)...)
		}
	}

	loopBody := []ram.Statement{&ram.Parallel{Stmts: variants}}

	// The exit check reads new_R's freshly computed contents, so it must run
	// before the rotation below clears it.
	var exitConds []ram.Condition
	for _, rel := range relations {
		exitConds = append(exitConds, &ram.Empty{Relation: ram.RelationRef{Name: newName(rel), Arity: t.relRef(rel).Arity}})
	}

	loopBody = append(loopBody, &ram.Exit{Condition: ram.Conjoin(exitConds...)})

	for _, rel := range relations {
		deltaRef := ram.RelationRef{Name: deltaName(rel), Arity: t.relRef(rel).Arity}
		newRef := ram.RelationRef{Name: newName(rel), Arity: t.relRef(rel).Arity}

		loopBody = append(loopBody,
			&ram.Swap{A: deltaRef, B: newRef},
			&ram.Merge{Source: deltaRef, Target: t.relRef(rel)},
			&ram.Clear{Relation: newRef},
		)
	}

	stmts = append(stmts, &ram.Loop{Body: &ram.Sequence{Stmts: loopBody}})

	return stmts
}

// lowerRecursiveVariants generates one clause variant per in-SCC positive
// body literal: that literal reads from its delta relation, every other
// in-SCC positive literal reads from the full relation (as usual), and the
// result is projected into new_rel after filtering out tuples already
// present in rel.
func (t *Translator) lowerRecursiveVariants(rel string, c *ast.Clause, rc *schedule.RecursiveClauses) []ram.Statement {
	var out []ram.Statement

	newRel := ram.RelationRef{Name: newName(rel), Arity: t.relRef(rel).Arity}
	marks := rc.InSCCAtom[c]

	for i := range c.Body {
		if i >= len(marks) || !marks[i] {
			continue
		}

		guard := t.recursiveDedupGuard(rel, c)
		op := t.lowerClause(c, &newRel, i, guard)
		out = append(out, &ram.Query{Op: op})
	}

	return out
}

// recursiveDedupGuard builds the NotExistenceCheck(rel, headPattern) guard
// that keeps a recursive variant from reprojecting a tuple rel already
// contains. It re-translates the clause once more (hoisted, with a fresh
// ValueIndex) purely to compute the head argument values; this mirrors how
// the real lowering would compute the head pattern, kept as a separate,
// independent pass so the guard's tree owns its own nodes.
func (t *Translator) recursiveDedupGuard(rel string, c *ast.Clause) ram.Condition {
	hoisted := hoistAggregators(c)
	vi := NewValueIndex()
	level := uint(0)

	var headValues []ram.Value

	finish := func(vi *ValueIndex) ram.Operation {
		headValues = make([]ram.Value, len(hoisted.Head.Args))
		for i, a := range hoisted.Head.Args {
			headValues[i] = t.translateExpr(a, vi)
		}

		return &ram.Return{Values: headValues}
	}

	t.lowerBody(hoisted.Body, 0, vi, &level, -1, finish)

	return &ram.NotExistenceCheck{Relation: t.relRef(rel), Pattern: headValues}
}

func clauseIsRecursive(rc *schedule.RecursiveClauses, c *ast.Clause) bool {
	for _, in := range rc.InSCCAtom[c] {
		if in {
			return true
		}
	}

	return false
}
