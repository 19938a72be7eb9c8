package translate

import (
	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/schedule"
)

// lowerStratum implements the fixed eight-phase per-stratum plan of spec
// §4.3.1, transcribed from the retrieved original's
// AstTranslator.cpp::translateProgram per-SCC lambda sequence.
func (t *Translator) lowerStratum(pos int, sccIdx int, g *schedule.SCCGraph, rc *schedule.RecursiveClauses, sched *schedule.RelationSchedule) ram.Statement {
	relations := g.SCCs[sccIdx]
	recursive := g.IsRecursive(sccIdx, t.prog)

	inSCC := map[string]bool{}
	for _, r := range relations {
		inSCC[r] = true
	}

	var stmts []ram.Statement

	// 1. Create every internal relation; recursive SCCs also get delta_/new_.
	for _, rel := range relations {
		ref := t.relRef(rel)
		stmts = append(stmts, &ram.Create{Relation: ref})

		if recursive {
			stmts = append(stmts,
				&ram.Create{Relation: ram.RelationRef{Name: deltaName(rel), Arity: ref.Arity}},
				&ram.Create{Relation: ram.RelationRef{Name: newName(rel), Arity: ref.Arity}},
			)
		}
	}

	// 2. Load every internal input relation.
	for _, rel := range relations {
		if r := t.prog.Relations[rel]; r != nil && r.Input {
			stmts = append(stmts, &ram.Load{Relation: t.relRef(rel)})
		}
	}

	// 3. With an engine configured, load external predecessors.
	externals := externalPredecessors(t.prog, inSCC)

	if t.cfg.EngineEnabled() {
		for _, name := range externals {
			stmts = append(stmts, &ram.Load{Relation: t.relRef(name)})
		}
	}

	// 4. Body.
	if recursive {
		stmts = append(stmts, t.lowerRecursiveSCC(relations, rc)...)
	} else {
		stmts = append(stmts, t.lowerNonRecursiveSCC(relations)...)
	}

	// 5. PrintSize for flagged internal relations.
	for _, rel := range relations {
		if r := t.prog.Relations[rel]; r != nil && r.PrintSize {
			stmts = append(stmts, &ram.PrintSize{Relation: t.relRef(rel)})
		}
	}

	// 6. With an engine, store internal non-output relations with external
	// successors.
	if t.cfg.EngineEnabled() {
		for _, rel := range relations {
			r := t.prog.Relations[rel]
			if r != nil && !r.Output && hasExternalSuccessor(t.prog, rel, inSCC) {
				stmts = append(stmts, &ram.Store{Relation: t.relRef(rel)})
			}
		}
	}

	// 7. Store internal output relations.
	for _, rel := range relations {
		if r := t.prog.Relations[rel]; r != nil && r.Output {
			stmts = append(stmts, &ram.Store{Relation: t.relRef(rel)})
		}
	}

	// 8. Drop, per provenance/engine configuration.
	if !t.cfg.Provenance {
		if t.cfg.EngineEnabled() {
			for _, rel := range relations {
				stmts = append(stmts, &ram.Drop{Relation: t.relRef(rel)})
			}

			for _, name := range externals {
				stmts = append(stmts, &ram.Drop{Relation: t.relRef(name)})
			}
		} else {
			// A relation's last use may fall in a later stratum than the one
			// that defines it (an input relation read throughout a downstream
			// recursive SCC, for instance), so this checks every relation's
			// expiry against pos, not just this stratum's own members.
			for _, rel := range sortedRelationNames(t.prog) {
				if sched.ExpiresAt[rel] == pos {
					stmts = append(stmts, &ram.Drop{Relation: t.relRef(rel)})
				}
			}
		}
	}

	return &ram.Stratum{Index: pos, Body: &ram.Sequence{Stmts: stmts}}
}

// externalPredecessors returns, in deterministic order, every relation
// outside inSCC that some clause with a head in inSCC reads from.
func externalPredecessors(prog *ast.Program, inSCC map[string]bool) []string {
	seen := map[string]bool{}

	var out []string

	for _, c := range prog.Clauses {
		if !inSCC[c.Head.Relation] {
			continue
		}

		for _, b := range c.Body {
			if b.Literal == nil || inSCC[b.Literal.Relation] || seen[b.Literal.Relation] {
				continue
			}

			seen[b.Literal.Relation] = true
			out = append(out, b.Literal.Relation)
		}
	}

	return out
}

// hasExternalSuccessor reports whether some clause outside inSCC reads rel.
func hasExternalSuccessor(prog *ast.Program, rel string, inSCC map[string]bool) bool {
	for _, c := range prog.Clauses {
		if inSCC[c.Head.Relation] {
			continue
		}

		for _, b := range c.Body {
			if b.Literal != nil && b.Literal.Relation == rel {
				return true
			}
		}
	}

	return false
}
