package translate

import (
	"fmt"
	"sort"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/symbol"
)

// lowerProvenanceSubroutines implements spec §4.3.5: for every non-info
// clause with a non-empty body, emit a subroutine named
// "<rel>_<clauseNum>_subproof" that re-derives the clause body, constrains
// each head column to equal the corresponding Argument(i) (the queried
// tuple's columns, passed in by the caller), and returns the head values
// of each witnessing derivation via Return.
func (t *Translator) lowerProvenanceSubroutines() map[string]ram.Statement {
	subs := map[string]ram.Statement{}

	for _, rel := range sortedRelationNames(t.prog) {
		for clauseNum, c := range t.prog.ClausesFor(rel) {
			if c.Info || len(c.Body) == 0 {
				continue
			}

			name := fmt.Sprintf("%s_%d_subproof", rel, clauseNum)
			subs[name] = &ram.Query{Op: t.lowerSubproofClause(c)}
			t.syms.Add(name, symbol.KindSubroutine)
		}
	}

	return subs
}

// lowerSubproofClause re-lowers c's body exactly as lowerClause would, but
// replaces the head Project with an equality Filter pinning every head
// column to Argument(i), innermost of which a Return of the head values is
// emitted.
func (t *Translator) lowerSubproofClause(c *ast.Clause) ram.Operation {
	hoisted := hoistAggregators(c)
	vi := NewValueIndex()
	level := uint(0)

	finish := func(vi *ValueIndex) ram.Operation {
		headArgs := make([]ram.Value, len(hoisted.Head.Args))
		for i, a := range hoisted.Head.Args {
			headArgs[i] = t.translateExpr(a, vi)
		}

		var pins []ram.Condition
		for i, v := range headArgs {
			pins = append(pins, &ram.Comparison{Op: "=", Lhs: v, Rhs: &ram.Argument{Index: uint(i)}})
		}

		witnesses := make([]ram.Value, len(headArgs))
		for i, v := range headArgs {
			witnesses[i] = v.Clone().(ram.Value)
		}

		return &ram.Filter{
			Condition: ram.Conjoin(pins...),
			Nested:    &ram.Return{Values: witnesses},
		}
	}

	return t.lowerBody(hoisted.Body, 0, vi, &level, -1, finish)
}

func sortedRelationNames(prog *ast.Program) []string {
	names := make([]string, 0, len(prog.Relations))
	for name := range prog.Relations {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
