package transform

import (
	"github.com/dcol97/souffle/pkg/config"
	"github.com/dcol97/souffle/pkg/ram"
)

// rewriter is the common shape of each of the four transformers: rewrite an
// Operation tree, report whether anything changed.
type rewriter func(ram.Operation) (ram.Operation, bool)

// pipeline is the fixed order spec §4.4.5 mandates: conditions settle at
// their proper level before CreateIndices looks for equalities to absorb,
// and a scan can only be dropped to an existence check or narrowed to a
// choice once the filter guarding it is in its final shape.
var pipeline = []rewriter{
	LevelConditions,
	CreateIndices,
	ConvertExistenceChecks,
	SearchesToChoices,
}

// RunProgram applies the transform pipeline to every Query in prog, in
// place of the Operation trees under prog.Main and every subroutine, and
// reports whether any rewrite fired anywhere. cfg.OptLevel == 0 disables
// the pipeline entirely; otherwise each Query's tree is rewritten to a
// fixpoint bounded by cfg.MaxTransformIterations.
func RunProgram(prog *ram.Program, cfg *config.Store) bool {
	if cfg.OptLevel == 0 {
		return false
	}

	changed := false

	if prog.Main != nil {
		prog.Main = rewriteStatement(prog.Main, cfg.MaxTransformIterations, &changed)
	}

	for name, s := range prog.Subroutines {
		prog.Subroutines[name] = rewriteStatement(s, cfg.MaxTransformIterations, &changed)
	}

	return changed
}

// rewriteStatement walks the statement skeleton looking for Query nodes,
// applying the operation-level pipeline to each one's tree; every other
// statement kind is rebuilt with its children recursed into and is
// otherwise passed through unchanged.
func rewriteStatement(s ram.Statement, maxIter int, changed *bool) ram.Statement {
	switch st := s.(type) {
	case *ram.Query:
		rewritten := runToFixpoint(st.Op, maxIter, changed)
		return &ram.Query{Op: rewritten}

	case *ram.Sequence:
		return &ram.Sequence{Stmts: rewriteAll(st.Stmts, maxIter, changed)}

	case *ram.Parallel:
		return &ram.Parallel{Stmts: rewriteAll(st.Stmts, maxIter, changed)}

	case *ram.Loop:
		return &ram.Loop{Body: rewriteStatement(st.Body, maxIter, changed)}

	case *ram.LogTimer:
		return &ram.LogTimer{Message: st.Message, Body: rewriteStatement(st.Body, maxIter, changed)}

	case *ram.Stratum:
		return &ram.Stratum{Index: st.Index, Body: rewriteStatement(st.Body, maxIter, changed)}

	default:
		return s
	}
}

func rewriteAll(stmts []ram.Statement, maxIter int, changed *bool) []ram.Statement {
	if stmts == nil {
		return nil
	}

	out := make([]ram.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = rewriteStatement(s, maxIter, changed)
	}

	return out
}

// runToFixpoint applies the four transformers in order, repeating the full
// pass while any of them still reports a change, up to maxIter times. A
// single pass that reports no change from any transformer stops early.
func runToFixpoint(op ram.Operation, maxIter int, changed *bool) ram.Operation {
	cur := op

	for i := 0; i < maxIter; i++ {
		passChanged := false

		for _, t := range pipeline {
			var fired bool
			cur, fired = t(cur)
			passChanged = passChanged || fired
		}

		if !passChanged {
			break
		}

		*changed = true
	}

	return cur
}
