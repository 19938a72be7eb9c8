package translate

import (
	"testing"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/config"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/report"
	"github.com/dcol97/souffle/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyProgram() *ast.Program {
	return &ast.Program{Relations: map[string]*ast.Relation{}}
}

func factProgram() *ast.Program {
	return &ast.Program{
		Relations: map[string]*ast.Relation{
			"P": {Name: "P", Arity: 1, Output: true},
		},
		Clauses: []*ast.Clause{
			{Head: ast.Literal{Relation: "P", Args: []ast.Expr{&ast.IntConst{Value: 1}}}},
		},
	}
}

func joinProgram() *ast.Program {
	return &ast.Program{
		Relations: map[string]*ast.Relation{
			"A": {Name: "A", Arity: 2, Input: true},
			"B": {Name: "B", Arity: 2, Input: true},
			"C": {Name: "C", Arity: 2, Output: true},
		},
		Clauses: []*ast.Clause{
			{
				Head: ast.Literal{Relation: "C", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "z"}}},
				Body: []ast.BodyElement{
					{Literal: &ast.Literal{Relation: "A", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}}},
					{Literal: &ast.Literal{Relation: "B", Args: []ast.Expr{&ast.Var{Name: "y"}, &ast.Var{Name: "z"}}}},
				},
			},
		},
	}
}

func negatedConstantProgram() *ast.Program {
	return &ast.Program{
		Relations: map[string]*ast.Relation{
			"A": {Name: "A", Arity: 1, Input: true},
			"P": {Name: "P", Arity: 1, Input: true},
			"Q": {Name: "Q", Arity: 1, Output: true},
		},
		Clauses: []*ast.Clause{
			{
				Head: ast.Literal{Relation: "Q", Args: []ast.Expr{&ast.Var{Name: "x"}}},
				Body: []ast.BodyElement{
					{Literal: &ast.Literal{Relation: "A", Args: []ast.Expr{&ast.Var{Name: "x"}}}},
					{Literal: &ast.Literal{Relation: "P", Args: []ast.Expr{&ast.Var{Name: "x"}}, Negated: true}},
					{Comparison: &ast.Comparison{Op: ">", Lhs: &ast.Var{Name: "x"}, Rhs: &ast.IntConst{Value: 0}}},
				},
			},
		},
	}
}

func reachabilityProgram() *ast.Program {
	return &ast.Program{
		Relations: map[string]*ast.Relation{
			"E": {Name: "E", Arity: 2, Input: true},
			"R": {Name: "R", Arity: 2, Output: true},
		},
		Clauses: []*ast.Clause{
			{
				Head: ast.Literal{Relation: "R", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}},
				Body: []ast.BodyElement{{Literal: &ast.Literal{Relation: "E", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}}}},
			},
			{
				Head: ast.Literal{Relation: "R", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}},
				Body: []ast.BodyElement{
					{Literal: &ast.Literal{Relation: "E", Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "z"}}}},
					{Literal: &ast.Literal{Relation: "R", Args: []ast.Expr{&ast.Var{Name: "z"}, &ast.Var{Name: "y"}}}},
				},
			},
		},
	}
}

func translate(t *testing.T, prog *ast.Program) *ram.Program {
	t.Helper()

	errs := report.NewErrorReport()
	syms := symbol.NewTable()
	p := TranslateProgram(prog, config.Default(), errs, syms)
	require.False(t, errs.HasErrors(), "unexpected diagnostics: %v", errs.Diagnostics())

	return p
}

func TestTranslateEmptyProgram(t *testing.T) {
	p := translate(t, emptyProgram())

	seq, ok := p.Main.(*ram.Sequence)
	require.True(t, ok)
	assert.Empty(t, seq.Stmts)
	assert.Empty(t, p.Subroutines)
}

func TestTranslateSingleFact(t *testing.T) {
	p := translate(t, factProgram())

	seq := p.Main.(*ram.Sequence)
	require.Len(t, seq.Stmts, 1)

	stratum := seq.Stmts[0].(*ram.Stratum)
	body := stratum.Body.(*ram.Sequence).Stmts

	var query *ram.Query
	var stored, dropped bool

	for _, s := range body {
		switch st := s.(type) {
		case *ram.Create:
			assert.Equal(t, "P", st.Relation.Name)
		case *ram.Query:
			query = st
		case *ram.Store:
			stored = true
			assert.Equal(t, "P", st.Relation.Name)
		case *ram.Drop:
			dropped = true
		}
	}

	require.NotNil(t, query, "expected a Query statement projecting the fact")
	assert.True(t, stored, "output relation must be stored")
	assert.True(t, dropped, "intermediate must be dropped once its stratum is done")

	project, ok := query.Op.(*ram.Project)
	require.True(t, ok, "a clause with an empty body projects directly, with no loop nest")
	assert.Equal(t, "P", project.Relation.Name)
	require.Len(t, project.Values, 1)
	assert.Equal(t, int64(1), project.Values[0].(*ram.Number).Val)
}

func TestTranslateSimpleJoin(t *testing.T) {
	p := translate(t, joinProgram())

	seq := p.Main.(*ram.Sequence)
	var query *ram.Query

	for _, stratumStmt := range seq.Stmts {
		stratum := stratumStmt.(*ram.Stratum)
		for _, s := range stratum.Body.(*ram.Sequence).Stmts {
			if q, ok := s.(*ram.Query); ok {
				query = q
			}
		}
	}

	require.NotNil(t, query)

	outer, ok := query.Op.(*ram.Scan)
	require.True(t, ok, "first body literal lowers to a Scan")
	assert.Equal(t, "A", outer.Relation.Name)
	assert.Equal(t, uint(0), outer.TupleID)

	inner, ok := outer.Nested.(*ram.Scan)
	require.True(t, ok, "second body literal lowers to a nested Scan")
	assert.Equal(t, "B", inner.Relation.Name)
	assert.Equal(t, uint(1), inner.TupleID)

	joinFilter, ok := inner.Nested.(*ram.Filter)
	require.True(t, ok, "B's shared variable y re-occurring is enforced by an equality filter")
	joinCmp, ok := joinFilter.Condition.(*ram.Comparison)
	require.True(t, ok)
	assert.Equal(t, "=", joinCmp.Op)

	project, ok := joinFilter.Nested.(*ram.Project)
	require.True(t, ok, "the join's innermost operation projects the head")
	assert.Equal(t, "C", project.Relation.Name)
	require.Len(t, project.Values, 2)

	xRef := project.Values[0].(*ram.ElementAccess)
	assert.Equal(t, uint(0), xRef.Tuple)
	assert.Equal(t, uint(0), xRef.Column)

	zRef := project.Values[1].(*ram.ElementAccess)
	assert.Equal(t, uint(1), zRef.Tuple)
	assert.Equal(t, uint(1), zRef.Column)
}

func TestTranslateNegationAndConstantFilter(t *testing.T) {
	p := translate(t, negatedConstantProgram())

	seq := p.Main.(*ram.Sequence)

	var query *ram.Query
	for _, stratumStmt := range seq.Stmts {
		stratum := stratumStmt.(*ram.Stratum)
		for _, s := range stratum.Body.(*ram.Sequence).Stmts {
			if q, ok := s.(*ram.Query); ok {
				query = q
			}
		}
	}

	require.NotNil(t, query)

	scanA, ok := query.Op.(*ram.Scan)
	require.True(t, ok)
	assert.Equal(t, "A", scanA.Relation.Name)

	filterNeg, ok := scanA.Nested.(*ram.Filter)
	require.True(t, ok, "the negated literal lowers to a Filter")

	notExists, ok := filterNeg.Condition.(*ram.NotExistenceCheck)
	require.True(t, ok)
	assert.Equal(t, "P", notExists.Relation.Name)

	filterCmp, ok := filterNeg.Nested.(*ram.Filter)
	require.True(t, ok, "the comparison lowers to a nested Filter")

	cmp, ok := filterCmp.Condition.(*ram.Comparison)
	require.True(t, ok)
	assert.Equal(t, ">", cmp.Op)
	assert.IsType(t, &ram.Number{}, cmp.Rhs)

	_, ok = filterCmp.Nested.(*ram.Project)
	assert.True(t, ok, "the filter chain terminates in the head projection")
}

func TestTranslateRecursiveReachability(t *testing.T) {
	p := translate(t, reachabilityProgram())

	seq := p.Main.(*ram.Sequence)
	require.Len(t, seq.Stmts, 2, "one stratum for E's trivial SCC, one for R's recursive SCC")

	rStratum := seq.Stmts[1].(*ram.Stratum)
	body := rStratum.Body.(*ram.Sequence).Stmts

	var loop *ram.Loop
	createdDelta, createdNew, droppedE := false, false, false

	for _, s := range body {
		switch st := s.(type) {
		case *ram.Create:
			if st.Relation.Name == "delta_R" {
				createdDelta = true
			}
			if st.Relation.Name == "new_R" {
				createdNew = true
			}
		case *ram.Drop:
			if st.Relation.Name == "E" {
				droppedE = true
			}
		case *ram.Loop:
			loop = st
		}
	}

	assert.True(t, createdDelta)
	assert.True(t, createdNew)
	assert.True(t, droppedE, "E's last use is R's stratum, so it is dropped here rather than its own")
	require.NotNil(t, loop, "a recursive SCC's body is a fixpoint Loop")

	loopStmts := loop.Body.(*ram.Sequence).Stmts
	require.GreaterOrEqual(t, len(loopStmts), 5, "Parallel, Exit, Swap, Merge, Clear")

	_, ok := loopStmts[0].(*ram.Parallel)
	require.True(t, ok, "the loop body opens with the Parallel block of clause variants")

	exit, ok := loopStmts[1].(*ram.Exit)
	require.True(t, ok, "the exit check runs on new_R before it is rotated away")
	empty, ok := exit.Condition.(*ram.Empty)
	require.True(t, ok)
	assert.Equal(t, "new_R", empty.Relation.Name)

	var sawSwap, sawMerge, sawClear bool

	for _, s := range loopStmts[2:] {
		switch st := s.(type) {
		case *ram.Swap:
			sawSwap = true
			assert.Equal(t, "delta_R", st.A.Name)
			assert.Equal(t, "new_R", st.B.Name)
		case *ram.Merge:
			sawMerge = true
			assert.Equal(t, "delta_R", st.Source.Name)
			assert.Equal(t, "R", st.Target.Name)
		case *ram.Clear:
			sawClear = true
			assert.Equal(t, "new_R", st.Relation.Name)
		}
	}

	assert.True(t, sawSwap, "delta_R and new_R are swapped once per iteration")
	assert.True(t, sawMerge, "the freshly computed delta is merged into R")
	assert.True(t, sawClear, "new_R is cleared so the exit check sees only this iteration's tuples")
}

func TestTranslateProvenanceSubproofs(t *testing.T) {
	errs := report.NewErrorReport()
	syms := symbol.NewTable()
	cfg := config.Default()
	cfg.Provenance = true

	prog := joinProgram()
	p := TranslateProgram(prog, cfg, errs, syms)
	require.False(t, errs.HasErrors())

	require.Len(t, p.Subroutines, 1)

	sub, ok := p.Subroutines["C_0_subproof"]
	require.True(t, ok, "one subproof subroutine per non-info clause, named <rel>_<clauseNum>_subproof")

	query := sub.(*ram.Query)
	scanA := query.Op.(*ram.Scan)
	scanB := scanA.Nested.(*ram.Scan)

	joinFilter, ok := scanB.Nested.(*ram.Filter)
	require.True(t, ok, "B's shared variable y re-occurring is enforced by an equality filter")

	filter, ok := joinFilter.Nested.(*ram.Filter)
	require.True(t, ok, "a subproof pins every head column to Argument(i) instead of projecting")

	ret, ok := filter.Nested.(*ram.Return)
	require.True(t, ok, "a subproof returns the witnessing body bindings")
	require.Len(t, ret.Values, 2)

	entry, ok := syms.Lookup("C_0_subproof")
	require.True(t, ok)
	assert.Equal(t, symbol.KindSubroutine, entry.Kind)
}
