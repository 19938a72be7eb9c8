package transform

import (
	"testing"

	"github.com/dcol97/souffle/pkg/config"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reachabilityQuery mirrors the S4 scenario: P(x) :- A(x), !B(x), x>10,
// where both the negation and the comparison sit at level 0 from the start.
func reachabilityQuery() *ram.Scan {
	return &ram.Scan{
		Relation: ram.RelationRef{Name: "A", Arity: 1},
		TupleID:  0,
		Nested: &ram.Filter{
			Condition: &ram.NotExistenceCheck{
				Relation: ram.RelationRef{Name: "B", Arity: 1},
				Pattern:  []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}},
			},
			Nested: &ram.Filter{
				Condition: &ram.Comparison{Op: ">", Lhs: &ram.ElementAccess{Tuple: 0, Column: 0}, Rhs: &ram.Number{Val: 10}},
				Nested: &ram.Project{
					Relation: ram.RelationRef{Name: "P", Arity: 1},
					Values:   []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}},
				},
			},
		},
	}
}

func TestLevelConditionsAlreadyLeveledIsNoop(t *testing.T) {
	op, changed := LevelConditions(reachabilityQuery())
	assert.False(t, changed, "both conjuncts already sit at their own scan's level")

	scan := op.(*ram.Scan)
	_, ok := scan.Nested.(*ram.Filter)
	require.True(t, ok)
}

// joinQuery mirrors the S3 scenario: C(x,z) :- A(x,y), B(y,z). B's scan is
// immediately guarded by the equality filter pinning its first column to
// the value bound by A.
func joinQuery() *ram.Scan {
	return &ram.Scan{
		Relation: ram.RelationRef{Name: "A", Arity: 2},
		TupleID:  0,
		Nested: &ram.Scan{
			Relation: ram.RelationRef{Name: "B", Arity: 2},
			TupleID:  1,
			Nested: &ram.Filter{
				Condition: &ram.Comparison{
					Op:  "=",
					Lhs: &ram.ElementAccess{Tuple: 1, Column: 0},
					Rhs: &ram.ElementAccess{Tuple: 0, Column: 1},
				},
				Nested: &ram.Project{
					Relation: ram.RelationRef{Name: "C", Arity: 2},
					Values: []ram.Value{
						&ram.ElementAccess{Tuple: 0, Column: 0},
						&ram.ElementAccess{Tuple: 1, Column: 1},
					},
				},
			},
		},
	}
}

func TestCreateIndicesAbsorbsJoinEquality(t *testing.T) {
	op, changed := CreateIndices(joinQuery())
	require.True(t, changed)

	outer := op.(*ram.Scan)
	assert.Equal(t, "A", outer.Relation.Name)

	inner, ok := outer.Nested.(*ram.IndexScan)
	require.True(t, ok, "B's scan absorbs the equality into an IndexScan pattern")
	require.Len(t, inner.Pattern, 2)
	assert.Nil(t, inner.Pattern[1], "the unconstrained column stays a wildcard")

	pinned, ok := inner.Pattern[0].(*ram.ElementAccess)
	require.True(t, ok)
	assert.Equal(t, uint(0), pinned.Tuple)
	assert.Equal(t, uint(1), pinned.Column)

	_, ok = inner.Nested.(*ram.Project)
	assert.True(t, ok, "no residual filter remains once the only conjunct is absorbed")
}

func TestCreateIndicesIdempotent(t *testing.T) {
	once, _ := CreateIndices(joinQuery())
	twice, changed := CreateIndices(once)
	assert.False(t, changed)
	assert.True(t, once.Equal(twice))
}

// existenceQuery is a hand-built fixture exercising collapseToExistence's
// Filter-unwrapping path directly: a bare Scan still guarded by a separate
// equality Filter (as CreateIndices would leave it if the equality pinned a
// column outside the scanned relation's own arity, or were run with
// indexing disabled), where nothing downstream of the guard reads column 1
// of t1, so the whole scan collapses to an existence test. This is a
// narrower case than the S6 scenario end to end — see
// TestConvertExistenceChecksCollapsesAbsorbedPattern for the shape
// CreateIndices actually produces, where the equality is absorbed into an
// IndexScan pattern and no Filter survives to unwrap.
func existenceQuery() *ram.Scan {
	return &ram.Scan{
		Relation: ram.RelationRef{Name: "P", Arity: 1},
		TupleID:  0,
		Nested: &ram.Scan{
			Relation: ram.RelationRef{Name: "A", Arity: 2},
			TupleID:  1,
			Nested: &ram.Filter{
				Condition: &ram.Comparison{
					Op:  "=",
					Lhs: &ram.ElementAccess{Tuple: 1, Column: 0},
					Rhs: &ram.ElementAccess{Tuple: 0, Column: 0},
				},
				Nested: &ram.Project{
					Relation: ram.RelationRef{Name: "Q", Arity: 1},
					Values:   []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}},
				},
			},
		},
	}
}

func TestConvertExistenceChecksCollapsesPureMembership(t *testing.T) {
	op, changed := ConvertExistenceChecks(existenceQuery())
	require.True(t, changed)

	outer := op.(*ram.Scan)
	filter, ok := outer.Nested.(*ram.Filter)
	require.True(t, ok, "A's scan collapses to a Filter over an ExistenceCheck")

	check, ok := filter.Condition.(*ram.ExistenceCheck)
	require.True(t, ok)
	assert.Equal(t, "A", check.Relation.Name)
	require.Len(t, check.Pattern, 2)

	_, ok = filter.Nested.(*ram.Project)
	assert.True(t, ok)
}

func TestConvertExistenceChecksIdempotent(t *testing.T) {
	once, _ := ConvertExistenceChecks(existenceQuery())
	twice, changed := ConvertExistenceChecks(once)
	assert.False(t, changed)
	assert.True(t, once.Equal(twice))
}

func TestConvertExistenceChecksLeavesEscapingTupleAlone(t *testing.T) {
	// B's column 1 (z) is read by the head projection, so the scan cannot
	// be dropped to a boolean existence test.
	op, changed := ConvertExistenceChecks(joinQuery())
	assert.False(t, changed)

	outer := op.(*ram.Scan)
	_, ok := outer.Nested.(*ram.Scan)
	assert.True(t, ok, "B's scan survives untouched")
}

// absorbedExistenceQuery is the shape CreateIndices actually leaves behind
// for the spec's own S6 example, Q(x) :- A(x), B(x,_): the join equality
// pinning B's first column to A's x has already been absorbed wholesale
// into B's IndexScan pattern, so no Filter survives beneath it to unwrap,
// yet B's tuple still contributes nothing past that pattern (its second
// column is never read downstream) — so the scan itself, not a guarding
// Filter, is what must collapse to a membership test.
func absorbedExistenceQuery() *ram.Scan {
	return &ram.Scan{
		Relation: ram.RelationRef{Name: "A", Arity: 1},
		TupleID:  0,
		Nested: &ram.IndexScan{
			Relation: ram.RelationRef{Name: "B", Arity: 2},
			TupleID:  1,
			Pattern:  []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}, nil},
			Nested: &ram.Project{
				Relation: ram.RelationRef{Name: "Q", Arity: 1},
				Values:   []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}},
			},
		},
	}
}

func TestConvertExistenceChecksCollapsesAbsorbedPattern(t *testing.T) {
	op, changed := ConvertExistenceChecks(absorbedExistenceQuery())
	require.True(t, changed)

	outer := op.(*ram.Scan)
	filter, ok := outer.Nested.(*ram.Filter)
	require.True(t, ok, "B's IndexScan collapses to a Filter over an ExistenceCheck even with no residual Filter beneath it")

	check, ok := filter.Condition.(*ram.ExistenceCheck)
	require.True(t, ok)
	assert.Equal(t, "B", check.Relation.Name)
	require.Len(t, check.Pattern, 2)
	assert.NotNil(t, check.Pattern[0], "the absorbed equality carries over into the existence check's pattern")
	assert.Nil(t, check.Pattern[1])

	_, ok = filter.Nested.(*ram.Project)
	assert.True(t, ok)
}

func TestConvertExistenceChecksAbsorbedPatternIdempotent(t *testing.T) {
	once, _ := ConvertExistenceChecks(absorbedExistenceQuery())
	twice, changed := ConvertExistenceChecks(once)
	assert.False(t, changed)
	assert.True(t, once.Equal(twice))
}

// choiceQuery mirrors a negation-free membership test where the bound tuple
// feeds the guarding comparison but is never projected: P(x) :- A(x,_),
// B(y), y>0 projecting only x — B's column never needed beyond confirming
// the comparison, but unlike existenceQuery the comparison constant isn't an
// equality against an outer column so ConvertExistenceChecks cannot collapse
// it to membership; SearchesToChoices narrows it to a single witness scan
// instead.
func choiceQuery() *ram.Scan {
	return &ram.Scan{
		Relation: ram.RelationRef{Name: "A", Arity: 2},
		TupleID:  0,
		Nested: &ram.Scan{
			Relation: ram.RelationRef{Name: "B", Arity: 1},
			TupleID:  1,
			Nested: &ram.Filter{
				Condition: &ram.Comparison{Op: ">", Lhs: &ram.ElementAccess{Tuple: 1, Column: 0}, Rhs: &ram.Number{Val: 0}},
				Nested: &ram.Project{
					Relation: ram.RelationRef{Name: "P", Arity: 1},
					Values:   []ram.Value{&ram.ElementAccess{Tuple: 0, Column: 0}},
				},
			},
		},
	}
}

func TestSearchesToChoicesNarrowsNonEscapingScan(t *testing.T) {
	op, changed := SearchesToChoices(choiceQuery())
	require.True(t, changed)

	outer := op.(*ram.Scan)
	choice, ok := outer.Nested.(*ram.Choice)
	require.True(t, ok, "B's scan narrows to a Choice since only the guard reads t1")
	assert.Equal(t, "B", choice.Relation.Name)

	cmp, ok := choice.Condition.(*ram.Comparison)
	require.True(t, ok)
	assert.Equal(t, ">", cmp.Op)

	_, ok = choice.Nested.(*ram.Project)
	assert.True(t, ok)
}

func TestSearchesToChoicesIdempotent(t *testing.T) {
	once, _ := SearchesToChoices(choiceQuery())
	twice, changed := SearchesToChoices(once)
	assert.False(t, changed)
	assert.True(t, once.Equal(twice))
}

func TestEscapesTupleDetectsColumnReference(t *testing.T) {
	proj := &ram.Project{
		Relation: ram.RelationRef{Name: "P", Arity: 1},
		Values:   []ram.Value{&ram.ElementAccess{Tuple: 2, Column: 0}},
	}

	assert.True(t, escapesTuple(proj, 2))
	assert.False(t, escapesTuple(proj, 3))
	assert.False(t, escapesTuple(nil, 0))
}

func TestRunProgramAppliesFullPipeline(t *testing.T) {
	prog := &ram.Program{
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Stratum{Index: 0, Body: &ram.Sequence{Stmts: []ram.Statement{
				&ram.Query{Op: joinQuery()},
			}}},
		}},
		Subroutines: map[string]ram.Statement{},
	}

	cfg := config.Default()
	changed := RunProgram(prog, cfg)
	require.True(t, changed)

	stratum := prog.Main.(*ram.Sequence).Stmts[0].(*ram.Stratum)
	query := stratum.Body.(*ram.Sequence).Stmts[0].(*ram.Query)

	outer := query.Op.(*ram.Scan)
	_, ok := outer.Nested.(*ram.IndexScan)
	assert.True(t, ok, "the join's inner scan ends up indexed after the full pipeline runs")
}

func TestRunProgramOptLevelZeroDisablesPipeline(t *testing.T) {
	prog := &ram.Program{
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Query{Op: joinQuery()},
		}},
	}

	cfg := config.Default()
	cfg.OptLevel = 0

	changed := RunProgram(prog, cfg)
	assert.False(t, changed)

	query := prog.Main.(*ram.Sequence).Stmts[0].(*ram.Query)
	outer := query.Op.(*ram.Scan)
	_, ok := outer.Nested.(*ram.Scan)
	assert.True(t, ok, "untouched: still a plain Scan, not an IndexScan")
}
