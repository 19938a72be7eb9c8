package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sampleTree builds a small but representative RAM fragment exercising
// every node family: an IndexScan over a Filter'd Project, guarded by a
// conjunction of a Comparison and an ExistenceCheck.
func sampleTree() Operation {
	rel := RelationRef{Name: "edge", Arity: 2}
	path := RelationRef{Name: "path", Arity: 2}

	cond := Conjoin(
		&Comparison{Op: "!=", Lhs: &ElementAccess{Tuple: 0, Column: 0}, Rhs: &Number{Val: 0}},
		&ExistenceCheck{Relation: path, Pattern: []Value{&ElementAccess{Tuple: 0, Column: 1}, nil}},
	)

	return &IndexScan{
		Relation: rel,
		TupleID:  0,
		Pattern:  []Value{nil, &Number{Val: 7}},
		Nested: &Filter{
			Condition: cond,
			Nested: &Project{
				Relation: path,
				Values:   []Value{&ElementAccess{Tuple: 0, Column: 0}, &ElementAccess{Tuple: 0, Column: 1}},
			},
		},
	}
}

func TestCloneIsDeepAndEqual(t *testing.T) {
	orig := sampleTree()
	clone := orig.Clone()

	assert.True(t, orig.Equal(clone), "clone must be structurally equal to the original")
	assert.NotSame(t, orig, clone)

	// Mutate a leaf reached through the clone; the original must be unaffected.
	scan := clone.(*IndexScan)
	scan.Pattern[1].(*Number).Val = 99

	origScan := orig.(*IndexScan)
	assert.Equal(t, int64(7), origScan.Pattern[1].(*Number).Val, "mutating the clone must not affect the original")
}

func TestMapIdentityPreservesEquality(t *testing.T) {
	orig := sampleTree()
	mapped := Map(orig, Identity)

	assert.True(t, orig.Equal(mapped), "mapping with Identity must preserve structural equality")
}

func TestMapRewritesEveryNode(t *testing.T) {
	orig := sampleTree()

	count := 0
	_ = Map(orig, func(n Node) Node {
		count++
		return n
	})

	// scan, pattern[1], filter, conjunction, comparison, lhs, rhs, existence
	// check, pattern[0], project, values[0], values[1] = 12 nodes.
	assert.Equal(t, 12, count)
}

func TestMapRewritesNumbers(t *testing.T) {
	orig := sampleTree()

	doubled := Map(orig, func(n Node) Node {
		if num, ok := n.(*Number); ok {
			return &Number{Val: num.Val * 2}
		}

		return n
	})

	scan := doubled.(*IndexScan)
	assert.Equal(t, int64(14), scan.Pattern[1].(*Number).Val)
}

func TestFlattenConjunctionRoundTrips(t *testing.T) {
	a := &Comparison{Op: "=", Lhs: &Number{Val: 1}, Rhs: &Number{Val: 1}}
	b := &Comparison{Op: "=", Lhs: &Number{Val: 2}, Rhs: &Number{Val: 2}}
	c := &Comparison{Op: "=", Lhs: &Number{Val: 3}, Rhs: &Number{Val: 3}}

	conj := Conjoin(a, b, c)
	flat := FlattenConjunction(conj)

	assert.Len(t, flat, 3)
	assert.True(t, flat[0].Equal(a))
	assert.True(t, flat[1].Equal(b))
	assert.True(t, flat[2].Equal(c))
}

func TestConjoinEmptyAndSingle(t *testing.T) {
	assert.Nil(t, Conjoin())
	assert.Nil(t, Conjoin(nil, nil))

	single := &Empty{Relation: RelationRef{Name: "r", Arity: 1}}
	assert.Same(t, Condition(single), Conjoin(single))
}

func TestRelationRefEqual(t *testing.T) {
	a := RelationRef{Name: "edge", Arity: 2}
	b := RelationRef{Name: "edge", Arity: 2}
	c := RelationRef{Name: "edge", Arity: 3}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestElementAccessLabelIgnoredByEqual(t *testing.T) {
	a := &ElementAccess{Tuple: 0, Column: 1, Label: "x"}
	b := &ElementAccess{Tuple: 0, Column: 1, Label: "y"}

	assert.True(t, a.Equal(b), "Label is dump metadata only and must not affect structural equality")
}

func TestLispDumpIsNonEmpty(t *testing.T) {
	tree := sampleTree()
	assert.NotEmpty(t, tree.Lisp())
}

func TestProgramDumpIsDeterministic(t *testing.T) {
	prog := &Program{
		Main: &Query{Op: sampleTree()},
		Subroutines: map[string]Statement{
			"b-provenance": &Sequence{Stmts: []Statement{&Query{Op: sampleTree()}}},
			"a-provenance": &Sequence{Stmts: []Statement{&Query{Op: sampleTree()}}},
		},
	}

	first := prog.Dump()
	second := prog.Dump()
	assert.Equal(t, first, second)

	clone := prog.Clone()
	assert.True(t, prog.Equal(clone))
}
