package schedule

import (
	"testing"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/stretchr/testify/assert"
)

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

func TestBuildSCCGraphFindsRecursiveComponent(t *testing.T) {
	prog := reachabilityProgram()
	g := BuildSCCGraph(prog)

	rIdx, ok := g.Index["R"]
	assert.True(t, ok)
	assert.True(t, g.IsRecursive(rIdx, prog))

	eIdx, ok := g.Index["E"]
	assert.True(t, ok)
	assert.False(t, g.IsRecursive(eIdx, prog))
}

func TestTopologicalOrderPutsDependenciesFirst(t *testing.T) {
	prog := reachabilityProgram()
	g := BuildSCCGraph(prog)
	sorted := Sort(g)

	ePos, rPos := -1, -1

	for pos, sccIdx := range sorted.Order {
		for _, name := range g.SCCs[sccIdx] {
			if name == "E" {
				ePos = pos
			}

			if name == "R" {
				rPos = pos
			}
		}
	}

	assert.Less(t, ePos, rPos, "E must be scheduled before R")
}

func TestRecursiveClausesMarksInSCCAtom(t *testing.T) {
	prog := reachabilityProgram()
	g := BuildSCCGraph(prog)
	rc := BuildRecursiveClauses(prog, g)

	base, recursive := prog.Clauses[0], prog.Clauses[1]

	assert.Equal(t, []bool{false}, rc.InSCCAtom[base])
	assert.Equal(t, []bool{false, true}, rc.InSCCAtom[recursive])
}

func TestRelationScheduleExpiresEAfterItsLastRead(t *testing.T) {
	prog := reachabilityProgram()
	g := BuildSCCGraph(prog)
	sorted := Sort(g)
	sched := BuildRelationSchedule(prog, sorted)

	rSCC := sorted.Index["R"]
	rPos := -1

	for pos, sccIdx := range sorted.Order {
		if sccIdx == rSCC {
			rPos = pos
		}
	}

	assert.Equal(t, rPos, sched.ExpiresAt["E"])
	assert.Equal(t, rPos, sched.ExpiresAt["R"])
}
