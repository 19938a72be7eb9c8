// Package schedule implements the SCC graph, topological order, and
// relation-expiry schedule that pkg/translate treats as external
// collaborators (spec §1 lists these as "analyses consumed verbatim").
// Parsing and semantic analysis are genuinely out of scope, but the
// translator still needs something real to drive its per-stratum lowering
// against end-to-end, so this package provides a direct, textbook
// implementation: Tarjan's algorithm for strongly connected components,
// a topological order over the resulting condensation, and a trivial
// last-use expiry schedule.
package schedule

import "github.com/dcol97/souffle/pkg/ast"

// SCCGraph partitions a program's relations into strongly connected
// components (SCCs) by the depends-on-through-a-positive-or-negative-body-
// atom relation, and records each relation's membership.
type SCCGraph struct {
	// SCCs holds one entry per strongly connected component, each a set of
	// relation names, in the order Tarjan's algorithm completed them (every
	// SCC after the SCCs it depends on, i.e. already a valid dependency
	// order for the condensation).
	SCCs [][]string
	// Index maps a relation name to the index of its SCC in SCCs.
	Index map[string]int
}

// BuildSCCGraph computes the SCC graph of prog's relation dependency graph:
// an edge runs from clause head to every relation named in the clause body
// (negated or not).
func BuildSCCGraph(prog *ast.Program) *SCCGraph {
	edges := map[string]map[string]bool{}
	for name := range prog.Relations {
		edges[name] = map[string]bool{}
	}

	for _, c := range prog.Clauses {
		for _, b := range c.Body {
			if b.Literal != nil {
				edges[c.Head.Relation][b.Literal.Relation] = true
			}
		}
	}

	t := &tarjan{
		edges:   edges,
		index:   map[string]int{},
		lowlink: map[string]int{},
		onStack: map[string]bool{},
	}

	names := make([]string, 0, len(prog.Relations))
	for name := range prog.Relations {
		names = append(names, name)
	}

	sortStrings(names)

	for _, name := range names {
		if _, seen := t.index[name]; !seen {
			t.strongConnect(name)
		}
	}

	graph := &SCCGraph{Index: map[string]int{}}
	for i, scc := range t.sccs {
		graph.SCCs = append(graph.SCCs, scc)
		for _, name := range scc {
			graph.Index[name] = i
		}
	}

	return graph
}

// IsRecursive reports whether the SCC at index i contains more than one
// relation, or a single relation with a self-edge.
func (g *SCCGraph) IsRecursive(i int, prog *ast.Program) bool {
	scc := g.SCCs[i]
	if len(scc) > 1 {
		return true
	}

	only := scc[0]

	for _, c := range prog.Clauses {
		if c.Head.Relation != only {
			continue
		}

		for _, b := range c.Body {
			if b.Literal != nil && b.Literal.Relation == only {
				return true
			}
		}
	}

	return false
}

type tarjan struct {
	edges   map[string]map[string]bool
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	sccs    [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	targets := make([]string, 0, len(t.edges[v]))
	for w := range t.edges[v] {
		targets = append(targets, w)
	}

	sortStrings(targets)

	for _, w := range targets {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string

		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)

			if w == v {
				break
			}
		}

		t.sccs = append(t.sccs, scc)
	}
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// TopologicallySortedSCCGraph orders a SCCGraph's components so that every
// SCC appears after all SCCs it depends on. Tarjan's algorithm already
// emits each SCC only after every SCC reachable from it (its dependencies),
// which is exactly this order, so this is a thin, explicitly-named wrapper kept
// distinct from SCCGraph per the external-interface boundary in spec §6.
type TopologicallySortedSCCGraph struct {
	*SCCGraph
	// Order lists SCC indices in dependency order (dependencies first).
	Order []int
}

// Sort returns g's components in topological order.
func Sort(g *SCCGraph) *TopologicallySortedSCCGraph {
	order := make([]int, len(g.SCCs))
	for i := range order {
		order[i] = i
	}

	return &TopologicallySortedSCCGraph{SCCGraph: g, Order: order}
}

// RecursiveClauses marks which clauses depend on an in-SCC (recursive)
// atom: for a clause whose head is in a recursive SCC, a body literal is
// "in-SCC" when it names a relation in the same SCC as the head.
type RecursiveClauses struct {
	// InSCCAtom[clause] lists, for each body element index of that clause,
	// whether it is a positive literal naming an in-SCC relation.
	InSCCAtom map[*ast.Clause][]bool
}

// BuildRecursiveClauses computes, for every clause in prog, which of its
// body literals reference a relation in the same SCC as the clause's head.
func BuildRecursiveClauses(prog *ast.Program, g *SCCGraph) *RecursiveClauses {
	rc := &RecursiveClauses{InSCCAtom: map[*ast.Clause][]bool{}}

	for _, c := range prog.Clauses {
		headSCC, ok := g.Index[c.Head.Relation]
		marks := make([]bool, len(c.Body))

		if ok {
			for i, b := range c.Body {
				if b.Literal == nil || b.Literal.Negated {
					continue
				}

				if bodySCC, ok := g.Index[b.Literal.Relation]; ok && bodySCC == headSCC {
					marks[i] = true
				}
			}
		}

		rc.InSCCAtom[c] = marks
	}

	return rc
}

// RelationSchedule records, for each relation name, the position (in
// topological order) of the last stratum that uses it; the relation can be
// dropped once that stratum completes.
type RelationSchedule struct {
	ExpiresAt map[string]int
}

// BuildRelationSchedule computes a trivial last-use schedule: a relation
// expires at the last stratum (in topological order) that either defines
// it (as some clause's head) or reads it (as some clause's body literal).
func BuildRelationSchedule(prog *ast.Program, sorted *TopologicallySortedSCCGraph) *RelationSchedule {
	stratumOf := map[int]int{}
	for pos, sccIdx := range sorted.Order {
		stratumOf[sccIdx] = pos
	}

	lastUse := map[string]int{}

	mark := func(name string, stratum int) {
		if cur, ok := lastUse[name]; !ok || stratum > cur {
			lastUse[name] = stratum
		}
	}

	for _, c := range prog.Clauses {
		sccIdx, ok := sorted.Index[c.Head.Relation]
		if !ok {
			continue
		}

		stratum := stratumOf[sccIdx]
		mark(c.Head.Relation, stratum)

		for _, b := range c.Body {
			if b.Literal != nil {
				mark(b.Literal.Relation, stratum)
			}
		}
	}

	return &RelationSchedule{ExpiresAt: lastUse}
}
