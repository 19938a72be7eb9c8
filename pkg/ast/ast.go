// Package ast defines the minimal, already-semantically-analyzed Datalog
// program shape that pkg/translate consumes. Parsing and semantic analysis
// of Datalog source themselves are out of scope here: values of these types
// are assumed already well-typed, with relation arities and clause
// evaluation order already fixed by an upstream planner.
package ast

import "encoding/gob"

// init registers every concrete Expr variant with the gob encoder, the way
// hir/term.go registers each concrete Term implementation — gob cannot
// encode an interface-typed field without its dynamic type pre-declared.
func init() {
	gob.Register(&Var{})
	gob.Register(&IntConst{})
	gob.Register(&Wildcard{})
	gob.Register(&Functor{})
	gob.Register(&Aggregator{})
}

// Relation declares one predicate: its name, arity, and the I/O role that
// decides which load/store phases the translator emits for it.
type Relation struct {
	Name   string
	Arity  uint
	Input  bool
	Output bool
	// PrintSize requests a PrintSize statement for this relation at the end
	// of its stratum's body (spec step 5 of the per-stratum plan).
	PrintSize bool
}

// Program is a full, already-analyzed Datalog program.
type Program struct {
	Relations map[string]*Relation
	Clauses   []*Clause
}

// ClausesFor returns every clause whose head names rel, in source order.
func (p *Program) ClausesFor(rel string) []*Clause {
	var out []*Clause

	for _, c := range p.Clauses {
		if c.Head.Relation == rel {
			out = append(out, c)
		}
	}

	return out
}

// Clause is one Horn rule: Head :- Body. A Clause with an empty Body is a
// fact.
type Clause struct {
	Head Literal
	Body []BodyElement
	// Info marks a clause as metadata-only (e.g. a .plan or .decl-adjacent
	// declaration with no provenance subproof of its own).
	Info bool
}

// BodyElement is one element of a clause body: a literal, a comparison, a
// record (de)construction, or a hoisted aggregator binding. Exactly one of
// the typed fields is non-nil.
type BodyElement struct {
	Literal           *Literal
	Comparison        *Comparison
	RecordInit        *RecordInit
	AggregatorBinding *AggregatorBinding
}

// AggregatorBinding binds the result of Agg to Var. Clauses are written
// with an Aggregator inline as an Expr; pkg/translate hoists each such
// occurrence into one of these, inserted into the body just before its
// first use, and replaces the occurrence with a reference to Var.
type AggregatorBinding struct {
	Var string
	Agg *Aggregator
}

// Literal is an atom: a relation name applied to argument expressions,
// optionally negated.
type Literal struct {
	Relation string
	Args     []Expr
	Negated  bool
}

// Comparison is a body constraint comparing two expressions.
type Comparison struct {
	Op       string // one of "=", "!=", "<", "<=", ">", ">="
	Lhs, Rhs Expr
}

// RecordInit either constructs a record from Fields (Var is the bound
// name) or destructs Var into Fields (Construct is false).
type RecordInit struct {
	Var       string
	Fields    []Expr
	Construct bool
}

// Expr is a scalar expression appearing in a literal's argument list, a
// comparison, or a functor's operands.
type Expr interface {
	isExpr()
}

// Var references a variable bound somewhere else in the clause (by an atom
// argument, a record field, or an aggregator result).
type Var struct {
	Name string
}

func (*Var) isExpr() {}

// IntConst is a literal domain integer.
type IntConst struct {
	Value int64
}

func (*IntConst) isExpr() {}

// Wildcard is an unnamed, unconstrained argument position ("_").
type Wildcard struct{}

func (*Wildcard) isExpr() {}

// Functor applies a built-in operator to sub-expressions.
type Functor struct {
	Op   string
	Args []Expr
}

func (*Functor) isExpr() {}

// Aggregator computes Func over Expr for every binding of Body that
// satisfies Body, and is itself usable as an Expr wherever its bound
// result variable would be. Body's first element must be a positive
// Literal (the relation being aggregated over); any further elements must
// be Comparisons, combined into the aggregate's filter condition.
type Aggregator struct {
	Func string // one of "MIN", "MAX", "COUNT", "SUM"
	Expr Expr   // nil when Func is "COUNT"
	Body []BodyElement
}

func (*Aggregator) isExpr() {}
