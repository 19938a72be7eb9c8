package ram

import (
	"fmt"
	"strings"
)

func cloneOperation(op Operation) Operation {
	if op == nil {
		return nil
	}

	return op.Clone().(Operation)
}

func equalOperation(a, b Operation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(b)
}

// Scan binds each tuple of Relation in turn to TupleID and executes Nested.
type Scan struct {
	Relation RelationRef
	TupleID  uint
	Nested   Operation
}

func (p *Scan) isOperation() {}

// Children implements Node.
func (p *Scan) Children() []Node { return []Node{p.Nested} }

// Apply implements Node.
func (p *Scan) Apply(fn Mapper) Node {
	return &Scan{p.Relation, p.TupleID, fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *Scan) Clone() Node {
	return &Scan{p.Relation, p.TupleID, cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *Scan) Equal(other Node) bool {
	o, ok := other.(*Scan)
	return ok && p.Relation.Equal(o.Relation) && p.TupleID == o.TupleID && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *Scan) Lisp() string {
	return fmt.Sprintf("FOR t%d in %s\n%s", p.TupleID, p.Relation.Name, indent(p.Nested.Lisp()))
}

// IndexScan is Scan restricted to tuples matching the concrete slots of
// Pattern; wildcard (nil) slots are unconstrained.
type IndexScan struct {
	Relation RelationRef
	TupleID  uint
	Pattern  []Value
	Nested   Operation
}

func (p *IndexScan) isOperation() {}

// Children implements Node.
func (p *IndexScan) Children() []Node {
	return append(childrenOfValues(p.Pattern), p.Nested)
}

// Apply implements Node.
func (p *IndexScan) Apply(fn Mapper) Node {
	return &IndexScan{p.Relation, p.TupleID, mapValues(p.Pattern, fn), fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *IndexScan) Clone() Node {
	return &IndexScan{p.Relation, p.TupleID, cloneValues(p.Pattern), cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *IndexScan) Equal(other Node) bool {
	o, ok := other.(*IndexScan)
	return ok && p.Relation.Equal(o.Relation) && p.TupleID == o.TupleID &&
		equalValues(p.Pattern, o.Pattern) && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *IndexScan) Lisp() string {
	return fmt.Sprintf("SEARCH %s AS t%d ON INDEX [%s]\n%s",
		p.Relation.Name, p.TupleID, lispJoinValues(p.Pattern), indent(p.Nested.Lisp()))
}

// Choice executes Nested once for the first tuple of Relation satisfying
// Condition; it is a no-op if no such tuple exists.
type Choice struct {
	Relation  RelationRef
	TupleID   uint
	Condition Condition
	Nested    Operation
}

func (p *Choice) isOperation() {}

// Children implements Node.
func (p *Choice) Children() []Node { return []Node{p.Condition, p.Nested} }

// Apply implements Node.
func (p *Choice) Apply(fn Mapper) Node {
	return &Choice{p.Relation, p.TupleID, fn(p.Condition).(Condition), fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *Choice) Clone() Node {
	return &Choice{p.Relation, p.TupleID, cloneCondition(p.Condition), cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *Choice) Equal(other Node) bool {
	o, ok := other.(*Choice)
	return ok && p.Relation.Equal(o.Relation) && p.TupleID == o.TupleID &&
		equalCondition(p.Condition, o.Condition) && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *Choice) Lisp() string {
	return fmt.Sprintf("CHOICE t%d IN %s WHERE %s\n%s",
		p.TupleID, p.Relation.Name, p.Condition.Lisp(), indent(p.Nested.Lisp()))
}

// IndexChoice is the index-filtered variant of Choice: Pattern narrows the
// candidate tuples before Condition is evaluated against the first match.
type IndexChoice struct {
	Relation  RelationRef
	TupleID   uint
	Pattern   []Value
	Condition Condition
	Nested    Operation
}

func (p *IndexChoice) isOperation() {}

// Children implements Node.
func (p *IndexChoice) Children() []Node {
	return append(childrenOfValues(p.Pattern), p.Condition, p.Nested)
}

// Apply implements Node.
func (p *IndexChoice) Apply(fn Mapper) Node {
	return &IndexChoice{p.Relation, p.TupleID, mapValues(p.Pattern, fn), fn(p.Condition).(Condition), fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *IndexChoice) Clone() Node {
	return &IndexChoice{p.Relation, p.TupleID, cloneValues(p.Pattern), cloneCondition(p.Condition), cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *IndexChoice) Equal(other Node) bool {
	o, ok := other.(*IndexChoice)
	return ok && p.Relation.Equal(o.Relation) && p.TupleID == o.TupleID &&
		equalValues(p.Pattern, o.Pattern) && equalCondition(p.Condition, o.Condition) && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *IndexChoice) Lisp() string {
	return fmt.Sprintf("CHOICE %s AS t%d ON INDEX [%s] WHERE %s\n%s",
		p.Relation.Name, p.TupleID, lispJoinValues(p.Pattern), p.Condition.Lisp(), indent(p.Nested.Lisp()))
}

// Filter executes Nested iff Condition holds for the current tuple
// environment.
type Filter struct {
	Condition Condition
	Nested    Operation
}

func (p *Filter) isOperation() {}

// Children implements Node.
func (p *Filter) Children() []Node { return []Node{p.Condition, p.Nested} }

// Apply implements Node.
func (p *Filter) Apply(fn Mapper) Node {
	return &Filter{fn(p.Condition).(Condition), fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *Filter) Clone() Node {
	return &Filter{cloneCondition(p.Condition), cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *Filter) Equal(other Node) bool {
	o, ok := other.(*Filter)
	return ok && equalCondition(p.Condition, o.Condition) && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *Filter) Lisp() string {
	return fmt.Sprintf("IF %s\n%s", p.Condition.Lisp(), indent(p.Nested.Lisp()))
}

// Lookup unpacks the record referenced by Value into a fresh tuple of Arity,
// binds it to TupleID, and executes Nested.
type Lookup struct {
	Value   Value
	Arity   uint
	TupleID uint
	Nested  Operation
}

func (p *Lookup) isOperation() {}

// Children implements Node.
func (p *Lookup) Children() []Node { return []Node{p.Value, p.Nested} }

// Apply implements Node.
func (p *Lookup) Apply(fn Mapper) Node {
	return &Lookup{fn(p.Value).(Value), p.Arity, p.TupleID, fn(p.Nested).(Operation)}
}

// Clone implements Node.
func (p *Lookup) Clone() Node {
	return &Lookup{cloneValue(p.Value), p.Arity, p.TupleID, cloneOperation(p.Nested)}
}

// Equal implements Node.
func (p *Lookup) Equal(other Node) bool {
	o, ok := other.(*Lookup)
	return ok && equalValue(p.Value, o.Value) && p.Arity == o.Arity && p.TupleID == o.TupleID && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *Lookup) Lisp() string {
	return fmt.Sprintf("UNPACK %s INTO t%d\n%s", p.Value.Lisp(), p.TupleID, indent(p.Nested.Lisp()))
}

// AggFunc names an Aggregate's reduction function.
type AggFunc string

// The supported aggregate functions.
const (
	AggMin   AggFunc = "MIN"
	AggMax   AggFunc = "MAX"
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
)

// Aggregate computes Func over the Expr values of every tuple in Relation
// matching Pattern and satisfying the optional Condition, binds the single
// result as tuple TupleID, and executes Nested. Expr is nil when Func is
// AggCount.
type Aggregate struct {
	Func      AggFunc
	Expr      Value
	Relation  RelationRef
	Pattern   []Value
	Condition Condition
	TupleID   uint
	Nested    Operation
}

func (p *Aggregate) isOperation() {}

// Children implements Node.
func (p *Aggregate) Children() []Node {
	var out []Node
	if p.Expr != nil {
		out = append(out, p.Expr)
	}

	out = append(out, childrenOfValues(p.Pattern)...)

	if p.Condition != nil {
		out = append(out, p.Condition)
	}

	return append(out, p.Nested)
}

// Apply implements Node.
func (p *Aggregate) Apply(fn Mapper) Node {
	q := &Aggregate{
		Func:     p.Func,
		Relation: p.Relation,
		Pattern:  mapValues(p.Pattern, fn),
		TupleID:  p.TupleID,
		Nested:   fn(p.Nested).(Operation),
	}
	if p.Expr != nil {
		q.Expr = fn(p.Expr).(Value)
	}

	if p.Condition != nil {
		q.Condition = fn(p.Condition).(Condition)
	}

	return q
}

// Clone implements Node.
func (p *Aggregate) Clone() Node {
	return &Aggregate{
		Func:      p.Func,
		Expr:      cloneValue(p.Expr),
		Relation:  p.Relation,
		Pattern:   cloneValues(p.Pattern),
		Condition: cloneCondition(p.Condition),
		TupleID:   p.TupleID,
		Nested:    cloneOperation(p.Nested),
	}
}

// Equal implements Node.
func (p *Aggregate) Equal(other Node) bool {
	o, ok := other.(*Aggregate)
	return ok && p.Func == o.Func && equalValue(p.Expr, o.Expr) && p.Relation.Equal(o.Relation) &&
		equalValues(p.Pattern, o.Pattern) && equalCondition(p.Condition, o.Condition) &&
		p.TupleID == o.TupleID && equalOperation(p.Nested, o.Nested)
}

// Lisp implements Node.
func (p *Aggregate) Lisp() string {
	expr := ""
	if p.Expr != nil {
		expr = p.Expr.Lisp() + " "
	}

	where := ""
	if p.Condition != nil {
		where = " WHERE " + p.Condition.Lisp()
	}

	return fmt.Sprintf("%s %sAS t%d.0 IN t%d ∈ %s(%s)%s\n%s",
		p.Func, expr, p.TupleID, p.TupleID, p.Relation.Name, lispJoinValues(p.Pattern), where, indent(p.Nested.Lisp()))
}

// Project inserts a new tuple built from Values into Relation.
type Project struct {
	Relation RelationRef
	Values   []Value
}

func (p *Project) isOperation() {}

// Children implements Node.
func (p *Project) Children() []Node { return childrenOfValues(p.Values) }

// Apply implements Node.
func (p *Project) Apply(fn Mapper) Node {
	return &Project{p.Relation, mapValues(p.Values, fn)}
}

// Clone implements Node.
func (p *Project) Clone() Node {
	return &Project{p.Relation, cloneValues(p.Values)}
}

// Equal implements Node.
func (p *Project) Equal(other Node) bool {
	o, ok := other.(*Project)
	return ok && p.Relation.Equal(o.Relation) && equalValues(p.Values, o.Values)
}

// Lisp implements Node.
func (p *Project) Lisp() string {
	return fmt.Sprintf("PROJECT (%s) INTO %s", lispJoinValues(p.Values), p.Relation.Name)
}

// Return terminates a subroutine with a result row.
type Return struct {
	Values []Value
}

func (p *Return) isOperation() {}

// Children implements Node.
func (p *Return) Children() []Node { return childrenOfValues(p.Values) }

// Apply implements Node.
func (p *Return) Apply(fn Mapper) Node {
	return &Return{mapValues(p.Values, fn)}
}

// Clone implements Node.
func (p *Return) Clone() Node {
	return &Return{cloneValues(p.Values)}
}

// Equal implements Node.
func (p *Return) Equal(other Node) bool {
	o, ok := other.(*Return)
	return ok && equalValues(p.Values, o.Values)
}

// Lisp implements Node.
func (p *Return) Lisp() string {
	return fmt.Sprintf("RETURN (%s)", lispJoinValues(p.Values))
}

// indent prefixes every line of s with a tab, for nesting one operation's
// Lisp rendering inside its parent's.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}

	return strings.Join(lines, "\n")
}
