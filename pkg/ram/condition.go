package ram

import "fmt"

func cloneCondition(c Condition) Condition {
	if c == nil {
		return nil
	}

	return c.Clone().(Condition)
}

func equalCondition(a, b Condition) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(b)
}

// Conjunction is the associative AND of two conditions. There is no
// short-circuit ordering guarantee: the tree shape is not significant, only
// the (flattened) set of conjuncts it denotes.
type Conjunction struct {
	Left, Right Condition
}

func (p *Conjunction) isCondition() {}

// Children implements Node.
func (p *Conjunction) Children() []Node { return []Node{p.Left, p.Right} }

// Apply implements Node.
func (p *Conjunction) Apply(fn Mapper) Node {
	return &Conjunction{fn(p.Left).(Condition), fn(p.Right).(Condition)}
}

// Clone implements Node.
func (p *Conjunction) Clone() Node {
	return &Conjunction{cloneCondition(p.Left), cloneCondition(p.Right)}
}

// Equal implements Node.
func (p *Conjunction) Equal(other Node) bool {
	o, ok := other.(*Conjunction)
	return ok && equalCondition(p.Left, o.Left) && equalCondition(p.Right, o.Right)
}

// Lisp implements Node.
func (p *Conjunction) Lisp() string {
	return fmt.Sprintf("(%s AND %s)", p.Left.Lisp(), p.Right.Lisp())
}

// Conjoin combines zero or more conditions into a single right-folded
// Conjunction tree, dropping nils. Returns nil if every condition was nil.
// This is the constructor counterpart of FlattenConjunction.
func Conjoin(conds ...Condition) Condition {
	var out Condition

	for i := len(conds) - 1; i >= 0; i-- {
		if conds[i] == nil {
			continue
		}

		if out == nil {
			out = conds[i]
		} else {
			out = &Conjunction{conds[i], out}
		}
	}

	return out
}

// FlattenConjunction walks a (possibly right-leaning) Conjunction tree and
// returns its leaves as a flat slice, in left-to-right order. A non-
// Conjunction condition flattens to a single-element slice. Mirrors
// Souffle's RamTransforms.cpp::getConditions, used by LevelConditions to
// hoist each conjunct independently and by CreateIndices to examine each
// equality independently.
func FlattenConjunction(c Condition) []Condition {
	var out []Condition

	for c != nil {
		if conj, ok := c.(*Conjunction); ok {
			out = append(out, conj.Left)
			c = conj.Right
		} else {
			out = append(out, c)
			break
		}
	}

	return out
}

// Comparison is a binary relation over domain ints.
type Comparison struct {
	Op       string // one of "=", "!=", "<", "<=", ">", ">="
	Lhs, Rhs Value
}

func (p *Comparison) isCondition() {}

// Children implements Node.
func (p *Comparison) Children() []Node { return []Node{p.Lhs, p.Rhs} }

// Apply implements Node.
func (p *Comparison) Apply(fn Mapper) Node {
	return &Comparison{p.Op, fn(p.Lhs).(Value), fn(p.Rhs).(Value)}
}

// Clone implements Node.
func (p *Comparison) Clone() Node {
	return &Comparison{p.Op, cloneValue(p.Lhs), cloneValue(p.Rhs)}
}

// Equal implements Node.
func (p *Comparison) Equal(other Node) bool {
	o, ok := other.(*Comparison)
	return ok && p.Op == o.Op && equalValue(p.Lhs, o.Lhs) && equalValue(p.Rhs, o.Rhs)
}

// Lisp implements Node.
func (p *Comparison) Lisp() string {
	return fmt.Sprintf("(%s %s %s)", p.Lhs.Lisp(), p.Op, p.Rhs.Lisp())
}

// ExistenceCheck is true iff some tuple in Relation matches every concrete
// (non-nil) slot of Pattern.
type ExistenceCheck struct {
	Relation RelationRef
	Pattern  []Value
}

func (p *ExistenceCheck) isCondition() {}

// Children implements Node.
func (p *ExistenceCheck) Children() []Node { return childrenOfValues(p.Pattern) }

// Apply implements Node.
func (p *ExistenceCheck) Apply(fn Mapper) Node {
	return &ExistenceCheck{p.Relation, mapValues(p.Pattern, fn)}
}

// Clone implements Node.
func (p *ExistenceCheck) Clone() Node {
	return &ExistenceCheck{p.Relation, cloneValues(p.Pattern)}
}

// Equal implements Node.
func (p *ExistenceCheck) Equal(other Node) bool {
	o, ok := other.(*ExistenceCheck)
	return ok && p.Relation.Equal(o.Relation) && equalValues(p.Pattern, o.Pattern)
}

// Lisp implements Node.
func (p *ExistenceCheck) Lisp() string {
	return fmt.Sprintf("(%s(%s) ∈ %s)", p.Relation.Name, lispJoinValues(p.Pattern), p.Relation.Name)
}

// NotExistenceCheck is the negation of ExistenceCheck.
type NotExistenceCheck struct {
	Relation RelationRef
	Pattern  []Value
}

func (p *NotExistenceCheck) isCondition() {}

// Children implements Node.
func (p *NotExistenceCheck) Children() []Node { return childrenOfValues(p.Pattern) }

// Apply implements Node.
func (p *NotExistenceCheck) Apply(fn Mapper) Node {
	return &NotExistenceCheck{p.Relation, mapValues(p.Pattern, fn)}
}

// Clone implements Node.
func (p *NotExistenceCheck) Clone() Node {
	return &NotExistenceCheck{p.Relation, cloneValues(p.Pattern)}
}

// Equal implements Node.
func (p *NotExistenceCheck) Equal(other Node) bool {
	o, ok := other.(*NotExistenceCheck)
	return ok && p.Relation.Equal(o.Relation) && equalValues(p.Pattern, o.Pattern)
}

// Lisp implements Node.
func (p *NotExistenceCheck) Lisp() string {
	return fmt.Sprintf("!(%s(%s) ∈ %s)", p.Relation.Name, lispJoinValues(p.Pattern), p.Relation.Name)
}

// Empty is true iff Relation currently has zero tuples.
type Empty struct {
	Relation RelationRef
}

func (p *Empty) isCondition() {}

// Children implements Node.
func (p *Empty) Children() []Node { return nil }

// Apply implements Node.
func (p *Empty) Apply(Mapper) Node { return &Empty{p.Relation} }

// Clone implements Node.
func (p *Empty) Clone() Node { return &Empty{p.Relation} }

// Equal implements Node.
func (p *Empty) Equal(other Node) bool {
	o, ok := other.(*Empty)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Empty) Lisp() string { return fmt.Sprintf("(%s = ∅)", p.Relation.Name) }
