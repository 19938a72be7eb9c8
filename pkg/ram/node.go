// Package ram defines the relational algebra machine (RAM) tree IR: the
// loop-nest program that the translator in pkg/translate lowers Datalog
// clauses into, and that the passes in pkg/transform rewrite into an
// indexable, filtered form.
//
// Every node in the tree implements Node. The four leaf interfaces (Value,
// Condition, Operation, Statement) partition the node space into closed sum
// types; each variant is an exported struct. There is no shared ownership:
// cloning is required to reuse a subtree, and analyses never mutate a tree
// in place.
package ram

// Node is the common interface implemented by every RAM tree node.
type Node interface {
	// Children enumerates this node's direct children, in a stable order.
	Children() []Node
	// Apply remaps each direct child through fn and returns a node of the
	// same variant holding the remapped children. It does not recurse; use
	// Map for a full pre-order rewrite.
	Apply(fn Mapper) Node
	// Equal reports whether this node is structurally equal to other: same
	// variant, recursively equal children, equal scalar attributes.
	Equal(other Node) bool
	// Clone returns a deep, independent copy of this node.
	Clone() Node
	// Lisp renders this node in the textual s-expression-like dump form
	// described in spec.md §6.
	Lisp() string
}

// Value is a pure expression evaluated inside a loop nest.
type Value interface {
	Node
	isValue()
}

// Condition is a boolean expression over Values.
type Condition interface {
	Node
	isCondition()
}

// Operation is a node in a loop nest.
type Operation interface {
	Node
	isOperation()
}

// Statement is an outer control structure.
type Statement interface {
	Node
	isStatement()
}

// Mapper is a unary node rewrite function, applied to the direct children of
// a node by that node's Apply method. Analogous to Souffle's RamNodeMapper.
type Mapper func(Node) Node

// Identity is the mapper that returns its argument unchanged.
func Identity(n Node) Node { return n }

// Map applies fn to every node of the tree rooted at n, in pre-order: fn
// runs on n itself first, then the (possibly rewritten) node's children are
// each recursively mapped in turn. This is the generic traversal that the
// individual transformers in pkg/transform build their bespoke, narrower
// rewrites on top of.
func Map(n Node, fn Mapper) Node {
	visited := fn(n)
	return visited.Apply(func(child Node) Node {
		return Map(child, fn)
	})
}

// RelationRef identifies the relation a node refers to, along with its
// declared arity so pattern-arity can be checked locally without having to
// thread a full schema through every analysis.
type RelationRef struct {
	Name  string
	Arity uint
}

// Equal reports whether two relation references name the same relation.
func (r RelationRef) Equal(other RelationRef) bool {
	return r.Name == other.Name && r.Arity == other.Arity
}

// --- shared helpers for slice-of-Value / slice-of-Node children, used by
// most variants to avoid repeating the same nil-aware boilerplate.

func cloneValue(v Value) Value {
	if v == nil {
		return nil
	}

	return v.Clone().(Value)
}

func cloneValues(vs []Value) []Value {
	if vs == nil {
		return nil
	}

	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = cloneValue(v)
	}

	return out
}

func equalValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(b)
}

func equalValues(as, bs []Value) bool {
	if len(as) != len(bs) {
		return false
	}

	for i := range as {
		if !equalValue(as[i], bs[i]) {
			return false
		}
	}

	return true
}

func childrenOfValues(vs []Value) []Node {
	var out []Node

	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}

	return out
}

// mapValues remaps each non-nil value in vs through fn, preserving wildcard
// (nil) slots.
func mapValues(vs []Value, fn Mapper) []Value {
	if vs == nil {
		return nil
	}

	out := make([]Value, len(vs))

	for i, v := range vs {
		if v == nil {
			continue
		}

		out[i] = fn(v).(Value)
	}

	return out
}
