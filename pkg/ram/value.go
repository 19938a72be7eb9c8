package ram

import (
	"fmt"
	"strings"
)

// Number is a constant domain integer literal.
type Number struct {
	Val int64
}

func (p *Number) isValue() {}

// Children implements Node.
func (p *Number) Children() []Node { return nil }

// Apply implements Node.
func (p *Number) Apply(Mapper) Node { return &Number{p.Val} }

// Clone implements Node.
func (p *Number) Clone() Node { return &Number{p.Val} }

// Equal implements Node.
func (p *Number) Equal(other Node) bool {
	o, ok := other.(*Number)
	return ok && p.Val == o.Val
}

// Lisp implements Node.
func (p *Number) Lisp() string { return fmt.Sprintf("number(%d)", p.Val) }

// ElementAccess refers to a column of the tuple currently bound to Tuple in
// the enclosing scan, choice, lookup or aggregate. Label is an optional
// human-readable attribute name, carried for dump purposes only; it plays no
// part in structural equality.
type ElementAccess struct {
	Tuple  uint
	Column uint
	Label  string
}

func (p *ElementAccess) isValue() {}

// Children implements Node.
func (p *ElementAccess) Children() []Node { return nil }

// Apply implements Node.
func (p *ElementAccess) Apply(Mapper) Node {
	return &ElementAccess{p.Tuple, p.Column, p.Label}
}

// Clone implements Node.
func (p *ElementAccess) Clone() Node {
	return &ElementAccess{p.Tuple, p.Column, p.Label}
}

// Equal implements Node.
func (p *ElementAccess) Equal(other Node) bool {
	o, ok := other.(*ElementAccess)
	return ok && p.Tuple == o.Tuple && p.Column == o.Column
}

// Lisp implements Node.
func (p *ElementAccess) Lisp() string {
	if p.Label != "" {
		return fmt.Sprintf("t%d.%s", p.Tuple, p.Label)
	}

	return fmt.Sprintf("env(t%d, i%d)", p.Tuple, p.Column)
}

// Intrinsic is an n-ary built-in operator: arithmetic, string, bit, logical,
// min/max, cat, substr. Op selects the semantics; pkg/translate's functor
// table lists the accepted operator names.
type Intrinsic struct {
	Op   string
	Args []Value
}

func (p *Intrinsic) isValue() {}

// Children implements Node.
func (p *Intrinsic) Children() []Node { return childrenOfValues(p.Args) }

// Apply implements Node.
func (p *Intrinsic) Apply(fn Mapper) Node {
	return &Intrinsic{p.Op, mapValues(p.Args, fn)}
}

// Clone implements Node.
func (p *Intrinsic) Clone() Node {
	return &Intrinsic{p.Op, cloneValues(p.Args)}
}

// Equal implements Node.
func (p *Intrinsic) Equal(other Node) bool {
	o, ok := other.(*Intrinsic)
	return ok && p.Op == o.Op && equalValues(p.Args, o.Args)
}

// Lisp implements Node.
func (p *Intrinsic) Lisp() string {
	return fmt.Sprintf("%s(%s)", p.Op, lispJoinValues(p.Args))
}

// Pack constructs a record from component values. A nil slot denotes an
// unnamed (wildcard) field.
type Pack struct {
	Args []Value
}

func (p *Pack) isValue() {}

// Children implements Node.
func (p *Pack) Children() []Node { return childrenOfValues(p.Args) }

// Apply implements Node.
func (p *Pack) Apply(fn Mapper) Node {
	return &Pack{mapValues(p.Args, fn)}
}

// Clone implements Node.
func (p *Pack) Clone() Node {
	return &Pack{cloneValues(p.Args)}
}

// Equal implements Node.
func (p *Pack) Equal(other Node) bool {
	o, ok := other.(*Pack)
	return ok && equalValues(p.Args, o.Args)
}

// Lisp implements Node.
func (p *Pack) Lisp() string {
	return fmt.Sprintf("[%s]", lispJoinValues(p.Args))
}

// Argument refers to a subroutine parameter. Only appears inside provenance
// subproof subroutines.
type Argument struct {
	Index uint
}

func (p *Argument) isValue() {}

// Children implements Node.
func (p *Argument) Children() []Node { return nil }

// Apply implements Node.
func (p *Argument) Apply(Mapper) Node { return &Argument{p.Index} }

// Clone implements Node.
func (p *Argument) Clone() Node { return &Argument{p.Index} }

// Equal implements Node.
func (p *Argument) Equal(other Node) bool {
	o, ok := other.(*Argument)
	return ok && p.Index == o.Index
}

// Lisp implements Node.
func (p *Argument) Lisp() string { return fmt.Sprintf("arg(%d)", p.Index) }

// AutoIncrement is a monotonically increasing counter value.
type AutoIncrement struct{}

func (p *AutoIncrement) isValue() {}

// Children implements Node.
func (p *AutoIncrement) Children() []Node { return nil }

// Apply implements Node.
func (p *AutoIncrement) Apply(Mapper) Node { return &AutoIncrement{} }

// Clone implements Node.
func (p *AutoIncrement) Clone() Node { return &AutoIncrement{} }

// Equal implements Node.
func (p *AutoIncrement) Equal(other Node) bool {
	_, ok := other.(*AutoIncrement)
	return ok
}

// Lisp implements Node.
func (p *AutoIncrement) Lisp() string { return "autoinc()" }

func lispJoinValues(vs []Value) string {
	parts := make([]string, len(vs))

	for i, v := range vs {
		if v == nil {
			parts[i] = "_"
		} else {
			parts[i] = v.Lisp()
		}
	}

	return strings.Join(parts, ",")
}
