package ram

import (
	"fmt"
	"strings"
)

func cloneStatement(s Statement) Statement {
	if s == nil {
		return nil
	}

	return s.Clone().(Statement)
}

func equalStatement(a, b Statement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(b)
}

func cloneStatements(ss []Statement) []Statement {
	if ss == nil {
		return nil
	}

	out := make([]Statement, len(ss))
	for i, s := range ss {
		out[i] = cloneStatement(s)
	}

	return out
}

func equalStatements(as, bs []Statement) bool {
	if len(as) != len(bs) {
		return false
	}

	for i := range as {
		if !equalStatement(as[i], bs[i]) {
			return false
		}
	}

	return true
}

func childrenOfStatements(ss []Statement) []Node {
	out := make([]Node, len(ss))
	for i, s := range ss {
		out[i] = s
	}

	return out
}

func mapStatements(ss []Statement, fn Mapper) []Statement {
	if ss == nil {
		return nil
	}

	out := make([]Statement, len(ss))
	for i, s := range ss {
		out[i] = fn(s).(Statement)
	}

	return out
}

func lispStatements(ss []Statement) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.Lisp()
	}

	return strings.Join(parts, "\n")
}

// Query wraps a single loop-nest Operation as a statement, the bridge
// between the Operation and Statement node families.
type Query struct {
	Op Operation
}

func (p *Query) isStatement() {}

// Children implements Node.
func (p *Query) Children() []Node { return []Node{p.Op} }

// Apply implements Node.
func (p *Query) Apply(fn Mapper) Node { return &Query{fn(p.Op).(Operation)} }

// Clone implements Node.
func (p *Query) Clone() Node { return &Query{cloneOperation(p.Op)} }

// Equal implements Node.
func (p *Query) Equal(other Node) bool {
	o, ok := other.(*Query)
	return ok && equalOperation(p.Op, o.Op)
}

// Lisp implements Node.
func (p *Query) Lisp() string { return "QUERY\n" + indent(p.Op.Lisp()) }

// Sequence runs each statement in Stmts in order.
type Sequence struct {
	Stmts []Statement
}

func (p *Sequence) isStatement() {}

// Children implements Node.
func (p *Sequence) Children() []Node { return childrenOfStatements(p.Stmts) }

// Apply implements Node.
func (p *Sequence) Apply(fn Mapper) Node { return &Sequence{mapStatements(p.Stmts, fn)} }

// Clone implements Node.
func (p *Sequence) Clone() Node { return &Sequence{cloneStatements(p.Stmts)} }

// Equal implements Node.
func (p *Sequence) Equal(other Node) bool {
	o, ok := other.(*Sequence)
	return ok && equalStatements(p.Stmts, o.Stmts)
}

// Lisp implements Node.
func (p *Sequence) Lisp() string { return lispStatements(p.Stmts) }

// Parallel runs each statement in Stmts concurrently; all must complete
// before control proceeds.
type Parallel struct {
	Stmts []Statement
}

func (p *Parallel) isStatement() {}

// Children implements Node.
func (p *Parallel) Children() []Node { return childrenOfStatements(p.Stmts) }

// Apply implements Node.
func (p *Parallel) Apply(fn Mapper) Node { return &Parallel{mapStatements(p.Stmts, fn)} }

// Clone implements Node.
func (p *Parallel) Clone() Node { return &Parallel{cloneStatements(p.Stmts)} }

// Equal implements Node.
func (p *Parallel) Equal(other Node) bool {
	o, ok := other.(*Parallel)
	return ok && equalStatements(p.Stmts, o.Stmts)
}

// Lisp implements Node.
func (p *Parallel) Lisp() string {
	return "PARALLEL\n" + indent(lispStatements(p.Stmts))
}

// Loop repeatedly executes Body until an Exit inside Body fires.
type Loop struct {
	Body Statement
}

func (p *Loop) isStatement() {}

// Children implements Node.
func (p *Loop) Children() []Node { return []Node{p.Body} }

// Apply implements Node.
func (p *Loop) Apply(fn Mapper) Node { return &Loop{fn(p.Body).(Statement)} }

// Clone implements Node.
func (p *Loop) Clone() Node { return &Loop{cloneStatement(p.Body)} }

// Equal implements Node.
func (p *Loop) Equal(other Node) bool {
	o, ok := other.(*Loop)
	return ok && equalStatement(p.Body, o.Body)
}

// Lisp implements Node.
func (p *Loop) Lisp() string { return "LOOP\n" + indent(p.Body.Lisp()) }

// Exit breaks out of the nearest enclosing Loop once Condition holds.
type Exit struct {
	Condition Condition
}

func (p *Exit) isStatement() {}

// Children implements Node.
func (p *Exit) Children() []Node { return []Node{p.Condition} }

// Apply implements Node.
func (p *Exit) Apply(fn Mapper) Node { return &Exit{fn(p.Condition).(Condition)} }

// Clone implements Node.
func (p *Exit) Clone() Node { return &Exit{cloneCondition(p.Condition)} }

// Equal implements Node.
func (p *Exit) Equal(other Node) bool {
	o, ok := other.(*Exit)
	return ok && equalCondition(p.Condition, o.Condition)
}

// Lisp implements Node.
func (p *Exit) Lisp() string { return fmt.Sprintf("EXIT %s", p.Condition.Lisp()) }

// LogTimer wraps Body with a named wall-clock measurement, emitted to the
// profile log when profiling is enabled.
type LogTimer struct {
	Message string
	Body    Statement
}

func (p *LogTimer) isStatement() {}

// Children implements Node.
func (p *LogTimer) Children() []Node { return []Node{p.Body} }

// Apply implements Node.
func (p *LogTimer) Apply(fn Mapper) Node { return &LogTimer{p.Message, fn(p.Body).(Statement)} }

// Clone implements Node.
func (p *LogTimer) Clone() Node { return &LogTimer{p.Message, cloneStatement(p.Body)} }

// Equal implements Node.
func (p *LogTimer) Equal(other Node) bool {
	o, ok := other.(*LogTimer)
	return ok && p.Message == o.Message && equalStatement(p.Body, o.Body)
}

// Lisp implements Node.
func (p *LogTimer) Lisp() string {
	return fmt.Sprintf("START_TIMER %q\n%s\nEND_TIMER", p.Message, indent(p.Body.Lisp()))
}

// Merge copies every tuple of Source into Target.
type Merge struct {
	Source, Target RelationRef
}

func (p *Merge) isStatement() {}

// Children implements Node.
func (p *Merge) Children() []Node { return nil }

// Apply implements Node.
func (p *Merge) Apply(Mapper) Node { return &Merge{p.Source, p.Target} }

// Clone implements Node.
func (p *Merge) Clone() Node { return &Merge{p.Source, p.Target} }

// Equal implements Node.
func (p *Merge) Equal(other Node) bool {
	o, ok := other.(*Merge)
	return ok && p.Source.Equal(o.Source) && p.Target.Equal(o.Target)
}

// Lisp implements Node.
func (p *Merge) Lisp() string {
	return fmt.Sprintf("MERGE %s INTO %s", p.Source.Name, p.Target.Name)
}

// Swap exchanges the contents of A and B in constant time, used to rotate
// the new-tuple relation into the delta relation at the end of a semi-naive
// iteration.
type Swap struct {
	A, B RelationRef
}

func (p *Swap) isStatement() {}

// Children implements Node.
func (p *Swap) Children() []Node { return nil }

// Apply implements Node.
func (p *Swap) Apply(Mapper) Node { return &Swap{p.A, p.B} }

// Clone implements Node.
func (p *Swap) Clone() Node { return &Swap{p.A, p.B} }

// Equal implements Node.
func (p *Swap) Equal(other Node) bool {
	o, ok := other.(*Swap)
	return ok && p.A.Equal(o.A) && p.B.Equal(o.B)
}

// Lisp implements Node.
func (p *Swap) Lisp() string { return fmt.Sprintf("SWAP %s AND %s", p.A.Name, p.B.Name) }

// Create instantiates Relation's storage.
type Create struct {
	Relation RelationRef
}

func (p *Create) isStatement() {}

// Children implements Node.
func (p *Create) Children() []Node { return nil }

// Apply implements Node.
func (p *Create) Apply(Mapper) Node { return &Create{p.Relation} }

// Clone implements Node.
func (p *Create) Clone() Node { return &Create{p.Relation} }

// Equal implements Node.
func (p *Create) Equal(other Node) bool {
	o, ok := other.(*Create)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Create) Lisp() string { return fmt.Sprintf("CREATE %s", p.Relation.Name) }

// Load populates Relation from the configured fact directory.
type Load struct {
	Relation RelationRef
}

func (p *Load) isStatement() {}

// Children implements Node.
func (p *Load) Children() []Node { return nil }

// Apply implements Node.
func (p *Load) Apply(Mapper) Node { return &Load{p.Relation} }

// Clone implements Node.
func (p *Load) Clone() Node { return &Load{p.Relation} }

// Equal implements Node.
func (p *Load) Equal(other Node) bool {
	o, ok := other.(*Load)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Load) Lisp() string { return fmt.Sprintf("LOAD %s", p.Relation.Name) }

// Store writes Relation's current contents to the configured output
// directory.
type Store struct {
	Relation RelationRef
}

func (p *Store) isStatement() {}

// Children implements Node.
func (p *Store) Children() []Node { return nil }

// Apply implements Node.
func (p *Store) Apply(Mapper) Node { return &Store{p.Relation} }

// Clone implements Node.
func (p *Store) Clone() Node { return &Store{p.Relation} }

// Equal implements Node.
func (p *Store) Equal(other Node) bool {
	o, ok := other.(*Store)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Store) Lisp() string { return fmt.Sprintf("STORE %s", p.Relation.Name) }

// PrintSize logs Relation's current cardinality; it is emitted for
// relations whose declaration sets PrintSize.
type PrintSize struct {
	Relation RelationRef
}

func (p *PrintSize) isStatement() {}

// Children implements Node.
func (p *PrintSize) Children() []Node { return nil }

// Apply implements Node.
func (p *PrintSize) Apply(Mapper) Node { return &PrintSize{p.Relation} }

// Clone implements Node.
func (p *PrintSize) Clone() Node { return &PrintSize{p.Relation} }

// Equal implements Node.
func (p *PrintSize) Equal(other Node) bool {
	o, ok := other.(*PrintSize)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *PrintSize) Lisp() string { return fmt.Sprintf("PRINTSIZE %s", p.Relation.Name) }

// Drop discards Relation's storage.
type Drop struct {
	Relation RelationRef
}

func (p *Drop) isStatement() {}

// Children implements Node.
func (p *Drop) Children() []Node { return nil }

// Apply implements Node.
func (p *Drop) Apply(Mapper) Node { return &Drop{p.Relation} }

// Clone implements Node.
func (p *Drop) Clone() Node { return &Drop{p.Relation} }

// Equal implements Node.
func (p *Drop) Equal(other Node) bool {
	o, ok := other.(*Drop)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Drop) Lisp() string { return fmt.Sprintf("DROP %s", p.Relation.Name) }

// Clear empties Relation's storage without discarding the relation itself,
// used at the end of each semi-naive iteration to reset new_R once its
// tuples have been merged into R and rotated into delta_R.
type Clear struct {
	Relation RelationRef
}

func (p *Clear) isStatement() {}

// Children implements Node.
func (p *Clear) Children() []Node { return nil }

// Apply implements Node.
func (p *Clear) Apply(Mapper) Node { return &Clear{p.Relation} }

// Clone implements Node.
func (p *Clear) Clone() Node { return &Clear{p.Relation} }

// Equal implements Node.
func (p *Clear) Equal(other Node) bool {
	o, ok := other.(*Clear)
	return ok && p.Relation.Equal(o.Relation)
}

// Lisp implements Node.
func (p *Clear) Lisp() string { return fmt.Sprintf("CLEAR %s", p.Relation.Name) }

// Stratum labels Body with the SCC index it was lowered from, purely for
// dump/debug-report readability; it carries no execution semantics beyond
// running Body.
type Stratum struct {
	Index int
	Body  Statement
}

func (p *Stratum) isStatement() {}

// Children implements Node.
func (p *Stratum) Children() []Node { return []Node{p.Body} }

// Apply implements Node.
func (p *Stratum) Apply(fn Mapper) Node { return &Stratum{p.Index, fn(p.Body).(Statement)} }

// Clone implements Node.
func (p *Stratum) Clone() Node { return &Stratum{p.Index, cloneStatement(p.Body)} }

// Equal implements Node.
func (p *Stratum) Equal(other Node) bool {
	o, ok := other.(*Stratum)
	return ok && p.Index == o.Index && equalStatement(p.Body, o.Body)
}

// Lisp implements Node.
func (p *Stratum) Lisp() string {
	return fmt.Sprintf("STRATUM %d\n%s", p.Index, indent(p.Body.Lisp()))
}
