package ram

import (
	"fmt"
	"sort"
	"strings"
)

// Program is the root of a lowered translation unit: a main statement plus
// zero or more named subroutines, used for provenance subproofs (see
// pkg/translate).
type Program struct {
	Main        Statement
	Subroutines map[string]Statement
}

// Clone returns a deep, independent copy of the program.
func (p *Program) Clone() *Program {
	subs := make(map[string]Statement, len(p.Subroutines))
	for name, s := range p.Subroutines {
		subs[name] = cloneStatement(s)
	}

	return &Program{Main: cloneStatement(p.Main), Subroutines: subs}
}

// Equal reports whether two programs are structurally identical, including
// having exactly the same subroutine names.
func (p *Program) Equal(other *Program) bool {
	if !equalStatement(p.Main, other.Main) {
		return false
	}

	if len(p.Subroutines) != len(other.Subroutines) {
		return false
	}

	for name, s := range p.Subroutines {
		o, ok := other.Subroutines[name]
		if !ok || !equalStatement(s, o) {
			return false
		}
	}

	return true
}

// Dump renders the program in full, main statement first, then each
// subroutine in sorted-name order so output is deterministic.
func (p *Program) Dump() string {
	var b strings.Builder

	b.WriteString("MAIN\n")
	b.WriteString(indent(p.Main.Lisp()))
	b.WriteString("\n")

	names := make([]string, 0, len(p.Subroutines))
	for name := range p.Subroutines {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		b.WriteString(fmt.Sprintf("\nSUBROUTINE %s\n", name))
		b.WriteString(indent(p.Subroutines[name].Lisp()))
		b.WriteString("\n")
	}

	return b.String()
}
