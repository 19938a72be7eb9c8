// Package symbol implements the append-only symbol table shared between
// the AST and RAM sides of a translation unit (spec §5: "the symbol table
// and error reporter are passed by reference from the translation unit and
// are append-only during translation; the core does not remove entries").
package symbol

// Kind classifies a symbol table entry.
type Kind int

// The kinds of entries the translator records.
const (
	KindRelation Kind = iota
	KindSubroutine
	KindAuxiliary
)

// Entry is one symbol table record.
type Entry struct {
	Name string
	Kind Kind
}

// Table is an append-only symbol table. Entries are never removed once
// added, matching the translator's invariant that the core never deletes
// symbol information.
type Table struct {
	entries []Entry
	byName  map[string]int
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{byName: map[string]int{}}
}

// Add records a new entry, overwriting the kind if name was already
// present (re-adding an existing name is not a removal).
func (t *Table) Add(name string, kind Kind) {
	if i, ok := t.byName[name]; ok {
		t.entries[i].Kind = kind
		return
	}

	t.byName[name] = len(t.entries)
	t.entries = append(t.entries, Entry{Name: name, Kind: kind})
}

// Lookup returns the entry for name and whether it was found.
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}

	return t.entries[i], true
}

// Entries returns every recorded entry, in insertion order.
func (t *Table) Entries() []Entry {
	return t.entries
}
