package report

import "strings"

// DebugReport accumulates named sections (for example, "ram-program"
// holding the textual dump and translation wall-clock) and is flushed only
// once, at the end of translation. Writing the flushed text to disk is out
// of scope here; Render only produces the text.
type DebugReport struct {
	order    []string
	sections map[string]string
}

// NewDebugReport returns an empty debug report.
func NewDebugReport() *DebugReport {
	return &DebugReport{sections: map[string]string{}}
}

// AddSection appends a named section. Adding the same name twice overwrites
// its content but keeps its original position.
func (r *DebugReport) AddSection(name, content string) {
	if _, ok := r.sections[name]; !ok {
		r.order = append(r.order, name)
	}

	r.sections[name] = content
}

// Render concatenates every section, in the order they were first added,
// each under a "== name ==" heading.
func (r *DebugReport) Render() string {
	var b strings.Builder

	for _, name := range r.order {
		b.WriteString("== ")
		b.WriteString(name)
		b.WriteString(" ==\n")
		b.WriteString(r.sections[name])
		b.WriteString("\n")
	}

	return b.String()
}
