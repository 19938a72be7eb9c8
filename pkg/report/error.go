// Package report implements the two side services the translator writes
// into: a structured error report for invariant violations and
// unsupported-shape diagnostics, and a debug report accumulating named
// sections (such as the final RAM dump) flushed once at the end.
// Rendering the debug report to disk is out of scope here; only section
// accumulation lives in this package.
package report

import "fmt"

// Diagnostic is one translator-reported problem: an invariant violation or
// an unsupported AST shape. Either kind makes ErrorReport.HasErrors true.
// The affected clause is still lowered: a value that could not be
// translated becomes a Number(0) placeholder, and a body element that could
// not be lowered is skipped.
type Diagnostic struct {
	// Where names the clause, relation, or stratum the diagnostic concerns,
	// for example "R/2 clause 1".
	Where string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Where, d.Message)
}

// ErrorReport is an append-only collection of diagnostics. The translator
// never panics on a user-triggered condition; it appends here instead and
// carries on lowering, including the rest of the affected clause.
type ErrorReport struct {
	diagnostics []*Diagnostic
}

// NewErrorReport returns an empty error report.
func NewErrorReport() *ErrorReport {
	return &ErrorReport{}
}

// Add appends a diagnostic.
func (r *ErrorReport) Add(where, message string) {
	r.diagnostics = append(r.diagnostics, &Diagnostic{Where: where, Message: message})
}

// HasErrors reports whether any diagnostic has been recorded.
func (r *ErrorReport) HasErrors() bool {
	return len(r.diagnostics) > 0
}

// Diagnostics returns every recorded diagnostic, in the order they were
// added.
func (r *ErrorReport) Diagnostics() []*Diagnostic {
	return r.diagnostics
}
