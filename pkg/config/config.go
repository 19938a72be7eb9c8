// Package config holds the shared, explicitly-passed configuration store
// consumed by pkg/translate and pkg/transform. There is no package-level
// global state: every entry point takes a *Store parameter.
package config

// Store is the configuration recognized by the translator and transformer
// pipeline, populated from CLI flags in pkg/cmd.
type Store struct {
	// FactDir is the directory .facts input files are loaded from.
	FactDir string
	// OutputDir is the directory .csv/.facts outputs and engine-staged
	// files are written to.
	OutputDir string
	// Engine, when non-empty, enables the external-predecessor load/drop
	// phases of the per-stratum plan.
	Engine string
	// Provenance enables subproof subroutine emission and suppresses the
	// Drop of intermediates.
	Provenance bool
	// Profile wraps the top sequence in a LogTimer labeled "runtime".
	Profile bool
	// DebugReportPath, if non-empty, is where the debug report is written
	// after translation.
	DebugReportPath string
	// OptLevel 0 disables the transformer pipeline entirely; any other
	// value runs it, bounded by MaxTransformIterations.
	OptLevel uint
	// MaxTransformIterations bounds the fixpoint loop (spec default: 16).
	MaxTransformIterations int
}

// Default returns a Store with the spec's documented defaults: no engine,
// no provenance, optimisation level 1, a 16-iteration transformer cap.
func Default() *Store {
	return &Store{
		OptLevel:               1,
		MaxTransformIterations: 16,
	}
}

// EngineEnabled reports whether a communication engine is configured.
func (s *Store) EngineEnabled() bool {
	return s.Engine != ""
}
