package translate

import (
	"fmt"
	"os"
	"time"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/config"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/report"
	"github.com/dcol97/souffle/pkg/schedule"
	"github.com/dcol97/souffle/pkg/symbol"

	log "github.com/sirupsen/logrus"
)

// TranslateProgram lowers prog into a RAM program: one Stratum statement
// per SCC in topological order, wrapped in a single top-level Sequence,
// plus one provenance subproof subroutine per clause when cfg.Provenance
// is set. It builds its own SCC graph, topological order, recursive-clause
// marking and relation-expiry schedule from prog (spec §1 treats these as
// externally supplied; pkg/schedule is this repository's reference
// implementation of that external collaborator, per SPEC_FULL §5).
func TranslateProgram(prog *ast.Program, cfg *config.Store, errs *report.ErrorReport, syms *symbol.Table) *ram.Program {
	t := New(prog, cfg, errs, syms)

	g := schedule.BuildSCCGraph(prog)
	sorted := schedule.Sort(g)
	rc := schedule.BuildRecursiveClauses(prog, g)
	sched := schedule.BuildRelationSchedule(prog, sorted)

	var strata []ram.Statement

	for pos, sccIdx := range sorted.Order {
		log.WithField("stratum", pos).WithField("relations", g.SCCs[sccIdx]).Debug("lowering stratum")
		strata = append(strata, t.lowerStratum(pos, sccIdx, g, rc, sched))
	}

	var main ram.Statement = &ram.Sequence{Stmts: strata}
	if cfg.Profile {
		main = &ram.LogTimer{Message: "runtime", Body: main}
	}

	subroutines := map[string]ram.Statement{}
	if cfg.Provenance {
		subroutines = t.lowerProvenanceSubroutines()
	}

	return &ram.Program{Main: main, Subroutines: subroutines}
}

// TranslationUnit is the RAM-side output described in spec §6: the
// produced program together with the (possibly augmented) shared symbol
// table, error report, and debug report. Unlike the retrieved original's
// AstTranslator::translateUnit, which never assigns ramProg before
// building its debug report (spec's Open Questions section flags this),
// TranslateUnit wires TranslateProgram's result in before building the
// debug report, so Program is never nil on success.
type TranslationUnit struct {
	Program     *ram.Program
	Symbols     *symbol.Table
	Errors      *report.ErrorReport
	DebugReport *report.DebugReport
}

// TranslateUnit runs TranslateProgram and assembles the full translation
// unit, recording a "ram-program" debug section with the textual dump and
// the translation wall-clock time. When cfg.DebugReportPath is set, the
// rendered debug report is written there; a failed write is added to the
// error report.
func TranslateUnit(prog *ast.Program, cfg *config.Store) *TranslationUnit {
	errs := report.NewErrorReport()
	syms := symbol.NewTable()

	start := time.Now()
	program := TranslateProgram(prog, cfg, errs, syms)
	elapsed := time.Since(start)

	debug := report.NewDebugReport()
	debug.AddSection("ram-program", fmt.Sprintf("%s\ntranslation time: %s", program.Dump(), elapsed))

	if cfg.DebugReportPath != "" {
		if err := os.WriteFile(cfg.DebugReportPath, []byte(debug.Render()), 0o644); err != nil {
			errs.Add("debug-report", err.Error())
		} else {
			log.WithField("path", cfg.DebugReportPath).Debug("debug report written")
		}
	}

	return &TranslationUnit{Program: program, Symbols: syms, Errors: errs, DebugReport: debug}
}
