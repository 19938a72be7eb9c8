package cmd

import (
	"fmt"
	"os"

	"github.com/dcol97/souffle/pkg/report"
	"github.com/dcol97/souffle/pkg/translate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// lowerCmd runs AST→RAM translation alone, with no transformer pipeline
// applied, and prints the resulting program's textual dump — the
// lower-level counterpart of optimizeCmd, useful for inspecting exactly
// what the translator itself produced before any rewrite touches it.
var lowerCmd = &cobra.Command{
	Use:   "lower [flags] program_file",
	Short: "translate an already-analyzed Datalog program into RAM.",
	Long: `Translate a gob-encoded ast.Program into a RAM program (one Stratum per
SCC, semi-naive loops for recursive strata, provenance subroutines if
requested) and print its textual dump. No transformer runs.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		cfg := configFromFlags(cmd)
		prog := readProgramFile(args[0])

		unit := translate.TranslateUnit(prog, cfg)
		if unit.Errors.HasErrors() {
			reportErrors(unit.Errors)
			os.Exit(1)
		}

		fmt.Println(unit.Program.Dump())
	},
}

// reportErrors prints every recorded diagnostic to stderr, one per line.
func reportErrors(errs *report.ErrorReport) {
	for _, d := range errs.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}

func init() {
	rootCmd.AddCommand(lowerCmd)
}
