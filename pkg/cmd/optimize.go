package cmd

import (
	"fmt"
	"os"

	"github.com/dcol97/souffle/pkg/transform"
	"github.com/dcol97/souffle/pkg/translate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// optimizeCmd runs AST→RAM translation followed by the full transformer
// pipeline (LevelConditions, CreateIndices, ConvertExistenceChecks,
// SearchesToChoices, iterated to a fixpoint), mirroring lowerCmd but
// producing the final, index-aware program an engine would actually run.
var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] program_file",
	Short: "translate and optimize a Datalog program into RAM.",
	Long: `Like lower, but additionally applies the transformer pipeline: conditions are
hoisted to their proper loop level, equalities become index scans, pure
membership tests collapse to existence checks, and single-witness scans
narrow to choices.`,
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

		changed := transform.RunProgram(unit.Program, cfg)
		log.WithField("changed", changed).Debug("transformer pipeline finished")

		fmt.Println(unit.Program.Dump())
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
