// Package cmd implements the ramc command-line tree: a cobra root command
// plus one subcommand per file, structured the way go-corset's pkg/cmd
// splits root.go from compile.go/debug.go/etc.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is filled when building via make, but not when installed via
// "go install".
var Version string

// rootCmd is the base command when ramc is invoked with no subcommand.
var rootCmd = &cobra.Command{
	Use:   "ramc",
	Short: "A compiler from Datalog programs to relational algebra machine code.",
	Long:  "ramc lowers an already-analyzed Datalog program into RAM and applies the transformer pipeline.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("ramc ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()

			return
		}

		fmt.Println(cmd.UsageString())
	},
}

// Execute adds all child commands to rootCmd and runs it. Called once by
// cmd/ramc/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")

	rootCmd.PersistentFlags().String("fact-dir", "", "directory .facts input files are loaded from")
	rootCmd.PersistentFlags().String("output-dir", "", "directory outputs are written to")
	rootCmd.PersistentFlags().String("engine", "", "enable a communication engine under the given name")
	rootCmd.PersistentFlags().Bool("provenance", false, "emit subproof subroutines and keep intermediates")
	rootCmd.PersistentFlags().Bool("profile", false, "wrap the program in a runtime timer")
	rootCmd.PersistentFlags().String("debug-report", "", "file the debug report is written to")
	rootCmd.PersistentFlags().UintP("opt", "O", 1, "set optimisation level (0 disables the transformer pipeline)")
	rootCmd.PersistentFlags().Uint("max-transform-iterations", 16, "bound the transformer fixpoint loop")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
