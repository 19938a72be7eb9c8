package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dcol97/souffle/pkg/transform"
	"github.com/dcol97/souffle/pkg/translate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// dumpCmd translates (and, unless --no-optimize is set, transforms) a
// program and pretty-prints its dump clipped to the terminal's width, the
// way pkg/cmd/inspect.go sizes its schema inspector off term.GetSize
// before rendering.
var dumpCmd = &cobra.Command{
	Use:   "dump [flags] program_file",
	Short: "pretty-print a lowered program's RAM tree.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := configFromFlags(cmd)
		prog := readProgramFile(args[0])

		unit := translate.TranslateUnit(prog, cfg)
		if unit.Errors.HasErrors() {
			reportErrors(unit.Errors)
			os.Exit(1)
		}

		if !GetFlag(cmd, "no-optimize") {
			transform.RunProgram(unit.Program, cfg)
		}

		printWrapped(unit.Program.Dump())
	},
}

// printWrapped writes text to stdout, clipping any line past the terminal
// width to keep a long Lisp-style dump readable in a narrow window.
// Output piped to a file (not a terminal) is printed unclipped.
func printWrapped(text string) {
	width := 0

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, line := range strings.Split(text, "\n") {
		if width > 0 && len(line) > width {
			line = line[:width-1] + "…"
		}

		fmt.Fprintln(out, line)
	}
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("no-optimize", false, "dump the translator's raw output, skipping the transformer pipeline")
}
