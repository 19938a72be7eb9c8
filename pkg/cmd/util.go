package cmd

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/config"
	"github.com/spf13/cobra"
)

// GetFlag reads a bool flag, aborting the process on an internal cobra
// error (a misspelled flag name, never a user-facing condition).
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString reads a string flag, aborting the process on an internal
// cobra error.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint reads a uint flag, aborting the process on an internal cobra
// error.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// configFromFlags populates a config.Store from the persistent flags
// registered on rootCmd, the way go-corset's compileCmd populates its own
// corsetConfig from cmd flags in pkg/cmd/compile.go.
func configFromFlags(cmd *cobra.Command) *config.Store {
	maxIter, err := cmd.Flags().GetUint("max-transform-iterations")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return &config.Store{
		FactDir:                GetString(cmd, "fact-dir"),
		OutputDir:              GetString(cmd, "output-dir"),
		Engine:                 GetString(cmd, "engine"),
		Provenance:             GetFlag(cmd, "provenance"),
		Profile:                GetFlag(cmd, "profile"),
		DebugReportPath:        GetString(cmd, "debug-report"),
		OptLevel:               GetUint(cmd, "opt"),
		MaxTransformIterations: int(maxIter),
	}
}

// readProgramFile decodes a gob-encoded ast.Program from filename, the way
// go-corset's pkg/cmd/binfile.go decodes a gob-encoded binfile.BinaryFile.
// Parsing Datalog source text itself is out of scope (see spec's
// Non-goals); this is the already-analyzed AST's own serialized form.
func readProgramFile(filename string) *ast.Program {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	defer f.Close()

	var prog ast.Program
	if err := gob.NewDecoder(f).Decode(&prog); err != nil {
		fmt.Printf("malformed program file %q: %s\n", filename, err.Error())
		os.Exit(2)
	}

	return &prog
}
