package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionCmd reports the build version, a dedicated subcommand alongside
// the root command's own "--version" flag so "ramc version" works the way
// users of other cobra-based tools expect.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print ramc's version.",
	Run: func(cmd *cobra.Command, args []string) {
		if Version != "" {
			fmt.Println("ramc", Version)
			return
		}

		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Println("ramc", info.Main.Version)
			return
		}

		fmt.Println("ramc (unknown version)")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
