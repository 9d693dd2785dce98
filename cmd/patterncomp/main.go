// Command patterncomp drives the pattern-pipeline front end (Import,
// Section, Line, Resolve, Infer) over a single root file, printing
// diagnostics and, whenever the pipeline produced a Program (even one
// with errors), debug dumps of whichever pipeline artifacts the caller
// asked for.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patterncomp",
	Short: "Pattern-pipeline compiler front end",
	Long:  "patterncomp resolves pattern definitions and call sites, infers types, and reports diagnostics.",
}

func main() {
	rootCmd.AddCommand(compileCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostics (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 200, "maximum number of diagnostics to collect")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
