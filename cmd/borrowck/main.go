package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"borrowck/internal/version"
)

// errFindings distinguishes "the input has ownership errors" from CLI and IO
// failures; the former exits 1, the latter exit 2.
var errFindings = errors.New("verification reported errors")

var rootCmd = &cobra.Command{
	Use:           "borrowck",
	Short:         "Ownership and borrow verifier for IR documents",
	Long:          `borrowck statically verifies move and borrow discipline over serialized function bodies`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|always|never)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 uses the project default)")
	rootCmd.PersistentFlags().Int("max-iterations", 0, "dataflow iteration cap per function (0 uses the project default)")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(1)
		}
		rootCmd.PrintErrln("error:", err)
		os.Exit(2)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
