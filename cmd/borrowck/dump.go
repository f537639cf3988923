package main

import (
	"github.com/spf13/cobra"

	"borrowck/internal/ir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the decoded IR of a document",
	Long: `Dump decodes a *.mir.json document and prints its functions, locals and
basic blocks in a stable textual form. Useful for inspecting what the
verifier actually sees.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, err := ir.LoadModule(args[0])
		if err != nil {
			return err
		}
		if err := ir.Validate(module); err != nil {
			return err
		}
		return ir.DumpModule(cmd.OutOrStdout(), module)
	},
}
