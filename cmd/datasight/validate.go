package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check that a file can be loaded.",
	Long:  "Run the validator, parser and normalizer over FILE and report the resulting table size.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(cmd.Context(), cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d rows, %d columns\n", t.FileName, t.RowCount(), len(t.Headers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
