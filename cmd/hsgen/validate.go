package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>...",
	Short: "Validate contract documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			doc, set, err := load(path)
			if err != nil {
				return err
			}
			baud, _ := doc.BaudRate()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d commands, baud %d\n", path, set.Len(), baud)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
