package main

import (
	"github.com/spf13/cobra"

	"github.com/robotalks/hardsync.go/pkg/contract"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <document>",
	Short: "Print a contract document in normalized form",
	Long: `Print a contract document after validation. Return values get their
default name and the encoding section lists every delimiter when any
is overridden. Use --format to convert between YAML, TOML and JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, set, err := load(args[0])
		if err != nil {
			return err
		}
		norm := contract.NewDocument(doc.Device, set)
		norm.Baud = doc.Baud
		data, err := norm.Marshal(contract.Format(showFormat))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = out.Write([]byte{'\n'})
		}
		return err
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", string(contract.FormatYAML), "output format: yaml, toml, json")
	rootCmd.AddCommand(showCmd)
}
