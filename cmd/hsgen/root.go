package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robotalks/hardsync.go/pkg/contract"
)

// rootCmd is the base command for hsgen.
var rootCmd = &cobra.Command{
	Use:   "hsgen",
	Short: "Contract document tool: validate, show and generate Go bindings",
	Long: `hsgen works on contract documents, the YAML, TOML or JSON files
declaring the commands a device understands. It validates them, prints
them in any supported format and generates the Go device interface,
dispatcher binding and typed client for them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads and builds a contract document.
func load(path string) (*contract.Document, *contract.Set, error) {
	doc, err := contract.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	set, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, set, nil
}
