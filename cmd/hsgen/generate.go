package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robotalks/hardsync.go/pkg/gen"
)

var (
	genPackage string
	genOutput  string
)

var generateCmd = &cobra.Command{
	Use:   "generate <document>",
	Short: "Generate Go bindings of a contract document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := load(args[0])
		if err != nil {
			return err
		}
		src, err := gen.Generate(set, gen.Options{Package: genPackage, Source: filepath.Base(args[0])})
		if err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}
		if genOutput == "" || genOutput == "-" {
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}
		return os.WriteFile(genOutput, src, 0644)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genPackage, "package", "p", gen.DefaultPackage, "package name of the generated file")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(generateCmd)
}
