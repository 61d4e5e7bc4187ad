package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"riff/internal/driver"
	"riff/internal/printer"
	"riff/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.rf",
	Short: "Parse a source file and print it back",
	Long: `Parse runs the lexer and parser only, reports diagnostics, and
prints the reconstructed source. Useful for checking what the parser
accepted before lowering touches it.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("indent", "", "indentation unit for the printed tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	indent, _ := cmd.Flags().GetString("indent")

	fs := source.NewFileSet()
	fileID, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	arenas, astFile, bag := driver.ParseFile(fs, fileID, driver.Options{MaxDiagnostics: maxDiagnostics})
	printDiagnostics(cmd, fs, bag)
	if bag.HasErrors() {
		return fmt.Errorf("%s: parse failed", args[0])
	}

	fmt.Fprint(cmd.OutOrStdout(), printer.File(arenas, astFile, printer.Options{Indent: indent}))
	return nil
}
