package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riff/internal/driver"
	"riff/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path",
	Short: "Report lowering diagnostics without writing output",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "maximum parallel files (0 = GOMAXPROCS)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	opts := driver.Options{MaxDiagnostics: maxDiagnostics, Jobs: jobs}

	if !info.IsDir() {
		fs := source.NewFileSet()
		fileID, err := fs.Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}
		bag, err := driver.CheckFile(fs, fileID, opts)
		if err != nil {
			return err
		}
		printDiagnostics(cmd, fs, bag)
		if bag.HasErrors() {
			return fmt.Errorf("%s: check failed", args[0])
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
		}
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fs, results, err := driver.LowerDir(ctx, args[0], opts)
	if err != nil {
		return err
	}
	failed := 0
	for i := range results {
		printDiagnostics(cmd, fs, results[i].Bag)
		if results[i].Bag != nil && results[i].Bag.HasErrors() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) had errors", failed)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok (%d file(s))\n", len(results))
	}
	return nil
}
