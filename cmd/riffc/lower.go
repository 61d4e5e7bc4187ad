package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"riff/internal/diag"
	"riff/internal/driver"
	"riff/internal/project"
	"riff/internal/source"
	"riff/internal/ui"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] [path]",
	Short: "Rewrite suspension points into state machines",
	Long: `Lower compiles yield and await statements in *.rf files into flat
resumable state machines. With a file argument the result goes to stdout;
with a directory (or a riff.toml project when the argument is omitted)
lowered files are written under the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("out", "", "output directory (defaults to the manifest's output, or <dir>/out)")
	lowerCmd.Flags().Int("jobs", 0, "maximum parallel files (0 = GOMAXPROCS)")
	lowerCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
	lowerCmd.Flags().Bool("no-cache", false, "skip the lowered-output disk cache")
	lowerCmd.Flags().String("indent", "", "indentation unit for emitted code")
}

func runLower(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	outDir, _ := cmd.Flags().GetString("out")
	jobs, _ := cmd.Flags().GetInt("jobs")
	uiFlag, _ := cmd.Flags().GetString("ui")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	indent, _ := cmd.Flags().GetString("indent")

	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	srcDir, outDirResolved, singleFile, manifest, err := resolveLowerTarget(args, outDir)
	if err != nil {
		return err
	}
	if indent == "" && manifest != nil {
		indent = manifest.Lower.Indent
	}
	if manifest != nil && !manifest.CacheEnabled() {
		noCache = true
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Indent:         indent,
		Jobs:           jobs,
	}
	if !noCache {
		cache, err := driver.OpenDiskCache("riffc")
		if err == nil {
			opts.Cache = cache
		}
	}

	if singleFile != "" {
		return lowerSingleFile(cmd, singleFile, opts)
	}
	return lowerDirectory(cmd, srcDir, outDirResolved, opts, mode, quiet)
}

// resolveLowerTarget maps the positional argument (or its absence) to a
// source location. With no argument the nearest riff.toml decides.
func resolveLowerTarget(args []string, outFlag string) (srcDir, outDir, singleFile string, manifest *project.Manifest, err error) {
	if len(args) == 1 {
		info, statErr := os.Stat(args[0])
		if statErr != nil {
			return "", "", "", nil, statErr
		}
		if !info.IsDir() {
			return "", "", args[0], nil, nil
		}
		srcDir = args[0]
		outDir = outFlag
		if outDir == "" {
			outDir = filepath.Join(srcDir, "out")
		}
		return srcDir, outDir, "", nil, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", "", "", nil, err
	}
	root, ok, err := project.FindRoot(cwd)
	if err != nil {
		return "", "", "", nil, err
	}
	if !ok {
		return "", "", "", nil, fmt.Errorf("no %s found in %s or any parent; pass a file or directory", project.ManifestName, cwd)
	}
	manifest, err = project.LoadManifest(filepath.Join(root, project.ManifestName))
	if err != nil {
		return "", "", "", nil, err
	}
	srcDir = manifest.SourceDir(root)
	outDir = outFlag
	if outDir == "" {
		outDir = manifest.OutputDir(root)
	}
	return srcDir, outDir, "", manifest, nil
}

func lowerSingleFile(cmd *cobra.Command, path string, opts driver.Options) error {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	res, err := driver.LowerFile(fs, fileID, opts)
	if err != nil {
		return err
	}
	printDiagnostics(cmd, fs, res.Bag)
	if res.Bag != nil && res.Bag.HasErrors() {
		return fmt.Errorf("%s: lowering failed", path)
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	return nil
}

func lowerDirectory(cmd *cobra.Command, srcDir, outDir string, opts driver.Options, mode uiMode, quiet bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		fs      *source.FileSet
		results []driver.FileResult
		err     error
	)
	if shouldUseTUI(mode) && !quiet {
		fs, results, err = lowerDirWithUI(ctx, srcDir, opts)
	} else {
		fs, results, err = driver.LowerDir(ctx, srcDir, opts)
	}
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

	written, err := driver.WriteResults(srcDir, outDir, results)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "lowered %d file(s) into %s\n", written, outDir)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) had errors", failed)
	}
	return nil
}

type lowerOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

func lowerDirWithUI(ctx context.Context, srcDir string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	files, err := driver.ListScriptFiles(srcDir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return driver.LowerDir(ctx, srcDir, opts)
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan lowerOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = func(ev driver.Event) { events <- ev }
		fs, results, err := driver.LowerDir(ctx, srcDir, optsCopy)
		outcomeCh <- lowerOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("lowering "+srcDir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

func printDiagnostics(cmd *cobra.Command, fs *source.FileSet, bag *diag.Bag) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	out := diag.FormatShortDiagnostics(bag.Items(), fs, true)
	if strings.TrimSpace(out) == "" {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), out)
}
