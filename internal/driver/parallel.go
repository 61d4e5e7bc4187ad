package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"riff/internal/diag"
	"riff/internal/source"
)

// ListScriptFiles returns the sorted list of all *.rf files under dir.
func ListScriptFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic order
	sort.Strings(files)
	return files, nil
}

// LowerDir lowers all *.rf files under dir in parallel. Per-file results
// come back in the sorted file order regardless of completion order.
func LowerDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	files, err := ListScriptFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return source.NewFileSetWithBase(dir), nil, nil
	}

	// Preload everything up front; load failures become per-file
	// diagnostics rather than aborting the run.
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}

	// Indices are unique per goroutine, no mutex needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				if loadErr, hadError := loadErrors[path]; hadError {
					bag := diag.NewBag(maxDiags)
					bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{},
						"failed to load file: "+loadErr.Error()))
					results[i] = FileResult{Path: path, Bag: bag}
					notify(opts, results[i], i, len(files))
					return nil
				}

				res, err := LowerFile(fileSet, fileIDs[path], opts)
				if err != nil {
					return err
				}
				res.Path = path
				results[i] = res
				notify(opts, res, i, len(files))
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func notify(opts Options, res FileResult, index, total int) {
	if opts.Observer == nil {
		return
	}
	opts.Observer(Event{
		Path:     res.Path,
		Index:    index + 1,
		Total:    total,
		Lowered:  res.Lowered,
		Cached:   res.Cached,
		HadError: res.Bag != nil && res.Bag.HasErrors(),
	})
}
