// Package driver runs the lex → parse → lower → print pipeline over files
// and directories, with a disk cache for unchanged inputs and an event
// hook for progress reporting.
package driver

import (
	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/lexer"
	"riff/internal/lower"
	"riff/internal/machine"
	"riff/internal/parser"
	"riff/internal/printer"
	"riff/internal/source"
	"riff/internal/token"
)

type Options struct {
	// MaxDiagnostics caps the per-file bag. Zero means the default.
	MaxDiagnostics int
	// Indent is handed to the printer.
	Indent string
	// Jobs limits directory-level parallelism; zero picks GOMAXPROCS.
	Jobs int
	// Cache, when non-nil, short-circuits files whose content hash has a
	// stored lowering.
	Cache *DiskCache
	// Observer, when non-nil, receives one event per finished file.
	// LowerDir calls it from worker goroutines, so it must be safe for
	// concurrent use.
	Observer func(Event)
}

const defaultMaxDiagnostics = 100

// Event describes one finished file for progress reporting.
type Event struct {
	Path     string
	Index    int // 1-based position in the file list
	Total    int
	Lowered  int // functions rewritten
	Cached   bool
	HadError bool
}

// FileResult is the outcome of lowering one file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Output  string
	Bag     *diag.Bag
	Lowered int
	Cached  bool
}

// LowerFile runs the full pipeline over one already-loaded file. Each file
// gets its own arenas and state-id allocator, so file-level work can run
// in parallel.
func LowerFile(fs *source.FileSet, fileID source.FileID, opts Options) (FileResult, error) {
	file := fs.Get(fileID)
	res := FileResult{Path: file.Path, FileID: fileID}

	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	res.Bag = bag

	if opts.Cache != nil {
		var payload CachePayload
		if hit, err := opts.Cache.Get(file.Hash, &payload); err == nil && hit {
			res.Output = payload.Output
			res.Lowered = payload.Lowered
			res.Cached = true
			return res, nil
		}
	}

	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	arenas := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	parsed := parser.ParseFile(lx, arenas, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		return res, nil
	}

	alloc := machine.NewAlloc()
	lowRes, err := lower.File(arenas, parsed.File, alloc, lower.Options{Reporter: reporter})
	if err != nil {
		return res, err
	}
	res.Lowered = lowRes.Lowered
	if bag.HasErrors() {
		return res, nil
	}

	res.Output = printer.File(arenas, parsed.File, printer.Options{Indent: opts.Indent})
	if opts.Cache != nil {
		// Best effort; a failed write only costs a recompile.
		_ = opts.Cache.Put(file.Hash, &CachePayload{
			Schema:  cacheSchemaVersion,
			Path:    file.Path,
			Output:  res.Output,
			Lowered: res.Lowered,
		})
	}
	return res, nil
}

// TokenizeFile lexes one file for the tokenize debug command.
func TokenizeFile(fs *source.FileSet, fileID source.FileID, opts Options) ([]token.Token, *diag.Bag) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.Tokens(), bag
}

// ParseFile parses one file for the parse debug command and returns the
// arenas for inspection.
func ParseFile(fs *source.FileSet, fileID source.FileID, opts Options) (*ast.Builder, ast.FileID, *diag.Bag) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
	arenas := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	parsed := parser.ParseFile(lx, arenas, parser.Options{Reporter: reporter})
	return arenas, parsed.File, bag
}

// CheckFile runs the pipeline without printing, for the check command.
func CheckFile(fs *source.FileSet, fileID source.FileID, opts Options) (*diag.Bag, error) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
	arenas := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	parsed := parser.ParseFile(lx, arenas, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		return bag, nil
	}
	_, err := lower.File(arenas, parsed.File, machine.NewAlloc(), lower.Options{Reporter: reporter})
	return bag, err
}
