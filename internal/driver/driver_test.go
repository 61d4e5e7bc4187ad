package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"riff/internal/source"
)

const genSrc = `function gen() {
    yield 1;
    yield 2;
}
`

const plainSrc = `function add(a, b) {
    return a + b;
}
`

func TestLowerFileGenerator(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("gen.rf", []byte(genSrc))

	res, err := LowerFile(fs, id, Options{})
	if err != nil {
		t.Fatalf("LowerFile: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %d", res.Bag.Len())
	}
	if res.Lowered != 1 {
		t.Errorf("lowered = %d, want 1", res.Lowered)
	}
	if res.Cached {
		t.Error("fresh compile marked cached")
	}
	if !strings.Contains(res.Output, "switch (__state) {") {
		t.Errorf("output not lowered:\n%s", res.Output)
	}
}

func TestLowerFileSyntaxError(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.rf", []byte("function broken( {\n"))

	res, err := LowerFile(fs, id, Options{})
	if err != nil {
		t.Fatalf("LowerFile: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("syntax error produced no diagnostics")
	}
	if res.Output != "" {
		t.Errorf("errored file still produced output:\n%s", res.Output)
	}
}

func TestLowerFileCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("gen.rf", []byte(genSrc))
	opts := Options{Cache: cache}

	first, err := LowerFile(fs, id, opts)
	if err != nil {
		t.Fatalf("first LowerFile: %v", err)
	}
	if first.Cached {
		t.Fatal("first compile reported a cache hit")
	}

	second, err := LowerFile(fs, id, opts)
	if err != nil {
		t.Fatalf("second LowerFile: %v", err)
	}
	if !second.Cached {
		t.Fatal("second compile missed the cache")
	}
	if second.Output != first.Output {
		t.Error("cached output differs from the fresh one")
	}
	if second.Lowered != first.Lowered {
		t.Errorf("cached lowered count = %d, want %d", second.Lowered, first.Lowered)
	}
}

func TestCheckFileReportsLoweringErrors(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("mixed.rf", []byte(`function bad(u) {
    yield 1;
    await get(u);
}
`))
	bag, err := CheckFile(fs, id, Options{})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	if !bag.HasErrors() {
		t.Error("mixed suspension passed check")
	}
}

func TestLowerDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("add.rf", plainSrc)
	write("bad.rf", "function broken( {\n")
	write("gen.rf", genSrc)
	write("notes.txt", "not a script\n")

	var mu sync.Mutex
	var events []Event
	opts := Options{
		Jobs: 2,
		Observer: func(ev Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	}

	_, results, err := LowerDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatalf("LowerDir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("result count = %d, want 3", len(results))
	}
	// Results follow the sorted file order regardless of completion order.
	for i, base := range []string{"add.rf", "bad.rf", "gen.rf"} {
		if filepath.Base(results[i].Path) != base {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Path, base)
		}
	}
	if results[0].Lowered != 0 || results[0].Bag.HasErrors() {
		t.Errorf("plain file result = %+v", results[0])
	}
	if !results[1].Bag.HasErrors() {
		t.Error("broken file produced no diagnostics")
	}
	if results[2].Lowered != 1 {
		t.Errorf("generator lowered = %d, want 1", results[2].Lowered)
	}

	if len(events) != 3 {
		t.Fatalf("event count = %d, want 3", len(events))
	}
	seen := make(map[int]bool)
	for _, ev := range events {
		if ev.Total != 3 {
			t.Errorf("event total = %d, want 3", ev.Total)
		}
		seen[ev.Index] = true
	}
	for i := 1; i <= 3; i++ {
		if !seen[i] {
			t.Errorf("no event with index %d", i)
		}
	}

	outDir := filepath.Join(t.TempDir(), "out")
	written, err := WriteResults(dir, outDir, results)
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	// The broken file is skipped.
	if written != 2 {
		t.Errorf("written = %d, want 2", written)
	}
	got, err := os.ReadFile(filepath.Join(outDir, "gen.rf"))
	if err != nil {
		t.Fatalf("read lowered output: %v", err)
	}
	if string(got) != results[2].Output {
		t.Error("written file differs from the in-memory output")
	}
	if _, err := os.Stat(filepath.Join(outDir, "bad.rf")); !os.IsNotExist(err) {
		t.Error("errored file was written to the output directory")
	}
}

func TestLowerDirEmpty(t *testing.T) {
	fs, results, err := LowerDir(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("LowerDir: %v", err)
	}
	if fs == nil {
		t.Fatal("nil file set for empty directory")
	}
	if len(results) != 0 {
		t.Errorf("result count = %d, want 0", len(results))
	}
}

func TestLowerDirLoadError(t *testing.T) {
	dir := t.TempDir()
	// A dangling symlink survives listing but fails to load.
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "gone.rf")); err != nil {
		t.Skipf("symlink: %v", err)
	}

	_, results, err := LowerDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("LowerDir: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("result count = %d, want 1", len(results))
	}
	if !results[0].Bag.HasErrors() {
		t.Error("unreadable file produced no diagnostics")
	}
}
