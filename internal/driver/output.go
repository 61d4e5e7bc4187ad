package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteResults mirrors lowered outputs under outDir, preserving each
// file's path relative to srcDir. Files that produced diagnostics or no
// output are skipped. Returns the number of files written.
func WriteResults(srcDir, outDir string, results []FileResult) (int, error) {
	written := 0
	for i := range results {
		res := &results[i]
		if res.Output == "" || (res.Bag != nil && res.Bag.HasErrors()) {
			continue
		}
		rel, err := filepath.Rel(srcDir, res.Path)
		if err != nil {
			rel = filepath.Base(res.Path)
		}
		dst := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, fmt.Errorf("driver: create output dir: %w", err)
		}
		if err := os.WriteFile(dst, []byte(res.Output), 0o644); err != nil {
			return written, fmt.Errorf("driver: write %s: %w", dst, err)
		}
		written++
	}
	return written, nil
}
