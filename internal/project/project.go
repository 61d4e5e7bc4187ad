// Package project locates and reads the riff.toml manifest that marks a
// Riff project root.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const ManifestName = "riff.toml"

// Manifest mirrors the [project] and [lower] tables of riff.toml.
type Manifest struct {
	Project ProjectSection `toml:"project"`
	Lower   LowerSection   `toml:"lower"`
}

type ProjectSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Source is the directory holding *.rf files, relative to the
	// manifest. Defaults to "src" when empty.
	Source string `toml:"source"`
	// Output receives lowered files. Defaults to "out" when empty.
	Output string `toml:"output"`
}

type LowerSection struct {
	// Indent overrides the printer's indentation unit.
	Indent string `toml:"indent"`
	// Cache toggles the lowered-output disk cache.
	Cache *bool `toml:"cache"`
}

func (m *Manifest) SourceDir(root string) string {
	src := m.Project.Source
	if src == "" {
		src = "src"
	}
	return filepath.Join(root, src)
}

func (m *Manifest) OutputDir(root string) string {
	out := m.Project.Output
	if out == "" {
		out = "out"
	}
	return filepath.Join(root, out)
}

func (m *Manifest) CacheEnabled() bool {
	if m.Lower.Cache == nil {
		return true
	}
	return *m.Lower.Cache
}

// FindManifest walks up from startDir to locate riff.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("project: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, true, nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return "", false, fmt.Errorf("project: stat %q: %w", candidate, statErr)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindRoot returns the directory containing riff.toml, if any.
func FindRoot(startDir string) (root string, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(path), true, nil
}

// LoadManifest decodes riff.toml, rejecting unknown keys so typos surface
// early.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("project: decode %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("project: %q: unknown key %q", path, undecoded[0].String())
	}
	if m.Project.Name == "" {
		return nil, fmt.Errorf("project: %q: project.name is required", path)
	}
	return &m, nil
}
