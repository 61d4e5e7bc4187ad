package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetAddVirtual(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("test.rf", []byte("function f() {\n}\n"))
	f := fs.Get(id)
	if f.Path != "test.rf" {
		t.Errorf("Path = %q", f.Path)
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("virtual flag not set")
	}
	if len(f.LineIdx) != 2 {
		t.Errorf("LineIdx has %d entries, want 2", len(f.LineIdx))
	}

	var zero [32]byte
	if f.Hash == zero {
		t.Error("content hash not computed")
	}

	got, ok := fs.GetByPath("test.rf")
	if !ok || got.ID != id {
		t.Errorf("GetByPath: ok=%v id=%v", ok, got)
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.rf")
	content := []byte{0xEF, 0xBB, 0xBF}
	content = append(content, []byte("var a = 1;\r\nvar b = 2;\r\n")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 {
		t.Error("BOM flag not set")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Error("CRLF flag not set")
	}
	if string(f.Content) != "var a = 1;\nvar b = 2;\n" {
		t.Errorf("content = %q", f.Content)
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.rf", []byte("abc\ndef\nghi\n"))

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{6, 2, 3},
		{8, 3, 1},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start.Line != tt.line || start.Col != tt.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", tt.off, start.Line, start.Col, tt.line, tt.col)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	c := a.Cover(b)
	if c.Start != 2 || c.End != 8 {
		t.Errorf("Cover = %v", c)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover across files changed the span: %v", got)
	}
}
