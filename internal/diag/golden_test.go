package diag

import (
	"testing"

	"riff/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.rf", []byte("var x = ;\nvar y;\n"))

	diags := []Diagnostic{
		NewError(SynExpectExpression, source.Span{File: id, Start: 8, End: 9}, "expected expression"),
		New(SevWarning, SynExpectSemicolon, source.Span{File: id, Start: 0, End: 3}, "missing semicolon"),
	}

	got := FormatShortDiagnostics(diags, fs, false)
	want := "warning SYN2002 a.rf:1:1 missing semicolon\n" +
		"error SYN2004 a.rf:1:9 expected expression"
	if got != want {
		t.Errorf("formatted output:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	fs := source.NewFileSet()
	if got := FormatShortDiagnostics(nil, fs, true); got != "" {
		t.Errorf("empty input produced %q", got)
	}
	if got := FormatShortDiagnostics([]Diagnostic{NewError(SynUnexpectedToken, source.Span{}, "x")}, nil, true); got != "" {
		t.Errorf("nil fileset produced %q", got)
	}
}
