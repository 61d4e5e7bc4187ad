package lexer

import (
	"testing"

	"riff/internal/diag"
	"riff/internal/source"
	"riff/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rf", []byte(src))
	bag := diag.NewBag(16)
	lx := New(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.Tokens(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerBasicStatement(t *testing.T) {
	toks, bag := lexAll(t, "var answer = 42;")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{token.KwVar, token.Ident, token.Assign, token.NumberLit, token.Semicolon, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
	if toks[1].Text != "answer" || toks[3].Text != "42" {
		t.Errorf("texts: %q %q", toks[1].Text, toks[3].Text)
	}
}

func TestLexerKeywordsVsIdents(t *testing.T) {
	toks, _ := lexAll(t, "yield await awaiting yields typeof")
	want := []token.Kind{token.KwYield, token.KwAwait, token.Ident, token.Ident, token.KwTypeof, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerOperators(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{"===", token.EqEqEq},
		{"!==", token.BangEqEq},
		{"==", token.EqEq},
		{"!=", token.BangEq},
		{"<=", token.LtEq},
		{">=", token.GtEq},
		{"&&", token.AndAnd},
		{"||", token.OrOr},
		{"+=", token.PlusAssign},
		{"%=", token.PercentAssign},
		{"~", token.Tilde},
	}
	for _, tt := range tests {
		toks, bag := lexAll(t, tt.src)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected diagnostics", tt.src)
			continue
		}
		if toks[0].Kind != tt.kind {
			t.Errorf("%q lexed as %s, want %s", tt.src, toks[0].Kind, tt.kind)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks, bag := lexAll(t, `"a\nb\t\"q\""`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.StringLit {
		t.Fatalf("kind = %s", toks[0].Kind)
	}
	if toks[0].Text != "a\nb\t\"q\"" {
		t.Errorf("decoded text = %q", toks[0].Text)
	}
}

func TestLexerSingleQuotedString(t *testing.T) {
	toks, bag := lexAll(t, "'hi'")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.StringLit || toks[0].Text != "hi" {
		t.Errorf("got %s %q", toks[0].Kind, toks[0].Text)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	toks, bag := lexAll(t, "\"open\nvar")
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Errorf("code = %v", bag.Items()[0].Code)
	}
	if toks[0].Kind != token.Invalid {
		t.Errorf("kind = %s", toks[0].Kind)
	}
}

func TestLexerComments(t *testing.T) {
	toks, bag := lexAll(t, "1 // line\n/* block\nspanning */ 2")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{token.NumberLit, token.NumberLit, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens: %v", got)
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	_, bag := lexAll(t, "/* never closed")
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Errorf("code = %v", bag.Items()[0].Code)
	}
}

func TestLexerMalformedNumber(t *testing.T) {
	toks, bag := lexAll(t, "12abc")
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
	if bag.Items()[0].Code != diag.LexBadNumber {
		t.Errorf("code = %v", bag.Items()[0].Code)
	}
	if toks[0].Kind != token.Invalid {
		t.Errorf("kind = %s", toks[0].Kind)
	}
}

func TestLexerDecimalNumber(t *testing.T) {
	toks, bag := lexAll(t, "3.25 7.")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.NumberLit || toks[0].Text != "3.25" {
		t.Errorf("first: %s %q", toks[0].Kind, toks[0].Text)
	}
	// "7." is a number followed by a dot; the fraction needs a digit.
	if toks[1].Kind != token.NumberLit || toks[1].Text != "7" {
		t.Errorf("second: %s %q", toks[1].Kind, toks[1].Text)
	}
	if toks[2].Kind != token.Dot {
		t.Errorf("third: %s", toks[2].Kind)
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("empty.rf", nil)
	lx := New(fs.Get(id), Options{})
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != token.EOF {
			t.Fatalf("call %d returned %s", i, tok.Kind)
		}
	}
}

func TestLexerSpans(t *testing.T) {
	toks, _ := lexAll(t, "ab + cd")
	if toks[0].Span.Start != 0 || toks[0].Span.End != 2 {
		t.Errorf("ident span = %v", toks[0].Span)
	}
	if toks[1].Span.Start != 3 || toks[1].Span.End != 4 {
		t.Errorf("plus span = %v", toks[1].Span)
	}
	if toks[2].Span.Start != 5 || toks[2].Span.End != 7 {
		t.Errorf("second ident span = %v", toks[2].Span)
	}
}
