package parser

import (
	"strings"
	"testing"

	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/lexer"
	"riff/internal/printer"
	"riff/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rf", []byte(src))
	bag := diag.NewBag(16)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: reporter})
	arenas := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	res := ParseFile(lx, arenas, Options{Reporter: reporter})
	return arenas, res.File, bag
}

// roundTrip parses source already written in the printer's normal form and
// expects byte-identical output.
func roundTrip(t *testing.T, src string) {
	t.Helper()
	arenas, file, bag := parseSrc(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", formatBag(bag))
	}
	got := printer.File(arenas, file, printer.Options{})
	if got != src {
		t.Errorf("round trip mismatch:\n--- input ---\n%s--- output ---\n%s", src, got)
	}
}

func formatBag(bag *diag.Bag) string {
	var b strings.Builder
	for _, d := range bag.Items() {
		b.WriteString(d.Code.ID())
		b.WriteString(" ")
		b.WriteString(d.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func TestRoundTripDeclarationsAndExpressions(t *testing.T) {
	roundTrip(t, `function calc(a, b) {
    var total = 0, scale = 2;
    total = a + b * scale;
    total += (a + b) * scale;
    total = a < b ? a : b;
    total = -a + !b - ~a;
    total = typeof a === "number" && b !== null;
    return total;
}
`)
}

func TestRoundTripControlFlow(t *testing.T) {
	roundTrip(t, `function walk(n) {
    var i;
    for (i = 0; i < n; i += 1) {
        if (i % 2 === 0) {
            continue;
        } else if (i > 10) {
            break;
        } else {
            log(i);
        }
    }
    while (n > 0) {
        n -= 1;
    }
    do {
        n += 1;
    } while (n < 5);
}
`)
}

func TestRoundTripForIn(t *testing.T) {
	roundTrip(t, `function keys(obj) {
    var out = [];
    for (var k in obj) {
        out[out.length] = k;
    }
    for (k in obj) {
        log(k);
    }
    return out;
}
`)
}

func TestRoundTripSwitchAndLabels(t *testing.T) {
	roundTrip(t, `function pick(v) {
    outer:
    while (true) {
        switch (v) {
        case 1:
            log("one");
            break;
        case 2:
        case 3:
            break outer;
        default:
            return v;
        }
    }
}
`)
}

func TestLabelTargetsAcceptValidBranches(t *testing.T) {
	_, _, bag := parseSrc(t, `function f(n) {
    a:
    b:
    while (n > 0) {
        continue a;
    }
    exit: {
        if (n < 0) {
            break exit;
        }
        work(n);
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", formatBag(bag))
	}
}

func TestRoundTripTry(t *testing.T) {
	roundTrip(t, `function guard(f) {
    try {
        f();
    } catch (e) {
        log(e);
    } finally {
        cleanup();
    }
    try {
        f();
    } finally {
        done();
    }
}
`)
}

func TestRoundTripSuspensions(t *testing.T) {
	roundTrip(t, `function gen(n) {
    yield n;
    yield;
}

function fetchAll(url) {
    data = await get(url);
    await post(url, data);
}
`)
}

func TestRoundTripLiteralsAndCalls(t *testing.T) {
	roundTrip(t, `function build() {
    var arr = [1, 2, 3];
    var obj = { a: 1, b: "two" };
    var fn = function (x) {
        return x * 2;
    };
    obj.a = arr[0];
    return fn(obj.a, arr[arr.length - 1]);
}
`)
}

func TestVarAwaitFoldsToAwaitStmt(t *testing.T) {
	arenas, file, bag := parseSrc(t, `function f(u) {
    var data = await get(u);
    use(data);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", formatBag(bag))
	}
	fn := arenas.Func(arenas.File(file).Funcs[0])
	first := arenas.Stmt(arenas.Stmt(fn.Body).Block.Stmts[0])
	if first.Kind != ast.StmtAwait {
		t.Fatalf("first statement kind = %v, want await", first.Kind)
	}
	if arenas.Strings.MustLookup(first.Await.Dst) != "data" {
		t.Errorf("await destination = %q", arenas.Strings.MustLookup(first.Await.Dst))
	}
	if !first.Await.Decl {
		t.Errorf("await destination not marked declaring")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"bad assign target", "function f() {\n    1 = 2;\n}\n", diag.SynBadAssignTarget},
		{"nested function decl", "function f() {\n    function g() {\n    }\n}\n", diag.SynUnsupportedForm},
		{"try without handler", "function f() {\n    try {\n    }\n}\n", diag.SynTryWithoutHandler},
		{"break outside loop", "function f() {\n    break;\n}\n", diag.SynUnexpectedToken},
		{"continue outside loop", "function f() {\n    continue;\n}\n", diag.SynUnexpectedToken},
		{"unknown label", "function f() {\n    while (true) {\n        break missing;\n    }\n}\n", diag.SynUnknownLabel},
		{"continue to switch label", "function f(v) {\n    s: switch (v) {\n    case 1:\n        continue s;\n    }\n}\n", diag.SynBadLabelTarget},
		{"continue to block label", "function f() {\n    b: {\n        continue b;\n    }\n}\n", diag.SynBadLabelTarget},
		{"break to labeled if", "function f(v) {\n    c: if (v) {\n        break c;\n    }\n}\n", diag.SynBadLabelTarget},
		{"duplicate default", "function f(v) {\n    switch (v) {\n    default:\n        break;\n    default:\n        break;\n    }\n}\n", diag.SynDuplicateDefault},
		{"missing semicolon", "function f() {\n    var a = 1\n}\n", diag.SynExpectSemicolon},
		{"top level statement", "var a = 1;\n", diag.SynUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := parseSrc(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected a diagnostic")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("no %s diagnostic:\n%s", tt.code.ID(), formatBag(bag))
			}
		})
	}
}

func TestParserRecoversAcrossFunctions(t *testing.T) {
	arenas, file, bag := parseSrc(t, `function broken() {
    var = ;
}

function fine() {
    return 1;
}
`)
	if !bag.HasErrors() {
		t.Fatal("expected diagnostics from the broken function")
	}
	funcs := arenas.File(file).Funcs
	found := false
	for _, fnID := range funcs {
		if arenas.Strings.MustLookup(arenas.Func(fnID).Name) == "fine" {
			found = true
		}
	}
	if !found {
		t.Error("parser did not recover to parse the second function")
	}
}
