package names

import (
	"testing"

	"riff/internal/ast"
	"riff/internal/source"
)

func newFunc(t *testing.T) (*ast.Builder, ast.FuncID) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	in := b.Strings.Intern

	// function f(a, __state) {
	//     var __v = __e;
	//     g(function (__i) { __keys; });
	// }
	varStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: []ast.VarDecl{
		{Name: in("__v"), Init: b.NewIdentNamed("__e")},
	}}})
	nested := b.NewExpr(ast.Expr{Kind: ast.ExprFunc, Func: ast.FuncExpr{
		Params: []source.StringID{in("__i")},
		Body: b.NewBlock(b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
			Expr: b.NewIdentNamed("__keys"),
		}})),
	}})
	call := b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
		Expr: b.NewCall(b.NewIdentNamed("g"), nested),
	}})
	fn := b.NewFunc(ast.Func{
		Name:   in("f"),
		Params: []source.StringID{in("a"), in("__state")},
		Body:   b.NewBlock(varStmt, call),
	})
	return b, fn
}

func TestForFuncScansWholeBody(t *testing.T) {
	b, fn := newFunc(t)
	a := ForFunc(b, fn)

	for _, name := range []string{"f", "a", "g", "__state", "__v", "__e", "__i", "__keys"} {
		if !a.Taken(name) {
			t.Errorf("Taken(%q) = false, want true", name)
		}
	}
	if a.Taken("__pend") {
		t.Errorf("Taken(__pend) = true for a function that never uses it")
	}
}

func TestFreshSkipsCollisions(t *testing.T) {
	b, fn := newFunc(t)
	a := ForFunc(b, fn)

	tests := []struct {
		base, want string
	}{
		{StateSlot, "__state1"}, // taken by the parameter
		{ValTemp, "__v1"},       // taken by the local
		{IdxTemp, "__i1"},       // taken inside the nested function
		{KeysTemp, "__keys1"},   // referenced inside the nested function
		{PendSlot, "__pend"},    // free
	}
	for _, tt := range tests {
		if got := a.Fresh(tt.base); got != tt.want {
			t.Errorf("Fresh(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestFreshNumbersRepeats(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	fn := b.NewFunc(ast.Func{Name: b.Strings.Intern("f"), Body: b.NewBlock()})
	a := ForFunc(b, fn)

	if got := a.Fresh("t"); got != "t" {
		t.Fatalf("first Fresh = %q, want t", got)
	}
	if got := a.Fresh("t"); got != "t1" {
		t.Errorf("second Fresh = %q, want t1", got)
	}
	if got := a.Fresh("t"); got != "t2" {
		t.Errorf("third Fresh = %q, want t2", got)
	}
	if !a.Taken("t1") {
		t.Errorf("allocated name t1 not marked taken")
	}
}

func TestFreshIDInterns(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, source.NewInterner())
	fn := b.NewFunc(ast.Func{Name: b.Strings.Intern("f"), Body: b.NewBlock()})
	a := ForFunc(b, fn)

	id := a.FreshID("tmp")
	if got := b.Strings.MustLookup(id); got != "tmp" {
		t.Errorf("FreshID interned %q, want tmp", got)
	}
}
