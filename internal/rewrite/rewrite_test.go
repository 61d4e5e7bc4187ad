package rewrite

import (
	"testing"

	"riff/internal/ast"
	"riff/internal/source"
)

func newBuilder() *ast.Builder {
	return ast.NewBuilder(ast.Hints{}, source.NewInterner())
}

func exprStmt(b *ast.Builder, name string) ast.StmtID {
	return b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
		Expr: b.NewCall(b.NewIdentNamed(name)),
	}})
}

func TestWalkVisitsInSourceOrder(t *testing.T) {
	b := newBuilder()
	thenBlock := b.NewBlock(exprStmt(b, "a"))
	ifStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: b.NewIdentNamed("c"),
		Then: thenBlock,
		Else: exprStmt(b, "fallback"),
	}})
	loop := b.NewStmt(ast.Stmt{Kind: ast.StmtWhile, While: ast.WhileStmt{
		Cond: b.NewBool(true),
		Body: b.NewBlock(exprStmt(b, "tick")),
	}})
	root := b.NewBlock(ifStmt, loop)

	var kinds []ast.StmtKind
	Walk(b, root, func(id ast.StmtID) bool {
		kinds = append(kinds, b.Stmt(id).Kind)
		return true
	})
	want := []ast.StmtKind{
		ast.StmtBlock, ast.StmtIf, ast.StmtBlock, ast.StmtExpr, ast.StmtExpr,
		ast.StmtWhile, ast.StmtBlock, ast.StmtExpr,
	}
	if len(kinds) != len(want) {
		t.Fatalf("visited %d statements, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestWalkPrunesSubtrees(t *testing.T) {
	b := newBuilder()
	ifStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: b.NewIdentNamed("c"),
		Then: b.NewBlock(exprStmt(b, "hidden")),
	}})
	root := b.NewBlock(ifStmt, exprStmt(b, "after"))

	visited := 0
	Walk(b, root, func(id ast.StmtID) bool {
		visited++
		return b.Stmt(id).Kind != ast.StmtIf
	})
	// root, if (pruned), trailing expression.
	if visited != 3 {
		t.Errorf("visited %d statements, want 3", visited)
	}
}

func TestStmtsRewritesBottomUp(t *testing.T) {
	b := newBuilder()
	varStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: []ast.VarDecl{
		{Name: b.Strings.Intern("x"), Init: b.NewNumberInt(1)},
	}}})
	call := exprStmt(b, "g")
	root := b.NewBlock(varStmt, call)

	out := Stmts(b, root, func(id ast.StmtID) ast.StmtID {
		s := b.Stmt(id)
		if s.Kind != ast.StmtVar {
			return id
		}
		d := s.Var.Decls[0]
		return b.NewAssignStmt(b.NewIdent(s.Span, d.Name), d.Init)
	})
	if out == root {
		t.Fatal("rewrite did not produce a fresh root")
	}
	stmts := b.Stmt(out).Block.Stmts
	if len(stmts) != 2 {
		t.Fatalf("rebuilt block has %d statements, want 2", len(stmts))
	}
	if got := b.Stmt(stmts[0]).Kind; got != ast.StmtExpr {
		t.Errorf("first statement kind = %v, want assignment expression", got)
	}
	if stmts[1] != call {
		t.Errorf("untouched sibling was reallocated")
	}
	// Arenas are append-only: the original tree still reads back intact.
	if got := b.Stmt(b.Stmt(root).Block.Stmts[0]).Kind; got != ast.StmtVar {
		t.Errorf("original var statement mutated to %v", got)
	}
}

func TestStmtsKeepsUntouchedTree(t *testing.T) {
	b := newBuilder()
	root := b.NewBlock(exprStmt(b, "a"), b.NewStmt(ast.Stmt{Kind: ast.StmtWhile, While: ast.WhileStmt{
		Cond: b.NewBool(true),
		Body: b.NewBlock(exprStmt(b, "b")),
	}}))

	out := Stmts(b, root, func(id ast.StmtID) ast.StmtID { return id })
	if out != root {
		t.Errorf("identity rewrite reallocated the root: %d != %d", out, root)
	}
}

func TestStmtsRebuildsEnclosingChain(t *testing.T) {
	b := newBuilder()
	varStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: []ast.VarDecl{
		{Name: b.Strings.Intern("x")},
	}}})
	body := b.NewBlock(varStmt)
	loop := b.NewStmt(ast.Stmt{Kind: ast.StmtWhile, While: ast.WhileStmt{
		Cond: b.NewBool(true),
		Body: body,
	}})

	replacement := exprStmt(b, "init")
	out := Stmts(b, loop, func(id ast.StmtID) ast.StmtID {
		if b.Stmt(id).Kind == ast.StmtVar {
			return replacement
		}
		return id
	})
	if out == loop {
		t.Fatal("enclosing loop not rebuilt")
	}
	newBody := b.Stmt(out).While.Body
	if newBody == body {
		t.Fatal("enclosing block not rebuilt")
	}
	if got := b.Stmt(newBody).Block.Stmts[0]; got != replacement {
		t.Errorf("rebuilt body holds %d, want the replacement %d", got, replacement)
	}
}
