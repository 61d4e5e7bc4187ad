package printer

import (
	"testing"

	"riff/internal/ast"
	"riff/internal/source"
)

func newArenas() *ast.Builder {
	return ast.NewBuilder(ast.Hints{}, source.NewInterner())
}

func TestExprParenInsertion(t *testing.T) {
	b := newArenas()

	// (a + b) * c needs parens; a + b * c does not.
	a := b.NewIdentNamed("a")
	bb := b.NewIdentNamed("b")
	c := b.NewIdentNamed("c")
	sum := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinAdd, Left: a, Right: bb}})
	prod := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinMul, Left: sum, Right: c}})
	if got := Expr(b, prod, Options{}); got != "(a + b) * c" {
		t.Errorf("got %q", got)
	}

	a2 := b.NewIdentNamed("a")
	b2 := b.NewIdentNamed("b")
	c2 := b.NewIdentNamed("c")
	prod2 := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinMul, Left: b2, Right: c2}})
	sum2 := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinAdd, Left: a2, Right: prod2}})
	if got := Expr(b, sum2, Options{}); got != "a + b * c" {
		t.Errorf("got %q", got)
	}
}

func TestExprRightAssociativityParens(t *testing.T) {
	b := newArenas()

	// a - (b - c) must keep its parens under left associativity.
	a := b.NewIdentNamed("a")
	bb := b.NewIdentNamed("b")
	c := b.NewIdentNamed("c")
	inner := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinSub, Left: bb, Right: c}})
	outer := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{Op: ast.BinSub, Left: a, Right: inner}})
	if got := Expr(b, outer, Options{}); got != "a - (b - c)" {
		t.Errorf("got %q", got)
	}
}

func TestObjectAndArrayLiterals(t *testing.T) {
	b := newArenas()

	empty := b.NewExpr(ast.Expr{Kind: ast.ExprObject})
	if got := Expr(b, empty, Options{}); got != "{}" {
		t.Errorf("empty object = %q", got)
	}

	obj := b.NewExpr(ast.Expr{Kind: ast.ExprObject, Object: ast.ObjectExpr{Fields: []ast.ObjectField{
		{Name: b.Strings.Intern("value"), Value: b.NewNull()},
		{Name: b.Strings.Intern("done"), Value: b.NewBool(true)},
	}}})
	if got := Expr(b, obj, Options{}); got != "{ value: null, done: true }" {
		t.Errorf("object = %q", got)
	}

	arr := b.NewExpr(ast.Expr{Kind: ast.ExprArray, Array: ast.ArrayExpr{Elems: []ast.ExprID{
		b.NewNumberInt(1), b.NewNumberInt(2),
	}}})
	if got := Expr(b, arr, Options{}); got != "[1, 2]" {
		t.Errorf("array = %q", got)
	}
}

func TestStringQuoting(t *testing.T) {
	b := newArenas()
	str := b.NewExpr(ast.Expr{Kind: ast.ExprString, Str: "a\"b\n\tc\\"})
	if got := Expr(b, str, Options{}); got != `"a\"b\n\tc\\"` {
		t.Errorf("got %q", got)
	}
}

func TestCustomIndent(t *testing.T) {
	b := newArenas()
	body := b.NewBlock(b.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Return: ast.ReturnStmt{Value: b.NewNumberInt(1)}}))
	fnID := b.NewFunc(ast.Func{Name: b.Strings.Intern("one"), Body: body})

	got := Func(b, fnID, Options{Indent: "\t"})
	want := "function one() {\n\treturn 1;\n}\n"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestNestedFunctionExpressionIndent(t *testing.T) {
	b := newArenas()

	inner := b.NewExpr(ast.Expr{Kind: ast.ExprFunc, Func: ast.FuncExpr{
		Body: b.NewBlock(b.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Return: ast.ReturnStmt{Value: b.NewNumberInt(2)}})),
	}})
	decl := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: []ast.VarDecl{
		{Name: b.Strings.Intern("f"), Init: inner},
	}}})
	fnID := b.NewFunc(ast.Func{Name: b.Strings.Intern("outer"), Body: b.NewBlock(decl)})

	got := Func(b, fnID, Options{})
	want := "function outer() {\n" +
		"    var f = function () {\n" +
		"        return 2;\n" +
		"    };\n" +
		"}\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestElseIfChainIndent(t *testing.T) {
	b := newArenas()

	log := func(n int64) ast.StmtID {
		return b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
			Expr: b.NewCall(b.NewIdentNamed("log"), b.NewNumberInt(n)),
		}})
	}
	innerIf := b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: b.NewIdentNamed("q"),
		Then: b.NewBlock(log(2)),
		Else: b.NewBlock(log(3)),
	}})
	outerIf := b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: b.NewIdentNamed("p"),
		Then: b.NewBlock(log(1)),
		Else: innerIf,
	}})
	loop := b.NewStmt(ast.Stmt{Kind: ast.StmtWhile, While: ast.WhileStmt{
		Cond: b.NewBool(true),
		Body: b.NewBlock(outerIf),
	}})
	fnID := b.NewFunc(ast.Func{Name: b.Strings.Intern("route"), Body: b.NewBlock(loop)})

	got := Func(b, fnID, Options{})
	want := "function route() {\n" +
		"    while (true) {\n" +
		"        if (p) {\n" +
		"            log(1);\n" +
		"        } else if (q) {\n" +
		"            log(2);\n" +
		"        } else {\n" +
		"            log(3);\n" +
		"        }\n" +
		"    }\n" +
		"}\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
