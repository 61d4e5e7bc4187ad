// Package ast defines the closed statement/expression node set for Riff
// and the arena-backed Builder that owns all allocations for one file.
package ast

import (
	"strconv"

	"riff/internal/source"
)

type Hints struct{ Files, Funcs, Stmts, Exprs uint }

// Builder owns the arenas for one parse plus any nodes synthesized by
// later passes. The string interner is shared across files.
type Builder struct {
	Files   *Arena[File]
	Funcs   *Arena[Func]
	Stmts   *Arena[Stmt]
	Exprs   *Arena[Expr]
	Strings *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Funcs == 0 {
		hints.Funcs = 1 << 5
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewArena[File](hints.Files),
		Funcs:   NewArena[Func](hints.Funcs),
		Stmts:   NewArena[Stmt](hints.Stmts),
		Exprs:   NewArena[Expr](hints.Exprs),
		Strings: strings,
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return FileID(b.Files.Allocate(File{Span: sp}))
}

func (b *Builder) NewFunc(fn Func) FuncID {
	return FuncID(b.Funcs.Allocate(fn))
}

func (b *Builder) PushFunc(file FileID, fn FuncID) {
	f := b.Files.Get(uint32(file))
	f.Funcs = append(f.Funcs, fn)
}

//nolint:gocritic // hugeParam: nodes are moved into the arena by value
func (b *Builder) NewStmt(s Stmt) StmtID {
	return StmtID(b.Stmts.Allocate(s))
}

//nolint:gocritic // hugeParam: nodes are moved into the arena by value
func (b *Builder) NewExpr(e Expr) ExprID {
	return ExprID(b.Exprs.Allocate(e))
}

func (b *Builder) Stmt(id StmtID) *Stmt {
	return b.Stmts.Get(uint32(id))
}

func (b *Builder) Expr(id ExprID) *Expr {
	return b.Exprs.Get(uint32(id))
}

func (b *Builder) Func(id FuncID) *Func {
	return b.Funcs.Get(uint32(id))
}

func (b *Builder) File(id FileID) *File {
	return b.Files.Get(uint32(id))
}

// Convenience constructors used by the parser and by lowering when it
// synthesizes replacement code.

func (b *Builder) NewIdent(sp source.Span, name source.StringID) ExprID {
	return b.NewExpr(Expr{Kind: ExprIdent, Span: sp, Ident: name})
}

func (b *Builder) NewIdentNamed(name string) ExprID {
	return b.NewIdent(source.Span{}, b.Strings.Intern(name))
}

func (b *Builder) NewNumberInt(n int64) ExprID {
	return b.NewExpr(Expr{Kind: ExprNumber, Number: strconv.FormatInt(n, 10)})
}

func (b *Builder) NewBool(v bool) ExprID {
	return b.NewExpr(Expr{Kind: ExprBool, Bool: v})
}

func (b *Builder) NewNull() ExprID {
	return b.NewExpr(Expr{Kind: ExprNull})
}

func (b *Builder) NewAssignStmt(target, value ExprID) StmtID {
	assign := b.NewExpr(Expr{Kind: ExprAssign, Assign: AssignExpr{Op: AssignPlain, Target: target, Value: value}})
	return b.NewStmt(Stmt{Kind: StmtExpr, Expr: ExprStmt{Expr: assign}})
}

func (b *Builder) NewBlock(stmts ...StmtID) StmtID {
	return b.NewStmt(Stmt{Kind: StmtBlock, Block: BlockStmt{Stmts: stmts}})
}

func (b *Builder) NewMember(object ExprID, name string) ExprID {
	return b.NewExpr(Expr{Kind: ExprMember, Member: MemberExpr{Object: object, Name: b.Strings.Intern(name)}})
}

func (b *Builder) NewCall(callee ExprID, args ...ExprID) ExprID {
	return b.NewExpr(Expr{Kind: ExprCall, Call: CallExpr{Callee: callee, Args: args}})
}
