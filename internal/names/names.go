// Package names allocates identifiers that are guaranteed not to collide
// with anything the user wrote. Lowering asks it for the machine slots
// (state counter, resume value, pending action) and for scratch temps.
package names

import (
	"fmt"

	"riff/internal/ast"
	"riff/internal/source"
)

// Reserved machine-slot prefixes. Allocator appends a numeric suffix only
// when the bare name is already taken in the scanned scope.
const (
	StateSlot = "__state"
	SentSlot  = "__sent"
	ErrSlot   = "__err"
	RetSlot   = "__ret"
	PendSlot  = "__pend"
	StepFunc  = "__step"
	KeysTemp  = "__keys"
	IdxTemp   = "__i"
	ValTemp   = "__v"
	ExcTemp   = "__e"
	SelTemp   = "__sel"
)

// Allocator hands out names unused within one function. Not safe for
// concurrent use; the driver builds one per lowered function.
type Allocator struct {
	used map[string]struct{}
	b    *ast.Builder
}

// ForFunc scans every identifier reachable from the function, including
// nested function expressions, and returns an allocator that avoids all
// of them.
func ForFunc(b *ast.Builder, fn ast.FuncID) *Allocator {
	a := &Allocator{used: make(map[string]struct{}), b: b}
	f := b.Func(fn)
	a.markName(f.Name)
	for _, prm := range f.Params {
		a.markName(prm)
	}
	a.scanStmt(f.Body)
	return a
}

// Fresh returns base itself when free, otherwise base with the smallest
// numeric suffix that is free. The result is marked used.
func (a *Allocator) Fresh(base string) string {
	if _, taken := a.used[base]; !taken {
		a.used[base] = struct{}{}
		return base
	}
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s%d", base, i)
		if _, taken := a.used[cand]; !taken {
			a.used[cand] = struct{}{}
			return cand
		}
	}
}

// FreshID is Fresh plus interning.
func (a *Allocator) FreshID(base string) source.StringID {
	return a.b.Strings.Intern(a.Fresh(base))
}

// Taken reports whether name is already claimed.
func (a *Allocator) Taken(name string) bool {
	_, ok := a.used[name]
	return ok
}

func (a *Allocator) markName(id source.StringID) {
	if id.IsValid() {
		a.used[a.b.Strings.MustLookup(id)] = struct{}{}
	}
}

//nolint:gocyclo // one branch per statement kind
func (a *Allocator) scanStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	s := a.b.Stmt(id)
	switch s.Kind {
	case ast.StmtBlock:
		for _, child := range s.Block.Stmts {
			a.scanStmt(child)
		}
	case ast.StmtVar:
		for _, d := range s.Var.Decls {
			a.markName(d.Name)
			a.scanExpr(d.Init)
		}
	case ast.StmtExpr:
		a.scanExpr(s.Expr.Expr)
	case ast.StmtIf:
		a.scanExpr(s.If.Cond)
		a.scanStmt(s.If.Then)
		a.scanStmt(s.If.Else)
	case ast.StmtWhile, ast.StmtDoWhile:
		a.scanExpr(s.While.Cond)
		a.scanStmt(s.While.Body)
	case ast.StmtFor:
		a.scanStmt(s.For.Init)
		a.scanExpr(s.For.Cond)
		a.scanExpr(s.For.Update)
		a.scanStmt(s.For.Body)
	case ast.StmtForIn:
		a.markName(s.ForIn.Name)
		a.scanExpr(s.ForIn.Object)
		a.scanStmt(s.ForIn.Body)
	case ast.StmtSwitch:
		a.scanExpr(s.Switch.Selector)
		for _, clause := range s.Switch.Clauses {
			a.scanExpr(clause.Value)
			for _, child := range clause.Stmts {
				a.scanStmt(child)
			}
		}
	case ast.StmtTry:
		a.scanStmt(s.Try.Body)
		a.markName(s.Try.CatchName)
		a.scanStmt(s.Try.Catch)
		a.scanStmt(s.Try.Finally)
	case ast.StmtReturn:
		a.scanExpr(s.Return.Value)
	case ast.StmtThrow:
		a.scanExpr(s.Throw.Value)
	case ast.StmtLabeled:
		a.markName(s.Labeled.Label)
		a.scanStmt(s.Labeled.Stmt)
	case ast.StmtYield:
		a.scanExpr(s.Yield.Value)
	case ast.StmtAwait:
		a.markName(s.Await.Dst)
		a.scanExpr(s.Await.Value)
	case ast.StmtBreak, ast.StmtContinue:
		a.markName(s.Branch.Label)
	}
}

func (a *Allocator) scanExpr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := a.b.Expr(id)
	switch e.Kind {
	case ast.ExprIdent:
		a.markName(e.Ident)
	case ast.ExprUnary:
		a.scanExpr(e.Unary.Operand)
	case ast.ExprBinary:
		a.scanExpr(e.Binary.Left)
		a.scanExpr(e.Binary.Right)
	case ast.ExprAssign:
		a.scanExpr(e.Assign.Target)
		a.scanExpr(e.Assign.Value)
	case ast.ExprCond:
		a.scanExpr(e.Cond.Test)
		a.scanExpr(e.Cond.Then)
		a.scanExpr(e.Cond.Else)
	case ast.ExprCall:
		a.scanExpr(e.Call.Callee)
		for _, arg := range e.Call.Args {
			a.scanExpr(arg)
		}
	case ast.ExprMember:
		a.scanExpr(e.Member.Object)
		a.markName(e.Member.Name)
	case ast.ExprIndex:
		a.scanExpr(e.Index.Object)
		a.scanExpr(e.Index.Index)
	case ast.ExprArray:
		for _, elem := range e.Array.Elems {
			a.scanExpr(elem)
		}
	case ast.ExprObject:
		for _, f := range e.Object.Fields {
			a.markName(f.Name)
			a.scanExpr(f.Value)
		}
	case ast.ExprFunc:
		for _, prm := range e.Func.Params {
			a.markName(prm)
		}
		a.scanStmt(e.Func.Body)
	}
}
