// Package rewrite provides generic traversal over the statement tree:
// a read-only walker and a bottom-up rewriter. Both treat function
// expressions as opaque boundaries and never descend into them; nested
// function bodies belong to a different lowering unit.
package rewrite

import (
	"riff/internal/ast"
)

// WalkFunc observes one statement. Returning false prunes the subtree.
type WalkFunc func(id ast.StmtID) bool

// Walk visits root and its statement descendants in source order.
func Walk(b *ast.Builder, root ast.StmtID, fn WalkFunc) {
	if !root.IsValid() || !fn(root) {
		return
	}
	s := b.Stmt(root)
	switch s.Kind {
	case ast.StmtBlock:
		for _, child := range s.Block.Stmts {
			Walk(b, child, fn)
		}
	case ast.StmtIf:
		Walk(b, s.If.Then, fn)
		Walk(b, s.If.Else, fn)
	case ast.StmtWhile, ast.StmtDoWhile:
		Walk(b, s.While.Body, fn)
	case ast.StmtFor:
		Walk(b, s.For.Init, fn)
		Walk(b, s.For.Body, fn)
	case ast.StmtForIn:
		Walk(b, s.ForIn.Body, fn)
	case ast.StmtSwitch:
		for _, clause := range s.Switch.Clauses {
			for _, child := range clause.Stmts {
				Walk(b, child, fn)
			}
		}
	case ast.StmtTry:
		Walk(b, s.Try.Body, fn)
		Walk(b, s.Try.Catch, fn)
		Walk(b, s.Try.Finally, fn)
	case ast.StmtLabeled:
		Walk(b, s.Labeled.Stmt, fn)
	}
}

// StmtFunc rewrites one statement after its children have been rewritten.
// Returning the input id means "unchanged".
type StmtFunc func(id ast.StmtID) ast.StmtID

// Stmts rebuilds the tree bottom-up. Arenas are append-only, so a changed
// statement becomes a fresh node; untouched subtrees keep their ids.
func Stmts(b *ast.Builder, root ast.StmtID, post StmtFunc) ast.StmtID {
	if !root.IsValid() {
		return root
	}
	rebuilt := rebuildChildren(b, root, post)
	return post(rebuilt)
}

//nolint:gocyclo // one branch per statement kind
func rebuildChildren(b *ast.Builder, id ast.StmtID, post StmtFunc) ast.StmtID {
	s := b.Stmt(id)
	switch s.Kind {
	case ast.StmtBlock:
		var out []ast.StmtID
		changed := false
		for _, child := range s.Block.Stmts {
			next := Stmts(b, child, post)
			if next != child {
				changed = true
			}
			out = append(out, next)
		}
		if !changed {
			return id
		}
		clone := *b.Stmt(id)
		clone.Block = ast.BlockStmt{Stmts: out}
		return b.NewStmt(clone)
	case ast.StmtIf:
		then := Stmts(b, s.If.Then, post)
		els := Stmts(b, s.If.Else, post)
		if then == s.If.Then && els == s.If.Else {
			return id
		}
		clone := *b.Stmt(id)
		clone.If.Then, clone.If.Else = then, els
		return b.NewStmt(clone)
	case ast.StmtWhile, ast.StmtDoWhile:
		body := Stmts(b, s.While.Body, post)
		if body == s.While.Body {
			return id
		}
		clone := *b.Stmt(id)
		clone.While.Body = body
		return b.NewStmt(clone)
	case ast.StmtFor:
		init := Stmts(b, s.For.Init, post)
		body := Stmts(b, s.For.Body, post)
		if init == s.For.Init && body == s.For.Body {
			return id
		}
		clone := *b.Stmt(id)
		clone.For.Init, clone.For.Body = init, body
		return b.NewStmt(clone)
	case ast.StmtForIn:
		body := Stmts(b, s.ForIn.Body, post)
		if body == s.ForIn.Body {
			return id
		}
		clone := *b.Stmt(id)
		clone.ForIn.Body = body
		return b.NewStmt(clone)
	case ast.StmtSwitch:
		changed := false
		clauses := make([]ast.SwitchClause, len(s.Switch.Clauses))
		copy(clauses, s.Switch.Clauses)
		for ci := range clauses {
			var out []ast.StmtID
			for _, child := range clauses[ci].Stmts {
				next := Stmts(b, child, post)
				if next != child {
					changed = true
				}
				out = append(out, next)
			}
			clauses[ci].Stmts = out
		}
		if !changed {
			return id
		}
		clone := *b.Stmt(id)
		clone.Switch.Clauses = clauses
		return b.NewStmt(clone)
	case ast.StmtTry:
		body := Stmts(b, s.Try.Body, post)
		catch := Stmts(b, s.Try.Catch, post)
		fin := Stmts(b, s.Try.Finally, post)
		if body == s.Try.Body && catch == s.Try.Catch && fin == s.Try.Finally {
			return id
		}
		clone := *b.Stmt(id)
		clone.Try.Body, clone.Try.Catch, clone.Try.Finally = body, catch, fin
		return b.NewStmt(clone)
	case ast.StmtLabeled:
		inner := Stmts(b, s.Labeled.Stmt, post)
		if inner == s.Labeled.Stmt {
			return id
		}
		clone := *b.Stmt(id)
		clone.Labeled.Stmt = inner
		return b.NewStmt(clone)
	default:
		return id
	}
}
