package lower

import (
	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/rewrite"
	"riff/internal/source"
)

type suspendKind uint8

const (
	suspendNone suspendKind = iota
	suspendYield
	suspendAwait
)

// classify decides which suspension specialization a function body uses
// and rejects the structural misuses that cannot be lowered: mixing both
// specializations, a suspension point inside a finally block, and a
// suspension point inside a nested function. Misuse is reported against
// the offending location and leaves the function unlowered.
func classify(b *ast.Builder, fn ast.FuncID, reporter diag.Reporter) (suspendKind, bool) {
	body := b.Func(fn).Body
	kind := suspendNone
	ok := true

	var firstMixed bool
	note := func(k suspendKind, sp source.Span) {
		if kind == suspendNone {
			kind = k
			return
		}
		if kind != k && !firstMixed {
			firstMixed = true
			ok = false
			diag.ReportError(reporter, diag.LowMixedSuspension, sp,
				"function mixes yield and await suspension; pick one")
		}
	}

	rewrite.Walk(b, body, func(id ast.StmtID) bool {
		s := b.Stmt(id)
		switch s.Kind {
		case ast.StmtYield:
			note(suspendYield, s.Span)
		case ast.StmtAwait:
			note(suspendAwait, s.Span)
		case ast.StmtTry:
			if s.Try.Finally.IsValid() && reportSuspendIn(b, s.Try.Finally, reporter, diag.LowSuspendInFinally,
				"suspension point inside a finally block cannot be resumed") {
				ok = false
			}
			// The walker still descends into the finally body; the error
			// above is the only consequence.
		}
		checkNestedFuncs(b, id, reporter, &ok)
		return true
	})
	return kind, ok
}

// reportSuspendIn reports every suspension point under root and returns
// whether any was found.
func reportSuspendIn(b *ast.Builder, root ast.StmtID, reporter diag.Reporter, code diag.Code, msg string) bool {
	found := false
	rewrite.Walk(b, root, func(id ast.StmtID) bool {
		s := b.Stmt(id)
		if s.Kind == ast.StmtYield || s.Kind == ast.StmtAwait {
			found = true
			diag.ReportError(reporter, code, s.Span, msg)
		}
		return true
	})
	return found
}

// checkNestedFuncs scans the expressions of one statement for function
// expressions whose bodies contain suspension points. Nested functions are
// opaque boundaries; suspending inside one is a static error.
func checkNestedFuncs(b *ast.Builder, id ast.StmtID, reporter diag.Reporter, ok *bool) {
	eachExpr(b, id, func(e *ast.Expr) {
		if e.Kind != ast.ExprFunc {
			return
		}
		if reportSuspendIn(b, e.Func.Body, reporter, diag.LowSuspendInNested,
			"suspension point inside a nested function") {
			*ok = false
		}
	})
}

// eachExpr applies fn to every expression referenced directly by the
// statement (not those of child statements) and to all sub-expressions.
func eachExpr(b *ast.Builder, id ast.StmtID, fn func(e *ast.Expr)) {
	s := b.Stmt(id)
	var visit func(eid ast.ExprID)
	visit = func(eid ast.ExprID) {
		if !eid.IsValid() {
			return
		}
		e := b.Expr(eid)
		fn(e)
		switch e.Kind {
		case ast.ExprUnary:
			visit(e.Unary.Operand)
		case ast.ExprBinary:
			visit(e.Binary.Left)
			visit(e.Binary.Right)
		case ast.ExprAssign:
			visit(e.Assign.Target)
			visit(e.Assign.Value)
		case ast.ExprCond:
			visit(e.Cond.Test)
			visit(e.Cond.Then)
			visit(e.Cond.Else)
		case ast.ExprCall:
			visit(e.Call.Callee)
			for _, arg := range e.Call.Args {
				visit(arg)
			}
		case ast.ExprMember:
			visit(e.Member.Object)
		case ast.ExprIndex:
			visit(e.Index.Object)
			visit(e.Index.Index)
		case ast.ExprArray:
			for _, elem := range e.Array.Elems {
				visit(elem)
			}
		case ast.ExprObject:
			for _, f := range e.Object.Fields {
				visit(f.Value)
			}
		}
		// ExprFunc bodies are statements, not expressions; callers that
		// care descend explicitly.
	}
	switch s.Kind {
	case ast.StmtVar:
		for _, d := range s.Var.Decls {
			visit(d.Init)
		}
	case ast.StmtExpr:
		visit(s.Expr.Expr)
	case ast.StmtIf:
		visit(s.If.Cond)
	case ast.StmtWhile, ast.StmtDoWhile:
		visit(s.While.Cond)
	case ast.StmtFor:
		visit(s.For.Cond)
		visit(s.For.Update)
	case ast.StmtForIn:
		visit(s.ForIn.Object)
	case ast.StmtSwitch:
		visit(s.Switch.Selector)
		for _, clause := range s.Switch.Clauses {
			visit(clause.Value)
		}
	case ast.StmtReturn:
		visit(s.Return.Value)
	case ast.StmtThrow:
		visit(s.Throw.Value)
	case ast.StmtYield:
		visit(s.Yield.Value)
	case ast.StmtAwait:
		visit(s.Await.Value)
	}
}

// branchSet tracks break/continue obligations escaping a subtree.
type branchSet struct {
	brk    bool // unlabeled break
	cont   bool // unlabeled continue
	labels map[source.StringID]struct{}
}

func (bs *branchSet) empty() bool {
	return !bs.brk && !bs.cont && len(bs.labels) == 0
}

func (bs *branchSet) addLabel(l source.StringID) {
	if bs.labels == nil {
		bs.labels = make(map[source.StringID]struct{})
	}
	bs.labels[l] = struct{}{}
}

func (bs *branchSet) merge(other branchSet) {
	bs.brk = bs.brk || other.brk
	bs.cont = bs.cont || other.cont
	for l := range other.labels {
		bs.addLabel(l)
	}
}

type nodeInfo struct {
	suspend bool
	ret     bool
	free    branchSet
}

// needsMachine reports whether a statement must be converted when its
// enclosing function is being lowered: it suspends, returns, or branches
// to a target outside itself. Anything else stays plain code inside a
// state body.
func needsMachine(b *ast.Builder, id ast.StmtID) bool {
	info := scan(b, id)
	return info.suspend || info.ret || !info.free.empty()
}

//nolint:gocyclo // one branch per statement kind
func scan(b *ast.Builder, id ast.StmtID) nodeInfo {
	var out nodeInfo
	if !id.IsValid() {
		return out
	}
	s := b.Stmt(id)
	switch s.Kind {
	case ast.StmtYield, ast.StmtAwait:
		out.suspend = true
	case ast.StmtReturn:
		out.ret = true
	case ast.StmtBreak:
		if s.Branch.Label.IsValid() {
			out.free.addLabel(s.Branch.Label)
		} else {
			out.free.brk = true
		}
	case ast.StmtContinue:
		if s.Branch.Label.IsValid() {
			out.free.addLabel(s.Branch.Label)
		} else {
			out.free.cont = true
		}
	case ast.StmtBlock:
		for _, child := range s.Block.Stmts {
			out = join(out, scan(b, child))
		}
	case ast.StmtIf:
		out = join(scan(b, s.If.Then), scan(b, s.If.Else))
	case ast.StmtWhile, ast.StmtDoWhile:
		inner := scan(b, s.While.Body)
		inner.free.brk = false
		inner.free.cont = false
		out = inner
	case ast.StmtFor:
		inner := scan(b, s.For.Body)
		inner.free.brk = false
		inner.free.cont = false
		out = join(inner, scan(b, s.For.Init))
	case ast.StmtForIn:
		inner := scan(b, s.ForIn.Body)
		inner.free.brk = false
		inner.free.cont = false
		out = inner
	case ast.StmtSwitch:
		for _, clause := range s.Switch.Clauses {
			for _, child := range clause.Stmts {
				out = join(out, scan(b, child))
			}
		}
		out.free.brk = false
	case ast.StmtTry:
		out = join(scan(b, s.Try.Body), scan(b, s.Try.Catch))
		out = join(out, scan(b, s.Try.Finally))
	case ast.StmtLabeled:
		out = scan(b, s.Labeled.Stmt)
		if out.free.labels != nil {
			delete(out.free.labels, s.Labeled.Label)
		}
	}
	return out
}

func join(a, b nodeInfo) nodeInfo {
	a.suspend = a.suspend || b.suspend
	a.ret = a.ret || b.ret
	a.free.merge(b.free)
	return a
}
