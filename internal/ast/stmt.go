package ast

import (
	"riff/internal/source"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtVar
	StmtExpr
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtForIn
	StmtSwitch
	StmtTry
	StmtBreak
	StmtContinue
	StmtReturn
	StmtThrow
	StmtLabeled
	StmtYield
	StmtAwait
)

type BlockStmt struct {
	Stmts []StmtID
}

type VarDecl struct {
	Name source.StringID
	Init ExprID // NoExprID when absent
}

type VarStmt struct {
	Decls []VarDecl
}

type ExprStmt struct {
	Expr ExprID
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent
}

// WhileStmt covers both while and do-while bodies.
type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

type ForStmt struct {
	Init   StmtID // var or expression statement; NoStmtID when absent
	Cond   ExprID // NoExprID when absent
	Update ExprID // NoExprID when absent
	Body   StmtID
}

type ForInStmt struct {
	Decl   bool // for (var k in o) vs for (k in o)
	Name   source.StringID
	Object ExprID
	Body   StmtID
}

type SwitchClause struct {
	IsDefault bool
	Value     ExprID // meaningful unless IsDefault
	Stmts     []StmtID
	Span      source.Span
}

type SwitchStmt struct {
	Selector ExprID
	Clauses  []SwitchClause
}

type TryStmt struct {
	Body        StmtID // block
	CatchName   source.StringID
	Catch       StmtID // block; NoStmtID when absent
	Finally     StmtID // block; NoStmtID when absent
}

// BranchStmt is break or continue; Label is NoStringID when unlabeled.
type BranchStmt struct {
	Label source.StringID
}

type ReturnStmt struct {
	Value ExprID // NoExprID when absent
}

type ThrowStmt struct {
	Value ExprID
}

type LabeledStmt struct {
	Label source.StringID
	Stmt  StmtID
}

// YieldStmt is the value-producing suspension point.
type YieldStmt struct {
	Value ExprID // NoExprID terminates iteration cleanly
}

// AwaitStmt is the callback-pair suspension point.
// Dst, when valid, names the variable receiving the settled value; Decl
// records whether the statement declared it.
type AwaitStmt struct {
	Dst   source.StringID
	Decl  bool
	Value ExprID
}

// Stmt is a tagged union over the closed statement vocabulary.
// Only the payload matching Kind is meaningful.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	Block   BlockStmt
	Var     VarStmt
	Expr    ExprStmt
	If      IfStmt
	While   WhileStmt // StmtWhile and StmtDoWhile
	For     ForStmt
	ForIn   ForInStmt
	Switch  SwitchStmt
	Try     TryStmt
	Branch  BranchStmt // StmtBreak and StmtContinue
	Return  ReturnStmt
	Throw   ThrowStmt
	Labeled LabeledStmt
	Yield   YieldStmt
	Await   AwaitStmt
}
