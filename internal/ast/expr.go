package ast

import (
	"riff/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIdent
	ExprNumber
	ExprString
	ExprBool
	ExprNull
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCond
	ExprCall
	ExprMember
	ExprIndex
	ExprArray
	ExprObject
	ExprFunc
)

type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota // !
	UnaryNeg                // -
	UnaryBitNot             // ~
	UnaryTypeof             // typeof
)

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota // +
	BinSub                 // -
	BinMul                 // *
	BinDiv                 // /
	BinMod                 // %
	BinEq                  // ==
	BinStrictEq            // ===
	BinNeq                 // !=
	BinStrictNeq           // !==
	BinLt                  // <
	BinLtEq                // <=
	BinGt                  // >
	BinGtEq                // >=
	BinAnd                 // &&
	BinOr                  // ||
	BinBitAnd              // &
	BinBitOr               // |
	BinBitXor              // ^
)

type AssignOp uint8

const (
	AssignPlain AssignOp = iota // =
	AssignAdd                   // +=
	AssignSub                   // -=
	AssignMul                   // *=
	AssignDiv                   // /=
	AssignMod                   // %=
)

type UnaryExpr struct {
	Op      UnaryOp
	Operand ExprID
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type AssignExpr struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

type CondExpr struct {
	Test ExprID
	Then ExprID
	Else ExprID
}

type CallExpr struct {
	Callee ExprID
	Args   []ExprID
}

type MemberExpr struct {
	Object ExprID
	Name   source.StringID
}

type IndexExpr struct {
	Object ExprID
	Index  ExprID
}

type ArrayExpr struct {
	Elems []ExprID
}

type ObjectField struct {
	Name  source.StringID
	Value ExprID
}

type ObjectExpr struct {
	Fields []ObjectField
}

// FuncExpr is an opaque boundary: lowering never rewrites inside Body.
type FuncExpr struct {
	Params []source.StringID
	Body   StmtID // always a block
}

// Expr is a tagged union over the closed expression vocabulary.
// Only the payload matching Kind is meaningful.
type Expr struct {
	Kind ExprKind
	Span source.Span

	Ident  source.StringID // ExprIdent
	Number string          // ExprNumber, raw text
	Str    string          // ExprString, decoded payload
	Bool   bool            // ExprBool
	Unary  UnaryExpr
	Binary BinaryExpr
	Assign AssignExpr
	Cond   CondExpr
	Call   CallExpr
	Member MemberExpr
	Index  IndexExpr
	Array  ArrayExpr
	Object ObjectExpr
	Func   FuncExpr
}
