package printer

import (
	"fmt"
	"strings"

	"riff/internal/ast"
)

// Precedence levels, lowest binds loosest. A child is parenthesized when
// its own level is below the level its context demands.
const (
	precLowest  = 0
	precAssign  = 1
	precCond    = 2
	precOr      = 3
	precAnd     = 4
	precBit     = 5
	precEq      = 6
	precRel     = 7
	precAdd     = 8
	precMul     = 9
	precUnary   = 10
	precPostfix = 11
)

func binOpPrec(op ast.BinaryOp) int {
	switch op {
	case ast.BinOr:
		return precOr
	case ast.BinAnd:
		return precAnd
	case ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor:
		return precBit
	case ast.BinEq, ast.BinNeq, ast.BinStrictEq, ast.BinStrictNeq:
		return precEq
	case ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		return precRel
	case ast.BinAdd, ast.BinSub:
		return precAdd
	default:
		return precMul
	}
}

var binOpText = map[ast.BinaryOp]string{
	ast.BinAdd: "+", ast.BinSub: "-", ast.BinMul: "*", ast.BinDiv: "/", ast.BinMod: "%",
	ast.BinEq: "==", ast.BinStrictEq: "===", ast.BinNeq: "!=", ast.BinStrictNeq: "!==",
	ast.BinLt: "<", ast.BinLtEq: "<=", ast.BinGt: ">", ast.BinGtEq: ">=",
	ast.BinAnd: "&&", ast.BinOr: "||",
	ast.BinBitAnd: "&", ast.BinBitOr: "|", ast.BinBitXor: "^",
}

var assignOpText = map[ast.AssignOp]string{
	ast.AssignPlain: "=", ast.AssignAdd: "+=", ast.AssignSub: "-=",
	ast.AssignMul: "*=", ast.AssignDiv: "/=", ast.AssignMod: "%=",
}

var unaryOpText = map[ast.UnaryOp]string{
	ast.UnaryNot: "!", ast.UnaryNeg: "-", ast.UnaryBitNot: "~", ast.UnaryTypeof: "typeof ",
}

func (p *Printer) exprString(id ast.ExprID, minPrec int) string {
	text, prec := p.render(id)
	if prec < minPrec {
		return "(" + text + ")"
	}
	return text
}

// render returns expression text plus the precedence level of its
// outermost operator.
//
//nolint:gocyclo // one branch per expression kind
func (p *Printer) render(id ast.ExprID) (string, int) {
	e := p.b.Expr(id)
	switch e.Kind {
	case ast.ExprIdent:
		return p.b.Strings.MustLookup(e.Ident), precPostfix
	case ast.ExprNumber:
		return e.Number, precPostfix
	case ast.ExprString:
		return quoteString(e.Str), precPostfix
	case ast.ExprBool:
		if e.Bool {
			return "true", precPostfix
		}
		return "false", precPostfix
	case ast.ExprNull:
		return "null", precPostfix
	case ast.ExprUnary:
		return unaryOpText[e.Unary.Op] + p.exprString(e.Unary.Operand, precUnary), precUnary
	case ast.ExprBinary:
		prec := binOpPrec(e.Binary.Op)
		// Left-associative: the right child needs one level tighter.
		return fmt.Sprintf("%s %s %s",
			p.exprString(e.Binary.Left, prec),
			binOpText[e.Binary.Op],
			p.exprString(e.Binary.Right, prec+1)), prec
	case ast.ExprAssign:
		return fmt.Sprintf("%s %s %s",
			p.exprString(e.Assign.Target, precPostfix),
			assignOpText[e.Assign.Op],
			p.exprString(e.Assign.Value, precAssign)), precAssign
	case ast.ExprCond:
		return fmt.Sprintf("%s ? %s : %s",
			p.exprString(e.Cond.Test, precOr),
			p.exprString(e.Cond.Then, precAssign),
			p.exprString(e.Cond.Else, precAssign)), precCond
	case ast.ExprCall:
		var args []string
		for _, arg := range e.Call.Args {
			args = append(args, p.exprString(arg, precAssign))
		}
		return fmt.Sprintf("%s(%s)",
			p.exprString(e.Call.Callee, precPostfix), strings.Join(args, ", ")), precPostfix
	case ast.ExprMember:
		return fmt.Sprintf("%s.%s",
			p.exprString(e.Member.Object, precPostfix),
			p.b.Strings.MustLookup(e.Member.Name)), precPostfix
	case ast.ExprIndex:
		return fmt.Sprintf("%s[%s]",
			p.exprString(e.Index.Object, precPostfix),
			p.exprString(e.Index.Index, precLowest)), precPostfix
	case ast.ExprArray:
		var elems []string
		for _, elem := range e.Array.Elems {
			elems = append(elems, p.exprString(elem, precAssign))
		}
		return "[" + strings.Join(elems, ", ") + "]", precPostfix
	case ast.ExprObject:
		if len(e.Object.Fields) == 0 {
			return "{}", precPostfix
		}
		var fields []string
		for _, f := range e.Object.Fields {
			fields = append(fields, fmt.Sprintf("%s: %s",
				p.b.Strings.MustLookup(f.Name), p.exprString(f.Value, precAssign)))
		}
		return "{ " + strings.Join(fields, ", ") + " }", precPostfix
	case ast.ExprFunc:
		return p.renderFuncExpr(e), precPostfix
	default:
		return "/* invalid */", precPostfix
	}
}

// renderFuncExpr inlines a function expression body at the current depth.
func (p *Printer) renderFuncExpr(e *ast.Expr) string {
	var params []string
	for _, prm := range e.Func.Params {
		params = append(params, p.b.Strings.MustLookup(prm))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "function (%s) {\n", strings.Join(params, ", "))

	nested := &Printer{b: p.b, indent: p.indent, depth: p.depth + 1}
	for _, child := range p.b.Stmt(e.Func.Body).Block.Stmts {
		nested.printStmt(child)
	}
	sb.WriteString(nested.sb.String())
	for i := 0; i < p.depth; i++ {
		sb.WriteString(p.indent)
	}
	sb.WriteByte('}')
	return sb.String()
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
