// Package printer renders the ast node set back to deterministic Riff
// source text. The same tree always produces byte-identical output, which
// the driver relies on for cache keys and the tests rely on for goldens.
package printer

import (
	"fmt"
	"strings"

	"riff/internal/ast"
)

type Options struct {
	// Indent is the unit of indentation. Defaults to four spaces.
	Indent string
}

// Printer walks a Builder and appends source text to an internal buffer.
// It is single-use: create one per Fprint call.
type Printer struct {
	b      *ast.Builder
	sb     strings.Builder
	indent string
	depth  int
}

// File renders every function in the file, separated by blank lines.
func File(b *ast.Builder, id ast.FileID, opts Options) string {
	p := newPrinter(b, opts)
	file := b.File(id)
	for i, fnID := range file.Funcs {
		if i > 0 {
			p.sb.WriteByte('\n')
		}
		p.printFunc(fnID)
	}
	return p.sb.String()
}

// Func renders a single function declaration.
func Func(b *ast.Builder, id ast.FuncID, opts Options) string {
	p := newPrinter(b, opts)
	p.printFunc(id)
	return p.sb.String()
}

// Stmt renders a single statement at zero indentation.
func Stmt(b *ast.Builder, id ast.StmtID, opts Options) string {
	p := newPrinter(b, opts)
	p.printStmt(id)
	return p.sb.String()
}

// Expr renders a single expression.
func Expr(b *ast.Builder, id ast.ExprID, opts Options) string {
	p := newPrinter(b, opts)
	p.sb.WriteString(p.exprString(id, precLowest))
	return p.sb.String()
}

func newPrinter(b *ast.Builder, opts Options) *Printer {
	indent := opts.Indent
	if indent == "" {
		indent = "    "
	}
	return &Printer{b: b, indent: indent}
}

func (p *Printer) line(format string, args ...any) {
	for i := 0; i < p.depth; i++ {
		p.sb.WriteString(p.indent)
	}
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *Printer) printFunc(id ast.FuncID) {
	fn := p.b.Func(id)
	var params []string
	for _, prm := range fn.Params {
		params = append(params, p.b.Strings.MustLookup(prm))
	}
	p.line("function %s(%s) {", p.b.Strings.MustLookup(fn.Name), strings.Join(params, ", "))
	p.printBlockBody(fn.Body)
	p.line("}")
}

// printBlockBody prints the statements of a block without the braces.
func (p *Printer) printBlockBody(id ast.StmtID) {
	p.depth++
	for _, child := range p.b.Stmt(id).Block.Stmts {
		p.printStmt(child)
	}
	p.depth--
}

//nolint:gocyclo // one branch per statement kind
func (p *Printer) printStmt(id ast.StmtID) {
	s := p.b.Stmt(id)
	switch s.Kind {
	case ast.StmtBlock:
		p.line("{")
		p.printBlockBody(id)
		p.line("}")
	case ast.StmtVar:
		var decls []string
		for _, d := range s.Var.Decls {
			if d.Init.IsValid() {
				decls = append(decls, fmt.Sprintf("%s = %s",
					p.b.Strings.MustLookup(d.Name), p.exprString(d.Init, precAssign)))
			} else {
				decls = append(decls, p.b.Strings.MustLookup(d.Name))
			}
		}
		p.line("var %s;", strings.Join(decls, ", "))
	case ast.StmtExpr:
		p.line("%s;", p.exprString(s.Expr.Expr, precLowest))
	case ast.StmtIf:
		p.printIf(s)
	case ast.StmtWhile:
		p.line("while (%s) {", p.exprString(s.While.Cond, precLowest))
		p.printBlockBody(s.While.Body)
		p.line("}")
	case ast.StmtDoWhile:
		p.line("do {")
		p.printBlockBody(s.While.Body)
		p.line("} while (%s);", p.exprString(s.While.Cond, precLowest))
	case ast.StmtFor:
		p.printFor(s)
	case ast.StmtForIn:
		decl := ""
		if s.ForIn.Decl {
			decl = "var "
		}
		p.line("for (%s%s in %s) {", decl,
			p.b.Strings.MustLookup(s.ForIn.Name), p.exprString(s.ForIn.Object, precLowest))
		p.printBlockBody(s.ForIn.Body)
		p.line("}")
	case ast.StmtSwitch:
		p.printSwitch(s)
	case ast.StmtTry:
		p.printTry(s)
	case ast.StmtBreak:
		if s.Branch.Label.IsValid() {
			p.line("break %s;", p.b.Strings.MustLookup(s.Branch.Label))
		} else {
			p.line("break;")
		}
	case ast.StmtContinue:
		if s.Branch.Label.IsValid() {
			p.line("continue %s;", p.b.Strings.MustLookup(s.Branch.Label))
		} else {
			p.line("continue;")
		}
	case ast.StmtReturn:
		if s.Return.Value.IsValid() {
			p.line("return %s;", p.exprString(s.Return.Value, precLowest))
		} else {
			p.line("return;")
		}
	case ast.StmtThrow:
		p.line("throw %s;", p.exprString(s.Throw.Value, precLowest))
	case ast.StmtLabeled:
		p.line("%s:", p.b.Strings.MustLookup(s.Labeled.Label))
		p.printStmt(s.Labeled.Stmt)
	case ast.StmtYield:
		if s.Yield.Value.IsValid() {
			p.line("yield %s;", p.exprString(s.Yield.Value, precLowest))
		} else {
			p.line("yield;")
		}
	case ast.StmtAwait:
		if s.Await.Dst.IsValid() {
			decl := ""
			if s.Await.Decl {
				decl = "var "
			}
			p.line("%s%s = await %s;", decl,
				p.b.Strings.MustLookup(s.Await.Dst), p.exprString(s.Await.Value, precLowest))
		} else {
			p.line("await %s;", p.exprString(s.Await.Value, precLowest))
		}
	default:
		p.line("/* invalid statement */;")
	}
}

func (p *Printer) printIf(s *ast.Stmt) {
	p.line("if (%s) {", p.exprString(s.If.Cond, precLowest))
	p.printIfTail(s)
}

// printIfTail prints everything after the already-emitted "if (...) {"
// header, flattening else-if chains.
func (p *Printer) printIfTail(s *ast.Stmt) {
	p.printBlockBody(s.If.Then)
	if !s.If.Else.IsValid() {
		p.line("}")
		return
	}
	elseStmt := p.b.Stmt(s.If.Else)
	if elseStmt.Kind == ast.StmtIf {
		p.line("} else if (%s) {", p.exprString(elseStmt.If.Cond, precLowest))
		p.printIfTail(elseStmt)
		return
	}
	p.line("} else {")
	p.printBlockBody(s.If.Else)
	p.line("}")
}

func (p *Printer) printFor(s *ast.Stmt) {
	init := ""
	if s.For.Init.IsValid() {
		init = strings.TrimSuffix(strings.TrimSpace(Stmt(p.b, s.For.Init, Options{Indent: p.indent})), ";")
	}
	cond := ""
	if s.For.Cond.IsValid() {
		cond = p.exprString(s.For.Cond, precLowest)
	}
	update := ""
	if s.For.Update.IsValid() {
		update = p.exprString(s.For.Update, precLowest)
	}
	p.line("for (%s; %s; %s) {", init, cond, update)
	p.printBlockBody(s.For.Body)
	p.line("}")
}

func (p *Printer) printSwitch(s *ast.Stmt) {
	p.line("switch (%s) {", p.exprString(s.Switch.Selector, precLowest))
	for _, clause := range s.Switch.Clauses {
		if clause.IsDefault {
			p.line("default:")
		} else {
			p.line("case %s:", p.exprString(clause.Value, precLowest))
		}
		p.depth++
		for _, child := range clause.Stmts {
			p.printStmt(child)
		}
		p.depth--
	}
	p.line("}")
}

func (p *Printer) printTry(s *ast.Stmt) {
	p.line("try {")
	p.printBlockBody(s.Try.Body)
	if s.Try.Catch.IsValid() {
		p.line("} catch (%s) {", p.b.Strings.MustLookup(s.Try.CatchName))
		p.printBlockBody(s.Try.Catch)
	}
	if s.Try.Finally.IsValid() {
		p.line("} finally {")
		p.printBlockBody(s.Try.Finally)
	}
	p.line("}")
}
