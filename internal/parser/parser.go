// Package parser implements a conventional recursive-descent parser for
// Riff source files. It produces the closed node set in internal/ast and
// reports syntax problems through a diag.Reporter; it never panics on
// malformed input.
package parser

import (
	"fmt"

	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/lexer"
	"riff/internal/source"
	"riff/internal/token"
)

type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
}

type Result struct {
	File ast.FileID
	Bag  *diag.Bag
}

// Parser holds the state for one file.
type Parser struct {
	toks     []token.Token
	pos      int
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	errors   uint
	lastSpan source.Span

	// Static label/branch context, so lowering can assume well-formed
	// break/continue targets.
	labels      []labelEntry
	loopDepth   int
	switchDepth int
}

// labelTarget classifies the statement a label names. Branches are only
// resolvable against loops, switches, and plain blocks; anything else must
// be rejected here so lowering never sees a dangling branch.
type labelTarget uint8

const (
	labelOther labelTarget = iota
	labelLoop
	labelSwitch
	labelBlock
)

type labelEntry struct {
	name   source.StringID
	target labelTarget
}

// ParseFile is the entry point for one file. The lexer must be positioned
// at the start of the file.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	toks := lx.Tokens()
	p := Parser{
		toks:   toks,
		arenas: arenas,
		opts:   opts,
	}
	p.file = arenas.NewFile(p.peek().Span)
	p.parseFile()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{File: p.file, Bag: bag}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.lastSpan = tok.Span
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.report(code, p.peek().Span, msg)
	return token.Token{}, false
}

func (p *Parser) report(code diag.Code, span source.Span, msg string) {
	p.errors++
	if p.opts.Reporter != nil && (p.opts.MaxErrors == 0 || p.errors <= p.opts.MaxErrors) {
		p.opts.Reporter.Report(code, diag.SevError, span, msg, nil)
	}
}

// resyncStmt skips to a plausible statement boundary after a syntax error.
func (p *Parser) resyncStmt() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace, token.KwFunction, token.KwVar, token.KwIf, token.KwWhile,
			token.KwDo, token.KwFor, token.KwSwitch, token.KwTry, token.KwReturn,
			token.KwBreak, token.KwContinue, token.KwThrow, token.KwYield, token.KwAwait:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseFile() {
	startSpan := p.peek().Span
	for !p.at(token.EOF) {
		if !p.at(token.KwFunction) {
			p.report(diag.SynUnexpectedToken, p.peek().Span,
				fmt.Sprintf("expected 'function' at top level, found '%s'", p.peek().Kind))
			p.advance()
			continue
		}
		fnID, ok := p.parseFuncDecl()
		if !ok {
			p.resyncStmt()
			continue
		}
		p.arenas.PushFunc(p.file, fnID)
	}
	p.arenas.File(p.file).Span = startSpan.Cover(p.peek().Span)
}

func (p *Parser) parseFuncDecl() (ast.FuncID, bool) {
	fnTok := p.advance() // function
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return ast.NoFuncID, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoFuncID, false
	}
	if !p.at(token.LBrace) {
		p.report(diag.SynUnexpectedToken, p.peek().Span, "expected '{' to start function body")
		return ast.NoFuncID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoFuncID, false
	}
	return p.arenas.NewFunc(ast.Func{
		Name:   p.arenas.Strings.Intern(nameTok.Text),
		Params: params,
		Body:   body,
		Span:   fnTok.Span.Cover(p.lastSpan),
	}), true
}

func (p *Parser) parseParams() ([]source.StringID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var params []source.StringID
	for !p.at(token.RParen) {
		tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return nil, false
		}
		params = append(params, p.arenas.Strings.Intern(tok.Text))
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after parameters"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) findLabel(name source.StringID) (labelTarget, bool) {
	for _, l := range p.labels {
		if l.name == name {
			return l.target, true
		}
	}
	return labelOther, false
}
