package parser

import (
	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/token"
)

func (p *Parser) parseParenExpr() (ast.ExprID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return ast.NoExprID, false
	}
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
		return ast.NoExprID, false
	}
	return expr, true
}

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseAssignExpr()
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.Assign:        ast.AssignPlain,
	token.PlusAssign:    ast.AssignAdd,
	token.MinusAssign:   ast.AssignSub,
	token.StarAssign:    ast.AssignMul,
	token.SlashAssign:   ast.AssignDiv,
	token.PercentAssign: ast.AssignMod,
}

func (p *Parser) parseAssignExpr() (ast.ExprID, bool) {
	left, ok := p.parseCondExpr()
	if !ok {
		return ast.NoExprID, false
	}
	op, isAssign := assignOps[p.peek().Kind]
	if !isAssign {
		return left, true
	}
	opTok := p.advance()
	if !isAssignTarget(p.arenas.Expr(left).Kind) {
		p.report(diag.SynBadAssignTarget, p.arenas.Expr(left).Span, "invalid assignment target")
	}
	value, ok := p.parseAssignExpr() // right-associative
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind:   ast.ExprAssign,
		Span:   p.arenas.Expr(left).Span.Cover(opTok.Span).Cover(p.arenas.Expr(value).Span),
		Assign: ast.AssignExpr{Op: op, Target: left, Value: value},
	}), true
}

func isAssignTarget(kind ast.ExprKind) bool {
	switch kind {
	case ast.ExprIdent, ast.ExprMember, ast.ExprIndex:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCondExpr() (ast.ExprID, bool) {
	test, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoExprID, false
	}
	if !p.eat(token.Question) {
		return test, true
	}
	then, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional"); !ok {
		return ast.NoExprID, false
	}
	elseExpr, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind: ast.ExprCond,
		Span: p.arenas.Expr(test).Span.Cover(p.arenas.Expr(elseExpr).Span),
		Cond: ast.CondExpr{Test: test, Then: then, Else: elseExpr},
	}), true
}

type binOpInfo struct {
	op   ast.BinaryOp
	prec int
}

// Precedence climbs from || (1) to * / % (8).
var binOps = map[token.Kind]binOpInfo{
	token.OrOr:     {ast.BinOr, 1},
	token.AndAnd:   {ast.BinAnd, 2},
	token.Pipe:     {ast.BinBitOr, 3},
	token.Caret:    {ast.BinBitXor, 3},
	token.Amp:      {ast.BinBitAnd, 3},
	token.EqEq:     {ast.BinEq, 4},
	token.EqEqEq:   {ast.BinStrictEq, 4},
	token.BangEq:   {ast.BinNeq, 4},
	token.BangEqEq: {ast.BinStrictNeq, 4},
	token.Lt:       {ast.BinLt, 5},
	token.LtEq:     {ast.BinLtEq, 5},
	token.Gt:       {ast.BinGt, 5},
	token.GtEq:     {ast.BinGtEq, 5},
	token.Plus:     {ast.BinAdd, 6},
	token.Minus:    {ast.BinSub, 6},
	token.Star:     {ast.BinMul, 7},
	token.Slash:    {ast.BinDiv, 7},
	token.Percent:  {ast.BinMod, 7},
}

func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		info, isOp := binOps[p.peek().Kind]
		if !isOp || info.prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(info.prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		left = p.arenas.NewExpr(ast.Expr{
			Kind:   ast.ExprBinary,
			Span:   p.arenas.Expr(left).Span.Cover(p.arenas.Expr(right).Span),
			Binary: ast.BinaryExpr{Op: info.op, Left: left, Right: right},
		})
	}
}

func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	var op ast.UnaryOp
	switch p.peek().Kind {
	case token.Bang:
		op = ast.UnaryNot
	case token.Minus:
		op = ast.UnaryNeg
	case token.Tilde:
		op = ast.UnaryBitNot
	case token.KwTypeof:
		op = ast.UnaryTypeof
	default:
		return p.parsePostfixExpr()
	}
	opTok := p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind:  ast.ExprUnary,
		Span:  opTok.Span.Cover(p.arenas.Expr(operand).Span),
		Unary: ast.UnaryExpr{Op: op, Operand: operand},
	}), true
}

func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		switch p.peek().Kind {
		case token.LParen:
			p.advance()
			var args []ast.ExprID
			for !p.at(token.RParen) {
				arg, ok := p.parseAssignExpr()
				if !ok {
					return ast.NoExprID, false
				}
				args = append(args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			closeTok, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after arguments")
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.NewExpr(ast.Expr{
				Kind: ast.ExprCall,
				Span: p.arenas.Expr(expr).Span.Cover(closeTok.Span),
				Call: ast.CallExpr{Callee: expr, Args: args},
			})
		case token.Dot:
			p.advance()
			nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected property name after '.'")
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.NewExpr(ast.Expr{
				Kind:   ast.ExprMember,
				Span:   p.arenas.Expr(expr).Span.Cover(nameTok.Span),
				Member: ast.MemberExpr{Object: expr, Name: p.arenas.Strings.Intern(nameTok.Text)},
			})
		case token.LBracket:
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'")
			if !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.NewExpr(ast.Expr{
				Kind:  ast.ExprIndex,
				Span:  p.arenas.Expr(expr).Span.Cover(closeTok.Span),
				Index: ast.IndexExpr{Object: expr, Index: index},
			})
		default:
			return expr, true
		}
	}
}

//nolint:gocyclo // one branch per primary form
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.NewIdent(tok.Span, p.arenas.Strings.Intern(tok.Text)), true
	case token.NumberLit:
		p.advance()
		return p.arenas.NewExpr(ast.Expr{Kind: ast.ExprNumber, Span: tok.Span, Number: tok.Text}), true
	case token.StringLit:
		p.advance()
		return p.arenas.NewExpr(ast.Expr{Kind: ast.ExprString, Span: tok.Span, Str: tok.Text}), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.NewExpr(ast.Expr{Kind: ast.ExprBool, Span: tok.Span, Bool: tok.Kind == token.KwTrue}), true
	case token.KwNull:
		p.advance()
		return p.arenas.NewExpr(ast.Expr{Kind: ast.ExprNull, Span: tok.Span}), true
	case token.LParen:
		p.advance()
		expr, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
			return ast.NoExprID, false
		}
		return expr, true
	case token.LBracket:
		return p.parseArrayLit()
	case token.LBrace:
		return p.parseObjectLit()
	case token.KwFunction:
		return p.parseFuncExpr()
	default:
		p.report(diag.SynExpectExpression, tok.Span, "expected expression")
		return ast.NoExprID, false
	}
}

func (p *Parser) parseArrayLit() (ast.ExprID, bool) {
	openTok := p.advance()
	var elems []ast.ExprID
	for !p.at(token.RBracket) {
		elem, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, elem)
		if !p.eat(token.Comma) {
			break
		}
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close array")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind:  ast.ExprArray,
		Span:  openTok.Span.Cover(closeTok.Span),
		Array: ast.ArrayExpr{Elems: elems},
	}), true
}

func (p *Parser) parseObjectLit() (ast.ExprID, bool) {
	openTok := p.advance()
	var fields []ast.ObjectField
	for !p.at(token.RBrace) {
		var nameTok token.Token
		switch {
		case p.at(token.Ident), p.peek().IsKeyword():
			nameTok = p.advance()
		case p.at(token.StringLit):
			nameTok = p.advance()
		default:
			p.report(diag.SynExpectIdentifier, p.peek().Span, "expected property name")
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after property name"); !ok {
			return ast.NoExprID, false
		}
		value, ok := p.parseAssignExpr()
		if !ok {
			return ast.NoExprID, false
		}
		fields = append(fields, ast.ObjectField{
			Name:  p.arenas.Strings.Intern(nameTok.Text),
			Value: value,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close object")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind:   ast.ExprObject,
		Span:   openTok.Span.Cover(closeTok.Span),
		Object: ast.ObjectExpr{Fields: fields},
	}), true
}

func (p *Parser) parseFuncExpr() (ast.ExprID, bool) {
	fnTok := p.advance() // function
	// Optional name is accepted and dropped; the legacy dialect only needs
	// anonymous function expressions.
	if p.at(token.Ident) {
		p.advance()
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoExprID, false
	}
	savedLoop, savedSwitch := p.loopDepth, p.switchDepth
	savedLabels := p.labels
	p.loopDepth, p.switchDepth, p.labels = 0, 0, nil
	body, ok := p.parseBlock()
	p.loopDepth, p.switchDepth, p.labels = savedLoop, savedSwitch, savedLabels
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.Expr{
		Kind: ast.ExprFunc,
		Span: fnTok.Span.Cover(p.lastSpan),
		Func: ast.FuncExpr{Params: params, Body: body},
	}), true
}
