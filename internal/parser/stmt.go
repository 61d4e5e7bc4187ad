package parser

import (
	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/source"
	"riff/internal/token"
)

func (p *Parser) parseBlock() (ast.StmtID, bool) {
	openTok, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoStmtID, false
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		s, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, s)
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtBlock,
		Span:  openTok.Span.Cover(closeTok.Span),
		Block: ast.BlockStmt{Stmts: stmts},
	}), true
}

//nolint:gocyclo // one branch per statement kind
func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwVar:
		return p.parseVarStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwSwitch:
		return p.parseSwitchStmt()
	case token.KwTry:
		return p.parseTryStmt()
	case token.KwBreak, token.KwContinue:
		return p.parseBranchStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwThrow:
		return p.parseThrowStmt()
	case token.KwYield:
		return p.parseYieldStmt()
	case token.KwAwait:
		return p.parseAwaitStmt(source.NoStringID, false, p.peek().Span)
	case token.KwFunction:
		// Nested declarations are outside the legacy dialect; function
		// expressions remain available inside expressions.
		p.report(diag.SynUnsupportedForm, p.peek().Span, "nested function declarations are not supported; use a function expression")
		p.resyncFunc()
		return ast.NoStmtID, false
	case token.Semicolon:
		semi := p.advance()
		return p.arenas.NewStmt(ast.Stmt{Kind: ast.StmtBlock, Span: semi.Span}), true
	case token.Ident:
		if p.peekAt(1).Kind == token.Colon {
			return p.parseLabeledStmt()
		}
		if p.peekAt(1).Kind == token.Assign && p.peekAt(2).Kind == token.KwAwait {
			identTok := p.advance()
			p.advance() // =
			return p.parseAwaitStmt(p.arenas.Strings.Intern(identTok.Text), false, identTok.Span)
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVarStmt() (ast.StmtID, bool) {
	varTok := p.advance()

	// `var x = await e;` is the declaring form of the await statement.
	if p.peekAt(1).Kind == token.Assign && p.peekAt(2).Kind == token.KwAwait {
		identTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
		if !ok {
			return ast.NoStmtID, false
		}
		p.advance() // =
		return p.parseAwaitStmt(p.arenas.Strings.Intern(identTok.Text), true, varTok.Span)
	}

	var decls []ast.VarDecl
	for {
		identTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
		if !ok {
			return ast.NoStmtID, false
		}
		decl := ast.VarDecl{Name: p.arenas.Strings.Intern(identTok.Text)}
		if p.eat(token.Assign) {
			init, ok := p.parseAssignExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			decl.Init = init
		}
		decls = append(decls, decl)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after variable declaration"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtVar,
		Span: varTok.Span.Cover(p.lastSpan),
		Var:  ast.VarStmt{Decls: decls},
	}), true
}

func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseParenExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseStmt()
	if !ok {
		return ast.NoStmtID, false
	}
	elseStmt := ast.NoStmtID
	if p.eat(token.KwElse) {
		elseStmt, ok = p.parseStmt()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtIf,
		Span: ifTok.Span.Cover(p.lastSpan),
		If:   ast.IfStmt{Cond: cond, Then: then, Else: elseStmt},
	}), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseParenExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	p.loopDepth++
	body, ok := p.parseStmt()
	p.loopDepth--
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtWhile,
		Span:  whileTok.Span.Cover(p.lastSpan),
		While: ast.WhileStmt{Cond: cond, Body: body},
	}), true
}

func (p *Parser) parseDoWhileStmt() (ast.StmtID, bool) {
	doTok := p.advance()
	p.loopDepth++
	body, ok := p.parseStmt()
	p.loopDepth--
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
		return ast.NoStmtID, false
	}
	cond, ok := p.parseParenExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after do-while"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtDoWhile,
		Span:  doTok.Span.Cover(p.lastSpan),
		While: ast.WhileStmt{Cond: cond, Body: body},
	}), true
}

func (p *Parser) parseForStmt() (ast.StmtID, bool) {
	forTok := p.advance()
	if _, ok := p.expect(token.LParen, diag.SynBadForHeader, "expected '(' after 'for'"); !ok {
		return ast.NoStmtID, false
	}

	// for-in: `for (x in o)` or `for (var x in o)`.
	if (p.at(token.Ident) && p.peekAt(1).Kind == token.KwIn) ||
		(p.at(token.KwVar) && p.peekAt(1).Kind == token.Ident && p.peekAt(2).Kind == token.KwIn) {
		decl := p.eat(token.KwVar)
		identTok := p.advance()
		p.advance() // in
		object, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynBadForHeader, "expected ')' after for-in header"); !ok {
			return ast.NoStmtID, false
		}
		p.loopDepth++
		body, ok := p.parseStmt()
		p.loopDepth--
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.NewStmt(ast.Stmt{
			Kind: ast.StmtForIn,
			Span: forTok.Span.Cover(p.lastSpan),
			ForIn: ast.ForInStmt{
				Decl:   decl,
				Name:   p.arenas.Strings.Intern(identTok.Text),
				Object: object,
				Body:   body,
			},
		}), true
	}

	var header ast.ForStmt
	if !p.at(token.Semicolon) {
		init, ok := p.parseForInit()
		if !ok {
			return ast.NoStmtID, false
		}
		header.Init = init
	} else {
		p.advance()
	}
	if !p.at(token.Semicolon) {
		cond, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		header.Cond = cond
	}
	if _, ok := p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for header"); !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.RParen) {
		update, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		header.Update = update
	}
	if _, ok := p.expect(token.RParen, diag.SynBadForHeader, "expected ')' after for header"); !ok {
		return ast.NoStmtID, false
	}
	p.loopDepth++
	body, ok := p.parseStmt()
	p.loopDepth--
	if !ok {
		return ast.NoStmtID, false
	}
	header.Body = body
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtFor,
		Span: forTok.Span.Cover(p.lastSpan),
		For:  header,
	}), true
}

// parseForInit parses the init clause of a classic for header, including
// its trailing ';'.
func (p *Parser) parseForInit() (ast.StmtID, bool) {
	if p.at(token.KwVar) {
		return p.parseVarStmt()
	}
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' after for init"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtExpr,
		Span: p.arenas.Expr(expr).Span,
		Expr: ast.ExprStmt{Expr: expr},
	}), true
}

func (p *Parser) parseSwitchStmt() (ast.StmtID, bool) {
	switchTok := p.advance()
	selector, ok := p.parseParenExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open switch body"); !ok {
		return ast.NoStmtID, false
	}

	var clauses []ast.SwitchClause
	sawDefault := false
	p.switchDepth++
	defer func() { p.switchDepth-- }()
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		clauseStart := p.peek().Span
		clause := ast.SwitchClause{}
		switch {
		case p.eat(token.KwCase):
			value, ok := p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			clause.Value = value
		case p.eat(token.KwDefault):
			if sawDefault {
				p.report(diag.SynDuplicateDefault, clauseStart, "duplicate default clause")
			}
			sawDefault = true
			clause.IsDefault = true
		default:
			p.report(diag.SynUnexpectedToken, p.peek().Span, "expected 'case' or 'default'")
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after clause"); !ok {
			return ast.NoStmtID, false
		}
		for !p.at(token.KwCase) && !p.at(token.KwDefault) && !p.at(token.RBrace) && !p.at(token.EOF) {
			s, ok := p.parseStmt()
			if !ok {
				p.resyncStmt()
				continue
			}
			clause.Stmts = append(clause.Stmts, s)
		}
		clause.Span = clauseStart.Cover(p.lastSpan)
		clauses = append(clauses, clause)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close switch"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:   ast.StmtSwitch,
		Span:   switchTok.Span.Cover(p.lastSpan),
		Switch: ast.SwitchStmt{Selector: selector, Clauses: clauses},
	}), true
}

func (p *Parser) parseTryStmt() (ast.StmtID, bool) {
	tryTok := p.advance()
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	try := ast.TryStmt{Body: body}
	if p.eat(token.KwCatch) {
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'catch'"); !ok {
			return ast.NoStmtID, false
		}
		nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected catch parameter")
		if !ok {
			return ast.NoStmtID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after catch parameter"); !ok {
			return ast.NoStmtID, false
		}
		try.CatchName = p.arenas.Strings.Intern(nameTok.Text)
		try.Catch, ok = p.parseBlock()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	if p.eat(token.KwFinally) {
		try.Finally, ok = p.parseBlock()
		if !ok {
			return ast.NoStmtID, false
		}
	}
	if !try.Catch.IsValid() && !try.Finally.IsValid() {
		p.report(diag.SynTryWithoutHandler, tryTok.Span, "try statement requires catch or finally")
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtTry,
		Span: tryTok.Span.Cover(p.lastSpan),
		Try:  try,
	}), true
}

func (p *Parser) parseBranchStmt() (ast.StmtID, bool) {
	kwTok := p.advance()
	kind := ast.StmtBreak
	if kwTok.Kind == token.KwContinue {
		kind = ast.StmtContinue
	}
	label := source.NoStringID
	if p.at(token.Ident) {
		labelTok := p.advance()
		label = p.arenas.Strings.Intern(labelTok.Text)
		target, found := p.findLabel(label)
		switch {
		case !found:
			p.report(diag.SynUnknownLabel, labelTok.Span, "unknown label '"+labelTok.Text+"'")
		case kind == ast.StmtContinue && target != labelLoop:
			p.report(diag.SynBadLabelTarget, labelTok.Span, "label '"+labelTok.Text+"' does not name a loop")
		case kind == ast.StmtBreak && target == labelOther:
			p.report(diag.SynBadLabelTarget, labelTok.Span, "label '"+labelTok.Text+"' does not name a loop, switch, or block")
		}
	} else if kind == ast.StmtBreak && p.loopDepth == 0 && p.switchDepth == 0 {
		p.report(diag.SynUnexpectedToken, kwTok.Span, "'break' outside loop or switch")
	} else if kind == ast.StmtContinue && p.loopDepth == 0 {
		p.report(diag.SynUnexpectedToken, kwTok.Span, "'continue' outside loop")
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:   kind,
		Span:   kwTok.Span.Cover(p.lastSpan),
		Branch: ast.BranchStmt{Label: label},
	}), true
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()
	ret := ast.ReturnStmt{}
	if !p.at(token.Semicolon) {
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		ret.Value = value
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:   ast.StmtReturn,
		Span:   retTok.Span.Cover(p.lastSpan),
		Return: ret,
	}), true
}

func (p *Parser) parseThrowStmt() (ast.StmtID, bool) {
	throwTok := p.advance()
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after throw"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtThrow,
		Span:  throwTok.Span.Cover(p.lastSpan),
		Throw: ast.ThrowStmt{Value: value},
	}), true
}

func (p *Parser) parseYieldStmt() (ast.StmtID, bool) {
	yieldTok := p.advance()
	stmt := ast.YieldStmt{}
	if !p.at(token.Semicolon) {
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		stmt.Value = value
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after yield"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtYield,
		Span:  yieldTok.Span.Cover(p.lastSpan),
		Yield: stmt,
	}), true
}

// parseAwaitStmt parses `await expr;` with the 'await' keyword at the
// current position; dst names an optional destination already consumed,
// decl whether a var keyword introduced it.
func (p *Parser) parseAwaitStmt(dst source.StringID, decl bool, startSpan source.Span) (ast.StmtID, bool) {
	p.advance() // await
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after await"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:  ast.StmtAwait,
		Span:  startSpan.Cover(p.lastSpan),
		Await: ast.AwaitStmt{Dst: dst, Decl: decl, Value: value},
	}), true
}

// peekLabelTarget classifies the statement the upcoming label names,
// looking through chained labels so `a: b: while` marks both as loops.
func (p *Parser) peekLabelTarget() labelTarget {
	n := 0
	for p.peekAt(n).Kind == token.Ident && p.peekAt(n+1).Kind == token.Colon {
		n += 2
	}
	switch p.peekAt(n).Kind {
	case token.KwWhile, token.KwDo, token.KwFor:
		return labelLoop
	case token.KwSwitch:
		return labelSwitch
	case token.LBrace:
		return labelBlock
	}
	return labelOther
}

func (p *Parser) parseLabeledStmt() (ast.StmtID, bool) {
	target := p.peekLabelTarget()
	labelTok := p.advance()
	p.advance() // :
	label := p.arenas.Strings.Intern(labelTok.Text)
	if _, dup := p.findLabel(label); dup {
		p.report(diag.SynDuplicateLabel, labelTok.Span, "duplicate label '"+labelTok.Text+"'")
	}
	p.labels = append(p.labels, labelEntry{name: label, target: target})
	stmt, ok := p.parseStmt()
	p.labels = p.labels[:len(p.labels)-1]
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind:    ast.StmtLabeled,
		Span:    labelTok.Span.Cover(p.lastSpan),
		Labeled: ast.LabeledStmt{Label: label, Stmt: stmt},
	}), true
}

func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.Stmt{
		Kind: ast.StmtExpr,
		Span: p.arenas.Expr(expr).Span.Cover(p.lastSpan),
		Expr: ast.ExprStmt{Expr: expr},
	}), true
}

// resyncFunc skips a balanced brace body after an unsupported declaration.
func (p *Parser) resyncFunc() {
	for !p.at(token.EOF) && !p.at(token.LBrace) {
		p.advance()
	}
	depth := 0
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
