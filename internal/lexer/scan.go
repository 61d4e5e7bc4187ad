package lexer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"riff/internal/diag"
	"riff/internal/token"
)

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Off
	for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	text := lx.cursor.Text(start)
	kind := token.Ident
	if kw, ok := token.LookupKeyword(text); ok {
		kind = kw
	}
	return token.Token{Kind: kind, Span: lx.cursor.Span(start), Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Off
	for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	// A digit run directly followed by identifier characters is malformed.
	if isIdentStart(lx.cursor.Peek()) {
		for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		span := lx.cursor.Span(start)
		lx.report(diag.LexBadNumber, span, "malformed number literal")
		return token.Token{Kind: token.Invalid, Span: span, Text: lx.cursor.Text(start)}
	}
	return token.Token{Kind: token.NumberLit, Span: lx.cursor.Span(start), Text: lx.cursor.Text(start)}
}

func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Off
	quote := lx.cursor.Peek()
	lx.cursor.Bump()

	var b strings.Builder
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			span := lx.cursor.Span(start)
			lx.report(diag.LexUnterminatedString, span, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: span, Text: lx.cursor.Text(start)}
		}
		ch := lx.cursor.Peek()
		if ch == quote {
			lx.cursor.Bump()
			break
		}
		if ch == '\\' {
			lx.cursor.Bump()
			esc := lx.cursor.Peek()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(esc)
			case '0':
				b.WriteByte(0)
			default:
				lx.report(diag.LexBadEscape, lx.cursor.Span(lx.cursor.Off), "invalid escape sequence")
				b.WriteByte(esc)
			}
			lx.cursor.Bump()
			continue
		}
		b.WriteByte(ch)
		lx.cursor.Bump()
	}

	// Literal payloads are NFC-normalized so identical-looking strings
	// compare equal after lowering.
	text := norm.NFC.String(b.String())
	return token.Token{Kind: token.StringLit, Span: lx.cursor.Span(start), Text: text}
}

// twoByteOps maps two-byte operator lexemes. Longer forms are handled first
// in scanOperatorOrPunct.
var singleOps = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '=': token.Assign, '!': token.Bang,
	'<': token.Lt, '>': token.Gt, '&': token.Amp, '|': token.Pipe,
	'^': token.Caret, '~': token.Tilde, '?': token.Question, ':': token.Colon,
	';': token.Semicolon, ',': token.Comma, '.': token.Dot,
	'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Off
	b0 := lx.cursor.Peek()
	b1 := lx.cursor.PeekAt(1)
	b2 := lx.cursor.PeekAt(2)

	bump := func(n int, kind token.Kind) token.Token {
		for i := 0; i < n; i++ {
			lx.cursor.Bump()
		}
		return token.Token{Kind: kind, Span: lx.cursor.Span(start), Text: lx.cursor.Text(start)}
	}

	switch {
	case b0 == '=' && b1 == '=' && b2 == '=':
		return bump(3, token.EqEqEq)
	case b0 == '!' && b1 == '=' && b2 == '=':
		return bump(3, token.BangEqEq)
	case b0 == '=' && b1 == '=':
		return bump(2, token.EqEq)
	case b0 == '!' && b1 == '=':
		return bump(2, token.BangEq)
	case b0 == '<' && b1 == '=':
		return bump(2, token.LtEq)
	case b0 == '>' && b1 == '=':
		return bump(2, token.GtEq)
	case b0 == '&' && b1 == '&':
		return bump(2, token.AndAnd)
	case b0 == '|' && b1 == '|':
		return bump(2, token.OrOr)
	case b0 == '+' && b1 == '=':
		return bump(2, token.PlusAssign)
	case b0 == '-' && b1 == '=':
		return bump(2, token.MinusAssign)
	case b0 == '*' && b1 == '=':
		return bump(2, token.StarAssign)
	case b0 == '/' && b1 == '=':
		return bump(2, token.SlashAssign)
	case b0 == '%' && b1 == '=':
		return bump(2, token.PercentAssign)
	}

	if kind, ok := singleOps[b0]; ok {
		return bump(1, kind)
	}

	lx.cursor.Bump()
	span := lx.cursor.Span(start)
	lx.report(diag.LexUnknownChar, span, "unknown character")
	return token.Token{Kind: token.Invalid, Span: span, Text: lx.cursor.Text(start)}
}
