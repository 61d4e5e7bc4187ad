// Package token defines lexical token kinds for the Riff language.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Keywords are recognized case-sensitively by the lexer; every other
//     identifier-shaped lexeme is Ident.
package token

import (
	"riff/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, string or null literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case NumberLit, StringLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwVar, KwFunction, KwIf, KwElse, KwWhile, KwDo, KwFor, KwIn,
		KwSwitch, KwCase, KwDefault, KwBreak, KwContinue, KwReturn,
		KwThrow, KwTry, KwCatch, KwFinally, KwYield, KwAwait, KwTypeof,
		KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
