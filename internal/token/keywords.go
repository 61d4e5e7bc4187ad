package token

var keywords = map[string]Kind{
	"var":      KwVar,
	"function": KwFunction,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"for":      KwFor,
	"in":       KwIn,
	"switch":   KwSwitch,
	"case":     KwCase,
	"default":  KwDefault,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"throw":    KwThrow,
	"try":      KwTry,
	"catch":    KwCatch,
	"finally":  KwFinally,
	"yield":    KwYield,
	"await":    KwAwait,
	"typeof":   KwTypeof,
	"true":     KwTrue,
	"false":    KwFalse,
	"null":     KwNull,
}

// LookupKeyword returns the keyword kind for a lexeme, if it is one.
// Matching is case-sensitive.
func LookupKeyword(lexeme string) (Kind, bool) {
	k, ok := keywords[lexeme]
	return k, ok
}
