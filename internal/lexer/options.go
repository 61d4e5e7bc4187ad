package lexer

import (
	"riff/internal/diag"
)

// Options configures a Lexer.
type Options struct {
	// Reporter receives lexical diagnostics. May be nil.
	Reporter diag.Reporter
}
