package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for one kind of diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber          Code = 1004
	LexBadEscape          Code = 1005

	// Syntactic
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectExpression  Code = 2004
	SynUnclosedDelimiter Code = 2005
	SynBadForHeader      Code = 2006
	SynTryWithoutHandler Code = 2007
	SynDuplicateDefault  Code = 2008
	SynBadAssignTarget   Code = 2009
	SynUnsupportedForm   Code = 2010
	SynDuplicateLabel    Code = 2011
	SynUnknownLabel      Code = 2012
	SynBadLabelTarget    Code = 2013

	// Lowering (structural misuse of suspension points)
	LowMixedSuspension  Code = 4001
	LowSuspendInFinally Code = 4002
	LowSuspendInNested  Code = 4003

	// I/O
	IOLoadFileError Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexBadEscape:                "Invalid escape sequence",

	SynUnexpectedToken:   "Unexpected token",
	SynExpectSemicolon:   "Expected ';'",
	SynExpectIdentifier:  "Expected identifier",
	SynExpectExpression:  "Expected expression",
	SynUnclosedDelimiter: "Unclosed delimiter",
	SynBadForHeader:      "Malformed for-statement header",
	SynTryWithoutHandler: "try statement requires catch or finally",
	SynDuplicateDefault:  "Duplicate default clause",
	SynBadAssignTarget:   "Invalid assignment target",
	SynUnsupportedForm:   "Construct not supported by the legacy dialect",
	SynDuplicateLabel:    "Duplicate label",
	SynUnknownLabel:      "Unknown label",
	SynBadLabelTarget:    "Label does not name a valid branch target",

	LowMixedSuspension:  "Function body mixes yield and await suspension",
	LowSuspendInFinally: "Suspension point inside a finally block",
	LowSuspendInNested:  "Suspension point inside a nested function",

	IOLoadFileError: "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
