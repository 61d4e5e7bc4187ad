package ast

import (
	"riff/internal/source"
)

// Func is a top-level function declaration.
type Func struct {
	Name   source.StringID
	Params []source.StringID
	Body   StmtID // always a block
	Span   source.Span
}

// File is one parsed source file: an ordered list of function declarations.
type File struct {
	Span  source.Span
	Funcs []FuncID
}
