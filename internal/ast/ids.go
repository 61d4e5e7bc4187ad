package ast

type (
	// StmtID identifies a statement node in the arena.
	StmtID uint32
	// ExprID identifies an expression node in the arena.
	ExprID uint32
	// FuncID identifies a top-level function declaration.
	FuncID uint32
	// FileID identifies one parsed file.
	FileID uint32
)

const (
	NoStmtID StmtID = 0
	NoExprID ExprID = 0
	NoFuncID FuncID = 0
	NoFileID FileID = 0
)

func (id StmtID) IsValid() bool { return id != NoStmtID }
func (id ExprID) IsValid() bool { return id != NoExprID }
func (id FuncID) IsValid() bool { return id != NoFuncID }
func (id FileID) IsValid() bool { return id != NoFileID }
