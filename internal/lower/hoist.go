package lower

import (
	"sort"

	"riff/internal/ast"
	"riff/internal/machine"
	"riff/internal/names"
	"riff/internal/rewrite"
)

// hoistStateBodies lifts every var declaration out of the state bodies.
// Each turn of the dispatch loop is a separate re-entry into the frame, so
// a local declared during one turn must survive into the next. Returns
// the hoisted names in first-seen order.
func (e *emitter) hoistStateBodies() []string {
	b := e.b()
	var order []string
	seen := make(map[string]struct{})
	collect := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	sort.Slice(e.m.States, func(i, j int) bool { return e.m.States[i].ID < e.m.States[j].ID })
	for i := range e.m.States {
		st := &e.m.States[i]
		var body []ast.StmtID
		for _, sid := range st.Body {
			next := hoistVars(b, sid, collect)
			if isEmptyBlock(b, next) {
				continue
			}
			body = append(body, next)
		}
		st.Body = body
	}

	for i := range e.regions {
		r := &e.regions[i]
		if r.Kind == machine.RegionCatch && r.Handler.IsValid() {
			collect(b.Strings.MustLookup(r.Handler))
		}
	}
	for _, t := range e.s.temps {
		collect(t)
	}
	return order
}

// hoistVars rewrites one statement tree: var statements become plain
// assignments, declaring for-in loops lose their var, and a for header
// whose init expanded into a block gets that block pulled in front.
// Function expression bodies keep their own declarations.
func hoistVars(b *ast.Builder, root ast.StmtID, collect func(string)) ast.StmtID {
	return rewrite.Stmts(b, root, func(id ast.StmtID) ast.StmtID {
		s := b.Stmt(id)
		switch s.Kind {
		case ast.StmtVar:
			var assigns []ast.StmtID
			for _, d := range s.Var.Decls {
				collect(b.Strings.MustLookup(d.Name))
				if d.Init.IsValid() {
					assigns = append(assigns, b.NewAssignStmt(b.NewIdent(s.Span, d.Name), d.Init))
				}
			}
			if len(assigns) == 1 {
				return assigns[0]
			}
			return b.NewBlock(assigns...)
		case ast.StmtForIn:
			if !s.ForIn.Decl {
				return id
			}
			collect(b.Strings.MustLookup(s.ForIn.Name))
			clone := *s
			clone.ForIn.Decl = false
			return b.NewStmt(clone)
		case ast.StmtFor:
			// A multi-declaration init expands into a block; the header
			// cannot hold one, so it moves in front of the loop.
			if !s.For.Init.IsValid() || b.Stmt(s.For.Init).Kind != ast.StmtBlock {
				return id
			}
			lead := b.Stmt(s.For.Init).Block.Stmts
			clone := *s
			clone.For.Init = ast.NoStmtID
			return b.NewBlock(append(append([]ast.StmtID(nil), lead...), b.NewStmt(clone))...)
		default:
			return id
		}
	})
}

func isEmptyBlock(b *ast.Builder, id ast.StmtID) bool {
	s := b.Stmt(id)
	return s.Kind == ast.StmtBlock && len(s.Block.Stmts) == 0
}

// hoistedDecls assembles the single hoisted var statement: user locals,
// loop temporaries, then the reserved machine slots actually in use.
func (e *emitter) hoistedDecls(locals []string) []ast.VarDecl {
	b := e.b()
	var decls []ast.VarDecl
	for _, name := range locals {
		decls = append(decls, ast.VarDecl{Name: b.Strings.Intern(name)})
	}

	decls = append(decls, ast.VarDecl{
		Name: b.Strings.Intern(e.s.slot(names.StateSlot)),
		Init: b.NewNumberInt(int64(e.m.Start)),
	})
	for _, base := range []string{names.SentSlot, names.ErrSlot, names.RetSlot} {
		if got, ok := e.s.slots[base]; ok {
			decls = append(decls, ast.VarDecl{Name: b.Strings.Intern(got)})
		}
	}
	if got, ok := e.s.slots[names.PendSlot]; ok {
		decls = append(decls, ast.VarDecl{
			Name: b.Strings.Intern(got),
			Init: b.NewNumberInt(pendNone),
		})
	}
	return decls
}
