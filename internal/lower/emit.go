package lower

import (
	"sort"

	"riff/internal/ast"
	"riff/internal/machine"
	"riff/internal/names"
	"riff/internal/source"
)

// Pending-action sentinels stored in the pend slot while a finally body
// runs: positive values are state ids to resume at, the negatives encode
// abrupt completions.
const (
	pendNone    = 0
	pendRethrow = -1
	pendReturn  = -2
)

// emitter renders one root machine into a plain function body. All state
// ids are compile-time constants, so region membership and finally-crossing
// tests become chains of integer comparisons.
type emitter struct {
	s *session
	m machine.Machine

	// regions sorted innermost-first (ascending guarded-set size).
	regions []machine.TryRegion
}

func newEmitter(s *session, m machine.Machine) *emitter {
	regions := make([]machine.TryRegion, len(m.Regions))
	copy(regions, m.Regions)
	sort.Slice(regions, func(i, j int) bool {
		if len(regions[i].Body) != len(regions[j].Body) {
			return len(regions[i].Body) < len(regions[j].Body)
		}
		return regions[i].Entry < regions[j].Entry
	})
	return &emitter{s: s, m: m, regions: regions}
}

func (e *emitter) b() *ast.Builder { return e.s.b }

// emit produces the lowered function body: hoisted locals plus the
// dispatch loop, shaped per the suspension specialization.
func (e *emitter) emit() ast.StmtID {
	locals := e.hoistStateBodies()
	dispatch := e.dispatchLoop()

	b := e.b()
	decls := e.hoistedDecls(locals)
	varStmt := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: decls}})

	if e.s.kind == suspendAwait {
		// var __step = function () { <loop> }; __step();
		step := e.s.slot(names.StepFunc)
		stepFn := b.NewExpr(ast.Expr{
			Kind: ast.ExprFunc,
			Func: ast.FuncExpr{Body: b.NewBlock(dispatch)},
		})
		declStep := b.NewStmt(ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Decls: []ast.VarDecl{
			{Name: b.Strings.Intern(step), Init: stepFn},
		}}})
		kick := b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
			Expr: b.NewCall(b.NewIdentNamed(step)),
		}})
		return b.NewBlock(varStmt, declStep, kick)
	}

	// return { next: function () { <loop> } };
	nextFn := b.NewExpr(ast.Expr{
		Kind: ast.ExprFunc,
		Func: ast.FuncExpr{Body: b.NewBlock(dispatch)},
	})
	iterator := b.NewExpr(ast.Expr{
		Kind:   ast.ExprObject,
		Object: ast.ObjectExpr{Fields: []ast.ObjectField{{Name: b.Strings.Intern("next"), Value: nextFn}}},
	})
	ret := b.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Return: ast.ReturnStmt{Value: iterator}})
	return b.NewBlock(varStmt, ret)
}

// dispatchLoop builds while (true) { try { switch (state) {...} } catch {...} },
// dropping the try wrapper when the machine has no exception regions.
func (e *emitter) dispatchLoop() ast.StmtID {
	b := e.b()

	type caseEntry struct {
		id    machine.StateID
		stmts []ast.StmtID
	}
	entries := make([]caseEntry, 0, len(e.m.States)+1)
	for _, st := range e.m.Sorted() {
		entries = append(entries, caseEntry{st.ID, e.caseStmts(st)})
	}
	entries = append(entries, caseEntry{e.m.Fall, e.terminalStmts()})
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	clauses := make([]ast.SwitchClause, len(entries))
	for i, entry := range entries {
		clauses[i] = ast.SwitchClause{
			Value: b.NewNumberInt(int64(entry.id)),
			Stmts: entry.stmts,
		}
	}
	dispatch := b.NewStmt(ast.Stmt{Kind: ast.StmtSwitch, Switch: ast.SwitchStmt{
		Selector: e.s.slotIdent(names.StateSlot),
		Clauses:  clauses,
	}})

	body := dispatch
	if len(e.regions) > 0 {
		body = b.NewStmt(ast.Stmt{Kind: ast.StmtTry, Try: ast.TryStmt{
			Body:      b.NewBlock(dispatch),
			CatchName: b.Strings.Intern(e.s.slot(names.ExcTemp)),
			Catch:     b.NewBlock(e.exceptionDispatch()...),
		}})
	}
	return b.NewStmt(ast.Stmt{Kind: ast.StmtWhile, While: ast.WhileStmt{
		Cond: b.NewBool(true),
		Body: b.NewBlock(body),
	}})
}

//nolint:gocyclo // one branch per state kind
func (e *emitter) caseStmts(st machine.State) []ast.StmtID {
	out := append([]ast.StmtID(nil), st.Body...)
	switch st.Kind {
	case machine.StateFall:
		out = append(out, e.jump(st.ID, st.Next)...)
	case machine.StateCond:
		out = append(out, e.b().NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
			Cond: st.Test,
			Then: e.b().NewBlock(e.jump(st.ID, st.Then)...),
			Else: e.b().NewBlock(e.jump(st.ID, st.Else)...),
		}}))
	case machine.StateMulti:
		clauses := make([]ast.SwitchClause, len(st.Arms))
		for i, arm := range st.Arms {
			clauses[i] = ast.SwitchClause{
				IsDefault: arm.IsDefault,
				Value:     arm.Value,
				Stmts:     e.jump(st.ID, arm.Target),
			}
		}
		out = append(out, e.b().NewStmt(ast.Stmt{Kind: ast.StmtSwitch, Switch: ast.SwitchStmt{
			Selector: st.Selector,
			Clauses:  clauses,
		}}))
	case machine.StateSuspend:
		if e.s.kind == suspendAwait {
			out = append(out, e.awaitSuspend(st)...)
		} else {
			out = append(out, e.yieldSuspend(st)...)
		}
	case machine.StateEnd:
		out = append(out, e.endStmts(st)...)
	case machine.StateFinally:
		out = append(out, e.finallyPass(st.ID)...)
	}
	return out
}

// yieldSuspend renders: set resume state; hand the value out, not done.
func (e *emitter) yieldSuspend(st machine.State) []ast.StmtID {
	return []ast.StmtID{
		e.setState(st.Resume),
		e.returnResult(st.Value, false),
	}
}

// awaitSuspend renders: register the two continuations on the awaited
// value and give control back.
func (e *emitter) awaitSuspend(st machine.State) []ast.StmtID {
	b := e.b()
	okParam := e.s.slot(names.ValTemp)
	failParam := e.s.slot(names.ExcTemp)

	okBody := b.NewBlock(
		b.NewAssignStmt(e.s.slotIdent(names.SentSlot), b.NewIdentNamed(okParam)),
		e.setState(st.Resume),
		e.callStep(),
	)
	failBody := b.NewBlock(
		b.NewAssignStmt(e.s.slotIdent(names.ErrSlot), b.NewIdentNamed(failParam)),
		e.setState(st.Fail),
		e.callStep(),
	)
	okFn := b.NewExpr(ast.Expr{Kind: ast.ExprFunc, Func: ast.FuncExpr{
		Params: []source.StringID{b.Strings.Intern(okParam)},
		Body:   okBody,
	}})
	failFn := b.NewExpr(ast.Expr{Kind: ast.ExprFunc, Func: ast.FuncExpr{
		Params: []source.StringID{b.Strings.Intern(failParam)},
		Body:   failBody,
	}})
	then := b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
		Expr: b.NewCall(b.NewMember(st.Value, "then"), okFn, failFn),
	}})
	return []ast.StmtID{then, e.bareReturn()}
}

// endStmts renders normal termination, routing through any enclosing
// finally with the return sentinel.
func (e *emitter) endStmts(st machine.State) []ast.StmtID {
	b := e.b()
	if f := e.innermostFinallyContaining(st.ID); f != nil {
		var out []ast.StmtID
		if e.s.kind == suspendAwait {
			if st.Value.IsValid() {
				out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{Expr: st.Value}}))
			}
		} else {
			value := st.Value
			if !value.IsValid() {
				value = b.NewNull()
			}
			out = append(out, b.NewAssignStmt(e.s.slotIdent(names.RetSlot), value))
		}
		out = append(out,
			e.setPend(pendReturn),
			e.setState(f.Entry),
			e.continueStmt(),
		)
		return out
	}
	if e.s.kind == suspendAwait {
		var out []ast.StmtID
		if st.Value.IsValid() {
			out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{Expr: st.Value}}))
		}
		return append(out, e.setState(e.m.Fall), e.bareReturn())
	}
	return []ast.StmtID{e.setState(e.m.Fall), e.returnResult(st.Value, true)}
}

// terminalStmts renders the machine's fall-through case. The state slot is
// left in place so every later re-entry lands here again.
func (e *emitter) terminalStmts() []ast.StmtID {
	if e.s.kind == suspendAwait {
		return []ast.StmtID{e.bareReturn()}
	}
	return []ast.StmtID{e.returnResult(ast.NoExprID, true)}
}

// jump renders a transition, rewriting edges that cross out of a finally
// region into an entry through that finally with the destination pended.
func (e *emitter) jump(from, to machine.StateID) []ast.StmtID {
	if f := e.innermostCrossedFinally(from, to); f != nil {
		return []ast.StmtID{
			e.b().NewAssignStmt(e.s.slotIdent(names.PendSlot), e.b().NewNumberInt(int64(to))),
			e.setState(f.Entry),
			e.continueStmt(),
		}
	}
	return []ast.StmtID{e.setState(to), e.continueStmt()}
}

// finallyPass synthesizes the dispatch at a finally body's fall-through:
// consult the pending action and either re-throw, complete the return,
// resume at the pended state, or climb into the next enclosing finally —
// one region at a time.
func (e *emitter) finallyPass(passID machine.StateID) []ast.StmtID {
	b := e.b()
	f := e.regionWithPass(passID)
	var out []ast.StmtID

	// Pending exception.
	out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: e.pendEquals(pendRethrow),
		Then: b.NewBlock(e.rethrowRoute(f)...),
	}}))
	// Pending return.
	out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
		Cond: e.pendEquals(pendReturn),
		Then: b.NewBlock(e.returnRoute(f)...),
	}}))

	parent := e.innermostFinallyEnclosing(f)
	if parent == nil {
		out = append(out,
			b.NewAssignStmt(e.s.slotIdent(names.StateSlot), e.s.slotIdent(names.PendSlot)),
			e.setPend(pendNone),
			e.continueStmt(),
		)
		return out
	}

	// A pended target inside the parent region resumes directly; anything
	// else must pass through the parent's finally first.
	direct := e.directTargets(f, parent)
	if len(direct) > 0 {
		out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
			Cond: e.pendInSet(direct),
			Then: b.NewBlock(
				b.NewAssignStmt(e.s.slotIdent(names.StateSlot), e.s.slotIdent(names.PendSlot)),
				e.setPend(pendNone),
				e.continueStmt(),
			),
		}}))
	}
	out = append(out, e.setState(parent.Entry), e.continueStmt())
	return out
}

// rethrowRoute climbs one level for a pended exception: the next
// enclosing handler gets it, or it escapes the machine.
func (e *emitter) rethrowRoute(f *machine.TryRegion) []ast.StmtID {
	b := e.b()
	r := e.innermostRegionEnclosing(f)
	if r == nil {
		return []ast.StmtID{b.NewStmt(ast.Stmt{Kind: ast.StmtThrow, Throw: ast.ThrowStmt{
			Value: e.s.slotIdent(names.ErrSlot),
		}})}
	}
	if r.Kind == machine.RegionCatch {
		return []ast.StmtID{
			b.NewAssignStmt(b.NewIdent(source.Span{}, r.Handler), e.s.slotIdent(names.ErrSlot)),
			e.setPend(pendNone),
			e.setState(r.Entry),
			e.continueStmt(),
		}
	}
	return []ast.StmtID{e.setState(r.Entry), e.continueStmt()}
}

// returnRoute climbs one level for a pended return.
func (e *emitter) returnRoute(f *machine.TryRegion) []ast.StmtID {
	if parent := e.innermostFinallyEnclosing(f); parent != nil {
		return []ast.StmtID{e.setState(parent.Entry), e.continueStmt()}
	}
	if e.s.kind == suspendAwait {
		return []ast.StmtID{e.bareReturn()}
	}
	return []ast.StmtID{e.returnResultExpr(e.s.slotIdent(names.RetSlot), true)}
}

// exceptionDispatch builds the catch-clause body: innermost region first,
// route to its handler; no region means the exception escapes.
func (e *emitter) exceptionDispatch() []ast.StmtID {
	b := e.b()
	exc := e.s.slotIdent(names.ExcTemp)
	var out []ast.StmtID
	for i := range e.regions {
		r := &e.regions[i]
		var route []ast.StmtID
		if r.Kind == machine.RegionCatch {
			route = []ast.StmtID{
				b.NewAssignStmt(b.NewIdent(source.Span{}, r.Handler), exc),
				e.setState(r.Entry),
				e.continueStmt(),
			}
		} else {
			route = []ast.StmtID{
				b.NewAssignStmt(e.s.slotIdent(names.ErrSlot), exc),
				e.setPend(pendRethrow),
				e.setState(r.Entry),
				e.continueStmt(),
			}
		}
		out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtIf, If: ast.IfStmt{
			Cond: e.stateInSet(r.Body),
			Then: b.NewBlock(route...),
		}}))
	}
	out = append(out, b.NewStmt(ast.Stmt{Kind: ast.StmtThrow, Throw: ast.ThrowStmt{Value: exc}}))
	return out
}

// --- region queries ---

func (e *emitter) regionWithPass(passID machine.StateID) *machine.TryRegion {
	for i := range e.regions {
		if e.regions[i].Kind == machine.RegionFinally && e.regions[i].Pass == passID {
			return &e.regions[i]
		}
	}
	return nil
}

func (e *emitter) innermostFinallyContaining(id machine.StateID) *machine.TryRegion {
	for i := range e.regions {
		if e.regions[i].Kind == machine.RegionFinally && e.regions[i].Contains(id) {
			return &e.regions[i]
		}
	}
	return nil
}

// innermostRegionEnclosing finds the innermost region wrapping the whole
// try statement that owns f, using f's handler entry as the probe: the
// sibling catch of the same try never contains it, any outer region does.
func (e *emitter) innermostRegionEnclosing(f *machine.TryRegion) *machine.TryRegion {
	for i := range e.regions {
		r := &e.regions[i]
		if r != f && r.Contains(f.Entry) {
			return r
		}
	}
	return nil
}

func (e *emitter) innermostFinallyEnclosing(f *machine.TryRegion) *machine.TryRegion {
	for i := range e.regions {
		r := &e.regions[i]
		if r != f && r.Kind == machine.RegionFinally && r.Contains(f.Entry) {
			return r
		}
	}
	return nil
}

// innermostCrossedFinally reports the innermost finally region an edge
// leaves, if any.
func (e *emitter) innermostCrossedFinally(from, to machine.StateID) *machine.TryRegion {
	for i := range e.regions {
		r := &e.regions[i]
		if r.Kind == machine.RegionFinally && r.Contains(from) && !r.Contains(to) {
			return r
		}
	}
	return nil
}

// directTargets lists the pended destinations possible at f's pass state
// that lie inside the parent region and therefore resume without entering
// the parent's finally.
func (e *emitter) directTargets(f, parent *machine.TryRegion) []machine.StateID {
	seen := make(map[machine.StateID]struct{})
	var out []machine.StateID
	for i := range e.m.States {
		st := &e.m.States[i]
		if !f.Contains(st.ID) {
			continue
		}
		for _, to := range stateTargets(st) {
			if f.Contains(to) || !parent.Contains(to) {
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			out = append(out, to)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func stateTargets(s *machine.State) []machine.StateID {
	switch s.Kind {
	case machine.StateFall:
		return []machine.StateID{s.Next}
	case machine.StateCond:
		return []machine.StateID{s.Then, s.Else}
	case machine.StateMulti:
		out := make([]machine.StateID, 0, len(s.Arms))
		for _, arm := range s.Arms {
			out = append(out, arm.Target)
		}
		return out
	default:
		return nil
	}
}

// --- small statement builders ---

func (e *emitter) setState(to machine.StateID) ast.StmtID {
	return e.b().NewAssignStmt(e.s.slotIdent(names.StateSlot), e.b().NewNumberInt(int64(to)))
}

func (e *emitter) setPend(v int64) ast.StmtID {
	return e.b().NewAssignStmt(e.s.slotIdent(names.PendSlot), e.b().NewNumberInt(v))
}

func (e *emitter) pendEquals(v int64) ast.ExprID {
	return e.b().NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{
		Op:    ast.BinStrictEq,
		Left:  e.s.slotIdent(names.PendSlot),
		Right: e.b().NewNumberInt(v),
	}})
}

func (e *emitter) pendInSet(ids []machine.StateID) ast.ExprID {
	return e.idDisjunction(func() ast.ExprID { return e.s.slotIdent(names.PendSlot) }, ids)
}

func (e *emitter) stateInSet(ids []machine.StateID) ast.ExprID {
	sorted := append([]machine.StateID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return e.idDisjunction(func() ast.ExprID { return e.s.slotIdent(names.StateSlot) }, sorted)
}

func (e *emitter) idDisjunction(subject func() ast.ExprID, ids []machine.StateID) ast.ExprID {
	b := e.b()
	var acc ast.ExprID
	for _, id := range ids {
		eq := b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{
			Op:    ast.BinStrictEq,
			Left:  subject(),
			Right: b.NewNumberInt(int64(id)),
		}})
		if !acc.IsValid() {
			acc = eq
			continue
		}
		acc = b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Binary: ast.BinaryExpr{
			Op: ast.BinOr, Left: acc, Right: eq,
		}})
	}
	return acc
}

func (e *emitter) continueStmt() ast.StmtID {
	return e.b().NewStmt(ast.Stmt{Kind: ast.StmtContinue})
}

func (e *emitter) bareReturn() ast.StmtID {
	return e.b().NewStmt(ast.Stmt{Kind: ast.StmtReturn})
}

// returnResult builds `return { value: <v|null>, done: <done> };`.
func (e *emitter) returnResult(value ast.ExprID, done bool) ast.StmtID {
	if !value.IsValid() {
		value = e.b().NewNull()
	}
	return e.returnResultExpr(value, done)
}

func (e *emitter) returnResultExpr(value ast.ExprID, done bool) ast.StmtID {
	b := e.b()
	obj := b.NewExpr(ast.Expr{Kind: ast.ExprObject, Object: ast.ObjectExpr{Fields: []ast.ObjectField{
		{Name: b.Strings.Intern("value"), Value: value},
		{Name: b.Strings.Intern("done"), Value: b.NewBool(done)},
	}}})
	return b.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Return: ast.ReturnStmt{Value: obj}})
}

func (e *emitter) callStep() ast.StmtID {
	return e.b().NewStmt(ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{
		Expr: e.b().NewCall(e.b().NewIdentNamed(e.s.slot(names.StepFunc))),
	}})
}
