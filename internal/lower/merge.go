package lower

import (
	"riff/internal/ast"
	"riff/internal/machine"
	"riff/internal/names"
	"riff/internal/source"
)

// session carries the per-function lowering state: the arena builder, the
// id allocator, the collision-free name allocator, and the reserved
// machine slots handed out lazily.
type session struct {
	b     *ast.Builder
	alloc *machine.Alloc
	names *names.Allocator
	kind  suspendKind

	slots map[string]string // reserved base -> allocated name
	temps []string          // loop helper names needing hoisting
}

func newSession(b *ast.Builder, alloc *machine.Alloc, na *names.Allocator, kind suspendKind) *session {
	return &session{b: b, alloc: alloc, names: na, kind: kind, slots: make(map[string]string)}
}

// slot returns the per-function name for one reserved machine slot,
// allocating it on first use.
func (s *session) slot(base string) string {
	if got, ok := s.slots[base]; ok {
		return got
	}
	name := s.names.Fresh(base)
	s.slots[base] = name
	return name
}

func (s *session) slotIdent(base string) ast.ExprID {
	return s.b.NewIdentNamed(s.slot(base))
}

// temp allocates a fresh loop helper name and records it for hoisting.
func (s *session) temp(base string) string {
	name := s.names.Fresh(base)
	s.temps = append(s.temps, name)
	return name
}

// wrap packages a run of plain statements as a trivial one-state machine
// so a merging parent can treat all children uniformly.
func (s *session) wrap(body []ast.StmtID) machine.Machine {
	id := s.alloc.New()
	fall := s.alloc.New()
	return machine.Machine{
		Start: id,
		Fall:  fall,
		States: []machine.State{{
			ID:   id,
			Kind: machine.StateFall,
			Body: body,
			Next: fall,
		}},
	}
}

// seq catenates two machines: a's normal completion becomes an alias for
// b's start.
func seq(a, b machine.Machine) machine.Machine {
	a = a.Subst(map[machine.StateID]machine.StateID{a.Fall: b.Start})
	return machine.Machine{
		Start:   a.Start,
		Fall:    b.Fall,
		States:  append(a.States, b.States...),
		Regions: append(a.Regions, b.Regions...),
	}
}

// lowerOrWrap converts a child statement, forcing plain children into a
// trivial machine.
func (s *session) lowerOrWrap(id ast.StmtID) machine.Machine {
	if !id.IsValid() {
		return s.wrap(nil)
	}
	if m, ok := s.lowerStmt(id, nil); ok {
		return m
	}
	return s.wrap([]ast.StmtID{id})
}

// lowerStmt is the bottom-up transform. It returns (machine, true) when
// the statement had to be converted and (zero, false) when it can stay
// plain code. labels carries the label names attached directly to this
// statement by enclosing labeled statements.
//
//nolint:gocyclo // one branch per statement kind
func (s *session) lowerStmt(id ast.StmtID, labels []source.StringID) (machine.Machine, bool) {
	if !id.IsValid() || !needsMachine(s.b, id) {
		return machine.Machine{}, false
	}
	st := s.b.Stmt(id)
	switch st.Kind {
	case ast.StmtBlock:
		return s.lowerStmtList(st.Block.Stmts, labels), true
	case ast.StmtYield:
		return s.lowerYield(st), true
	case ast.StmtAwait:
		return s.lowerAwait(st), true
	case ast.StmtReturn:
		return s.lowerReturn(st), true
	case ast.StmtBreak:
		return s.leafBranch(machine.StateBreak, st.Branch.Label), true
	case ast.StmtContinue:
		return s.leafBranch(machine.StateContinue, st.Branch.Label), true
	case ast.StmtIf:
		return s.lowerIf(st), true
	case ast.StmtWhile:
		return s.lowerWhile(st, labels), true
	case ast.StmtDoWhile:
		return s.lowerDoWhile(st, labels), true
	case ast.StmtFor:
		return s.lowerFor(st, labels), true
	case ast.StmtForIn:
		return s.lowerForIn(st, labels), true
	case ast.StmtSwitch:
		return s.lowerSwitch(st, labels), true
	case ast.StmtTry:
		return s.lowerTry(st), true
	case ast.StmtLabeled:
		return s.lowerLabeled(st)
	default:
		// Var, Expr, Throw never suspend or branch out by themselves;
		// needsMachine cannot be true for them.
		return machine.Machine{}, false
	}
}

// lowerStmtList sequences a statement list, batching consecutive plain
// statements into shared state bodies.
func (s *session) lowerStmtList(stmts []ast.StmtID, labels []source.StringID) machine.Machine {
	var result machine.Machine
	have := false
	var pending []ast.StmtID

	push := func(m machine.Machine) {
		if !have {
			result, have = m, true
			return
		}
		result = seq(result, m)
	}
	flush := func() {
		if len(pending) > 0 {
			push(s.wrap(pending))
			pending = nil
		}
	}

	for _, child := range stmts {
		if m, ok := s.lowerStmt(child, nil); ok {
			flush()
			push(m)
			continue
		}
		pending = append(pending, child)
	}
	flush()
	if !have {
		result = s.wrap(nil)
	}
	if len(labels) > 0 {
		// A labeled block: break <label> exits past the block.
		result = resolveLabeledBreaks(result, labels, result.Fall)
	}
	return result
}

func (s *session) lowerYield(st *ast.Stmt) machine.Machine {
	if !st.Yield.Value.IsValid() {
		// A valueless yield terminates iteration cleanly and never
		// resumes.
		end := s.alloc.New()
		fall := s.alloc.New()
		return machine.Machine{
			Start:  end,
			Fall:   fall,
			States: []machine.State{{ID: end, Kind: machine.StateEnd}},
		}
	}
	sus := s.alloc.New()
	resume := s.alloc.New()
	fall := s.alloc.New()
	return machine.Machine{
		Start: sus,
		Fall:  fall,
		States: []machine.State{
			{ID: sus, Kind: machine.StateSuspend, Value: st.Yield.Value, Resume: resume},
			{ID: resume, Kind: machine.StateFall, Next: fall},
		},
	}
}

func (s *session) lowerAwait(st *ast.Stmt) machine.Machine {
	sus := s.alloc.New()
	resume := s.alloc.New()
	fail := s.alloc.New()
	fall := s.alloc.New()

	var resumeBody []ast.StmtID
	if st.Await.Dst.IsValid() {
		if st.Await.Decl {
			// The binding only survives as an assignment after conversion.
			s.temps = append(s.temps, s.b.Strings.MustLookup(st.Await.Dst))
		}
		dst := s.b.NewIdent(st.Span, st.Await.Dst)
		resumeBody = append(resumeBody, s.b.NewAssignStmt(dst, s.slotIdent(names.SentSlot)))
	}
	failBody := []ast.StmtID{s.b.NewStmt(ast.Stmt{
		Kind:  ast.StmtThrow,
		Span:  st.Span,
		Throw: ast.ThrowStmt{Value: s.slotIdent(names.ErrSlot)},
	})}

	return machine.Machine{
		Start: sus,
		Fall:  fall,
		States: []machine.State{
			{ID: sus, Kind: machine.StateSuspend, Value: st.Await.Value, Dst: st.Await.Dst, Resume: resume, Fail: fail},
			{ID: resume, Kind: machine.StateFall, Body: resumeBody, Next: fall},
			{ID: fail, Kind: machine.StateFall, Body: failBody, Next: fall},
		},
	}
}

func (s *session) lowerReturn(st *ast.Stmt) machine.Machine {
	end := s.alloc.New()
	fall := s.alloc.New()
	return machine.Machine{
		Start:  end,
		Fall:   fall,
		States: []machine.State{{ID: end, Kind: machine.StateEnd, Value: st.Return.Value}},
	}
}

func (s *session) leafBranch(kind machine.StateKind, label source.StringID) machine.Machine {
	id := s.alloc.New()
	fall := s.alloc.New()
	return machine.Machine{
		Start:  id,
		Fall:   fall,
		States: []machine.State{{ID: id, Kind: kind, Label: label}},
	}
}

func (s *session) lowerIf(st *ast.Stmt) machine.Machine {
	cond := s.alloc.New()
	join := s.alloc.New()

	thenM := s.lowerOrWrap(st.If.Then)
	thenM = thenM.Subst(map[machine.StateID]machine.StateID{thenM.Fall: join})

	elseTarget := join
	var elseM machine.Machine
	hasElse := st.If.Else.IsValid()
	if hasElse {
		elseM = s.lowerOrWrap(st.If.Else)
		elseM = elseM.Subst(map[machine.StateID]machine.StateID{elseM.Fall: join})
		elseTarget = elseM.Start
	}

	states := []machine.State{{
		ID: cond, Kind: machine.StateCond,
		Test: st.If.Cond, Then: thenM.Start, Else: elseTarget,
	}}
	states = append(states, thenM.States...)
	regions := thenM.Regions
	if hasElse {
		states = append(states, elseM.States...)
		regions = append(regions, elseM.Regions...)
	}
	return machine.Machine{Start: cond, Fall: join, States: states, Regions: regions}
}

func (s *session) lowerWhile(st *ast.Stmt, labels []source.StringID) machine.Machine {
	retest := s.alloc.New()
	exit := s.alloc.New()

	body := s.lowerOrWrap(st.While.Body)
	body = resolveBranches(body, labels, exit, retest)
	body = body.Subst(map[machine.StateID]machine.StateID{body.Fall: retest})

	states := []machine.State{{
		ID: retest, Kind: machine.StateCond,
		Test: st.While.Cond, Then: body.Start, Else: exit,
	}}
	states = append(states, body.States...)
	return machine.Machine{Start: retest, Fall: exit, States: states, Regions: body.Regions}
}

func (s *session) lowerDoWhile(st *ast.Stmt, labels []source.StringID) machine.Machine {
	retest := s.alloc.New()
	exit := s.alloc.New()

	body := s.lowerOrWrap(st.While.Body)
	body = resolveBranches(body, labels, exit, retest)
	bodyStart := body.Start
	body = body.Subst(map[machine.StateID]machine.StateID{body.Fall: retest})

	states := append(body.States, machine.State{
		ID: retest, Kind: machine.StateCond,
		Test: st.While.Cond, Then: bodyStart, Else: exit,
	})
	return machine.Machine{Start: bodyStart, Fall: exit, States: states, Regions: body.Regions}
}

func (s *session) lowerFor(st *ast.Stmt, labels []source.StringID) machine.Machine {
	retest := s.alloc.New()
	exit := s.alloc.New()

	// Continue targets the update when one exists, the re-test otherwise.
	contTarget := retest
	var updateID machine.StateID
	if st.For.Update.IsValid() {
		updateID = s.alloc.New()
		contTarget = updateID
	}

	body := s.lowerOrWrap(st.For.Body)
	body = resolveBranches(body, labels, exit, contTarget)
	body = body.Subst(map[machine.StateID]machine.StateID{body.Fall: contTarget})

	var states []machine.State
	if st.For.Cond.IsValid() {
		states = append(states, machine.State{
			ID: retest, Kind: machine.StateCond,
			Test: st.For.Cond, Then: body.Start, Else: exit,
		})
	} else {
		states = append(states, machine.State{
			ID: retest, Kind: machine.StateFall, Next: body.Start,
		})
	}
	if updateID.IsValid() {
		states = append(states, machine.State{
			ID: updateID, Kind: machine.StateFall,
			Body: []ast.StmtID{s.b.NewStmt(ast.Stmt{
				Kind: ast.StmtExpr,
				Span: s.b.Expr(st.For.Update).Span,
				Expr: ast.ExprStmt{Expr: st.For.Update},
			})},
			Next: retest,
		})
	}
	states = append(states, body.States...)

	start := retest
	if st.For.Init.IsValid() {
		initID := s.alloc.New()
		states = append(states, machine.State{
			ID: initID, Kind: machine.StateFall,
			Body: []ast.StmtID{st.For.Init},
			Next: retest,
		})
		start = initID
	}
	return machine.Machine{Start: start, Fall: exit, States: states, Regions: body.Regions}
}

// lowerForIn snapshots the object's keys into a fresh array, then runs an
// index-driven loop over the snapshot so suspension cannot observe a live
// enumerator.
func (s *session) lowerForIn(st *ast.Stmt, labels []source.StringID) machine.Machine {
	keys := s.temp(names.KeysTemp)
	idx := s.temp(names.IdxTemp)
	iter := s.names.Fresh(names.ValTemp)
	if st.ForIn.Decl {
		// The binding only survives as an assignment after conversion.
		s.temps = append(s.temps, s.b.Strings.MustLookup(st.ForIn.Name))
	}

	b := s.b
	keysIdent := func() ast.ExprID { return b.NewIdentNamed(keys) }
	idxIdent := func() ast.ExprID { return b.NewIdentNamed(idx) }

	// keys = []; for (iter in obj) { keys[keys.length] = iter; } idx = 0;
	snapshot := b.NewStmt(ast.Stmt{
		Kind: ast.StmtForIn,
		Span: st.Span,
		ForIn: ast.ForInStmt{
			Decl:   true,
			Name:   b.Strings.Intern(iter),
			Object: st.ForIn.Object,
			Body: b.NewBlock(b.NewAssignStmt(
				b.NewExpr(ast.Expr{
					Kind:  ast.ExprIndex,
					Index: ast.IndexExpr{Object: keysIdent(), Index: b.NewMember(keysIdent(), "length")},
				}),
				b.NewIdentNamed(iter),
			)),
		},
	})
	initBody := []ast.StmtID{
		b.NewAssignStmt(keysIdent(), b.NewExpr(ast.Expr{Kind: ast.ExprArray})),
		snapshot,
		b.NewAssignStmt(idxIdent(), b.NewNumberInt(0)),
	}

	initID := s.alloc.New()
	retest := s.alloc.New()
	update := s.alloc.New()
	bind := s.alloc.New()
	exit := s.alloc.New()

	body := s.lowerOrWrap(st.ForIn.Body)
	body = resolveBranches(body, labels, exit, update)
	body = body.Subst(map[machine.StateID]machine.StateID{body.Fall: update})

	states := []machine.State{
		{ID: initID, Kind: machine.StateFall, Body: initBody, Next: retest},
		{
			ID: retest, Kind: machine.StateCond,
			Test: b.NewExpr(ast.Expr{
				Kind:   ast.ExprBinary,
				Binary: ast.BinaryExpr{Op: ast.BinLt, Left: idxIdent(), Right: b.NewMember(keysIdent(), "length")},
			}),
			Then: bind, Else: exit,
		},
		{
			ID: bind, Kind: machine.StateFall,
			Body: []ast.StmtID{b.NewAssignStmt(
				b.NewIdent(st.Span, st.ForIn.Name),
				b.NewExpr(ast.Expr{Kind: ast.ExprIndex, Index: ast.IndexExpr{Object: keysIdent(), Index: idxIdent()}}),
			)},
			Next: body.Start,
		},
		{
			ID: update, Kind: machine.StateFall,
			Body: []ast.StmtID{b.NewStmt(ast.Stmt{
				Kind: ast.StmtExpr,
				Expr: ast.ExprStmt{Expr: b.NewExpr(ast.Expr{
					Kind:   ast.ExprAssign,
					Assign: ast.AssignExpr{Op: ast.AssignAdd, Target: idxIdent(), Value: b.NewNumberInt(1)},
				})},
			})},
			Next: retest,
		},
	}
	states = append(states, body.States...)
	return machine.Machine{Start: initID, Fall: exit, States: states, Regions: body.Regions}
}

// lowerSwitch processes clauses in reverse source order so each clause's
// fall-through can target the next clause's start.
func (s *session) lowerSwitch(st *ast.Stmt, labels []source.StringID) machine.Machine {
	exit := s.alloc.New()
	multi := s.alloc.New()

	n := len(st.Switch.Clauses)
	starts := make([]machine.StateID, n)
	var states []machine.State
	var regions []machine.TryRegion

	next := exit
	for i := n - 1; i >= 0; i-- {
		cm := s.lowerStmtList(st.Switch.Clauses[i].Stmts, nil)
		// Unlabeled break binds to the switch; continue threads through.
		cm = resolveBranches(cm, labels, exit, machine.NoStateID)
		cm = cm.Subst(map[machine.StateID]machine.StateID{cm.Fall: next})
		starts[i] = cm.Start
		states = append(states, cm.States...)
		regions = append(regions, cm.Regions...)
		next = cm.Start
	}

	arms := make([]machine.MultiArm, 0, n+1)
	hasDefault := false
	for i, clause := range st.Switch.Clauses {
		arms = append(arms, machine.MultiArm{
			IsDefault: clause.IsDefault,
			Value:     clause.Value,
			Target:    starts[i],
		})
		hasDefault = hasDefault || clause.IsDefault
	}
	if !hasDefault {
		arms = append(arms, machine.MultiArm{IsDefault: true, Target: exit})
	}

	states = append(states, machine.State{
		ID: multi, Kind: machine.StateMulti,
		Selector: st.Switch.Selector, Arms: arms,
	})
	return machine.Machine{Start: multi, Fall: exit, States: states, Regions: regions}
}

func (s *session) lowerTry(st *ast.Stmt) machine.Machine {
	exit := s.alloc.New()

	tryM := s.lowerOrWrap(st.Try.Body)
	tryIDs := tryM.StateIDs()
	tryM = tryM.Subst(map[machine.StateID]machine.StateID{tryM.Fall: exit})

	states := tryM.States
	regions := tryM.Regions
	guarded := tryIDs

	if st.Try.Catch.IsValid() {
		catchM := s.lowerOrWrap(st.Try.Catch)
		catchIDs := catchM.StateIDs()
		catchM = catchM.Subst(map[machine.StateID]machine.StateID{catchM.Fall: exit})
		states = append(states, catchM.States...)
		regions = append(regions, catchM.Regions...)
		regions = append(regions, machine.TryRegion{
			Kind:    machine.RegionCatch,
			Body:    tryIDs,
			Entry:   catchM.Start,
			Handler: st.Try.CatchName,
		})
		// A finally guards the catch handler too.
		guarded = append(append([]machine.StateID(nil), tryIDs...), catchIDs...)
	}

	if st.Try.Finally.IsValid() {
		finM := s.lowerOrWrap(st.Try.Finally)
		pass := s.alloc.New()
		finM = finM.Subst(map[machine.StateID]machine.StateID{finM.Fall: pass})
		states = append(states, finM.States...)
		states = append(states, machine.State{ID: pass, Kind: machine.StateFinally})
		regions = append(regions, finM.Regions...)
		regions = append(regions, machine.TryRegion{
			Kind:  machine.RegionFinally,
			Body:  guarded,
			Entry: finM.Start,
			Pass:  pass,
		})
	}

	return machine.Machine{Start: tryM.Start, Fall: exit, States: states, Regions: regions}
}

// lowerLabeled gathers the label chain and hands it to the labeled
// construct, which resolves matching break/continue during its own merge.
func (s *session) lowerLabeled(st *ast.Stmt) (machine.Machine, bool) {
	labels := []source.StringID{st.Labeled.Label}
	inner := st.Labeled.Stmt
	for {
		is := s.b.Stmt(inner)
		if is.Kind != ast.StmtLabeled {
			return s.lowerStmt(inner, labels)
		}
		labels = append(labels, is.Labeled.Label)
		inner = is.Labeled.Stmt
	}
}
