package machine

import (
	"strings"
	"testing"

	"riff/internal/ast"
)

func TestAllocSequence(t *testing.T) {
	a := NewAlloc()
	first := a.New()
	second := a.New()
	if !first.IsValid() || !second.IsValid() {
		t.Fatal("allocated invalid id")
	}
	if first == second {
		t.Fatal("ids not unique")
	}
	if NoStateID.IsValid() {
		t.Error("NoStateID must be invalid")
	}
}

func TestSubstRewritesEveryReference(t *testing.T) {
	m := Machine{
		Start: 1,
		Fall:  9,
		States: []State{
			{ID: 1, Kind: StateCond, Then: 2, Else: 3},
			{ID: 2, Kind: StateSuspend, Resume: 3, Fail: 1},
			{ID: 3, Kind: StateMulti, Arms: []MultiArm{{Target: 1}, {IsDefault: true, Target: 9}}},
		},
		Regions: []TryRegion{
			{Kind: RegionFinally, Body: []StateID{1, 2}, Entry: 3, Pass: 9},
		},
	}

	out := m.Subst(map[StateID]StateID{9: 7, 1: 4})

	if out.Start != 4 || out.Fall != 7 {
		t.Errorf("start/fall = %d/%d", out.Start, out.Fall)
	}
	if s := out.State(4); s == nil || s.Then != 2 || s.Else != 3 {
		t.Errorf("cond state wrong: %+v", s)
	}
	if s := out.State(2); s.Fail != 4 {
		t.Errorf("suspend fail = %d", s.Fail)
	}
	if s := out.State(3); s.Arms[0].Target != 4 || s.Arms[1].Target != 7 {
		t.Errorf("multi arms = %+v", s.Arms)
	}
	r := out.Regions[0]
	if r.Body[0] != 4 || r.Pass != 7 {
		t.Errorf("region = %+v", r)
	}

	// The original must be untouched.
	if m.Start != 1 || m.States[2].Arms[1].Target != 9 || m.Regions[0].Pass != 9 {
		t.Error("Subst mutated its receiver")
	}
}

func TestValidateRejectsUnresolvedBranches(t *testing.T) {
	m := Machine{
		Start:  1,
		Fall:   2,
		States: []State{{ID: 1, Kind: StateBreak}},
	}
	err := m.Validate()
	if err == nil || !strings.Contains(err.Error(), "unresolved break") {
		t.Errorf("err = %v", err)
	}

	m.States[0] = State{ID: 1, Kind: StateContinue}
	err = m.Validate()
	if err == nil || !strings.Contains(err.Error(), "unresolved continue") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateRejectsDanglingTargets(t *testing.T) {
	m := Machine{
		Start:  1,
		Fall:   5,
		States: []State{{ID: 1, Kind: StateFall, Next: 99}},
	}
	err := m.Validate()
	if err == nil || !strings.Contains(err.Error(), "dangling") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	m := Machine{
		Start: 1,
		Fall:  3,
		States: []State{
			{ID: 1, Kind: StateFall, Next: 3},
			{ID: 1, Kind: StateFall, Next: 3},
		},
	}
	err := m.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	m := Machine{
		Start: 1,
		Fall:  4,
		States: []State{
			{ID: 1, Kind: StateSuspend, Resume: 2},
			{ID: 2, Kind: StateCond, Then: 3, Else: 4},
			{ID: 3, Kind: StateEnd},
		},
	}
	if err := m.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// body is a placeholder statement list of the given length; compaction
// only counts entries, it never looks inside.
func body(n int) []ast.StmtID {
	out := make([]ast.StmtID, n)
	for i := range out {
		out[i] = ast.StmtID(100 + i)
	}
	return out
}

func TestCompactErasesEmptyFalls(t *testing.T) {
	// 1(empty fall) -> 2(end); references to 1 collapse onto 2.
	m := Machine{
		Start: 1,
		Fall:  3,
		States: []State{
			{ID: 1, Kind: StateFall, Next: 2},
			{ID: 2, Kind: StateEnd},
		},
	}
	out := m.Compact()
	if len(out.States) != 1 {
		t.Fatalf("states after compact: %d\n%s", len(out.States), out.Dump())
	}
	if out.Start != 2 {
		t.Errorf("start = %d, want 2", out.Start)
	}
}

func TestCompactFoldsUniqueSuccessor(t *testing.T) {
	// 1(fall, body) -> 2(end, body), 2 has one predecessor: the bodies
	// concatenate under id 1.
	m := Machine{
		Start: 1,
		Fall:  3,
		States: []State{
			{ID: 1, Kind: StateFall, Body: body(2), Next: 2},
			{ID: 2, Kind: StateEnd, Body: body(1)},
		},
	}
	out := m.Compact()
	if len(out.States) != 1 {
		t.Fatalf("states after compact: %d\n%s", len(out.States), out.Dump())
	}
	s := out.State(1)
	if s == nil || s.Kind != StateEnd {
		t.Fatalf("merged state: %+v", s)
	}
	if len(s.Body) != 3 {
		t.Errorf("merged body has %d statements, want 3", len(s.Body))
	}
	if out.Start != 1 {
		t.Errorf("start = %d", out.Start)
	}
}

func TestCompactKeepsResumePoints(t *testing.T) {
	// The resume target of a suspension stays a dedicated state even when
	// it is an empty fall with a single predecessor.
	m := Machine{
		Start: 1,
		Fall:  4,
		States: []State{
			{ID: 1, Kind: StateSuspend, Resume: 2},
			{ID: 2, Kind: StateFall, Next: 3},
			{ID: 3, Kind: StateEnd, Body: body(1)},
		},
	}
	out := m.Compact()
	if out.State(2) == nil {
		t.Fatalf("resume state erased:\n%s", out.Dump())
	}
	if out.Start != 1 {
		t.Errorf("start = %d", out.Start)
	}
	// The end state folds into the resume fall instead.
	s := out.State(2)
	if s.Kind != StateEnd || len(s.Body) != 1 {
		t.Errorf("resume state after compact: %+v", s)
	}
}

func TestCompactSkipsRegionedMachines(t *testing.T) {
	m := Machine{
		Start: 1,
		Fall:  3,
		States: []State{
			{ID: 1, Kind: StateFall, Next: 2},
			{ID: 2, Kind: StateEnd},
		},
		Regions: []TryRegion{{Kind: RegionCatch, Body: []StateID{1}, Entry: 2}},
	}
	out := m.Compact()
	if len(out.States) != 2 {
		t.Errorf("regioned machine was compacted:\n%s", out.Dump())
	}
}

func TestRegionContains(t *testing.T) {
	r := TryRegion{Kind: RegionCatch, Body: []StateID{1, 2, 5}}
	if !r.Contains(5) || r.Contains(3) {
		t.Error("Contains is wrong")
	}
}
