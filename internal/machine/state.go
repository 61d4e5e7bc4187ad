// Package machine defines the flat resumable state machine that lowering
// builds out of a suspending function body: numbered states, transition
// targets, and the exception-region forest consulted at emission time.
//
// Everything here is a value. Transforms produce new machines via
// copy-with-substitution; two machines never share state storage.
package machine

import (
	"riff/internal/ast"
	"riff/internal/source"
)

// StateID identifies one state. Ids are unique within one compile session,
// handed out by Alloc; 0 is reserved as the invalid id.
type StateID uint32

const NoStateID StateID = 0

func (id StateID) IsValid() bool { return id != NoStateID }

// Alloc is the monotonic id counter for one compile session. Not safe for
// concurrent use; parallel compiles get one allocator each.
type Alloc struct {
	next uint32
}

func NewAlloc() *Alloc {
	return &Alloc{next: 1}
}

func (a *Alloc) New() StateID {
	id := StateID(a.next)
	a.next++
	return id
}

type StateKind uint8

const (
	StateInvalid StateKind = iota
	// StateFall runs its body and transfers to Next.
	StateFall
	// StateCond evaluates Test and transfers to Then or Else.
	StateCond
	// StateMulti evaluates Selector and transfers per its arms.
	StateMulti
	// StateSuspend pauses the machine and resumes at Resume.
	StateSuspend
	// StateBreak is an unresolved break; an enclosing loop or switch
	// rewrites it into a StateFall before the machine reaches the root.
	StateBreak
	// StateContinue is the unresolved continue counterpart.
	StateContinue
	// StateEnd terminates the machine, optionally producing Value.
	StateEnd
	// StateFinally marks a finally body's fall-through; the real dispatch
	// that reads the pending target is synthesized at emission.
	StateFinally
)

var stateKindNames = map[StateKind]string{
	StateInvalid: "invalid", StateFall: "fall", StateCond: "cond",
	StateMulti: "multi", StateSuspend: "suspend", StateBreak: "break",
	StateContinue: "continue", StateEnd: "end", StateFinally: "finally",
}

func (k StateKind) String() string {
	if s, ok := stateKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MultiArm is one clause of a StateMulti dispatch, in source order.
type MultiArm struct {
	IsDefault bool
	Value     ast.ExprID // meaningful unless IsDefault
	Target    StateID
}

// State is one unit of executable work plus its successors. Body holds
// plain statements executed on entry; only the payload matching Kind is
// meaningful beyond that.
type State struct {
	ID   StateID
	Kind StateKind
	Body []ast.StmtID

	Next StateID // StateFall

	Test ast.ExprID // StateCond
	Then StateID
	Else StateID

	Selector ast.ExprID // StateMulti
	Arms     []MultiArm

	Value  ast.ExprID      // StateSuspend produced value; StateEnd result
	Dst    source.StringID // StateSuspend settled-value destination
	Resume StateID         // StateSuspend success re-entry
	Fail   StateID         // StateSuspend failure re-entry

	Label source.StringID // StateBreak, StateContinue
}

// targets lists every state id the state references, for validation and
// substitution.
func (s *State) targets() []StateID {
	switch s.Kind {
	case StateFall:
		return []StateID{s.Next}
	case StateCond:
		return []StateID{s.Then, s.Else}
	case StateMulti:
		out := make([]StateID, 0, len(s.Arms))
		for _, arm := range s.Arms {
			out = append(out, arm.Target)
		}
		return out
	case StateSuspend:
		if s.Fail.IsValid() {
			return []StateID{s.Resume, s.Fail}
		}
		return []StateID{s.Resume}
	default:
		return nil
	}
}

// clone returns a deep copy with every id occurrence mapped through sub.
func (s *State) clone(sub map[StateID]StateID) State {
	out := *s
	out.Body = append([]ast.StmtID(nil), s.Body...)
	out.ID = subst(sub, s.ID)
	out.Next = subst(sub, s.Next)
	out.Then = subst(sub, s.Then)
	out.Else = subst(sub, s.Else)
	out.Resume = subst(sub, s.Resume)
	out.Fail = subst(sub, s.Fail)
	if len(s.Arms) > 0 {
		out.Arms = make([]MultiArm, len(s.Arms))
		for i, arm := range s.Arms {
			arm.Target = subst(sub, arm.Target)
			out.Arms[i] = arm
		}
	}
	return out
}

func subst(sub map[StateID]StateID, id StateID) StateID {
	if mapped, ok := sub[id]; ok {
		return mapped
	}
	return id
}
