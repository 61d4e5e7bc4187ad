package machine

import (
	"sort"
)

// Compact removes the plumbing states merging leaves behind: empty
// fall-throughs become aliases for their target, and a state with a single
// predecessor is folded into that predecessor. Resume points survive as
// their own states so a suspension always re-enters at a dedicated case.
//
// Machines with exception regions are returned untouched; collapsing
// states across a region boundary would corrupt the guarded sets.
func (m Machine) Compact() Machine {
	if len(m.Regions) > 0 {
		return m
	}
	out := m.Subst(nil)
	for {
		if !out.eraseOne() && !out.pullOne() {
			return out
		}
	}
}

// protected reports ids that must remain dedicated states: suspension
// re-entry points.
func (m *Machine) protected() map[StateID]struct{} {
	out := make(map[StateID]struct{})
	for i := range m.States {
		s := &m.States[i]
		if s.Kind == StateSuspend {
			out[s.Resume] = struct{}{}
			if s.Fail.IsValid() {
				out[s.Fail] = struct{}{}
			}
		}
	}
	return out
}

func (m *Machine) ascending() []StateID {
	ids := m.StateIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// eraseOne drops one empty fall-through state, redirecting every reference
// to its target. Returns false when nothing can be erased.
func (m *Machine) eraseOne() bool {
	prot := m.protected()
	for _, id := range m.ascending() {
		s := m.State(id)
		if s.Kind != StateFall || len(s.Body) > 0 || s.Next == s.ID {
			continue
		}
		if _, keep := prot[s.ID]; keep {
			continue
		}
		next := s.Next
		m.remove(s.ID)
		*m = m.Subst(map[StateID]StateID{id: next})
		return true
	}
	return false
}

// pullOne folds a state with exactly one predecessor into that
// predecessor, when the predecessor is a fall-through pointing at it.
func (m *Machine) pullOne() bool {
	prot := m.protected()
	preds := m.predCounts()
	for _, id := range m.ascending() {
		p := m.State(id)
		if p.Kind != StateFall || p.Next == p.ID {
			continue
		}
		t := m.State(p.Next)
		if t == nil || preds[t.ID] != 1 {
			continue
		}
		if _, keep := prot[t.ID]; keep {
			continue
		}
		m.fold(p.ID, t.ID)
		return true
	}
	return false
}

// fold merges state t into state p, keeping p's id and the concatenated
// bodies.
func (m *Machine) fold(pid, tid StateID) {
	p := m.State(pid)
	t := m.State(tid)
	combined := *t
	combined.ID = pid
	combined.Body = nil
	combined.Body = append(combined.Body, p.Body...)
	combined.Body = append(combined.Body, t.Body...)
	*p = combined
	m.remove(tid)
	*m = m.Subst(map[StateID]StateID{tid: pid})
}

// predCounts counts references to each state id from transitions and the
// machine start.
func (m *Machine) predCounts() map[StateID]int {
	out := make(map[StateID]int)
	out[m.Start]++
	for i := range m.States {
		for _, t := range m.States[i].targets() {
			out[t]++
		}
	}
	return out
}

func (m *Machine) remove(id StateID) {
	for i := range m.States {
		if m.States[i].ID == id {
			m.States = append(m.States[:i], m.States[i+1:]...)
			return
		}
	}
}
