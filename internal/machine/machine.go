package machine

import (
	"fmt"
	"sort"
	"strings"
)

// Machine is the unit that flows bottom-up through lowering: a start id,
// the id reached on normal completion, the flat state list, and the
// exception regions. Fall is deliberately not a state in States; the
// enclosing merge decides what lives there.
type Machine struct {
	Start   StateID
	Fall    StateID
	States  []State
	Regions []TryRegion
}

// Subst returns a deep copy with every id occurrence rewritten through
// sub. Ids absent from sub pass through unchanged.
func (m Machine) Subst(sub map[StateID]StateID) Machine {
	out := Machine{
		Start: subst(sub, m.Start),
		Fall:  subst(sub, m.Fall),
	}
	out.States = make([]State, len(m.States))
	for i := range m.States {
		out.States[i] = m.States[i].clone(sub)
	}
	if len(m.Regions) > 0 {
		out.Regions = make([]TryRegion, len(m.Regions))
		for i := range m.Regions {
			out.Regions[i] = m.Regions[i].clone(sub)
		}
	}
	return out
}

// State returns the state with the given id, or nil.
func (m Machine) State(id StateID) *State {
	for i := range m.States {
		if m.States[i].ID == id {
			return &m.States[i]
		}
	}
	return nil
}

// StateIDs lists every state id in the machine, in list order.
func (m Machine) StateIDs() []StateID {
	out := make([]StateID, len(m.States))
	for i := range m.States {
		out[i] = m.States[i].ID
	}
	return out
}

// Sorted returns the states in ascending id order, the order emission
// renders cases in.
func (m Machine) Sorted() []State {
	out := make([]State, len(m.States))
	copy(out, m.States)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks the structural invariants a finished root machine must
// satisfy before emission. Violations are compiler bugs, not user errors.
func (m Machine) Validate() error {
	known := make(map[StateID]struct{}, len(m.States)+1)
	for i := range m.States {
		id := m.States[i].ID
		if !id.IsValid() {
			return fmt.Errorf("machine: state %d has invalid id", i)
		}
		if _, dup := known[id]; dup {
			return fmt.Errorf("machine: duplicate state id %d", id)
		}
		known[id] = struct{}{}
	}
	known[m.Fall] = struct{}{}

	check := func(from StateID, to StateID) error {
		if !to.IsValid() {
			return fmt.Errorf("machine: state %d has an unset target", from)
		}
		if _, ok := known[to]; !ok {
			return fmt.Errorf("machine: state %d targets dangling id %d", from, to)
		}
		return nil
	}
	for i := range m.States {
		s := &m.States[i]
		switch s.Kind {
		case StateBreak, StateContinue:
			return fmt.Errorf("machine: unresolved %s at state %d reached the root", s.Kind, s.ID)
		case StateInvalid:
			return fmt.Errorf("machine: invalid state kind at id %d", s.ID)
		}
		for _, t := range s.targets() {
			if err := check(s.ID, t); err != nil {
				return err
			}
		}
	}
	if _, ok := known[m.Start]; !ok {
		return fmt.Errorf("machine: start id %d is dangling", m.Start)
	}
	for i := range m.Regions {
		r := &m.Regions[i]
		if _, ok := known[r.Entry]; !ok {
			return fmt.Errorf("machine: %s region entry %d is dangling", r.Kind, r.Entry)
		}
		if r.Kind == RegionFinally {
			if _, ok := known[r.Pass]; !ok {
				return fmt.Errorf("machine: finally pass id %d is dangling", r.Pass)
			}
		}
	}
	return nil
}

// Dump renders a compact structural summary for tests and debugging.
func (m Machine) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "start=%d fall=%d\n", m.Start, m.Fall)
	for _, s := range m.Sorted() {
		fmt.Fprintf(&sb, "  %d %s", s.ID, s.Kind)
		if len(s.Body) > 0 {
			fmt.Fprintf(&sb, " body=%d", len(s.Body))
		}
		switch s.Kind {
		case StateFall:
			fmt.Fprintf(&sb, " -> %d", s.Next)
		case StateCond:
			fmt.Fprintf(&sb, " -> %d|%d", s.Then, s.Else)
		case StateMulti:
			for _, arm := range s.Arms {
				if arm.IsDefault {
					fmt.Fprintf(&sb, " default->%d", arm.Target)
				} else {
					fmt.Fprintf(&sb, " case->%d", arm.Target)
				}
			}
		case StateSuspend:
			fmt.Fprintf(&sb, " resume=%d", s.Resume)
			if s.Fail.IsValid() {
				fmt.Fprintf(&sb, " fail=%d", s.Fail)
			}
		}
		sb.WriteByte('\n')
	}
	for i := range m.Regions {
		r := &m.Regions[i]
		fmt.Fprintf(&sb, "  region %s entry=%d body=%v\n", r.Kind, r.Entry, r.Body)
	}
	return sb.String()
}
