package lower

import (
	"riff/internal/machine"
	"riff/internal/source"
)

// resolveBranches rewrites the break/continue states of a child machine
// that target the construct currently being merged. A state resolves when
// it is unlabeled or its label is in the active set; anything else is left
// for an enclosing construct. contTarget is NoStateID inside a switch,
// where unlabeled continue threads through to the enclosing loop.
//
// Label resolution is a stack discipline: each loop or switch calls this
// once with its own active set, so an unresolved state climbing the merge
// chain meets its targets innermost-first.
func resolveBranches(m machine.Machine, labels []source.StringID, breakTarget, contTarget machine.StateID) machine.Machine {
	matches := func(l source.StringID) bool {
		if !l.IsValid() {
			return true
		}
		for _, have := range labels {
			if have == l {
				return true
			}
		}
		return false
	}

	out := m.Subst(nil)
	for i := range out.States {
		st := &out.States[i]
		switch st.Kind {
		case machine.StateBreak:
			if matches(st.Label) {
				*st = machine.State{ID: st.ID, Kind: machine.StateFall, Body: st.Body, Next: breakTarget}
			}
		case machine.StateContinue:
			if !contTarget.IsValid() {
				continue
			}
			if matches(st.Label) {
				*st = machine.State{ID: st.ID, Kind: machine.StateFall, Body: st.Body, Next: contTarget}
			}
		}
	}
	return out
}

// resolveLabeledBreaks handles a label attached to a plain block: only a
// break naming that label exits it; unlabeled break and continue belong
// to an enclosing loop or switch.
func resolveLabeledBreaks(m machine.Machine, labels []source.StringID, target machine.StateID) machine.Machine {
	named := make(map[source.StringID]struct{}, len(labels))
	for _, l := range labels {
		named[l] = struct{}{}
	}
	out := m.Subst(nil)
	for i := range out.States {
		st := &out.States[i]
		if st.Kind != machine.StateBreak || !st.Label.IsValid() {
			continue
		}
		if _, ok := named[st.Label]; ok {
			*st = machine.State{ID: st.ID, Kind: machine.StateFall, Body: st.Body, Next: target}
		}
	}
	return out
}
