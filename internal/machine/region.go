package machine

import (
	"riff/internal/source"
)

type RegionKind uint8

const (
	// RegionCatch routes exceptions raised in Body to the catch handler.
	RegionCatch RegionKind = iota + 1
	// RegionFinally guarantees the finally body runs on every exit from
	// Body, normal or exceptional.
	RegionFinally
)

func (k RegionKind) String() string {
	switch k {
	case RegionCatch:
		return "catch"
	case RegionFinally:
		return "finally"
	default:
		return "unknown"
	}
}

// TryRegion records which states lie inside one guarded try body. The
// forest structure is implicit: region A encloses region B when A's Body
// contains B's Entry. Regions are owned by exactly one machine; merging
// copies them with id substitution, never shares them.
type TryRegion struct {
	Kind RegionKind

	// Body is the guarded state-id set: the try body for a catch region,
	// the try body plus the catch handler for a finally region.
	Body []StateID

	// Entry is the first state of the handler (catch or finally body).
	Entry StateID

	// Handler is the catch binding name. Catch regions only.
	Handler source.StringID

	// Pass is the StateFinally marker reached when the finally body
	// completes normally. Finally regions only.
	Pass StateID
}

// Contains reports whether id lies in the guarded set.
func (r *TryRegion) Contains(id StateID) bool {
	for _, s := range r.Body {
		if s == id {
			return true
		}
	}
	return false
}

func (r *TryRegion) clone(sub map[StateID]StateID) TryRegion {
	out := *r
	out.Body = make([]StateID, len(r.Body))
	for i, id := range r.Body {
		out.Body[i] = subst(sub, id)
	}
	out.Entry = subst(sub, r.Entry)
	out.Pass = subst(sub, r.Pass)
	return out
}
