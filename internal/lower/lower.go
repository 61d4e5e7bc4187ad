// Package lower converts function bodies containing suspension points
// into flat resumable state machines. The pass runs bottom-up over the
// statement tree: leaves holding a suspension become one- or two-state
// machines, every enclosing compound statement merges its children's
// machines into a bigger one, and the finished root machine is rendered
// back into plain statements driven by a numeric program counter and a
// dispatch switch. Functions without a suspension point are returned
// untouched.
package lower

import (
	"fmt"

	"riff/internal/ast"
	"riff/internal/diag"
	"riff/internal/machine"
	"riff/internal/names"
)

type Options struct {
	Reporter diag.Reporter
}

// FileResult summarizes one file pass.
type FileResult struct {
	// Lowered counts functions rewritten into state machines.
	Lowered int
	// Skipped counts functions with no suspension point.
	Skipped int
	// Failed counts functions left unlowered because of reported
	// structural misuse.
	Failed int
}

// File lowers every suspending function in the file, best-effort: misuse
// in one function is reported and does not stop its siblings. The
// returned error indicates an internal invariant violation and is fatal
// to the compile unit.
func File(b *ast.Builder, file ast.FileID, alloc *machine.Alloc, opts Options) (FileResult, error) {
	var res FileResult
	for _, fnID := range b.File(file).Funcs {
		lowered, err := Func(b, fnID, alloc, opts)
		switch {
		case err != nil:
			return res, err
		case lowered:
			res.Lowered++
		default:
			if kind, ok := classifyQuiet(b, fnID); ok && kind == suspendNone {
				res.Skipped++
			} else {
				res.Failed++
			}
		}
	}
	return res, nil
}

// Func lowers a single function in place. It reports structural misuse
// through opts.Reporter and returns whether the body was rewritten.
func Func(b *ast.Builder, fnID ast.FuncID, alloc *machine.Alloc, opts Options) (bool, error) {
	kind, ok := classify(b, fnID, opts.Reporter)
	if !ok || kind == suspendNone {
		return false, nil
	}

	fn := b.Func(fnID)
	s := newSession(b, alloc, names.ForFunc(b, fnID), kind)
	m, converted := s.lowerStmt(fn.Body, nil)
	if !converted {
		return false, fmt.Errorf("lower: %s: classified as suspending but produced no machine",
			b.Strings.MustLookup(fn.Name))
	}
	m = m.Compact()
	if err := m.Validate(); err != nil {
		return false, fmt.Errorf("lower: %s: %w", b.Strings.MustLookup(fn.Name), err)
	}

	em := newEmitter(s, m)
	b.Func(fnID).Body = em.emit()
	return true, nil
}

// classifyQuiet re-runs classification without reporting, for bookkeeping
// only.
func classifyQuiet(b *ast.Builder, fnID ast.FuncID) (suspendKind, bool) {
	return classify(b, fnID, nil)
}
