// Package diag defines the diagnostic model shared by all riffc phases.
//
// Diagnostic is the central record: a Severity, a stable numeric Code, a
// short message, a primary source.Span and optional secondary Notes. Phases
// emit diagnostics through the Reporter interface so producers stay
// decoupled from storage; BagReporter aggregates into a Bag, which supports
// capping, sorting and deduplication for deterministic output.
//
// Rendering lives in golden.go (stable one-line-per-entry form used both by
// the CLI short output and by golden tests). The package performs no IO.
//
// User-facing problems (malformed source, structural misuse of suspension)
// travel through a Reporter and never abort a pass; compiler-internal
// invariant violations are plain Go errors and abort the current compile
// unit only.
package diag
