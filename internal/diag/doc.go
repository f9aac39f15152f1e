// Package diag defines the diagnostic model shared by every phase.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string ID
// (AST1xxx for the input layer, SEM3xxx for semantic checks, LOW5xxx for
// internal lowering failures), a short message, the primary source.Span and
// optional notes pointing at related locations.
//
// Phases emit through a Reporter so they stay independent of storage. The
// usual chain is ReportError(r, code, span, msg).WithNote(...).Emit();
// BagReporter collects into a Bag, DedupReporter filters repeats and
// CountingReporter tracks the error count.
//
// Rendering lives in internal/diagfmt; this package performs no I/O.
package diag
