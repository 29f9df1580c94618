// Package diag defines the diagnostic model shared by all compiler phases.
//
// Diagnostic is the central record: a severity, a stable code, a message,
// the primary span into a rendered kernel source, and optional notes for
// secondary context. Codes group by phase: PTH for the path engine, INF for
// inference, LOW for lowering, PAS for the rewrite pipeline, VER for the
// verification gates, ELB for design elaboration and OBS for informational
// output.
//
// Phases emit through a Reporter so they stay decoupled from storage and
// rendering. BagReporter aggregates into a Bag, which supports sorting,
// deduplication and merging; rendering lives in internal/diagfmt.
//
// Keep the data model deterministic and side-effect free so diagnostics can
// be serialized for tests and tooling.
package diag
