// Package diag defines the diagnostic model shared by the scanner, the table
// compiler and the writers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span of the offending entry or line.
//   - Notes – optional secondary spans (e.g. "first defined here").
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. NewReportBuilder (or ReportError/ReportWarning)
// accumulates notes before Emit. BagReporter stores diagnostics in a sortable,
// bounded Bag; DedupReporter drops repeats before they reach the next reporter.
//
// Package diag performs no formatting and no IO; rendering lives in
// internal/diagfmt.
package diag
