// Package trace provides structured event tracing for punctab runs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	punctab gen --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Failures only
//   - LevelPhase: Driver and per-table boundaries
//   - LevelDetail: Pipeline passes (scan, build, flatten, verify, write)
//   - LevelDebug: Everything including per-group flattening events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "flatten", parentID)
//	defer span.End("")
package trace
