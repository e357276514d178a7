// Package trace records what irkit does while it runs passes over a module.
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a writer (file/stderr)
//   - RingTracer: circular buffer, dumped when a command fails
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits driver and pass spans, LevelDetail adds per-function
// spans, LevelDebug adds node-level points. LevelError keeps the tracer alive
// but emits nothing on its own.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "validate", trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
