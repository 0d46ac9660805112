// Package trace records what the preprocessor is doing while it runs.
//
// Events are grouped in three scopes: the whole run, one file expansion and
// one escape region. The level picks how deep tracing goes:
//
//   - LevelOff: nothing
//   - LevelError: only failures (run/file end events that carry an error)
//   - LevelRun: run boundaries
//   - LevelFile: run and file boundaries
//   - LevelRegion: everything, one span per escape region
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "expand", parentID)
//	defer span.End("")
//
// Enable it from the command line:
//
//	schemepp --trace=- --trace-level=region input.c.in
package trace
