// Package trace records structured compiler events (spans and points) for
// diagnosing slow or stuck runs.
//
//	shadec check --trace=- --trace-level=phase shader.ast.json
//
// Levels gate scopes: phase shows driver and pass spans, detail adds one span
// per function, debug adds statement-level events. Tracers:
//
//   - Nop: disabled tracing, zero cost
//   - StreamTracer: writes text or NDJSON as events arrive
//   - RingTracer: keeps the last N events in memory, dumped on panic
//   - MultiTracer: fan-out
package trace
