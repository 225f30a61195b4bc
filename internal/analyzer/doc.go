// Package analyzer runs a stroke-pattern analysis: it validates the request,
// enumerates every pattern, evaluates the patterns against both oracles with
// bounded concurrency, reports progress and ranks the results.
//
// # Concurrency
//
// At most Concurrency candidates (default 4) are in flight. Finished
// candidates are recorded by an aggregator under a mutex, which also owns
// the progress tracker, so progress percentages are emitted in strictly
// increasing order.
//
// Progress events go to the caller's callback through a buffered channel
// drained by a single goroutine. Evaluation never waits for the callback:
// when the buffer is full the event is dropped and counted.
//
// # Timeouts
//
// A run timeout cancels the context shared by all oracle requests. Analyze
// then returns the candidates finished so far as a partial run together with
// an error wrapping ErrRunTimeout. No evaluation goroutine outlives Analyze.
package analyzer
