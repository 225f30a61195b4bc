// Package pipeline evaluates stroke-pattern candidates.
//
// A Pipeline runs a fixed sequence of Steps on one CandidateResult: derive
// the characters, ask oracle A, ask oracle B, compute the scores. A
// BatchProcessor runs the pipeline for every pattern of a run with bounded
// concurrency and hands each finished candidate to a callback.
//
// Design decision: the steps mutate the CandidateResult in place and report
// only cancellation as an error. Oracle failures are already absorbed by the
// oracle package, so one bad candidate never stops the batch.
//
// Tracker turns completed evaluations into a percentage for progress
// reporting. It is deliberately not synchronized; the caller owns the lock.
package pipeline
