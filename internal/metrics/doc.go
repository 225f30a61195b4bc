// Package metrics exposes Prometheus metrics for analysis runs.
//
// A Metrics value implements the observer interfaces of the pipeline and
// oracle packages and can be passed as the unknown verdict callback of a
// score.Translator. Every Metrics owns its registry, so tests and several
// runs in one process do not collide on the default registry.
package metrics
