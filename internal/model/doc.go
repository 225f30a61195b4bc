// Package model defines the data structures shared by kakusu's packages.
//
//   - StrokePattern: an ordered tuple of stroke counts, one per character
//   - Verdict and Verdicts: the categorical answers of a fortune oracle
//   - CandidateResult: one evaluated pattern with both oracle results
//   - AnalysisRun: the ranked outcome of one analysis
//   - NameCandidate: a real given name from the candidate database
//
// Design decision: models live in their own package so that oracle, score,
// pipeline, database and report can all use them without import cycles.
// All types serialize to JSON; the JSON field names follow the result files
// of the earlier tool so existing files stay readable.
package model
