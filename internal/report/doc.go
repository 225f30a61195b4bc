// Package report renders analysis runs and single-name evaluations.
//
// This package contains writers for different output formats:
//   - SimpleWriter: ranked table for terminal display
//   - JSONWriter: the run as JSON, the same shape SaveFile stores
//   - MarkdownWriter: a shareable document with a score distribution chart
//     and the oracles' explanation texts
//
// Design decision: The writers only read model types. Ranking and scoring
// happen in the analyzer, so a run loaded from the database renders exactly
// like a fresh one.
package report
