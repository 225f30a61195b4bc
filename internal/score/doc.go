// Package score converts oracle verdicts into numbers.
//
// Each oracle has its own table from verdict word to a score in 0..100 and
// its own list of categories that count. A candidate's oracle score is the
// mean over the categories that are present; the composite score is the
// plain mean of the two oracle scores.
//
// Design decision: a verdict the table does not know is scored 0 and
// logged, rather than skipped. An unexpected word therefore lowers the
// score instead of silently raising it, and the warning makes markup
// changes on the oracle side visible.
package score
