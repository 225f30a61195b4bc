// Package pattern enumerates the stroke patterns of an analysis run.
//
// A run with n characters evaluates every combination of stroke counts
// 1..20 per position, which is 20, 400 or 8000 patterns. The space is small
// enough to be materialized, which keeps the progress total exact.
package pattern
