// Package candidate finds real given names that match a stroke pattern.
//
// Names are scraped from the per-stroke-count lists of a baby name
// dictionary site and kept in the local database, so a pattern found by an
// analysis can be turned into names people actually use.
package candidate
