// Package database provides SQLite-based storage for kakusu.
//
// A single Store file holds:
//   - finished analysis runs, for the history command
//   - cached oracle verdicts, so repeated runs do not hit the sites again
//   - real given names indexed by per-character stroke counts
//
// Design decision: We use SQLite via modernc.org/sqlite. The driver is
// pure Go, so the binary cross-compiles without CGO, and one file in the
// XDG data directory is all the state the tool has.
//
// Timestamps are written by the Store as RFC 3339 strings in UTC so that
// cache expiry does not depend on the SQLite clock.
package database
