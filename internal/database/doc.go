// Package database provides SQLite-based storage for mirror run history.
//
// Each completed mirror run is recorded with its counters and failures,
// plus one row per mirrored page, so past runs can be listed and compared
// without re-reading the mirror directories.
//
// Design decision: We use a single database file for all spaces rather
// than one file per space. Runs are keyed by space, which keeps
// cross-space history queries trivial and backup a single-file affair.
package database
