// Package journal records conversion metadata in SQLite. The journal is
// optional and keeps only request metadata (format, outcome, sizes,
// timing), never model bytes. When disabled the daemon runs with a nil
// store and the API reports an empty history.
package journal
