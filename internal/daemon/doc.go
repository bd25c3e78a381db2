// Package daemon wires the conversion gateway together: backend probes,
// the strategy registry, the isolation pool, the optional journal, and
// the HTTP API. It enforces single-instance execution with a lock file.
package daemon
