// Package logging assembles the structured slog loggers used across the
// gateway.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handling code can
// automatically tag log lines with request correlation IDs and backend
// names. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
