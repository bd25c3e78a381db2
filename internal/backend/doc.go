// Package backend probes conversion backend availability. Probes run
// once at startup; a failing probe marks its backend unavailable but
// never aborts the process, so the daemon always comes up and reports
// what it can do.
package backend
