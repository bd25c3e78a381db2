// Package metrics exposes Prometheus counters and histograms for the
// conversion gateway. Metrics hang off an instance-scoped registry so
// tests can construct isolated collectors.
package metrics
