// Package convert holds the framework-neutral conversion core: the
// request contract, the format dispatcher, the classified error taxonomy,
// and the worker pool that keeps blocking conversion work off the request
// handling path. Framework-specific strategies live under
// internal/converters and plug in through the Strategy interface.
package convert
