// Package api defines the JSON payload types shared by the daemon's
// HTTP surface and the CLI client.
package api
