// Package config loads, normalizes, and validates the gateway's TOML
// configuration.
package config
