package config

import (
	"fmt"
	"strings"
)

// Validate reports configuration values that cannot work at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		return fmt.Errorf("config: scratch_dir must be set")
	}
	if c.Converter.DefaultOpset < 1 {
		return fmt.Errorf("config: default_opset must be positive, got %d", c.Converter.DefaultOpset)
	}
	if c.Converter.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Converter.Workers)
	}
	if c.Converter.MaxUploadMiB < 1 {
		return fmt.Errorf("config: max_upload_mib must be positive, got %d", c.Converter.MaxUploadMiB)
	}
	if c.Converter.TensorFlowTimeout < 1 {
		return fmt.Errorf("config: tensorflow_timeout must be positive, got %d", c.Converter.TensorFlowTimeout)
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("config: journal.path must be set when the journal is enabled")
	}
	if c.API.RateLimitRPS < 0 {
		return fmt.Errorf("config: rate_limit_rps must not be negative")
	}
	if c.API.RateLimitRPS > 0 && c.API.RateLimitBurst < 1 {
		return fmt.Errorf("config: rate_limit_burst must be positive when rate limiting is enabled")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
