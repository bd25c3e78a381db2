package config

import "strings"

// normalize expands user paths and fills zero values back to defaults so a
// sparse config file behaves predictably.
func (c *Config) normalize() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.Journal.Path) != "" {
		if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
			return err
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = DefaultAPIBind
	}

	if c.Converter.DefaultOpset == 0 {
		c.Converter.DefaultOpset = DefaultOpset
	}
	if c.Converter.Workers == 0 {
		c.Converter.Workers = DefaultWorkers
	}
	if c.Converter.MaxUploadMiB == 0 {
		c.Converter.MaxUploadMiB = DefaultMaxUploadMiB
	}
	if strings.TrimSpace(c.Converter.TensorFlowCommand) == "" {
		c.Converter.TensorFlowCommand = DefaultTensorFlowCommand
	}
	if c.Converter.TensorFlowTimeout == 0 {
		c.Converter.TensorFlowTimeout = DefaultTensorFlowTimeout
	}

	c.Logging.Format = strings.TrimSpace(c.Logging.Format)
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
