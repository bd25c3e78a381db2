package main

import (
	"strings"
	"sync"

	"onnxgate/internal/config"
)

type commandContext struct {
	addressFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{
		addressFlag: addressFlag,
		configFlag:  configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// address resolves the daemon API address: the --address flag wins, then
// the configured bind address, then the built-in default.
func (c *commandContext) address() string {
	if c.addressFlag != nil {
		if addr := strings.TrimSpace(*c.addressFlag); addr != "" {
			return addr
		}
	}
	if cfg, err := c.ensureConfig(); err == nil {
		if addr := strings.TrimSpace(cfg.Paths.APIBind); addr != "" {
			return addr
		}
	}
	return config.DefaultAPIBind
}

func (c *commandContext) client() *client {
	return newClient(c.address())
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
