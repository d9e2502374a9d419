package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ctxmenu/internal/config"
	"ctxmenu/internal/desktop"
	"ctxmenu/internal/logging"
)

// newDesktop builds the clipboard and window adapters. Tests replace it.
var newDesktop = func(cfg *config.Config) (desktop.Clipboard, desktop.Window) {
	x := desktop.NewX11(cfg.Tools)
	return x, x
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// logger returns a logger for the loaded config. fileOnly keeps the terminal
// free for the popup.
func (c *commandContext) logger(fileOnly bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, fileOnly)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
