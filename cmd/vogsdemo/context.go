package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vogsdemo/internal/config"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// manifestPath returns override when set, else the configured manifest path.
func (c *commandContext) manifestPath(override string) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return config.ExpandPath(trimmed)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.ManifestPath, nil
}

func (c *commandContext) loadManifest(override string) (*manifest.Manifest, string, error) {
	path, err := c.manifestPath(override)
	if err != nil {
		return nil, "", err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("load manifest: %w", err)
	}
	return m, path, nil
}

// commandLogger logs to the configured log file only, keeping stdout for command output.
func (c *commandContext) commandLogger() *slog.Logger {
	cfg := c.configValue()
	if cfg == nil {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{logFilePath(cfg)},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func logFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "vogsdemo-cli.log")
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
