package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateSceneData(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAssets() error {
	if c.Assets.BaseURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Assets.BaseURL)
	if err != nil {
		return fmt.Errorf("assets.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("assets.base_url must use http or https, got %q", c.Assets.BaseURL)
	}
	return nil
}

func (c *Config) validateSceneData() error {
	if c.SceneData.CameraCount <= 0 {
		return errors.New("scene_data.camera_count must be positive")
	}
	if c.SceneData.BaseURL != "" && c.SceneData.SceneID == "" {
		return errors.New("scene_data.scene_id must be set when scene_data.base_url is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", strings.TrimSpace(c.Logging.Level))
	}
	return nil
}
