package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"registry.lock_timeout_seconds": c.Registry.LockTimeoutSeconds,
		"ffprobe.timeout_seconds":       c.FFprobe.TimeoutSeconds,
	})
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Catalog.DatabasePath) == "" {
		return errors.New("catalog.database_path must be set")
	}
	return nil
}

func (c *Config) validateRegistry() error {
	if strings.TrimSpace(c.Registry.ModulesPath) == "" {
		return errors.New("registry.modules_path must be set")
	}
	if strings.TrimSpace(c.Registry.DatabasePath) == "" {
		return errors.New("registry.database_path must be set")
	}
	if c.Registry.ModulesPath == c.Registry.DatabasePath {
		return errors.New("registry.modules_path and registry.database_path must be different files")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
