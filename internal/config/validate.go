package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		if errors.Is(err, services.ErrValidation) {
			return err
		}
		return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if err := c.DatasetRef().Validate(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateProjection(); err != nil {
		return err
	}
	if c.Workflow.MaxParallel < 1 || c.Workflow.MaxParallel > maxWorkflowParallel {
		return fmt.Errorf("workflow.max_parallel must be between 1 and %d", maxWorkflowParallel)
	}
	return c.validateLogging()
}

func (c *Config) validateFetch() error {
	parsed, err := url.Parse(c.Fetch.BaseURL)
	if err != nil {
		return fmt.Errorf("fetch.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("fetch.base_url must use http or https, got %q", c.Fetch.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("fetch.base_url must include a host, got %q", c.Fetch.BaseURL)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateProjection() error {
	for _, value := range []string{c.Projection.SourceTable, c.Projection.Suffix} {
		if strings.ContainsAny(value, `/\`) {
			return fmt.Errorf("projection table names must not contain path separators, got %q", value)
		}
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
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
