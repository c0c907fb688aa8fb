package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

type commandContext struct {
	configFlag   *string
	dataDirFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, dataDirFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		dataDirFlag:  dataDirFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyFlagOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlagOverrides(cfg *config.Config) error {
	changed := false
	if dir := flagValue(c.dataDirFlag); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve --data-dir: %w", err)
		}
		cfg.Paths.DataDir = expanded
		changed = true
	}
	if level := flagValue(c.logLevelFlag); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
		changed = true
	}
	if changed {
		return cfg.Validate()
	}
	return nil
}

// datasetConfig returns a copy of the loaded config targeting name/series
// when either is set.
func (c *commandContext) datasetConfig(name, series string) (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	series = strings.TrimSpace(series)
	if name == "" && series == "" {
		return cfg, nil
	}
	copied := *cfg
	copied.SetDataset(strings.ToUpper(name), strings.ToUpper(series))
	if err := copied.DatasetRef().Validate(); err != nil {
		return nil, err
	}
	return &copied, nil
}

func (c *commandContext) loggerFor(cfg *config.Config) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps error classes onto process exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrValidation):
		return 2
	case errors.Is(err, services.ErrLocked):
		return 3
	default:
		return 1
	}
}
