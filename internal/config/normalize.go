package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
)

func (c *Config) normalize() error {
	c.applyEnvOverrides()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeFetch()
	c.normalizeProjection()
	if c.Workflow.MaxParallel <= 0 {
		c.Workflow.MaxParallel = defaultWorkflowParallel
	}
	c.normalizeLogging()
	return nil
}

// applyEnvOverrides lets the environment win over file values so a single
// .env can retarget a run without editing the config file.
func (c *Config) applyEnvOverrides() {
	if value, ok := lookupEnv(envDataDir); ok {
		c.Paths.DataDir = value
	}
	name, nameSet := lookupEnv(envDatasetName)
	series, seriesSet := lookupEnv(envDatasetSeries)
	if nameSet && !seriesSet && dataset.SeriesFor(name) != "" {
		series = dataset.SeriesFor(name)
		seriesSet = true
	}
	if nameSet {
		c.Dataset.Name = name
	}
	if seriesSet {
		c.Dataset.Series = series
	}
	if value, ok := lookupEnv(envFetchBaseURL); ok {
		c.Fetch.BaseURL = value
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.Name = strings.ToUpper(strings.TrimSpace(c.Dataset.Name))
	c.Dataset.Series = strings.TrimSpace(c.Dataset.Series)
	if c.Dataset.Series == "" {
		c.Dataset.Series = dataset.SeriesFor(c.Dataset.Name)
	}
}

func (c *Config) normalizeFetch() {
	c.Fetch.BaseURL = strings.TrimRight(strings.TrimSpace(c.Fetch.BaseURL), "/")
	if c.Fetch.BaseURL == "" {
		c.Fetch.BaseURL = defaultFetchBaseURL
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
}

func (c *Config) normalizeProjection() {
	c.Projection.SourceTable = strings.TrimSpace(c.Projection.SourceTable)
	if c.Projection.SourceTable == "" {
		c.Projection.SourceTable = defaultProjectionSource
	}
	c.Projection.Suffix = strings.TrimSpace(c.Projection.Suffix)
	if c.Projection.Suffix == "" {
		c.Projection.Suffix = defaultProjectionSuffix
	}
	if c.Projection.DropColumns == nil {
		c.Projection.DropColumns = DefaultDropColumns()
		return
	}
	columns := make([]string, 0, len(c.Projection.DropColumns))
	seen := make(map[string]struct{}, len(c.Projection.DropColumns))
	for _, column := range c.Projection.DropColumns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if _, exists := seen[column]; exists {
			continue
		}
		seen[column] = struct{}{}
		columns = append(columns, column)
	}
	c.Projection.DropColumns = columns
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
