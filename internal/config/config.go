package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the storage root and log directory.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Dataset names the GEO series processed by the pipeline.
type Dataset struct {
	Name   string `toml:"name"`
	Series string `toml:"series"`
}

// Fetch contains settings for archive retrieval.
type Fetch struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Projection contains column projection settings for the Project stage.
type Projection struct {
	SourceTable string   `toml:"source_table"`
	Suffix      string   `toml:"suffix"`
	DropColumns []string `toml:"drop_columns"`
}

// Workflow contains stage execution settings.
type Workflow struct {
	MaxParallel int `toml:"max_parallel"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the run journal.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for geopipe.
//
// Configuration sections by subsystem:
//   - Paths: storage root and log directory
//   - Dataset: GEO accession and series bucket
//   - Fetch: archive download endpoint and HTTP settings
//   - Projection: Probes table trimming
//   - Workflow: projection parallelism
//   - Logging: log format and level
//   - History: sqlite run journal
type Config struct {
	Paths      Paths      `toml:"paths"`
	Dataset    Dataset    `toml:"dataset"`
	Fetch      Fetch      `toml:"fetch"`
	Projection Projection `toml:"projection"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the storage root and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatasetRef returns the configured dataset as a validated-shape ref.
func (c *Config) DatasetRef() dataset.Ref {
	return dataset.Ref{Name: c.Dataset.Name, Series: c.Dataset.Series}
}

// Layout returns the on-disk layout of the configured dataset.
func (c *Config) Layout() dataset.Layout {
	return dataset.NewLayout(c.Paths.DataDir, c.DatasetRef())
}

// FetchTimeout returns the HTTP timeout for archive downloads.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// HistoryPath returns the location of the run journal database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, historyFileName)
}

// SetDataset overrides the configured dataset. An empty series is derived
// from the accession.
func (c *Config) SetDataset(name, series string) {
	name = strings.TrimSpace(name)
	series = strings.TrimSpace(series)
	if name != "" {
		c.Dataset.Name = name
		if series == "" {
			series = dataset.SeriesFor(name)
		}
	}
	if series != "" {
		c.Dataset.Series = series
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
