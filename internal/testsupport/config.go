package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.SetDataset("GSE68849", "")
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDataset overrides the dataset name and series.
func WithDataset(name, series string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SetDataset(name, series)
	}
}

// WithBaseURL points the fetch stage at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.BaseURL = url
	}
}

// WithHistory enables the sqlite run journal under the log directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithMaxParallel sets projection parallelism.
func WithMaxParallel(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.MaxParallel = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
