package workflow

import (
	"fmt"
	"log/slog"

	"github.com/muzykantov/geo-data-pipeline/internal/archive"
	"github.com/muzykantov/geo-data-pipeline/internal/config"
	"github.com/muzykantov/geo-data-pipeline/internal/history"
	"github.com/muzykantov/geo-data-pipeline/internal/projection"
	"github.com/muzykantov/geo-data-pipeline/internal/services/geo"
)

// FromConfig assembles a driver with the production collaborators. The
// returned closer releases the run journal and is always safe to call.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Driver, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("config is required")
	}

	var (
		journal *history.Store
		closer  = noop
	)
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, noop, fmt.Errorf("open run journal: %w", err)
		}
		journal = store
		closer = store.Close
	}

	opts := Options{
		Layout:    cfg.Layout(),
		Fetcher:   geo.NewConfiguredClient(cfg, logger),
		Extractor: archive.NewRunner(logger),
		Projector: projection.New(
			cfg.Projection.SourceTable,
			cfg.Projection.Suffix,
			cfg.Projection.DropColumns,
			cfg.Workflow.MaxParallel,
			logger,
		),
		Logger: logger,
	}
	if journal != nil {
		opts.Journal = journal
	}

	driver, err := New(opts)
	if err != nil {
		_ = closer()
		return nil, noop, err
	}
	return driver, closer, nil
}
