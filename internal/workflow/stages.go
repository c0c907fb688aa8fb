package workflow

import (
	"context"
	"log/slog"

	"github.com/muzykantov/geo-data-pipeline/internal/archive"
	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/fileutil"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
)

type fetchStage struct {
	layout  dataset.Layout
	fetcher Fetcher
}

func (s *fetchStage) Artifact() string { return s.layout.ArchivePath() }

// Complete: the archive exists and is non-empty.
func (s *fetchStage) Complete(context.Context) (bool, error) {
	return fileutil.NonEmptyFile(s.layout.ArchivePath())
}

func (s *fetchStage) Execute(ctx context.Context) error {
	return s.fetcher.Fetch(ctx, s.layout.Ref, s.layout.ArchivePath())
}

type extractStage struct {
	layout    dataset.Layout
	extractor Extractor
	logger    *slog.Logger
}

func (s *extractStage) Artifact() string { return s.layout.ExtractDir() }

func (s *extractStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Complete: the extraction directory exists and every directory below it
// holds at least one table.
func (s *extractStage) Complete(context.Context) (bool, error) {
	return archive.Complete(s.layout.ExtractDir())
}

func (s *extractStage) Execute(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Debug("extracting archive",
			logging.String("container", s.layout.ArchivePath()),
			logging.String("destination", s.layout.ExtractDir()),
		)
	}
	return s.extractor.Extract(ctx, s.layout.ArchivePath(), s.layout.ExtractDir())
}

type projectStage struct {
	layout    dataset.Layout
	projector Projector
	logger    *slog.Logger
}

func (s *projectStage) Artifact() string { return s.layout.ExtractDir() }

func (s *projectStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Complete: the extraction directory exists and every Probes table has a
// non-empty trimmed sibling.
func (s *projectStage) Complete(context.Context) (bool, error) {
	return s.projector.Complete(s.layout.ExtractDir())
}

func (s *projectStage) Execute(ctx context.Context) error {
	outputs, err := s.projector.ProjectTree(ctx, s.layout.ExtractDir())
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Debug("projection outputs written", logging.Int("tables", len(outputs)))
	}
	return nil
}
