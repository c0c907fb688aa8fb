package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/stage"
	"github.com/muzykantov/geo-data-pipeline/internal/stageexec"
)

// Fetcher retrieves the dataset archive.
type Fetcher interface {
	Fetch(ctx context.Context, ref dataset.Ref, dest string) error
}

// Extractor unpacks a container into per-member tables.
type Extractor interface {
	Extract(ctx context.Context, containerPath, destDir string) error
}

// Projector trims every source table under an extraction root and reports
// whether that work is already done.
type Projector interface {
	ProjectTree(ctx context.Context, root string) ([]string, error)
	Complete(root string) (bool, error)
}

// Options wires a Driver.
type Options struct {
	Layout    dataset.Layout
	Fetcher   Fetcher
	Extractor Extractor
	Projector Projector
	Journal   stageexec.Recorder
	Logger    *slog.Logger
	// NewRunID overrides run ID generation.
	NewRunID func() string
}

// Driver sequences Fetch, Extract, and Project for one dataset. Each stage is
// skipped when its artifact is already complete on disk.
type Driver struct {
	layout   dataset.Layout
	handlers map[stage.Kind]stage.Handler
	journal  stageexec.Recorder
	logger   *slog.Logger
	newRunID func() string
}

// New validates options and builds a driver.
func New(opts Options) (*Driver, error) {
	if opts.Layout.Root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "storage root is required", nil)
	}
	if err := opts.Layout.Ref.Validate(); err != nil {
		return nil, err
	}
	if opts.Fetcher == nil || opts.Extractor == nil || opts.Projector == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "fetcher, extractor and projector are required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	layout := opts.Layout
	componentLogger := logging.NewComponentLogger(logger, "workflow")
	if expected, ok := layout.Ref.UnconventionalSeries(); ok {
		logging.WarnWithContext(componentLogger, "series bucket differs from accession", "series_unconventional",
			logging.String("series", layout.Ref.Series),
			logging.String("expected_series", expected),
			logging.String(logging.FieldErrorHint, "fetch fails on the public mirror unless it uses this bucket"),
			logging.String(logging.FieldImpact, "archive URL uses the configured series"),
		)
	}
	return &Driver{
		layout: layout,
		handlers: map[stage.Kind]stage.Handler{
			stage.Fetch:   &fetchStage{layout: layout, fetcher: opts.Fetcher},
			stage.Extract: &extractStage{layout: layout, extractor: opts.Extractor},
			stage.Project: &projectStage{layout: layout, projector: opts.Projector},
		},
		journal:  opts.Journal,
		logger:   componentLogger,
		newRunID: newRunID,
	}, nil
}

// Layout returns the dataset layout the driver operates on.
func (d *Driver) Layout() dataset.Layout {
	return d.layout
}

// Outcome is what happened to one stage during a run.
type Outcome struct {
	Kind    stage.Kind    `json:"stage" yaml:"stage"`
	Skipped bool          `json:"skipped" yaml:"skipped"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Report summarizes one invocation.
type Report struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	Dataset  string    `json:"dataset" yaml:"dataset"`
	Outcomes []Outcome `json:"stages" yaml:"stages"`
}

// Executed reports how many stages ran their action.
func (r Report) Executed() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if !outcome.Skipped {
			count++
		}
	}
	return count
}

// Run resolves every stage in order under the storage-root lock. The first
// failing stage aborts the run.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	return d.run(ctx, stage.All())
}

// RunStage resolves target and any incomplete predecessors.
func (d *Driver) RunStage(ctx context.Context, target stage.Kind) (Report, error) {
	if !target.Valid() {
		return Report{}, fmt.Errorf("unknown stage %d", int(target))
	}
	return d.run(ctx, []stage.Kind{target})
}

func (d *Driver) run(ctx context.Context, targets []stage.Kind) (Report, error) {
	lock, err := acquireLock(d.layout)
	if err != nil {
		return Report{}, err
	}
	defer lock.release()

	state := &runState{
		report:   Report{RunID: d.newRunID(), Dataset: d.layout.Ref.String()},
		resolved: make(map[stage.Kind]bool, len(targets)),
	}
	ctx = services.WithRunID(ctx, state.report.RunID)
	ctx = services.WithDataset(ctx, state.report.Dataset)
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("root", d.layout.Root),
	)

	started := time.Now()
	for _, kind := range targets {
		if err := d.resolve(ctx, kind, state); err != nil {
			logger.Error("pipeline failed",
				logging.String(logging.FieldEventType, "run_failure"),
				logging.String(logging.FieldStage, kind.String()),
				logging.Error(err),
			)
			return state.report, err
		}
	}
	logger.Info("pipeline completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("executed", state.report.Executed()),
		logging.Bool("up_to_date", state.report.Executed() == 0),
		logging.Duration("elapsed", time.Since(started)),
	)
	return state.report, nil
}

type runState struct {
	report   Report
	resolved map[stage.Kind]bool
}

// resolve evaluates kind's predicate; an incomplete stage first resolves its
// predecessor and then executes. Each stage is resolved at most once per run.
func (d *Driver) resolve(ctx context.Context, kind stage.Kind, state *runState) error {
	if state.resolved[kind] {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	handler := d.handlers[kind]
	opts := d.execOptions(kind, handler, state.report.RunID)

	complete, err := handler.Complete(ctx)
	if err != nil {
		return fmt.Errorf("check %s completeness: %w", kind, err)
	}
	if complete {
		stageexec.Skip(ctx, opts)
		state.resolved[kind] = true
		state.report.Outcomes = append(state.report.Outcomes, Outcome{Kind: kind, Skipped: true})
		return nil
	}

	if prev, ok := kind.Predecessor(); ok {
		if err := d.resolve(ctx, prev, state); err != nil {
			return err
		}
	}

	started := time.Now()
	if err := stageexec.Run(ctx, opts); err != nil {
		return err
	}
	state.resolved[kind] = true
	state.report.Outcomes = append(state.report.Outcomes, Outcome{Kind: kind, Elapsed: time.Since(started)})
	return nil
}

func (d *Driver) execOptions(kind stage.Kind, handler stage.Handler, runID string) stageexec.Options {
	return stageexec.Options{
		Logger:  d.logger,
		Journal: d.journal,
		Kind:    kind,
		Handler: handler,
		RunID:   runID,
		Dataset: d.layout.Ref.String(),
	}
}

// Status evaluates every stage predicate without executing anything.
func (d *Driver) Status(ctx context.Context) ([]stage.Status, error) {
	statuses := make([]stage.Status, 0, len(d.handlers))
	for _, kind := range stage.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		handler := d.handlers[kind]
		complete, err := handler.Complete(ctx)
		if err != nil {
			return nil, fmt.Errorf("check %s completeness: %w", kind, err)
		}
		if complete {
			statuses = append(statuses, stage.Completed(kind, handler.Artifact()))
			continue
		}
		statuses = append(statuses, stage.Pending(kind, handler.Artifact(), pendingDetail(kind)))
	}
	return statuses, nil
}

func pendingDetail(kind stage.Kind) string {
	switch kind {
	case stage.Fetch:
		return "archive missing or empty"
	case stage.Extract:
		return "extraction missing or a member has no tables"
	case stage.Project:
		return "untrimmed Probes tables remain"
	default:
		return ""
	}
}

// IsLocked reports whether err came from lock contention on the storage root.
func IsLocked(err error) bool {
	return errors.Is(err, services.ErrLocked)
}
