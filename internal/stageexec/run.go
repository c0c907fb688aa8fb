package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/muzykantov/geo-data-pipeline/internal/history"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/stage"
)

// Recorder appends stage outcomes to the run journal.
type Recorder interface {
	Record(context.Context, history.Entry) (int64, error)
}

// Options controls stage execution and journal behavior.
type Options struct {
	Logger  *slog.Logger
	Journal Recorder
	Kind    stage.Kind
	Handler stage.Handler
	RunID   string
	Dataset string
}

// Context returns ctx stamped with the stage, run, and dataset so every log
// line below it carries them.
func Context(ctx context.Context, opts Options) context.Context {
	ctx = services.WithRunID(ctx, opts.RunID)
	ctx = services.WithDataset(ctx, opts.Dataset)
	return services.WithStage(ctx, opts.Kind.String())
}

// Run executes the stage action with start, completion, and failure logging
// and records the outcome in the journal.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.Kind)
	}

	stageCtx := Context(ctx, opts)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	started := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("artifact", opts.Handler.Artifact()),
	)

	if err := opts.Handler.Execute(stageCtx); err != nil {
		return handleFailure(stageCtx, stageLogger, opts, started, err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("artifact", opts.Handler.Artifact()),
		logging.Duration("elapsed", time.Since(started)),
	)
	record(stageCtx, stageLogger, opts, history.Entry{
		Outcome:    history.OutcomeCompleted,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	return nil
}

// Skip logs and journals a stage whose artifact is already complete.
func Skip(ctx context.Context, opts Options) {
	stageCtx := Context(ctx, opts)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	artifact := ""
	if opts.Handler != nil {
		artifact = opts.Handler.Artifact()
	}
	stageLogger.Info(
		"stage skipped",
		logging.String(logging.FieldEventType, "stage_skip"),
		logging.String("artifact", artifact),
		logging.String("reason", "artifact complete"),
	)
	now := time.Now()
	record(stageCtx, stageLogger, opts, history.Entry{
		Outcome:    history.OutcomeSkipped,
		StartedAt:  now,
		FinishedAt: now,
	})
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, started time.Time, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	kind := services.Kind(stageErr)
	if errors.Is(stageErr, context.Canceled) {
		kind = "canceled"
	}

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("artifact", opts.Handler.Artifact()),
		logging.String("error_kind", kind),
		logging.String(logging.FieldErrorHint, hintFor(opts.Kind)),
		logging.Error(stageErr),
	)
	record(ctx, logger, opts, history.Entry{
		Outcome:      history.OutcomeFailed,
		ErrorKind:    kind,
		ErrorMessage: message,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	})
	return stageErr
}

func record(ctx context.Context, logger *slog.Logger, opts Options, entry history.Entry) {
	if opts.Journal == nil {
		return
	}
	entry.RunID = opts.RunID
	entry.Dataset = opts.Dataset
	entry.Stage = opts.Kind.String()
	if opts.Handler != nil {
		entry.Artifact = opts.Handler.Artifact()
	}
	// The journal is an audit trail; a write failure must not fail the stage.
	if _, err := opts.Journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("failed to journal stage outcome",
			logging.String(logging.FieldEventType, "journal_write_failed"),
			logging.Error(err),
		)
	}
}

func hintFor(kind stage.Kind) string {
	switch kind {
	case stage.Fetch:
		return "check network access and fetch.base_url, then re-run"
	case stage.Extract:
		return "the archive may be corrupt; delete it to force a fresh download"
	case stage.Project:
		return "inspect the named Probes table, then re-run"
	default:
		return "re-run once the cause is fixed"
	}
}
