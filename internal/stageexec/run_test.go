package stageexec_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzykantov/geo-data-pipeline/internal/history"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/stage"
	"github.com/muzykantov/geo-data-pipeline/internal/stageexec"
)

type fakeHandler struct {
	err    error
	calls  int
	stage  string
	logger *slog.Logger
}

func (h *fakeHandler) Complete(context.Context) (bool, error) { return false, nil }

func (h *fakeHandler) Execute(ctx context.Context) error {
	h.calls++
	h.stage, _ = services.StageFromContext(ctx)
	return h.err
}

func (h *fakeHandler) Artifact() string { return "/data/artifact" }

func (h *fakeHandler) SetLogger(logger *slog.Logger) { h.logger = logger }

type memoryJournal struct {
	entries []history.Entry
	err     error
}

func (j *memoryJournal) Record(_ context.Context, entry history.Entry) (int64, error) {
	if j.err != nil {
		return 0, j.err
	}
	j.entries = append(j.entries, entry)
	return int64(len(j.entries)), nil
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRunRecordsCompletion(t *testing.T) {
	var buf bytes.Buffer
	handler := &fakeHandler{}
	journal := &memoryJournal{}

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:  newLogger(&buf),
		Journal: journal,
		Kind:    stage.Extract,
		Handler: handler,
		RunID:   "run-1",
		Dataset: "GSE68849/GSE68nnn",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, handler.calls)
	assert.Equal(t, "extract", handler.stage)
	assert.NotNil(t, handler.logger)
	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, history.OutcomeCompleted, entry.Outcome)
	assert.Equal(t, "run-1", entry.RunID)
	assert.Equal(t, "extract", entry.Stage)
	assert.Equal(t, "/data/artifact", entry.Artifact)

	logs := buf.String()
	assert.Contains(t, logs, "stage started")
	assert.Contains(t, logs, "stage completed")
	assert.Contains(t, logs, "run_id=run-1")
}

func TestRunPropagatesFailure(t *testing.T) {
	var buf bytes.Buffer
	stageErr := services.Wrap(services.ErrExtraction, "extract", "decompress payload", "GSM1.txt.gz", errors.New("bad gzip"))
	journal := &memoryJournal{}

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:  newLogger(&buf),
		Journal: journal,
		Kind:    stage.Extract,
		Handler: &fakeHandler{err: stageErr},
		RunID:   "run-2",
	})
	require.ErrorIs(t, err, services.ErrExtraction)

	require.Len(t, journal.entries, 1)
	assert.Equal(t, history.OutcomeFailed, journal.entries[0].Outcome)
	assert.Equal(t, "extraction_failed", journal.entries[0].ErrorKind)
	assert.Contains(t, journal.entries[0].ErrorMessage, "bad gzip")
	assert.Contains(t, buf.String(), "stage failed")
}

func TestRunToleratesJournalFailure(t *testing.T) {
	var buf bytes.Buffer
	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:  newLogger(&buf),
		Journal: &memoryJournal{err: errors.New("disk full")},
		Kind:    stage.Fetch,
		Handler: &fakeHandler{},
		RunID:   "run-3",
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "failed to journal stage outcome"))
}

func TestRunRequiresHandler(t *testing.T) {
	err := stageexec.Run(context.Background(), stageexec.Options{Kind: stage.Project})
	require.Error(t, err)
}

func TestSkipJournalsSkipped(t *testing.T) {
	var buf bytes.Buffer
	journal := &memoryJournal{}
	stageexec.Skip(context.Background(), stageexec.Options{
		Logger:  newLogger(&buf),
		Journal: journal,
		Kind:    stage.Fetch,
		Handler: &fakeHandler{},
		RunID:   "run-4",
	})
	require.Len(t, journal.entries, 1)
	assert.Equal(t, history.OutcomeSkipped, journal.entries[0].Outcome)
	assert.Contains(t, buf.String(), "stage skipped")
}
