package logging

import (
	"context"
	"log/slog"

	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for invocation identifiers.
	FieldRunID = "run_id"
	// FieldDataset is the standardized structured logging key for the dataset label.
	FieldDataset = "dataset"
	// FieldMember is the standardized structured logging key for archive member names.
	FieldMember = "member"
	// FieldEventType classifies a log line for filtering ("stage_start", "stage_skip", ...).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step when something went wrong.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if ds, ok := services.DatasetFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDataset, ds))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if member, ok := services.MemberFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMember, member))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
