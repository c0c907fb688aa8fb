package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	stageKey   contextKey = "stage"
	datasetKey contextKey = "dataset"
	memberKey  contextKey = "member"
)

// WithRunID annotates context with the pipeline invocation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline invocation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithDataset annotates context with the dataset label (name/series).
func WithDataset(ctx context.Context, dataset string) context.Context {
	if dataset == "" {
		return ctx
	}
	return context.WithValue(ctx, datasetKey, dataset)
}

// DatasetFromContext returns the dataset label if present.
func DatasetFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(datasetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMember annotates context with the archive member currently processed.
func WithMember(ctx context.Context, member string) context.Context {
	if member == "" {
		return ctx
	}
	return context.WithValue(ctx, memberKey, member)
}

// MemberFromContext returns the archive member name if present.
func MemberFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(memberKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
