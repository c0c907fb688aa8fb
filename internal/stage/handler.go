package stage

import (
	"context"
	"log/slog"
)

// Handler is one stage variant: a completeness predicate over on-disk state,
// the action that produces the artifact, and the artifact location.
type Handler interface {
	Complete(context.Context) (bool, error)
	Execute(context.Context) error
	Artifact() string
}

// LoggerAware handlers receive the stage-scoped logger before Execute.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
