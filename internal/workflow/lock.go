package workflow

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

type rootLock struct {
	lock *flock.Flock
}

// acquireLock takes a non-blocking exclusive lock on the storage root so two
// invocations never rewrite the same tree.
func acquireLock(layout dataset.Layout) (*rootLock, error) {
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "create storage root", layout.Root, err)
	}
	lock := flock.New(layout.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrLocked, "workflow", "lock storage root", layout.LockPath(), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrLocked, "workflow", "lock storage root",
			fmt.Sprintf("another geopipe run holds %s", layout.LockPath()), nil)
	}
	return &rootLock{lock: lock}, nil
}

func (l *rootLock) release() {
	if l == nil || l.lock == nil {
		return
	}
	_ = l.lock.Unlock()
}
