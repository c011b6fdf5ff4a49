package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockFileName is created in the data directory and held while the shell
// runs.
const lockFileName = ".shabtzak.lock"

// lockRetryInterval is the interval between attempts to take the lock.
const lockRetryInterval = 50 * time.Millisecond

// acquireDataDirLock takes an exclusive lock on the data directory, waiting
// up to timeout for a previous shell to exit. ErrAlreadyRunning means the
// lock is held elsewhere; any other error means locking itself failed.
func acquireDataDirLock(ctx context.Context, dataDir string, timeout time.Duration) (*flock.Flock, error) {
	path := filepath.Join(dataDir, lockFileName)
	fl := flock.New(path)

	if timeout <= 0 {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !locked {
			return nil, fmt.Errorf("lock %s: %w", path, ErrAlreadyRunning)
		}
		return fl, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock %s: %w", path, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("lock %s: %w", path, ErrAlreadyRunning)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: %w", path, ErrAlreadyRunning)
	}
	return fl, nil
}

// releaseDataDirLock unlocks and closes fl. The lock file stays on disk;
// removing it could break a lock another process just took.
func releaseDataDirLock(log *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		log.Debug("failed to release data directory lock", "path", fl.Path(), "error", err)
	}
}
