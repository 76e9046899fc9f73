//go:build unix

package filelock

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
	"golang.org/x/sys/unix"
)

// PollInterval is how often a contended lock is retried
const PollInterval = 50 * time.Millisecond

// Lock is a held exclusive lock
type Lock struct {
	path string
	file *os.File
}

// Acquire blocks until the exclusive lock on path is held or ctx ends.
// The lock file is created if it does not exist and is never removed.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	logger := logging.GetLogger("filelock")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "cannot create lock directory for %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "cannot open lock file %s", path)
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	waited := false
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			logger.Debug().Str("path", path).Bool("waited", waited).Msg("Lock acquired")
			return &Lock{path: path, file: file}, nil
		}
		if !stderrors.Is(err, unix.EWOULDBLOCK) && !stderrors.Is(err, unix.EINTR) {
			_ = file.Close()
			return nil, errors.Wrapf(err, errors.ErrLockAcquire, "cannot lock %s", path)
		}

		if !waited {
			logger.Debug().Str("path", path).Msg("Lock held elsewhere, waiting")
			waited = true
		}

		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, errors.Wrapf(ctx.Err(), errors.ErrLockAcquire, "gave up waiting for %s", path)
		case <-ticker.C:
		}
	}
}

// TryAcquire attempts the lock once. It returns (nil, nil) when the lock is held elsewhere.
func TryAcquire(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "cannot open lock file %s", path)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if stderrors.Is(err, unix.EWOULDBLOCK) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrLockAcquire, "cannot lock %s", path)
	}
	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.path
}

// Unlock releases the lock and closes the descriptor. Calling it twice is harmless.
func (l *Lock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}

	file := l.file
	l.file = nil

	unlockErr := unix.Flock(int(file.Fd()), unix.LOCK_UN)
	closeErr := file.Close()
	if unlockErr != nil {
		return errors.Wrapf(unlockErr, errors.ErrLockAcquire, "cannot unlock %s", l.path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, errors.ErrFileAccess, "cannot close %s", l.path)
	}

	logger := logging.GetLogger("filelock")
	logger.Debug().Str("path", l.path).Msg("Lock released")
	return nil
}
