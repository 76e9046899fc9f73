package merge

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/filelock"
	"github.com/arthur-debert/saltbox/pkg/logging"
)

// DefaultLockFile is the lock file name inside a destination root
const DefaultLockFile = "lock"

// Merger runs a Syncer while holding the destination's file lock
type Merger struct {
	syncer   Syncer
	lockFile string
}

// NewMerger creates a Merger. An empty lockFile uses DefaultLockFile.
func NewMerger(syncer Syncer, lockFile string) *Merger {
	if lockFile == "" {
		lockFile = DefaultLockFile
	}
	return &Merger{syncer: syncer, lockFile: lockFile}
}

// Syncer returns the underlying syncer
func (m *Merger) Syncer() Syncer {
	return m.syncer
}

// LockPath returns the lock file used for dst
func (m *Merger) LockPath(dst string) string {
	return filepath.Join(dst, m.lockFile)
}

// Merge syncs rendered into dst under dst's lock. The lock is released on every path.
func (m *Merger) Merge(ctx context.Context, rendered, dst string) (err error) {
	logger := logging.GetLogger("merge")

	lock, err := filelock.Acquire(ctx, m.LockPath(dst))
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn().Err(unlockErr).Str("lock", lock.Path()).Msg("Failed to release merge lock")
			if err == nil {
				err = unlockErr
			}
		}
	}()

	logger.Debug().
		Str("tool", m.syncer.Name()).
		Str("src", rendered).
		Str("dst", dst).
		Msg("Merging rendered tree")

	if err := m.syncer.Sync(ctx, rendered, dst); err != nil {
		if errors.IsErrorCode(err, errors.ErrMergeFailed) {
			return err
		}
		return errors.Wrapf(err, errors.ErrMergeFailed, "merge into %s failed", dst)
	}
	return nil
}
