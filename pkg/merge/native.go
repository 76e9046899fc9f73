package merge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/filesystem"
	"github.com/arthur-debert/saltbox/pkg/internal/hashutil"
	"github.com/arthur-debert/saltbox/pkg/logging"
)

// NativeSyncer merges in process, copying a file only when its size, mode or
// content differs from the destination copy
type NativeSyncer struct{}

// NewNativeSyncer creates a NativeSyncer
func NewNativeSyncer() *NativeSyncer {
	return &NativeSyncer{}
}

// Name implements Syncer
func (s *NativeSyncer) Name() string {
	return ToolNative
}

// Sync implements Syncer
func (s *NativeSyncer) Sync(ctx context.Context, src, dst string) error {
	logger := logging.GetLogger("merge.native")

	if err := os.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	root, err := filesystem.ResolveRoot(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrMergeFailed, "cannot merge %s", src)
	}

	modes := &filesystem.DirModes{}
	copied, unchanged := 0, 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, errors.ErrMergeFailed, "cannot walk %s", path)
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrMergeFailed, "merge cancelled")
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", path)
		}
		target := filepath.Join(dst, rel)

		if rel == "." {
			return nil
		}

		if d.Type().IsRegular() {
			same, err := sameFile(path, target)
			if err != nil {
				return err
			}
			if same {
				unchanged++
				return nil
			}
			copied++
		}

		if err := filesystem.CopyEntry(path, target, d, modes); err != nil {
			return errors.Wrapf(err, errors.ErrMergeFailed, "cannot merge %s", rel)
		}
		return nil
	})
	// modes are restored even when the walk stopped early
	if applyErr := modes.Apply(); err == nil && applyErr != nil {
		err = errors.Wrap(applyErr, errors.ErrMergeFailed, "cannot set directory modes")
	}
	if err != nil {
		return err
	}

	logger.Debug().
		Str("src", src).
		Str("dst", dst).
		Int("copied", copied).
		Int("unchanged", unchanged).
		Msg("Native merge finished")
	return nil
}

// sameFile reports whether dst already matches src in size, mode and content.
// A content match with a stale mtime only refreshes the times.
func sameFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	dstInfo, err := os.Lstat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", dst)
	}

	if !dstInfo.Mode().IsRegular() ||
		srcInfo.Size() != dstInfo.Size() ||
		srcInfo.Mode().Perm() != dstInfo.Mode().Perm() {
		return false, nil
	}

	srcSum, err := hashutil.CalculateFileChecksum(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot hash %s", src)
	}
	dstSum, err := hashutil.CalculateFileChecksum(dst)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot hash %s", dst)
	}
	if srcSum != dstSum {
		return false, nil
	}

	if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
		if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
			return false, errors.Wrapf(err, errors.ErrFileWrite, "cannot set times on %s", dst)
		}
	}
	return true, nil
}
