package operation

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
)

//go:embed base
var baseTemplate embed.FS

// MaterializeBase writes the bundled base template to dir, replacing files
// that already exist there
func MaterializeBase(dir string) error {
	logger := logging.GetLogger("operation.base")

	root, err := fs.Sub(baseTemplate, "base")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "bundled base template is missing")
	}

	err = fs.WalkDir(root, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dir, filepath.FromSlash(path))

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			return nil
		}

		data, err := fs.ReadFile(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot read bundled %s", path)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug().Str("dir", dir).Msg("Base template materialized")
	return nil
}
