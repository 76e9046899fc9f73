package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
)

// ResolveRoot follows a symlinked root so that walks descend into it
func ResolveRoot(root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve %s", root)
	}
	return resolved, nil
}

// CopyTree copies the contents of src into dst, creating dst if needed.
// Existing files in dst are overwritten; nothing in dst is removed.
// A symlinked src is followed. Directory modes are applied once the
// directories are filled.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read source %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "source %s is not a directory", src)
	}
	root, err := ResolveRoot(src)
	if err != nil {
		return err
	}

	modes := &DirModes{}
	if err := modes.Prepare(dst, info.Mode().Perm()); err != nil {
		return err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, errors.ErrFileAccess, "cannot walk %s", path)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", path)
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		return CopyEntry(path, target, d, modes)
	})
	if applyErr := modes.Apply(); err == nil {
		err = applyErr
	}
	return err
}

// CopyEntry copies a single walked entry to target. Directories are left
// owner-writable and their modes recorded in modes.
func CopyEntry(path, target string, d fs.DirEntry, modes *DirModes) error {
	switch {
	case d.Type()&fs.ModeSymlink != 0:
		return CopySymlink(path, target)
	case d.IsDir():
		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
		}
		return modes.Prepare(target, info.Mode().Perm())
	case d.Type().IsRegular():
		return CopyFile(path, target)
	default:
		// sockets, devices and pipes are not part of recipes
		return nil
	}
}

// CopyFile copies a regular file, preserving permission bits and modification time
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}

	if linfo, err := os.Lstat(dst); err == nil {
		switch {
		case linfo.Mode()&fs.ModeSymlink != 0:
			// a symlink at dst would otherwise be written through
			if err := os.Remove(dst); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace symlink %s", dst)
			}
		case linfo.Mode().IsRegular() && linfo.Mode().Perm()&0200 == 0:
			if err := os.Chmod(dst, linfo.Mode().Perm()|0200); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot make %s writable", dst)
			}
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()|0200)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", dst)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot chmod %s", dst)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot set times on %s", dst)
	}

	return nil
}

// CopySymlink recreates the symlink at src as dst, replacing whatever dst was
func CopySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", src)
	}

	if existing, err := os.Readlink(dst); err == nil && existing == link {
		return nil
	}
	if _, err := os.Lstat(dst); err == nil {
		if err := RemoveTree(dst); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}
	if err := os.Symlink(link, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create link %s", dst)
	}
	return nil
}
