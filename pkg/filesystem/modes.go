package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
)

// ownerRWX keeps directories usable by the copying process
const ownerRWX = 0700

type dirMode struct {
	path string
	perm fs.FileMode
}

// DirModes defers directory permissions until a walk has filled the
// directories, so read-only source directories can still be copied
type DirModes struct {
	entries []dirMode
}

// Prepare creates dir owner-writable and records perm for Apply
func (m *DirModes) Prepare(dir string, perm fs.FileMode) error {
	if err := os.MkdirAll(dir, perm|ownerRWX); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	if err := os.Chmod(dir, perm|ownerRWX); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot chmod %s", dir)
	}
	m.entries = append(m.entries, dirMode{path: dir, perm: perm})
	return nil
}

// Apply sets the recorded modes, deepest directories first
func (m *DirModes) Apply() error {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if err := os.Chmod(e.path, e.perm); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot chmod %s", e.path)
		}
	}
	m.entries = nil
	return nil
}

// RemoveTree removes path like os.RemoveAll, first making read-only
// directories below it writable
func RemoveTree(path string) error {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil && info.Mode().Perm()&ownerRWX != ownerRWX {
			_ = os.Chmod(p, info.Mode().Perm()|ownerRWX)
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", path)
	}
	return nil
}
