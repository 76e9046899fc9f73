package registry

import (
	"github.com/spf13/afero"
)

// Writer runs load-mutate-persist cycles against one registry file.
//
// Concurrent writers are not coordinated: two processes updating the same file
// race and the last one to rename wins.
type Writer struct {
	fs   afero.Fs
	path string
}

// NewWriter creates a writer for the registry file at path
func NewWriter(fs afero.Fs, path string) *Writer {
	return &Writer{fs: fs, path: path}
}

// Path returns the registry file location
func (w *Writer) Path() string {
	return w.path
}

// Load reads the current registry
func (w *Writer) Load() (*Registry, error) {
	return Load(w.fs, w.path)
}

// Update loads the registry, applies fn and persists the result.
// Nothing is written when fn fails, so the file stays byte-identical.
func (w *Writer) Update(fn func(*Registry) error) error {
	reg, err := w.Load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return reg.Persist(w.path)
}
