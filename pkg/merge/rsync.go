package merge

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/logging"
)

// RsyncSyncer delegates the merge to rsync(1)
type RsyncSyncer struct {
	path string
}

// NewRsyncSyncer resolves rsync on PATH. A missing rsync is MERGE_TOOL_MISSING.
func NewRsyncSyncer() (*RsyncSyncer, error) {
	path, err := exec.LookPath("rsync")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeToolMissing, "rsync not found in PATH")
	}
	return &RsyncSyncer{path: path}, nil
}

// Name implements Syncer
func (s *RsyncSyncer) Name() string {
	return ToolRsync
}

// Path returns the resolved rsync executable
func (s *RsyncSyncer) Path() string {
	return s.path
}

// Args returns the rsync arguments for a merge of src into dst
func (s *RsyncSyncer) Args(src, dst string) []string {
	// trailing slash copies the contents of src, not src itself
	return []string{"-a", "--inplace", strings.TrimRight(src, "/") + "/", dst}
}

// Sync implements Syncer
func (s *RsyncSyncer) Sync(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}

	args := s.Args(src, dst)
	logging.LogCommand(s.path, args)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrMergeFailed, "rsync into %s failed", dst).
			WithDetail("stderr", strings.TrimSpace(stderr.String())).
			WithDetail("src", src)
	}
	return nil
}
