package template

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/filesystem"
	"github.com/arthur-debert/saltbox/pkg/logging"
)

// Merger merges a rendered tree into a destination root
type Merger interface {
	Merge(ctx context.Context, rendered, dst string) error
}

// Renderer copies template roots into scratch directories and renders them
type Renderer struct {
	tempDir string
}

// Option configures a Renderer
type Option func(*Renderer)

// WithTempDir sets the parent directory for scratch trees (default os.TempDir)
func WithTempDir(dir string) Option {
	return func(r *Renderer) {
		r.tempDir = dir
	}
}

// NewRenderer creates a Renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderedTree is an exclusively owned scratch copy of a template root
type RenderedTree struct {
	Root   string
	Source string

	// relative paths, in walk order
	Rendered []string
	Failed   []string
	Skipped  []string
}

// Cleanup removes the scratch directory
func (t *RenderedTree) Cleanup() error {
	if t == nil || t.Root == "" {
		return nil
	}
	if err := filesystem.RemoveTree(t.Root); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove scratch tree %s", t.Root)
	}
	return nil
}

// RenderRoot copies sourceRoot into a fresh scratch directory and renders
// every regular file in place. Per-file failures are logged and leave the
// file as copied; only copy and walk failures are returned.
func (r *Renderer) RenderRoot(ctx context.Context, sourceRoot string, vars Variables) (*RenderedTree, error) {
	logger := logging.GetLogger("template")
	done := logging.LogOperationStart(logger, "render "+sourceRoot)
	defer done()

	info, err := os.Stat(sourceRoot)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidRoot, "template root %s is not a directory", sourceRoot).
			WithDetail("path", sourceRoot)
	}

	scratch, err := os.MkdirTemp(r.tempDir, "saltbox-render-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create scratch directory")
	}
	tree := &RenderedTree{Root: scratch, Source: sourceRoot}

	if err := filesystem.CopyTree(sourceRoot, scratch); err != nil {
		_ = tree.Cleanup()
		return nil, err
	}
	// the scratch root carries the source root's mode into the merge
	if err := os.Chmod(scratch, info.Mode().Perm()); err != nil {
		_ = tree.Cleanup()
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot chmod %s", scratch)
	}

	walkErr := filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", path)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrap(ctxErr, errors.ErrRender, "render cancelled")
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, _ := filepath.Rel(scratch, path)
		r.renderFile(tree, path, rel, vars)
		return nil
	})
	if walkErr != nil {
		_ = tree.Cleanup()
		return nil, walkErr
	}

	logger.Debug().
		Str("source", sourceRoot).
		Int("rendered", len(tree.Rendered)).
		Int("failed", len(tree.Failed)).
		Int("skipped", len(tree.Skipped)).
		Msg("Template root rendered")

	return tree, nil
}

func (r *Renderer) renderFile(tree *RenderedTree, path, rel string, vars Variables) {
	logger := logging.GetLogger("template")

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("file", rel).Str("root", tree.Source).Msg("Cannot read template file, left as copied")
		tree.Failed = append(tree.Failed, rel)
		return
	}

	if IsBinary(content) || !HasMarkers(content) {
		tree.Skipped = append(tree.Skipped, rel)
		return
	}

	out, err := RenderString(rel, string(content), vars)
	if err != nil {
		logger.Warn().Err(err).Str("file", rel).Str("root", tree.Source).Msg("Template rendering failed, left as copied")
		tree.Failed = append(tree.Failed, rel)
		return
	}

	if err := writeInPlace(path, []byte(out)); err != nil {
		logger.Warn().Err(err).Str("file", rel).Str("root", tree.Source).Msg("Cannot write rendered file")
		tree.Failed = append(tree.Failed, rel)
		return
	}

	logger.Trace().Str("file", rel).Msg("Rendered")
	tree.Rendered = append(tree.Rendered, rel)
}

// writeInPlace replaces the content of path and keeps its mode, lifting a
// read-only mode for the duration of the write
func writeInPlace(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()
	if perm&0200 == 0 {
		if err := os.Chmod(path, perm|0200); err != nil {
			return err
		}
	}

	writeErr := os.WriteFile(path, content, perm)
	if err := os.Chmod(path, perm); err != nil && writeErr == nil {
		return err
	}
	return writeErr
}

// RenderAndMerge renders sourceRoot with SALTROOT set to dst, merges the
// result into dst and always removes the scratch tree.
func (r *Renderer) RenderAndMerge(ctx context.Context, sourceRoot, dst string, vars Variables, merger Merger) (err error) {
	tree, err := r.RenderRoot(ctx, sourceRoot, vars.With(RootVariable, dst))
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := tree.Cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	return merger.Merge(ctx, tree.Root, dst)
}
