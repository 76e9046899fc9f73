package merge

import (
	"context"

	"github.com/arthur-debert/saltbox/pkg/logging"
	"github.com/arthur-debert/saltbox/pkg/template"
)

// Pipeline renders template roots and merges them into a destination
type Pipeline struct {
	renderer *template.Renderer
	merger   *Merger
	vars     template.Variables
}

// NewPipeline creates a Pipeline. vars are passed to every render; SALTROOT
// is always set to the destination and cannot be overridden.
func NewPipeline(renderer *template.Renderer, merger *Merger, vars template.Variables) *Pipeline {
	if renderer == nil {
		renderer = template.NewRenderer()
	}
	return &Pipeline{renderer: renderer, merger: merger, vars: vars}
}

// Merger returns the pipeline's merger
func (p *Pipeline) Merger() *Merger {
	return p.merger
}

// RenderAndMerge renders one root and merges it into dst
func (p *Pipeline) RenderAndMerge(ctx context.Context, root, dst string) error {
	return p.renderer.RenderAndMerge(ctx, root, dst, p.vars, p.merger)
}

// MergeAll renders and merges roots in order; later roots overwrite earlier
// ones at the same relative path. The first failure stops the run.
func (p *Pipeline) MergeAll(ctx context.Context, roots []string, dst string) error {
	logger := logging.GetLogger("merge")
	done := logging.LogOperationStart(logger, "merge all")
	defer done()

	for i, root := range roots {
		logger.Info().
			Int("index", i).
			Str("root", root).
			Str("dst", dst).
			Msg("Refreshing template root")

		if err := p.RenderAndMerge(ctx, root, dst); err != nil {
			return err
		}
	}
	return nil
}
