package merge

import (
	"context"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/arthur-debert/saltbox/pkg/registry"
)

// Syncer copies new and changed files from src into dst without deleting anything
type Syncer interface {
	Name() string
	Sync(ctx context.Context, src, dst string) error
}

// SyncerFactory constructs a Syncer, resolving any external tool it needs
type SyncerFactory func() (Syncer, error)

var syncers = registry.NewNamed[SyncerFactory]()

func init() {
	registry.MustRegister(syncers, ToolRsync, func() (Syncer, error) { return NewRsyncSyncer() })
	registry.MustRegister(syncers, ToolNative, func() (Syncer, error) { return NewNativeSyncer(), nil })
}

// Tool names
const (
	ToolRsync  = "rsync"
	ToolNative = "native"
)

// NewSyncer builds the syncer registered under tool
func NewSyncer(tool string) (Syncer, error) {
	factory, err := syncers.Get(tool)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "unknown merge tool %q (available: %v)", tool, syncers.List())
	}
	return factory()
}

// Tools lists the registered sync tool names
func Tools() []string {
	return syncers.List()
}
