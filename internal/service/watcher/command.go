package watcher

import (
	"context"
	"fmt"

	"github.com/clipmaster/ext-packager/internal/logger"
	"github.com/clipmaster/ext-packager/internal/service/packager"
)

// Run packages once, then keeps repackaging whenever the source directory
// changes, until the context is canceled.
func Run(ctx context.Context, opts *packager.Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "ext-packager-watch")

	cfg, err := packager.ResolveConfig(opts)
	if err != nil {
		return err
	}

	repack := func(ctx context.Context) error {
		_, pkgErr := packager.New(cfg).Package(ctx)

		return pkgErr
	}

	// First build before watching, so a broken source fails fast.
	if err = repack(ctx); err != nil {
		return fmt.Errorf("initial packaging failed: %w", err)
	}

	service, err := New(cfg, repack)
	if err != nil {
		return err
	}

	return service.Watch(ctx)
}
