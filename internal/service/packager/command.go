package packager

import (
	"context"
	"fmt"

	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/logger"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to packaging settings
	// (defaults to ext-packager-settings.yaml; missing file means stock defaults).
	ConfigPath string
	// SourceDir overrides the configured extension directory when non-empty.
	SourceDir string
	// OutputFile overrides the configured archive path when non-empty.
	OutputFile string
	// ExtraExcludes are additional substring rules appended to the configured set.
	ExtraExcludes []string
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "ext-packager")

	cfg, err := ResolveConfig(opts)
	if err != nil {
		return err
	}

	if IsPackagerRunningNow(ctx) {
		return errPackagerRunning
	}

	if err = createMarker(ctx); err != nil {
		return err
	}
	defer removeMarker(ctx)

	if _, err = New(cfg).Package(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// ResolveConfig loads settings from disk and applies command-line overrides.
func ResolveConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.SourceDir != "" {
		cfg.SourceDir = opts.SourceDir
	}

	if opts.OutputFile != "" {
		cfg.OutputFile = opts.OutputFile
	}

	cfg.ExcludePatterns = append(cfg.ExcludePatterns, opts.ExtraExcludes...)

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
