package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/domain/rules"
	"github.com/clipmaster/ext-packager/internal/logger"
	"github.com/clipmaster/ext-packager/internal/manifest"
)

// RepackFunc rebuilds the package after the watched tree settles.
type RepackFunc func(ctx context.Context) error

// Service watches the extension directory and repackages on change.
type Service struct {
	// cfg holds the source directory, output path and debounce interval.
	cfg *config.Config
	// rules prunes excluded subtrees from watching, same set the packager uses.
	rules *rules.Set
	// fsWatcher delivers filesystem events for watched directories.
	fsWatcher *fsnotify.Watcher
	// repack is invoked after the debounce window elapses with no new events.
	repack RepackFunc
}

// errRepackIsNotSet is returned when no repack callback is provided.
var errRepackIsNotSet = errors.New("repack callback is not set")

// New creates a watcher for the configured source directory.
func New(cfg *config.Config, repack RepackFunc) (*Service, error) {
	if repack == nil {
		return nil, errRepackIsNotSet
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}

	return &Service{
		cfg:       cfg,
		rules:     rules.NewSet(cfg.ExcludePatterns, cfg.ExcludeGlobs),
		fsWatcher: fsWatcher,
		repack:    repack,
	}, nil
}

// Watch blocks until the context is canceled, repackaging after each settled
// burst of filesystem events.
func (s *Service) Watch(ctx context.Context) error {
	// Best-effort cleanup.
	defer func() {
		_ = s.fsWatcher.Close()
	}()

	if err := s.addTree(ctx, s.cfg.SourceDir); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Watching for changes",
		"source_dir", s.cfg.SourceDir,
		"debounce", s.cfg.WatchDebounce.String())

	// The timer is armed on the first event and re-armed on every
	// subsequent one, so repackaging happens once per burst.
	debounce := time.NewTimer(s.cfg.WatchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Stopping watcher")

			return nil

		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return nil
			}

			if s.shouldIgnore(event.Name) {
				continue
			}

			logger.DebugKV(ctx, "File event", "path", event.Name, "op", event.Op.String())

			// New directories must be added to the watch list.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err = s.addTree(ctx, event.Name); err != nil {
						logger.WarnKV(ctx, "Unable to watch new directory",
							"path", event.Name, "error", err)
					}
				}
			}

			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}

			debounce.Reset(s.cfg.WatchDebounce)

		case <-debounce.C:
			if err := s.repack(ctx); err != nil {
				logger.ErrorKV(ctx, "Repackaging failed", "error", err)
			}

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Watcher error", "error", err)
		}
	}
}

// addTree registers path and all its non-excluded subdirectories.
func (s *Service) addTree(ctx context.Context, path string) error {
	if err := s.fsWatcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || s.rules.MatchesName(entry.Name()) {
			continue
		}

		fullPath := filepath.Join(path, entry.Name())
		if err = s.addTree(ctx, fullPath); err != nil {
			return err
		}

		logger.DebugKV(ctx, "Watching directory", "path", fullPath)
	}

	return nil
}

// shouldIgnore filters events for excluded paths and for the packager's own
// output artifacts, which would otherwise retrigger packaging forever.
func (s *Service) shouldIgnore(path string) bool {
	if path == s.cfg.OutputFile || path == manifest.PathFor(s.cfg.OutputFile) {
		return true
	}

	if s.rules.MatchesName(filepath.Base(path)) {
		return true
	}

	relPath, err := filepath.Rel(s.cfg.SourceDir, path)
	if err != nil {
		return false
	}

	return s.rules.MatchesPath(filepath.ToSlash(relPath))
}
