package packager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipmaster/ext-packager/internal/archive"
	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/domain/rules"
	"github.com/clipmaster/ext-packager/internal/logger"
	"github.com/clipmaster/ext-packager/internal/manifest"
)

// Service packages an extension directory into a zip archive.
type Service struct {
	// cfg holds the source directory, output path and exclusion rules.
	cfg *config.Config
	// rules is the immutable exclusion rule set for this run.
	rules *rules.Set
	// observer is notified about every entry added to the archive.
	observer Observer
}

// Result summarizes a completed packaging run.
type Result struct {
	// ArchivePath is where the produced zip archive was written.
	ArchivePath string
	// ManifestPath is where the checksum manifest was written.
	ManifestPath string
	// Entries are the archive entry names in stored order.
	Entries []string
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver replaces the default logging observer.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// maxListedEntries caps how many archive entries the summary prints.
const maxListedEntries = 20

var (
	// errSourceDirNotFound is returned when the extension directory is absent.
	errSourceDirNotFound = errors.New("extension directory not found")
	// errSourceNotADirectory is returned when the source path is a plain file.
	errSourceNotADirectory = errors.New("source path is not a directory")
)

// New creates a packaging service for the provided configuration.
// The rule set is fixed here and never changes during the run.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		rules:    rules.NewSet(cfg.ExcludePatterns, cfg.ExcludeGlobs),
		observer: loggingObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Package walks the source directory and produces the archive plus its
// checksum manifest. A pre-existing archive at the output path is replaced,
// never merged into.
func (s *Service) Package(ctx context.Context) (*Result, error) {
	if err := s.checkSourceDir(); err != nil {
		return nil, err
	}

	// Overwrite semantics: drop the previous archive before writing.
	if err := os.Remove(s.cfg.OutputFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove old package: %w", err)
	}

	logger.InfoKV(ctx, "Creating zip package",
		"source_dir", s.cfg.SourceDir,
		"output_file", s.cfg.OutputFile)

	desc := manifest.NewDescription()

	if err := s.writeArchive(ctx, desc); err != nil {
		return nil, err
	}

	entries, err := archive.List(s.cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("reopen package: %w", err)
	}

	logger.InfoKV(ctx, "Package created successfully",
		"output_file", s.cfg.OutputFile,
		"entries", len(entries))

	s.printContents(ctx, entries)

	manifestPath := manifest.PathFor(s.cfg.OutputFile)

	if err = desc.SetArchive(s.cfg.OutputFile); err != nil {
		return nil, err
	}

	if err = desc.Save(manifestPath); err != nil {
		return nil, err
	}

	s.printNextSteps(ctx)

	return &Result{
		ArchivePath:  s.cfg.OutputFile,
		ManifestPath: manifestPath,
		Entries:      entries,
	}, nil
}

// checkSourceDir fails fast when the extension directory is missing,
// before anything on disk is touched.
func (s *Service) checkSourceDir() error {
	info, err := os.Stat(s.cfg.SourceDir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", s.cfg.SourceDir, errSourceDirNotFound)
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", s.cfg.SourceDir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", s.cfg.SourceDir, errSourceNotADirectory)
	}

	return nil
}

// writeArchive walks the source tree and streams surviving files into the
// archive, pruning excluded directory subtrees before descending.
func (s *Service) writeArchive(ctx context.Context, desc *manifest.Description) error {
	writer, err := archive.Create(s.cfg.OutputFile)
	if err != nil {
		return err
	}

	walkErr := filepath.WalkDir(s.cfg.SourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			// Pruning tests the directory name only; descendants of a
			// pruned directory are never visited.
			if path != s.cfg.SourceDir && s.rules.MatchesName(entry.Name()) {
				return fs.SkipDir
			}

			return nil
		}

		relPath, err := filepath.Rel(s.cfg.SourceDir, path)
		if err != nil {
			return err
		}

		// Entry names sit at the archive root, without the source
		// directory as a wrapper.
		relPath = filepath.ToSlash(relPath)

		// Files are tested by their whole relative path, not just the
		// leaf name.
		if s.rules.MatchesPath(relPath) {
			logger.DebugKV(ctx, "Skipping excluded file", "path", relPath)

			return nil
		}

		if err = writer.AddFile(relPath, path); err != nil {
			return err
		}

		if err = desc.AddFile(relPath, path); err != nil {
			return err
		}

		s.observer.FileAdded(ctx, relPath)

		return nil
	})
	if walkErr != nil {
		_ = writer.Close()

		return fmt.Errorf("package %s: %w", s.cfg.SourceDir, walkErr)
	}

	return writer.Close()
}

// printContents lists up to maxListedEntries archive entries plus a
// truncation count for the remainder.
func (s *Service) printContents(ctx context.Context, entries []string) {
	var builder strings.Builder

	builder.WriteString("Package contents:")

	for i, name := range entries {
		if i == maxListedEntries {
			break
		}

		builder.WriteString("\n  ")
		builder.WriteString(name)
	}

	if rest := len(entries) - maxListedEntries; rest > 0 {
		fmt.Fprintf(&builder, "\n  ... and %d more files", rest)
	}

	logger.Info(ctx, builder.String())
}

// printNextSteps logs human-readable guidance for next actions with the created files.
func (s *Service) printNextSteps(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString("Next steps:\n")
	fmt.Fprintf(&builder, "   1. Review the package: unzip -l %s\n", s.cfg.OutputFile)
	builder.WriteString("   2. Test installation locally\n")
	builder.WriteString("   3. Upload to extensions.gnome.org")

	logger.Info(ctx, builder.String())
}
