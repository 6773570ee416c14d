package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds packaging parameters for the extension packager.
type Config struct {
	// SourceDir is the extension directory to package.
	SourceDir string `yaml:"source_dir"`
	// OutputFile is the destination path of the produced zip archive.
	OutputFile string `yaml:"output_file"`
	// ExcludePatterns are literal substrings; a directory name or file path
	// containing any of them is left out of the archive.
	ExcludePatterns []string `yaml:"exclude_patterns"`
	// ExcludeGlobs are optional doublestar globs matched against
	// slash-separated paths relative to SourceDir.
	ExcludeGlobs []string `yaml:"exclude_globs,omitempty"`
	// WatchDebounce is how long the watcher waits after the last filesystem
	// event before repackaging.
	WatchDebounce time.Duration `yaml:"watch_debounce,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "ext-packager-settings.yaml"

	// DefaultExtensionUUID identifies the extension being packaged;
	// extensions.gnome.org requires the source directory to be named after it.
	DefaultExtensionUUID = "clipmaster@gnome.extension"

	// DefaultOutputSuffix is appended to the UUID to form the archive name.
	DefaultOutputSuffix = ".shell-extension.zip"

	// DefaultWatchDebounce is the default settle period for watch mode.
	DefaultWatchDebounce = 500 * time.Millisecond

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSourceDirRequired is returned when the source directory is missing.
	errSourceDirRequired = errors.New("source directory must be provided")
	// errOutputFileRequired is returned when the output path is missing.
	errOutputFileRequired = errors.New("output file must be provided")
)

// DefaultExcludePatterns returns the stock set of development artifacts
// that never belong in a submission package.
// gschemas.compiled is rebuilt on install, so shipping it is a review error.
func DefaultExcludePatterns() []string {
	return []string{
		".git",
		".DS_Store",
		"~",
		".swp",
		".swo",
		"gschemas.compiled",
	}
}

// Default returns a configuration preloaded with the stock ClipMaster values.
func Default() *Config {
	return &Config{
		SourceDir:       DefaultExtensionUUID,
		OutputFile:      DefaultExtensionUUID + DefaultOutputSuffix,
		ExcludePatterns: DefaultExcludePatterns(),
		WatchDebounce:   DefaultWatchDebounce,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: the stock defaults are returned instead,
// mirroring the constant-only behavior of the original script.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided configuration for required fields and formatting.
// Empty fields are filled with the stock defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.SourceDir == "" {
		return errSourceDirRequired
	}

	if cfg.OutputFile == "" {
		return errOutputFileRequired
	}

	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = DefaultExcludePatterns()
	}

	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}

	for _, pattern := range cfg.ExcludeGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude glob %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	return nil
}
