package manifest

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/version"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

// Description records what a packaging run produced: the archive, every entry
// that went into it, and their checksums for later verification.
type Description struct {
	// VersionNumber is the packager version that produced the archive.
	VersionNumber string `yaml:"version"`
	// Archive is the archive filename with its base64-encoded checksum.
	Archive ArchiveInfo `yaml:"archive"`
	// Files maps archive entry names to base64-encoded checksums of their
	// source files.
	Files map[string]string `yaml:"files"`
}

// ArchiveInfo identifies the produced archive file.
type ArchiveInfo struct {
	// Name is the archive filename.
	Name string `yaml:"name"`
	// Checksum is the base64-encoded checksum of the archive bytes.
	Checksum string `yaml:"checksum"`
}

const (
	// Suffix is appended to the archive path to form the manifest path.
	Suffix = ".manifest.yaml"

	// DefaultChecksumFunction is used to calculate file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// defaultMapCapacity is the default initial capacity for the file map.
	defaultMapCapacity = 16
)

var errHashUnavailable = errors.New("hash function unavailable")

// NewDescription produces a Description initialized with defaults.
func NewDescription() *Description {
	return &Description{
		VersionNumber: version.Short(),
		Files:         make(map[string]string, defaultMapCapacity),
	}
}

// PathFor returns the manifest path for the given archive path.
func PathFor(archivePath string) string {
	return archivePath + Suffix
}

// AddFile hashes the file at srcPath and records it under the entry name.
func (d *Description) AddFile(name, srcPath string) error {
	checksum, err := GetFileChecksum(srcPath)
	if err != nil {
		return err
	}

	d.Files[name] = base64.StdEncoding.EncodeToString(checksum)

	return nil
}

// SetArchive hashes the finished archive and records its identity.
func (d *Description) SetArchive(archivePath string) error {
	checksum, err := GetFileChecksum(archivePath)
	if err != nil {
		return err
	}

	d.Archive = ArchiveInfo{
		Name:     filepath.Base(archivePath),
		Checksum: base64.StdEncoding.EncodeToString(checksum),
	}

	return nil
}

// Save writes the description as YAML next to the archive it describes.
func (d *Description) Save(path string) error {
	contents, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), contents, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Load reads a previously saved description from disk.
func Load(path string) (*Description, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var desc Description
	if err = yaml.Unmarshal(contents, &desc); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &desc, nil
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
