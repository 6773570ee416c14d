package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipmaster/ext-packager/internal/archive"
	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/manifest"
)

// recordingObserver collects added entry names for assertions.
type recordingObserver struct {
	added []string
}

func (r *recordingObserver) FileAdded(_ context.Context, name string) {
	r.added = append(r.added, name)
}

// writeTree creates files under root, making parent directories as needed.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func testConfig(t *testing.T, sourceDir string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		SourceDir:  sourceDir,
		OutputFile: filepath.Join(t.TempDir(), "pkg.shell-extension.zip"),
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestPackage_ExcludesAndLayout covers the canonical scenario: excluded
// directories are pruned, excluded files skipped, and the remaining entries
// sit at the archive root without a wrapper directory.
func TestPackage_ExcludesAndLayout(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "pkg")
	writeTree(t, src, map[string]string{
		"metadata.json":             `{"uuid":"pkg"}`,
		"lib/a.js":                  "export {};",
		".git/config":               "[core]",
		"schemas/gschemas.compiled": "binary",
		"schemas/app.gschema.xml":   "<schemalist/>",
		"extension.js.swp":          "swap",
		"docs/.DS_Store":            "junk",
		"docs/guide.md":             "# guide",
	})

	cfg := testConfig(t, src)
	observer := &recordingObserver{}

	result, err := New(cfg, WithObserver(observer)).Package(context.Background())
	require.NoError(t, err)

	expected := []string{
		"docs/guide.md",
		"lib/a.js",
		"metadata.json",
		"schemas/app.gschema.xml",
	}

	// Lexical walk order, no source directory prefix anywhere.
	require.Equal(t, expected, result.Entries)
	require.Equal(t, expected, observer.added)

	for _, name := range result.Entries {
		require.NotContains(t, name, "pkg/")
	}

	// Read-back enumeration agrees with the result.
	names, err := archive.List(result.ArchivePath)
	require.NoError(t, err)
	require.Equal(t, expected, names)
}

// TestPackage_PrunedDirDescendants ensures files under an excluded directory
// never appear, even when their own names match no rule.
func TestPackage_PrunedDirDescendants(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "ext")
	writeTree(t, src, map[string]string{
		"metadata.json":        "{}",
		".git/hooks/innocent":  "plain name, excluded by ancestry",
		".git/refs/heads/main": "ref",
	})

	cfg := testConfig(t, src)

	result, err := New(cfg).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"metadata.json"}, result.Entries)
}

// TestPackage_SubstringMatchesDeepPath covers the documented asymmetry:
// a file is excluded when the rule occurs anywhere in its relative path.
func TestPackage_SubstringMatchesDeepPath(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "ext")
	writeTree(t, src, map[string]string{
		"metadata.json":             "{}",
		"schemas/gschemas.compiled": "bin",
		"backup~/notes.txt":         "pruned by dir name",
	})

	cfg := testConfig(t, src)

	result, err := New(cfg).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"metadata.json"}, result.Entries)
}

// TestPackage_ExtraGlobRules covers the optional doublestar exclusions.
func TestPackage_ExtraGlobRules(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "ext")
	writeTree(t, src, map[string]string{
		"metadata.json":  "{}",
		"lib/old.js.bak": "stale",
		"lib/new.js":     "fresh",
	})

	cfg := testConfig(t, src)
	cfg.ExcludeGlobs = []string{"**/*.bak"}

	result, err := New(cfg).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"lib/new.js", "metadata.json"}, result.Entries)
}

// TestPackage_Overwrite verifies a second run replaces the archive instead of
// merging stale entries into it.
func TestPackage_Overwrite(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	src := filepath.Join(base, "ext")
	writeTree(t, src, map[string]string{
		"metadata.json": "{}",
		"stale.js":      "remove me",
	})

	cfg := testConfig(t, src)

	result, err := New(cfg).Package(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	require.NoError(t, os.Remove(filepath.Join(src, "stale.js")))

	result, err = New(cfg).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"metadata.json"}, result.Entries)
}

// TestPackage_MissingSourceDir verifies fail-fast behavior: an error signal
// and no archive file at all.
func TestPackage_MissingSourceDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg := testConfig(t, filepath.Join(base, "nope"))

	_, err := New(cfg).Package(context.Background())
	require.ErrorIs(t, err, errSourceDirNotFound)

	_, statErr := os.Stat(cfg.OutputFile)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

// TestPackage_WritesManifest checks the checksum manifest is produced and
// covers every archive entry plus the archive itself.
func TestPackage_WritesManifest(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "ext")
	writeTree(t, src, map[string]string{
		"metadata.json": "{}",
		"lib/a.js":      "export {};",
	})

	cfg := testConfig(t, src)

	result, err := New(cfg).Package(context.Background())
	require.NoError(t, err)

	desc, err := manifest.Load(result.ManifestPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(cfg.OutputFile), desc.Archive.Name)
	require.NotEmpty(t, desc.Archive.Checksum)
	require.Len(t, desc.Files, len(result.Entries))

	for _, name := range result.Entries {
		require.Contains(t, desc.Files, name)
	}
}
