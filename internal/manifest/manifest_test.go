package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDescriptionRoundtrip hashes files, saves the manifest and loads it back.
func TestDescriptionRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	srcPath := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(`{"uuid":"x"}`), 0o600))

	archivePath := filepath.Join(dir, "out.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("PK"), 0o600))

	desc := NewDescription()
	require.NoError(t, desc.AddFile("metadata.json", srcPath))
	require.NoError(t, desc.SetArchive(archivePath))
	require.NotEmpty(t, desc.Archive.Checksum)

	manifestPath := PathFor(archivePath)
	require.NoError(t, desc.Save(manifestPath))

	loaded, err := Load(manifestPath)
	require.NoError(t, err)
	require.Equal(t, desc.VersionNumber, loaded.VersionNumber)
	require.Equal(t, desc.Archive, loaded.Archive)
	require.Equal(t, desc.Files, loaded.Files)
}

// TestGetFileChecksumStable ensures equal content hashes equally and distinct
// content differs.
func TestGetFileChecksumStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o600))
	require.NoError(t, os.WriteFile(c, []byte("other"), 0o600))

	hashA, err := GetFileChecksum(a)
	require.NoError(t, err)

	hashB, err := GetFileChecksum(b)
	require.NoError(t, err)

	hashC, err := GetFileChecksum(c)
	require.NoError(t, err)

	require.Equal(t, hashA, hashB)
	require.NotEqual(t, hashA, hashC)

	_, err = GetFileChecksum(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
