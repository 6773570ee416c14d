package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWriteAndList round-trips a small archive and checks entry order and content.
func TestWriteAndList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"uuid":"x"}`), 0o600))

	second := filepath.Join(dir, "utils.js")
	require.NoError(t, os.WriteFile(second, []byte("export {};"), 0o600))

	archivePath := filepath.Join(dir, "out.zip")

	w, err := Create(archivePath)
	require.NoError(t, err)
	require.NoError(t, w.AddFile("metadata.json", first))
	require.NoError(t, w.AddFile("lib/utils.js", second))
	require.NoError(t, w.Close())

	names, err := List(archivePath)
	require.NoError(t, err)
	require.Equal(t, []string{"metadata.json", "lib/utils.js"}, names)

	// Entries are DEFLATE-compressed and readable back.
	reader, err := zip.OpenReader(archivePath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = reader.Close()
	})

	require.Equal(t, uint16(zip.Deflate), reader.File[0].Method)

	content, err := reader.File[1].Open()
	require.NoError(t, err)

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	require.NoError(t, content.Close())
	require.Equal(t, "export {};", string(data))
}

// TestAddMissingFile ensures a vanished source file surfaces as an error.
func TestAddMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := Create(filepath.Join(dir, "out.zip"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = w.Close()
	})

	err = w.AddFile("gone.js", filepath.Join(dir, "gone.js"))
	require.Error(t, err)
}
