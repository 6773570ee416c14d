package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer produces a zip archive with DEFLATE-compressed entries.
// It is not safe for concurrent use; the packager writes entries one by one.
type Writer struct {
	// file is the underlying archive file on disk.
	file *os.File
	// zw is the zip encoder writing into file.
	zw *zip.Writer
}

// Create opens a fresh archive file at path, truncating any previous content.
func Create(path string) (*Writer, error) {
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	return &Writer{
		file: file,
		zw:   zip.NewWriter(file),
	}, nil
}

// AddFile streams the file at srcPath into the archive under the given entry
// name. Entry names must be slash-separated paths relative to the packaged
// root, with no leading directory wrapper.
func (w *Writer) AddFile(name, srcPath string) error {
	src, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = src.Close()
	}()

	entry, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	if _, err = io.Copy(entry, src); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	return nil
}

// Close finalizes the archive central directory and closes the file.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		_ = w.file.Close()

		return fmt.Errorf("finalize archive: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

// List reopens a finished archive read-only and returns its entry names in
// stored order.
func List(path string) ([]string, error) {
	reader, err := zip.OpenReader(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = reader.Close()
	}()

	names := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}

	return names, nil
}
