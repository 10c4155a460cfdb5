// Package atomicfile provides crash-safe file writing using temporary files
// and atomic renames. Readers of the target path see either the previous
// content or the complete new content, never a partial write.

package atomicfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write atomically replaces path with data. See [WriteReader].
func Write(path string, data []byte, perm os.FileMode) error {
	_, err := WriteReader(path, bytes.NewReader(data), perm)
	return err
}

// WriteReader atomically replaces path with everything read from r and
// returns the number of bytes written. It copies into a temp file in the
// same directory, syncs it, applies perm, then renames it over path. If r
// returns an error, or any step fails, the temp file is removed and path is
// left untouched.
func WriteReader(path string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	var success bool
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return n, fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return n, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return n, fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return n, nil
}
