// SPDX-License-Identifier: MPL-2.0

// Package archive spools downloaded archives to disk and extracts them.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	// maxEntryBytes bounds a single extracted file (2 GB).
	maxEntryBytes = 2 << 30
	// maxTotalBytes bounds everything extracted from one archive (8 GB).
	maxTotalBytes = 8 << 30
)

var (
	// ErrUnsafePath is returned when an entry would land outside the target.
	ErrUnsafePath = errors.New("archive entry escapes target directory")
	// ErrTooLarge is returned when extraction exceeds the size limits.
	ErrTooLarge = errors.New("archive exceeds size limit")
)

// Spool copies r into a new file in dir and returns its path. The caller
// removes the file when done.
func Spool(r io.Reader, dir, pattern string) (_ string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		// Best-effort removal of partially written temp file.
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", err)
	}

	return tmp.Name(), nil
}

// ExtractZip extracts the zip at archivePath into target, creating target if
// needed. Existing files are overwritten.
func ExtractZip(archivePath, target string) (err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = zr.Close() }() // read-only archive handle

	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	var total int64
	for _, f := range zr.File {
		dest, err := entryPath(target, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dest, err)
			}
			continue
		}

		n, err := extractFile(f, dest)
		if err != nil {
			return err
		}
		total += n
		if total > maxTotalBytes {
			return ErrTooLarge
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) (_ int64, err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }() // read-only entry

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Read one byte past the limit so oversize entries are detected rather
	// than silently truncated.
	n, err := io.Copy(out, io.LimitReader(src, maxEntryBytes+1))
	if err != nil {
		return n, fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if n > maxEntryBytes {
		return n, fmt.Errorf("%w: entry %s", ErrTooLarge, f.Name)
	}
	return n, nil
}

// entryPath resolves name under target, rejecting absolute paths and any
// entry that climbs out of target.
func entryPath(target, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" ||
		strings.HasPrefix(clean, string(filepath.Separator)) ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(target, clean), nil
}
