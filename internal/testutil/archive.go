// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// ZipBytes builds a zip archive in memory. Entries whose name ends in "/"
// are written as directories and their content is ignored.
func ZipBytes(t testing.TB, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	MustClose(t, zw)
	return buf.Bytes()
}

// WriteZip writes the archive built by ZipBytes to dir/name and returns its
// path.
func WriteZip(t testing.TB, dir, name string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	MustWriteFile(t, path, string(ZipBytes(t, entries)))
	return path
}
