// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modpal/modpal/internal/testutil"
)

// buildZip writes an archive with the given entries to a temp file.
// Entries ending in "/" are directories.
func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	return testutil.WriteZip(t, t.TempDir(), "mod.zip", entries)
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	archivePath := buildZip(t, map[string]string{
		"plugins/":         "",
		"plugins/uuvr.dll": "dll-bytes",
		"config/uuvr.cfg":  "key=value",
		"README.md":        "readme",
	})
	target := filepath.Join(t.TempDir(), "mods", "uuvr")

	if err := ExtractZip(archivePath, target); err != nil {
		t.Fatalf("ExtractZip() error: %v", err)
	}

	for rel, want := range map[string]string{
		"plugins/uuvr.dll": "dll-bytes",
		"config/uuvr.cfg":  "key=value",
		"README.md":        "readme",
	} {
		got, err := os.ReadFile(filepath.Join(target, filepath.FromSlash(rel)))
		if err != nil {
			t.Errorf("ReadFile(%s): %v", rel, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	t.Parallel()

	archivePath := buildZip(t, map[string]string{"../evil.dll": "x"})
	target := filepath.Join(t.TempDir(), "target")

	err := ExtractZip(archivePath, target)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("ExtractZip() error = %v, want ErrUnsafePath", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(target), "evil.dll")); statErr == nil {
		t.Error("traversal entry was written outside target")
	}
}

func TestExtractZipNotAZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("<html>404</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ExtractZip(path, t.TempDir()); err == nil {
		t.Error("ExtractZip() on a non-zip file succeeded")
	}
}

func TestSpool(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "downloads")
	path, err := Spool(strings.NewReader("payload"), dir, "mod-*.zip")
	if err != nil {
		t.Fatalf("Spool() error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("spooled into %s, want %s", filepath.Dir(path), dir)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "payload" {
		t.Errorf("spooled content = %q, %v", got, err)
	}
}

func TestEntryPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "a/b.txt"},
		{name: "./a.txt"},
		{name: "a/../b.txt"},
		{name: "../b.txt", wantErr: true},
		{name: "a/../../b.txt", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := entryPath("/target", tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("entryPath(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}
