// SPDX-License-Identifier: MPL-2.0

package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/modpal/modpal/internal/fault"
)

func TestHashIsStable(t *testing.T) {
	t.Parallel()

	a := Hash("/games/a/game.exe")
	b := Hash("/games/a/game.exe")
	c := Hash("/games/b/game.exe")

	if a != b {
		t.Errorf("Hash() not stable: %q != %q", a, b)
	}
	if a == c {
		t.Errorf("Hash() collided for different paths: %q", a)
	}
	if a == "" {
		t.Error("Hash() returned empty id")
	}
}

func TestNormalizeResolvesSymlinks(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "game.exe")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.exe")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	want, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	if got := Normalize(link); got != want {
		t.Errorf("Normalize(link) = %q, want %q", got, want)
	}
}

func TestNormalizeMissingFileFallsBack(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "gone", "..", "game.exe")
	want := filepath.Clean(missing)
	if got := Normalize(missing); got != want {
		t.Errorf("Normalize(missing) = %q, want %q", got, want)
	}
}

func TestStemOf(t *testing.T) {
	t.Parallel()

	got, err := StemOf(filepath.Join("games", "Game-Win64-Shipping.exe"))
	if err != nil {
		t.Fatalf("StemOf() error: %v", err)
	}
	if got != "Game-Win64-Shipping" {
		t.Errorf("StemOf() = %q", got)
	}

	if _, err := StemOf(""); !errors.Is(err, fault.ErrPathResolution) {
		t.Errorf("StemOf(\"\") error = %v, want ErrPathResolution", err)
	}
}

func TestDataDirUsesXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on Linux")
	}

	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if want := filepath.Join(dir, AppName); got != want {
		t.Errorf("DataDir() = %q, want %q", got, want)
	}
}
