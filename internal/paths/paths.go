// SPDX-License-Identifier: MPL-2.0

// Package paths resolves modpal's well-known directories and derives stable
// identifiers from filesystem paths.
package paths

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/platform"
)

// AppName is the directory name used under platform data directories.
const AppName = "modpal"

// userHomeDir is a test seam for os.UserHomeDir.
var userHomeDir = os.UserHomeDir //nolint:gochecknoglobals // test seam

// DataDir returns the per-user data directory: %LOCALAPPDATA%\modpal on
// Windows, ~/Library/Application Support/modpal on macOS and
// $XDG_DATA_HOME/modpal (default ~/.local/share/modpal) elsewhere.
func DataDir() (string, error) {
	var base string

	switch runtime.GOOS {
	case platform.Windows:
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	case platform.Darwin:
		home, err := userHomeDir()
		if err != nil {
			return "", fault.Path("resolve data directory", "~", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := userHomeDir()
			if err != nil {
				return "", fault.Path("resolve data directory", "~", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(base, AppName), nil
}

// LoadersDir returns the root under which every mod loader keeps its data.
func LoadersDir(dataDir string) string {
	return filepath.Join(dataDir, "mod-loaders")
}

// InstalledModsDir returns the root of per-game mod folders; each installed
// game owns <root>/<game id>.
func InstalledModsDir(dataDir string) string {
	return filepath.Join(dataDir, "installed-mods")
}

// CacheDir returns the directory for best-effort caches such as engine lookups.
func CacheDir(dataDir string) string {
	return filepath.Join(dataDir, "cache")
}

// Normalize canonicalizes path. When canonicalization fails (e.g. the file
// no longer exists) the cleaned absolute path is returned instead, so ids stay
// stable for games whose executable is temporarily missing.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		slog.Warn("failed to make path absolute", "path", path, "error", err)
		abs = filepath.Clean(path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		slog.Debug("failed to resolve symlinks", "path", abs, "error", err)
		return abs
	}
	return resolved
}

// Hash returns a stable identifier for path. Callers normalize first.
func Hash(path string) string {
	key := filepath.ToSlash(path)
	if runtime.GOOS == platform.Windows {
		key = strings.ToLower(key)
	}
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// StemOf returns the file name of path without its extension.
func StemOf(path string) (string, error) {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fault.Path("get file name", path, fmt.Errorf("path has no file name"))
	}
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}
