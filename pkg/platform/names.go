// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeName is returned by ValidateDirName.
var ErrUnsafeName = errors.New("unsafe directory name")

// reservedNames cannot be used as file or directory names on Windows,
// with or without an extension.
var reservedNames = map[string]struct{}{ //nolint:gochecknoglobals // lookup table
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsReservedName reports whether name is a Windows reserved device name.
func IsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.IndexByte(upper, '.'); idx != -1 {
		upper = upper[:idx]
	}
	_, ok := reservedNames[upper]
	return ok
}

// ValidateDirName checks that name can be used as a single directory name on
// every supported OS. Mod and loader ids come from remote catalogs and are
// used verbatim as directory names.
func ValidateDirName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return fmt.Errorf("%w: %q contains a path or reserved character", ErrUnsafeName, name)
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, " "):
		return fmt.Errorf("%w: %q ends with a dot or space", ErrUnsafeName, name)
	case IsReservedName(name):
		return fmt.Errorf("%w: %q is reserved on Windows", ErrUnsafeName, name)
	}
	return nil
}
