// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory in ConfigDir.
// Tests set it because os.UserConfigDir ignores HOME on some platforms.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir. An empty dir restores
// the platform lookup.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores the platform config directory lookup.
func Reset() {
	SetConfigDirOverride("")
}
