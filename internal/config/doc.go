// SPDX-License-Identifier: MPL-2.0

// Package config handles modpal configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modpal/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/modpal/config.cue on macOS and
// %APPDATA%\modpal\config.cue on Windows). Every key is optional; missing keys fall
// back to DefaultConfig.
//
// Files are validated against the embedded CUE schema (config_schema.cue) before
// being merged into Viper, so typos and out-of-range values are reported with the
// offending path.
package config
