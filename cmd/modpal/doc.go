// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modpal.
//
// Every command that touches games or mods first bootstraps a session:
// configuration, logger, state store, providers, mod loaders and a full
// refresh. The config commands work without one.
package cmd
