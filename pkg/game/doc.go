// SPDX-License-Identifier: MPL-2.0

// Package game defines installed and owned games, the executable metadata
// detected for them, and the per-game half of mod reconciliation: deciding
// which mods a game can use and which of those are currently installed.
package game
