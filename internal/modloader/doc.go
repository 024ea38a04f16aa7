// SPDX-License-Identifier: MPL-2.0

// Package modloader implements the fixed set of mod loader backends.
//
// Every loader keeps its data under <data>/mod-loaders/<id>: downloaded and
// manually dropped mods live in mods/<mod id>, archives are staged in
// downloads/. The shared behaviour (remote catalog, download, path
// derivation, local scan) lives in base; variants only differ in how they
// inject themselves into a game and how a mod is activated for it.
package modloader
