// SPDX-License-Identifier: MPL-2.0

// Package gamemod defines local and remote mod records, the compatibility data
// they share, the per-mod install manifest, and the reconciliation that merges
// local and remote records into one CommonData per mod id.
//
// Mods are loader-scoped: a local and a remote record sharing a mod id are
// expected to share a loader id as well. Records that violate this are kept
// local-first and reported through LoaderConflicts.
package gamemod
