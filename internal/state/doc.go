// SPDX-License-Identifier: MPL-2.0

// Package state holds modpal's in-memory snapshot: installed games, owned
// games, mod loaders, local mods and remote mods.
//
// Each collection sits behind its own lock and is only ever replaced as a
// whole, so readers never observe a half-updated collection. Readers receive
// deep copies and cannot mutate the stored snapshot. Every replacement emits
// a payload-free sync event; consumers re-read the collection they care about.
package state
