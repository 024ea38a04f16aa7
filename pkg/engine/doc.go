// SPDX-License-Identifier: MPL-2.0

// Package engine describes game engines: the brand, an optional parsed version,
// and the Unity scripting backend. These values are the join key between what
// an installed game runs on and what a mod requires.
package engine
