// SPDX-License-Identifier: MPL-2.0

package game

import "path/filepath"

// Deduper admits installed-game candidates from providers. A candidate whose
// id (normalized executable path) was already admitted is dropped. A candidate
// whose name was already taken gets a discriminator so both stay distinguishable.
//
// A Deduper is not safe for concurrent use.
type Deduper struct {
	ids   map[string]struct{}
	names map[string]struct{}
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{
		ids:   make(map[string]struct{}),
		names: make(map[string]struct{}),
	}
}

// Admit registers g and reports whether it should be kept. description is a
// provider-supplied label for the launch variant; when empty, the discriminator
// falls back to the executable's directory and file name.
func (d *Deduper) Admit(g *InstalledGame, description string) bool {
	if _, seen := d.ids[g.ID]; seen {
		return false
	}
	d.ids[g.ID] = struct{}{}

	if _, taken := d.names[g.Name]; taken {
		discriminator := description
		if discriminator == "" {
			discriminator = relativeExecutable(g.Executable.Path)
		}
		g.Discriminator = &discriminator
		return true
	}
	d.names[g.Name] = struct{}{}
	return true
}

func relativeExecutable(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}
