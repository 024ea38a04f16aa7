// SPDX-License-Identifier: MPL-2.0

package game

import (
	"path/filepath"
	"slices"

	"github.com/modpal/modpal/internal/paths"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/gamemod"
)

// NewInstalledGame builds a game for the executable at exePath. The id is a
// hash of the normalized path, so it survives resyncs while the executable
// stays put. Mods for the game are kept under modsRoot/<id>.
func NewInstalledGame(exePath, name string, provider ProviderID, modsRoot string) InstalledGame {
	normalized := paths.Normalize(exePath)
	id := paths.Hash(normalized)

	exe := DetectExecutable(normalized)
	mode := DetectMode(exe)

	return InstalledGame{
		ID:              id,
		Name:            name,
		ProviderID:      provider,
		GameMode:        &mode,
		Executable:      exe,
		ModsPath:        filepath.Join(modsRoot, id),
		InstalledModIDs: []string{},
		AvailableMods:   map[string]bool{},
	}
}

// ModLocator returns the directory whose presence means mod is installed
// for g. An empty result means the mod is never installed into a game.
type ModLocator func(g InstalledGame, mod gamemod.CommonData) string

// DefaultModLocator places mods under ModsPath/<loader id>/<mod id>.
func DefaultModLocator(g InstalledGame, mod gamemod.CommonData) string {
	return filepath.Join(g.ModsPath, mod.LoaderID, mod.ID)
}

// Brand returns the detected engine brand, or nil when unknown.
func (g InstalledGame) Brand() *engine.Brand {
	if g.Executable.Engine == nil {
		return nil
	}
	brand := g.Executable.Engine.Brand
	return &brand
}

// RefreshAvailableMods recomputes which mods in common are compatible with
// the game and which of those are installed, as located by locate (nil means
// DefaultModLocator). Mods without an engine requirement are compatible with
// every game.
func (g *InstalledGame) RefreshAvailableMods(common gamemod.CommonMap, locate ModLocator) {
	if locate == nil {
		locate = DefaultModLocator
	}
	brand := g.Brand()
	available := make(map[string]bool, len(common))
	installed := make([]string, 0)

	for id, data := range common {
		if !data.CompatibleWith(brand, g.Executable.UnityBackend) {
			continue
		}
		dir := locate(*g, data)
		present := dir != "" && isDir(dir)
		available[id] = present
		if present {
			installed = append(installed, id)
		}
	}

	slices.Sort(installed)
	g.AvailableMods = available
	g.InstalledModIDs = installed
}

// RefreshExecutable re-reads the executable metadata and game mode.
func (g *InstalledGame) RefreshExecutable() {
	g.Executable = DetectExecutable(g.Executable.Path)
	mode := DetectMode(g.Executable)
	g.GameMode = &mode
}

// IsModInstalled reports whether modID is currently installed for the game.
func (g InstalledGame) IsModInstalled(modID string) bool {
	return g.AvailableMods[modID]
}
