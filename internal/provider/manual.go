// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/paths"
	"github.com/modpal/modpal/pkg/game"
)

// ManualListFileName is the manual game list inside the data directory.
const ManualListFileName = "manual-games.toml"

type (
	// Manual serves games the user added by executable path. The list is
	// persisted as TOML:
	//
	//	[[games]]
	//	path = "/games/Some Game/game.exe"
	//	description = "DX11"  # optional, tells same-named games apart
	Manual struct {
		listPath string
		modsRoot string

		mu sync.Mutex
	}

	manualList struct {
		Games []manualEntry `toml:"games"`
	}

	manualEntry struct {
		Path        string `toml:"path"`
		Description string `toml:"description,omitempty"`
	}
)

// NewManual returns the manual provider storing its list in dataDir.
func NewManual(dataDir, modsRoot string) *Manual {
	return &Manual{
		listPath: filepath.Join(dataDir, ManualListFileName),
		modsRoot: modsRoot,
	}
}

// ID implements Provider.
func (m *Manual) ID() game.ProviderID { return game.ProviderManual }

// ListPath returns where the manual list is stored.
func (m *Manual) ListPath() string { return m.listPath }

// InstalledGames implements Provider. Entries whose executable is gone are
// skipped.
func (m *Manual) InstalledGames(context.Context) ([]game.InstalledGame, error) {
	m.mu.Lock()
	list, err := m.load()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	games := make([]game.InstalledGame, 0, len(list.Games))
	for _, entry := range list.Games {
		if _, err := os.Stat(entry.Path); err != nil {
			slog.Warn("skipping manually added game", "path", entry.Path, "error", err)
			continue
		}
		g, err := m.newGame(entry.Path)
		if err != nil {
			slog.Warn("skipping manually added game", "path", entry.Path, "error", err)
			continue
		}
		g.LaunchDescription = entry.Description
		games = append(games, g)
	}
	return games, nil
}

// OwnedGames implements Provider. Manual games are never "owned".
func (m *Manual) OwnedGames(context.Context) ([]game.OwnedGame, error) {
	return nil, nil
}

// Add records the executable at path and returns the resulting game.
func (m *Manual) Add(path string) (game.InstalledGame, error) {
	normalized := paths.Normalize(path)
	if info, err := os.Stat(normalized); err != nil || info.IsDir() {
		return game.InstalledGame{}, fault.NotFound("executable", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return game.InstalledGame{}, err
	}
	if slices.ContainsFunc(list.Games, func(e manualEntry) bool { return e.Path == normalized }) {
		return game.InstalledGame{}, fault.AlreadyExists("game", normalized)
	}

	g, err := m.newGame(normalized)
	if err != nil {
		return game.InstalledGame{}, err
	}

	list.Games = append(list.Games, manualEntry{Path: normalized})
	if err := m.save(list); err != nil {
		return game.InstalledGame{}, err
	}
	return g, nil
}

// Remove forgets the game whose executable is path.
func (m *Manual) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.load()
	if err != nil {
		return err
	}

	normalized := paths.Normalize(path)
	kept := slices.DeleteFunc(slices.Clone(list.Games), func(e manualEntry) bool {
		return e.Path == path || e.Path == normalized
	})
	if len(kept) == len(list.Games) {
		return fault.NotFound("manually added game", path)
	}

	list.Games = kept
	return m.save(list)
}

func (m *Manual) newGame(path string) (game.InstalledGame, error) {
	name, err := paths.StemOf(path)
	if err != nil {
		return game.InstalledGame{}, err
	}
	return game.NewInstalledGame(path, name, game.ProviderManual, m.modsRoot), nil
}

func (m *Manual) load() (manualList, error) {
	var list manualList

	data, err := os.ReadFile(m.listPath)
	if errors.Is(err, os.ErrNotExist) {
		return list, nil
	}
	if err != nil {
		return list, fault.IO("read manual game list", m.listPath, err)
	}
	if err := toml.Unmarshal(data, &list); err != nil {
		return list, fault.IO("parse manual game list", m.listPath, err)
	}
	return list, nil
}

func (m *Manual) save(list manualList) error {
	data, err := toml.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding manual game list: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.listPath), 0o755); err != nil {
		return fault.IO("create data directory", filepath.Dir(m.listPath), err)
	}
	if err := os.WriteFile(m.listPath, data, 0o644); err != nil {
		return fault.IO("write manual game list", m.listPath, err)
	}
	return nil
}
