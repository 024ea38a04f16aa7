// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"context"
	"io"
	"maps"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/catalog"
	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/osopen"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

type (
	// Loader is one mod loader backend.
	Loader interface {
		Data() gamemod.LoaderData
		// Install injects the loader runtime into g. Calling it on an
		// already patched game is harmless.
		Install(g game.InstalledGame) error
		// InstallMod activates mod for g, installing the loader first when
		// needed. Incompatible mods fail with fault.ErrIncompatible.
		InstallMod(ctx context.Context, g game.InstalledGame, mod gamemod.LocalMod) error
		// UninstallMod removes mod modID from g.
		UninstallMod(g game.InstalledGame, modID string) error
		// LocalMods rescans the loader's mods directory, skipping folders it
		// cannot read.
		LocalMods() (gamemod.LocalMap, error)
		// RemoteMods fetches the loader's catalog. Failures go to onError and
		// yield an empty map.
		RemoteMods(ctx context.Context, onError func(error)) gamemod.RemoteMap
		// DownloadMod fetches the first download of mod and extracts it into
		// ModPath. Fails with fault.ErrUnavailable when nothing can be fetched.
		DownloadMod(ctx context.Context, mod gamemod.RemoteMod) error
		// ModPath is where the mod's files live under the loader root.
		ModPath(mod gamemod.CommonData) (string, error)
		// InstalledModPath is where mod modID lives once installed into g,
		// or "" when mods of this loader are never installed into games.
		InstalledModPath(g game.InstalledGame, modID string) string
	}

	// Catalog is the remote side loaders fetch from.
	Catalog interface {
		Fetch(ctx context.Context, loaderID string) (*catalog.Database, error)
		Download(ctx context.Context, url string) (io.ReadCloser, error)
	}

	// Options configures NewMap.
	Options struct {
		// LoadersDir is <data>/mod-loaders.
		LoadersDir string
		// ResourcesDir holds the loader payloads injected into games.
		ResourcesDir string
		Catalog      Catalog
		Opener       osopen.Opener
		Logger       *log.Logger
	}

	// Map indexes loaders by id.
	Map map[string]Loader
)

// NewMap builds every known loader. A loader that fails to initialize is
// logged and left out.
func NewMap(opts Options) Map {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := Map{}
	add := func(l Loader, err error) {
		if err != nil {
			logger.Error("failed to set up mod loader", "error", err)
			return
		}
		m[l.Data().ID] = l
	}

	add(NewBepInEx(opts.LoadersDir, opts.ResourcesDir, opts.Catalog, logger))
	add(NewUnrealVR(opts.LoadersDir, opts.Catalog, opts.Opener, logger))

	return m
}

// Get returns the loader with id or a fault.ErrNotFound error.
func (m Map) Get(id string) (Loader, error) {
	l, ok := m[id]
	if !ok {
		return nil, fault.NotFound("mod loader", id)
	}
	return l, nil
}

// IDs returns the loader ids in sorted order.
func (m Map) IDs() []string {
	return slices.Sorted(maps.Keys(m))
}

// Data returns the data of every loader.
func (m Map) Data() gamemod.LoaderDataMap {
	out := make(gamemod.LoaderDataMap, len(m))
	for id, l := range m {
		out[id] = l.Data()
	}
	return out
}

// ModsDirs returns every loader's mods directory in loader id order.
func (m Map) ModsDirs() []string {
	dirs := make([]string, 0, len(m))
	for _, id := range m.IDs() {
		dirs = append(dirs, ModsDir(m[id].Data()))
	}
	return dirs
}

// ModsDir is the folder a loader scans for local mods.
func ModsDir(data gamemod.LoaderData) string {
	return filepath.Join(data.Path, "mods")
}

// Locate is a game.ModLocator that asks the owning loader. Mods of unknown
// loaders are never reported as installed.
func (m Map) Locate(g game.InstalledGame, mod gamemod.CommonData) string {
	l, ok := m[mod.LoaderID]
	if !ok {
		return ""
	}
	return l.InstalledModPath(g, mod.ID)
}
