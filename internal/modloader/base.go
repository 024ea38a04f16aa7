// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/archive"
	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/gamemod"
	"github.com/modpal/modpal/pkg/platform"
)

// errNoDownload is the cause attached when a catalog entry has no archive.
var errNoDownload = errors.New("no download available")

// base carries everything loaders share. Variants embed it.
type base struct {
	data    gamemod.LoaderData
	catalog Catalog
	logger  *log.Logger
}

func newBase(loadersDir, id string, kind gamemod.Kind, cat Catalog, logger *log.Logger) (base, error) {
	root := filepath.Join(loadersDir, id)
	if err := os.MkdirAll(filepath.Join(root, "mods"), 0o755); err != nil {
		return base{}, fault.IO("create mod loader directory", root, err)
	}
	return base{
		data:    gamemod.LoaderData{ID: id, Path: root, Kind: kind},
		catalog: cat,
		logger:  logger.With("loader", id),
	}, nil
}

// Data implements Loader.
func (b *base) Data() gamemod.LoaderData {
	return b.data
}

func (b *base) modsDir() string {
	return ModsDir(b.data)
}

func (b *base) downloadsDir() string {
	return filepath.Join(b.data.Path, "downloads")
}

// ModPath implements Loader.
func (b *base) ModPath(mod gamemod.CommonData) (string, error) {
	if err := platform.ValidateDirName(mod.ID); err != nil {
		return "", fault.Path("derive mod path", mod.ID, err)
	}
	return filepath.Join(b.modsDir(), mod.ID), nil
}

// RemoteMods implements Loader.
func (b *base) RemoteMods(ctx context.Context, onError func(error)) gamemod.RemoteMap {
	if b.catalog == nil {
		return gamemod.RemoteMap{}
	}

	db, err := b.catalog.Fetch(ctx, b.data.ID)
	if err != nil {
		if onError != nil {
			onError(fmt.Errorf("loader %s: %w", b.data.ID, err))
		}
		return gamemod.RemoteMap{}
	}
	return db.RemoteMods(b.data.ID)
}

// DownloadMod implements Loader. The archive is extracted into a staging
// directory and moved into place only once extraction and the manifest
// write succeeded.
func (b *base) DownloadMod(ctx context.Context, mod gamemod.RemoteMod) error {
	id := mod.Common.ID

	target, err := b.ModPath(mod.Common)
	if err != nil {
		return err
	}

	dl, ok := mod.FirstDownload()
	if !ok {
		return fault.Unavailable(id, errNoDownload)
	}
	if b.catalog == nil {
		return fault.Unavailable(id, errors.New("no catalog configured"))
	}

	body, err := b.catalog.Download(ctx, dl.URL)
	if err != nil {
		return fault.Unavailable(id, err)
	}
	spooled, err := archive.Spool(body, b.downloadsDir(), id+"-*.zip")
	_ = body.Close() // read-only response body
	if err != nil {
		return fault.IO("download mod", b.downloadsDir(), err)
	}
	defer func() { _ = os.Remove(spooled) }()

	staging, err := os.MkdirTemp(b.downloadsDir(), id+"-extract-*")
	if err != nil {
		return fault.IO("create staging directory", b.downloadsDir(), err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := archive.ExtractZip(spooled, staging); err != nil {
		return fault.IO("extract mod", spooled, err)
	}

	manifest := gamemod.Manifest{
		Version:      dl.Version,
		Engine:       mod.Common.Engine,
		UnityBackend: mod.Common.UnityBackend,
	}
	if err := gamemod.WriteManifest(staging, manifest); err != nil {
		return fault.IO("write mod manifest", staging, err)
	}

	if err := os.RemoveAll(target); err != nil {
		return fault.IO("replace mod", target, err)
	}
	if err := os.Rename(staging, target); err != nil {
		return fault.IO("replace mod", target, err)
	}

	b.logger.Info("downloaded mod", "mod", id, "version", dl.Version)
	return nil
}

// scanLocalMods reads every mod folder under the mods directory. Folders
// with unusable names or malformed manifests are skipped and logged.
// defaultEngine is used for mods whose manifest names no engine.
func (b *base) scanLocalMods(defaultEngine *engine.Brand) (gamemod.LocalMap, error) {
	entries, err := os.ReadDir(b.modsDir())
	if errors.Is(err, os.ErrNotExist) {
		return gamemod.LocalMap{}, nil
	}
	if err != nil {
		return nil, fault.IO("scan local mods", b.modsDir(), err)
	}

	mods := make(gamemod.LocalMap, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if err := platform.ValidateDirName(name); err != nil {
			b.logger.Warn("skipping mod folder", "folder", name, "error", err)
			continue
		}

		dir := filepath.Join(b.modsDir(), name)
		manifest, err := gamemod.ReadManifest(dir)
		if err != nil {
			b.logger.Warn("skipping mod folder with unreadable manifest", "folder", name, "error", err)
			continue
		}

		common := gamemod.CommonData{ID: name, LoaderID: b.data.ID, Engine: defaultEngine}
		if manifest != nil {
			if manifest.Engine != nil {
				common.Engine = manifest.Engine
			}
			common.UnityBackend = manifest.UnityBackend
		}

		mods[name] = gamemod.LocalMod{
			Common: common,
			Data:   gamemod.LocalData{Path: dir, Manifest: manifest},
		}
	}
	return mods, nil
}
