// SPDX-License-Identifier: MPL-2.0

// Package orchestrator carries out user-initiated operations on games and
// mods: installing, uninstalling and downloading mods, adding and removing
// manual games, starting games and opening folders.
//
// Errors propagate to the caller unmodified and a failed operation publishes
// nothing.
package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/modloader"
	"github.com/modpal/modpal/internal/osopen"
	"github.com/modpal/modpal/internal/state"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

const (
	// OutcomeInstalled means the mod was installed into the game.
	OutcomeInstalled Outcome = "installed"
	// OutcomeManualActionRequired means the mod could not be fetched and the
	// loader folder was opened for the user to place it manually.
	OutcomeManualActionRequired Outcome = "manual-action-required"
)

var (
	// ErrManualGamesDisabled is returned by AddGame and RemoveGame when no
	// manual game list is configured.
	ErrManualGamesDisabled = errors.New("manual games are disabled")

	errMissingAfterDownload = errors.New("downloaded mod did not appear in the loader folder")
)

type (
	// Outcome is how an install request ended when it did not fail.
	Outcome string

	// InstallResult reports a finished install request.
	InstallResult struct {
		Outcome Outcome
		// Game is the published game; zero for OutcomeManualActionRequired.
		Game game.InstalledGame
		// Folder is the loader folder opened for manual installation.
		Folder string
		// ModPath is where the mod's files must be placed to be picked up by
		// the next rescan.
		ModPath string
	}

	// Rescanner rescans loaders' local mods and publishes them.
	Rescanner interface {
		RescanLocalMods(ctx context.Context) error
	}

	// ManualGames is the persisted list of manually added games.
	ManualGames interface {
		Add(path string) (game.InstalledGame, error)
		Remove(path string) error
	}

	// Options configures New.
	Options struct {
		Store *state.Store
		// Loaders returns the current loader backends.
		Loaders   func() modloader.Map
		Rescanner Rescanner
		Manual    ManualGames
		Opener    osopen.Opener
		// LoadersDir is the parent of every loader root.
		LoadersDir string
		Logger     *log.Logger
	}

	// Orchestrator runs operations against the store. Mutations of one game
	// are serialized; different games proceed independently.
	Orchestrator struct {
		store      *state.Store
		loaders    func() modloader.Map
		rescanner  Rescanner
		manual     ManualGames
		opener     osopen.Opener
		loadersDir string
		logger     *log.Logger
	}
)

// New returns an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		store:      opts.Store,
		loaders:    opts.Loaders,
		rescanner:  opts.Rescanner,
		manual:     opts.Manual,
		opener:     opts.Opener,
		loadersDir: opts.LoadersDir,
		logger:     logger,
	}
}

// InstallMod installs mod modID into game gameID. A mod missing from the
// local snapshot triggers one rescan; if it is still missing it is
// downloaded when the catalog offers a download, otherwise its loader folder
// is opened and OutcomeManualActionRequired is returned. Either way the
// loaders are rescanned once more before installing.
func (o *Orchestrator) InstallMod(ctx context.Context, gameID, modID string) (InstallResult, error) {
	unlock := o.store.LockGame(gameID)
	defer unlock()

	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return InstallResult{}, err
	}

	local, found, err := o.findLocalMod(ctx, modID)
	if err != nil {
		return InstallResult{}, err
	}
	if !found {
		remote, err := o.store.RemoteMod(modID)
		if err != nil {
			return InstallResult{}, fault.Unavailable(modID, err)
		}
		loader, err := o.loaders().Get(remote.Common.LoaderID)
		if err != nil {
			return InstallResult{}, err
		}

		if _, ok := remote.FirstDownload(); !ok {
			folder := loader.Data().Path
			modPath, err := loader.ModPath(remote.Common)
			if err != nil {
				return InstallResult{}, err
			}
			o.logger.Info("mod has no download, opening loader folder", "mod", modID, "folder", folder)
			if err := o.opener.Open(folder); err != nil {
				return InstallResult{}, err
			}
			if err := o.rescanner.RescanLocalMods(ctx); err != nil {
				return InstallResult{}, err
			}
			return InstallResult{Outcome: OutcomeManualActionRequired, Folder: folder, ModPath: modPath}, nil
		}

		o.logger.Info("downloading mod", "mod", modID, "loader", remote.Common.LoaderID)
		if err := loader.DownloadMod(ctx, remote); err != nil {
			return InstallResult{}, err
		}
		if err := o.rescanner.RescanLocalMods(ctx); err != nil {
			return InstallResult{}, err
		}
		local, err = o.store.LocalMod(modID)
		if err != nil {
			return InstallResult{}, fault.Unavailable(modID, errMissingAfterDownload)
		}
	}

	loader, err := o.loaders().Get(local.Common.LoaderID)
	if err != nil {
		return InstallResult{}, err
	}
	if err := loader.InstallMod(ctx, g, local); err != nil {
		return InstallResult{}, err
	}

	g, err = o.publishGame(g)
	if err != nil {
		return InstallResult{}, err
	}
	o.logger.Info("installed mod", "mod", modID, "game", g.DisplayName())
	return InstallResult{Outcome: OutcomeInstalled, Game: g}, nil
}

// UninstallMod removes mod modID from game gameID. It never touches the
// network.
func (o *Orchestrator) UninstallMod(_ context.Context, gameID, modID string) (game.InstalledGame, error) {
	unlock := o.store.LockGame(gameID)
	defer unlock()

	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return game.InstalledGame{}, err
	}
	common, err := o.store.CommonModData()
	if err != nil {
		return game.InstalledGame{}, err
	}
	mod, ok := common[modID]
	if !ok {
		return game.InstalledGame{}, fault.NotFound("mod", modID)
	}
	loader, err := o.loaders().Get(mod.LoaderID)
	if err != nil {
		return game.InstalledGame{}, err
	}
	if err := loader.UninstallMod(g, modID); err != nil {
		return game.InstalledGame{}, err
	}

	g, err = o.publishGame(g)
	if err != nil {
		return game.InstalledGame{}, err
	}
	o.logger.Info("uninstalled mod", "mod", modID, "game", g.DisplayName())
	return g, nil
}

// DownloadMod fetches mod modID from its loader's catalog and rescans.
func (o *Orchestrator) DownloadMod(ctx context.Context, modID string) error {
	remote, err := o.store.RemoteMod(modID)
	if err != nil {
		return err
	}
	loader, err := o.loaders().Get(remote.Common.LoaderID)
	if err != nil {
		return err
	}
	if err := loader.DownloadMod(ctx, remote); err != nil {
		return err
	}
	return o.rescanner.RescanLocalMods(ctx)
}

// RefreshGame recomputes one game's executable metadata and mods and
// publishes it.
func (o *Orchestrator) RefreshGame(gameID string) (game.InstalledGame, error) {
	unlock := o.store.LockGame(gameID)
	defer unlock()

	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return game.InstalledGame{}, err
	}
	return o.publishGame(g)
}

// AddGame records the executable at path as a manual game and publishes it.
func (o *Orchestrator) AddGame(path string) (game.InstalledGame, error) {
	if o.manual == nil {
		return game.InstalledGame{}, ErrManualGamesDisabled
	}
	g, err := o.manual.Add(path)
	if err != nil {
		return game.InstalledGame{}, err
	}

	common, err := o.store.CommonModData()
	if err != nil {
		return game.InstalledGame{}, o.rollbackAdd(path, err)
	}
	g.RefreshAvailableMods(common, o.loaders().Locate)
	if err := o.store.AddInstalledGame(g); err != nil {
		return game.InstalledGame{}, o.rollbackAdd(path, err)
	}
	return g, nil
}

func (o *Orchestrator) rollbackAdd(path string, cause error) error {
	if err := o.manual.Remove(path); err != nil {
		o.logger.Warn("failed to roll back manual game", "path", path, "error", err)
	}
	return cause
}

// RemoveGame forgets a manually added game. Games of other providers are
// reported as not found.
func (o *Orchestrator) RemoveGame(gameID string) (game.InstalledGame, error) {
	unlock := o.store.LockGame(gameID)
	defer unlock()

	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return game.InstalledGame{}, err
	}
	if g.ProviderID != game.ProviderManual || o.manual == nil {
		return game.InstalledGame{}, fault.NotFound("manually added game", gameID)
	}
	if err := o.manual.Remove(g.Executable.Path); err != nil {
		return game.InstalledGame{}, err
	}
	return o.store.RemoveInstalledGame(gameID)
}

// StartGame launches game gameID through its provider start command, or
// its executable when it has none or forceExecutable is set.
func (o *Orchestrator) StartGame(gameID string, forceExecutable bool) error {
	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return err
	}

	switch cmd := g.StartCommand; {
	case forceExecutable || cmd == nil:
		return o.opener.Start(g.Executable.Path)
	case cmd.IsString():
		return o.opener.Run(cmd.Line)
	default:
		return o.opener.Start(cmd.Path, cmd.Args...)
	}
}

// RunExecutable starts the executable at path directly.
func (o *Orchestrator) RunExecutable(path string) error {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return fault.NotFound("executable", path)
	}
	return o.opener.Start(path)
}

// OpenGameFolder opens the directory holding the game's executable.
func (o *Orchestrator) OpenGameFolder(gameID string) error {
	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return err
	}
	return o.opener.Open(filepath.Dir(g.Executable.Path))
}

// OpenGameModsFolder opens the game's mods directory, creating it first.
func (o *Orchestrator) OpenGameModsFolder(gameID string) error {
	g, err := o.store.InstalledGame(gameID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.ModsPath, 0o755); err != nil {
		return fault.IO("create game mods folder", g.ModsPath, err)
	}
	return o.opener.Open(g.ModsPath)
}

// OpenModFolder opens where mod modID lives under its loader.
func (o *Orchestrator) OpenModFolder(modID string) error {
	if local, err := o.store.LocalMod(modID); err == nil {
		return o.opener.Open(local.Data.Path)
	}

	common, err := o.store.CommonModData()
	if err != nil {
		return err
	}
	mod, ok := common[modID]
	if !ok {
		return fault.NotFound("mod", modID)
	}
	loader, err := o.loaders().Get(mod.LoaderID)
	if err != nil {
		return err
	}
	path, err := loader.ModPath(mod)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fault.IO("create mod folder", path, err)
	}
	return o.opener.Open(path)
}

// OpenLoaderFolder opens the root folder of loader loaderID.
func (o *Orchestrator) OpenLoaderFolder(loaderID string) error {
	loader, err := o.loaders().Get(loaderID)
	if err != nil {
		return err
	}
	return o.opener.Open(loader.Data().Path)
}

// OpenModsFolder opens the folder holding every loader.
func (o *Orchestrator) OpenModsFolder() error {
	if err := os.MkdirAll(o.loadersDir, 0o755); err != nil {
		return fault.IO("create mod loaders folder", o.loadersDir, err)
	}
	return o.opener.Open(o.loadersDir)
}

// findLocalMod looks mod modID up in the local snapshot, rescanning once
// when it is missing.
func (o *Orchestrator) findLocalMod(ctx context.Context, modID string) (gamemod.LocalMod, bool, error) {
	mod, err := o.store.LocalMod(modID)
	switch {
	case err == nil:
		return mod, true, nil
	case !errors.Is(err, fault.ErrNotFound):
		return gamemod.LocalMod{}, false, err
	}

	if err := o.rescanner.RescanLocalMods(ctx); err != nil {
		return gamemod.LocalMod{}, false, err
	}
	mod, err = o.store.LocalMod(modID)
	switch {
	case err == nil:
		return mod, true, nil
	case errors.Is(err, fault.ErrNotFound):
		return gamemod.LocalMod{}, false, nil
	default:
		return gamemod.LocalMod{}, false, err
	}
}

// publishGame refreshes g's executable and available mods from the current
// store and publishes it.
func (o *Orchestrator) publishGame(g game.InstalledGame) (game.InstalledGame, error) {
	common, err := o.store.CommonModData()
	if err != nil {
		return game.InstalledGame{}, err
	}
	g.RefreshExecutable()
	g.RefreshAvailableMods(common, o.loaders().Locate)
	if err := o.store.PutInstalledGame(g); err != nil {
		return game.InstalledGame{}, err
	}
	return g, nil
}
