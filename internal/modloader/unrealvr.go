// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/osopen"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

// UnrealVRID is the id of the runnable Unreal VR loader.
const UnrealVRID = "unrealvr"

// UnrealVR runs injector mods next to Unreal games. Nothing is copied into
// the game; "installing" a mod starts its injector attached to the game.
type UnrealVR struct {
	base
	opener osopen.Opener
}

// NewUnrealVR creates the loader rooted at loadersDir/unrealvr.
func NewUnrealVR(loadersDir string, cat Catalog, opener osopen.Opener, logger *log.Logger) (*UnrealVR, error) {
	b, err := newBase(loadersDir, UnrealVRID, gamemod.KindRunnable, cat, logger)
	if err != nil {
		return nil, err
	}
	return &UnrealVR{base: b, opener: opener}, nil
}

// LocalMods implements Loader.
func (l *UnrealVR) LocalMods() (gamemod.LocalMap, error) {
	unreal := engine.Unreal
	return l.scanLocalMods(&unreal)
}

// InstalledModPath implements Loader. Runnable mods are never installed.
func (l *UnrealVR) InstalledModPath(game.InstalledGame, string) string {
	return ""
}

// Install implements Loader. Unreal games need no injection.
func (l *UnrealVR) Install(g game.InstalledGame) error {
	if brand := g.Brand(); brand == nil || *brand != engine.Unreal {
		return fault.Incompatible(UnrealVRID, g.ID)
	}
	return nil
}

// InstallMod implements Loader by starting the mod's injector attached to
// the game's executable.
func (l *UnrealVR) InstallMod(ctx context.Context, g game.InstalledGame, mod gamemod.LocalMod) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !mod.Common.CompatibleWith(g.Brand(), g.Executable.UnityBackend) {
		return fault.Incompatible(mod.Common.ID, g.ID)
	}
	if err := l.Install(g); err != nil {
		return err
	}
	if l.opener == nil {
		return fault.IO("run mod", mod.Data.Path, os.ErrInvalid)
	}

	injector, err := findInjector(mod.Data.Path)
	if err != nil {
		return err
	}

	l.logger.Info("starting mod", "mod", mod.Common.ID, "game", g.DisplayName())
	return l.opener.Start(injector, "--attach="+g.Executable.Name)
}

// UninstallMod implements Loader. There is nothing to remove from the game.
func (l *UnrealVR) UninstallMod(game.InstalledGame, string) error {
	return nil
}

// findInjector returns the first executable at the top of dir.
func findInjector(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fault.IO("read mod folder", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".exe") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fault.IO("find mod executable", dir, os.ErrNotExist)
	}
	slices.Sort(names)
	return filepath.Join(dir, names[0]), nil
}
