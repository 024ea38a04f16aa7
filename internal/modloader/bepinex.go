// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

const (
	// BepInExID is the id of the BepInEx loader.
	BepInExID = "bepinex"

	doorstopConfigName = "doorstop_config.ini"
)

// BepInEx injects the BepInEx plugin framework into Unity games. The runtime
// lives in the game's mods directory; only the Doorstop proxy and its config
// are written next to the game executable.
type BepInEx struct {
	base
	resourcesDir string
}

// NewBepInEx creates the loader rooted at loadersDir/bepinex. Payloads are
// read from resourcesDir/mod-loaders/bepinex/<Mono|Il2Cpp>.
func NewBepInEx(loadersDir, resourcesDir string, cat Catalog, logger *log.Logger) (*BepInEx, error) {
	b, err := newBase(loadersDir, BepInExID, gamemod.KindInstallable, cat, logger)
	if err != nil {
		return nil, err
	}
	return &BepInEx{base: b, resourcesDir: resourcesDir}, nil
}

// LocalMods implements Loader.
func (l *BepInEx) LocalMods() (gamemod.LocalMap, error) {
	unity := engine.Unity
	return l.scanLocalMods(&unity)
}

// InstalledModPath implements Loader.
func (l *BepInEx) InstalledModPath(g game.InstalledGame, modID string) string {
	return filepath.Join(l.runtimeDir(g), "plugins", modID)
}

// Install implements Loader.
func (l *BepInEx) Install(g game.InstalledGame) error {
	backend, err := l.requireUnity(g)
	if err != nil {
		return err
	}

	payload := filepath.Join(l.resourcesDir, "mod-loaders", BepInExID, string(backend))
	if !isDir(payload) {
		return fault.IO("locate loader payload", payload, os.ErrNotExist)
	}

	if err := copyTree(filepath.Join(payload, "BepInEx"), l.runtimeDir(g)); err != nil {
		return fault.IO("install loader runtime", l.runtimeDir(g), err)
	}

	gameDir := filepath.Dir(g.Executable.Path)
	if err := copyTree(filepath.Join(payload, "doorstop"), gameDir); err != nil {
		return fault.IO("install doorstop", gameDir, err)
	}

	configPath := filepath.Join(gameDir, doorstopConfigName)
	if err := os.WriteFile(configPath, []byte(l.doorstopConfig(g, backend)), 0o644); err != nil {
		return fault.IO("write doorstop config", configPath, err)
	}

	l.logger.Info("installed loader", "game", g.DisplayName(), "backend", backend)
	return nil
}

// InstallMod implements Loader.
func (l *BepInEx) InstallMod(ctx context.Context, g game.InstalledGame, mod gamemod.LocalMod) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !mod.Common.CompatibleWith(g.Brand(), g.Executable.UnityBackend) {
		return fault.Incompatible(mod.Common.ID, g.ID)
	}

	if !l.isPatched(g) {
		if err := l.Install(g); err != nil {
			return err
		}
	}

	dst := l.InstalledModPath(g, mod.Common.ID)
	if err := replaceTree(mod.Data.Path, dst); err != nil {
		return fault.IO("install mod", dst, err)
	}

	l.logger.Info("installed mod", "mod", mod.Common.ID, "game", g.DisplayName())
	return nil
}

// UninstallMod implements Loader.
func (l *BepInEx) UninstallMod(g game.InstalledGame, modID string) error {
	dst := l.InstalledModPath(g, modID)
	if !isDir(dst) {
		return fault.NotFound("installed mod", modID)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fault.IO("uninstall mod", dst, err)
	}
	return nil
}

func (l *BepInEx) runtimeDir(g game.InstalledGame) string {
	return filepath.Join(g.ModsPath, BepInExID, "BepInEx")
}

func (l *BepInEx) requireUnity(g game.InstalledGame) (engine.UnityBackend, error) {
	brand := g.Brand()
	if brand == nil || *brand != engine.Unity || g.Executable.UnityBackend == nil {
		return "", fault.Incompatible(BepInExID, g.ID)
	}
	return *g.Executable.UnityBackend, nil
}

// isPatched reports whether the game's Doorstop config points at this
// game's runtime directory.
func (l *BepInEx) isPatched(g game.InstalledGame) bool {
	backend, err := l.requireUnity(g)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(g.Executable.Path), doorstopConfigName))
	if err != nil {
		return false
	}
	return string(data) == l.doorstopConfig(g, backend)
}

func (l *BepInEx) doorstopConfig(g game.InstalledGame, backend engine.UnityBackend) string {
	core := filepath.Join(l.runtimeDir(g), "core")
	if backend == engine.Il2Cpp {
		dotnet := filepath.Join(l.runtimeDir(g), "..", "dotnet")
		return fmt.Sprintf("[General]\nenabled = true\ntarget_assembly = %s\n\n[Il2Cpp]\ncoreclr_path = %s\ncorlib_dir = %s\n",
			filepath.Join(core, "BepInEx.Unity.IL2CPP.dll"),
			filepath.Join(dotnet, "coreclr.dll"),
			dotnet)
	}
	return fmt.Sprintf("[General]\nenabled = true\ntarget_assembly = %s\n",
		filepath.Join(core, "BepInEx.Preloader.dll"))
}
