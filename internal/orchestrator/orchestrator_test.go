// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/state"
	"github.com/modpal/modpal/internal/testutil"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

func TestInstallModAlreadyLocal(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.disk.put(localMod("m", "bepinex", h.loader.root))
	if err := h.store.SetLocalMods(h.disk.snapshot()); err != nil {
		t.Fatal(err)
	}

	res, err := h.orch.InstallMod(context.Background(), "g1", "m")
	if err != nil {
		t.Fatalf("InstallMod() error = %v", err)
	}
	if res.Outcome != OutcomeInstalled {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeInstalled)
	}
	if n := h.rescanner.calls.Load(); n != 0 {
		t.Errorf("rescans = %d, want 0", n)
	}
	if n := h.loader.downloads.Load(); n != 0 {
		t.Errorf("downloads = %d, want 0", n)
	}

	stored, err := h.store.InstalledGame("g1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"m"}, stored.InstalledModIDs); diff != "" {
		t.Errorf("InstalledModIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallModRescansBeforeDownloading(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	// On disk, but the snapshot has not seen it yet.
	h.disk.put(localMod("m", "bepinex", h.loader.root))
	h.setRemote(t, remoteMod("m", "bepinex", gamemod.Download{URL: "https://example.test/m.zip"}))

	res, err := h.orch.InstallMod(context.Background(), "g1", "m")
	if err != nil {
		t.Fatalf("InstallMod() error = %v", err)
	}
	if res.Outcome != OutcomeInstalled {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeInstalled)
	}
	if n := h.rescanner.calls.Load(); n != 1 {
		t.Errorf("rescans = %d, want exactly 1", n)
	}
	if n := h.loader.downloads.Load(); n != 0 {
		t.Errorf("downloads = %d, want 0", n)
	}
}

func TestInstallModDownloadsRemoteOnlyMod(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.setRemote(t, remoteMod("m", "bepinex", gamemod.Download{URL: "https://example.test/m.zip", Version: "1.0.0"}))

	res, err := h.orch.InstallMod(context.Background(), "g1", "m")
	if err != nil {
		t.Fatalf("InstallMod() error = %v", err)
	}
	if n := h.loader.downloads.Load(); n != 1 {
		t.Errorf("downloads = %d, want exactly 1", n)
	}
	// One rescan looking for the mod, one after the download.
	if n := h.rescanner.calls.Load(); n != 2 {
		t.Errorf("rescans = %d, want 2", n)
	}
	if !res.Game.IsModInstalled("m") {
		t.Errorf("returned game does not list m as installed: %v", res.Game.AvailableMods)
	}

	stored, _ := h.store.InstalledGame("g1")
	if diff := cmp.Diff([]string{"m"}, stored.InstalledModIDs); diff != "" {
		t.Errorf("stored InstalledModIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallModWithoutDownloadOpensLoaderFolder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.setRemote(t, remoteMod("m", "bepinex"))

	res, err := h.orch.InstallMod(context.Background(), "g1", "m")
	if err != nil {
		t.Fatalf("InstallMod() error = %v", err)
	}
	if res.Outcome != OutcomeManualActionRequired {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeManualActionRequired)
	}
	if res.Folder != h.loader.root {
		t.Errorf("Folder = %q, want %q", res.Folder, h.loader.root)
	}
	if want := filepath.Join(h.loader.root, "mods", "m"); res.ModPath != want {
		t.Errorf("ModPath = %q, want %q", res.ModPath, want)
	}
	if diff := cmp.Diff([]string{h.loader.root}, h.opener.Opened()); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}
	if n := h.loader.downloads.Load(); n != 0 {
		t.Errorf("downloads = %d, want 0", n)
	}
	if n := h.loader.installs.Load(); n != 0 {
		t.Errorf("installs = %d, want 0", n)
	}
}

func TestInstallModUnknown(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.orch.InstallMod(context.Background(), "g1", "ghost")
	if !errors.Is(err, fault.ErrUnavailable) {
		t.Errorf("InstallMod() error = %v, want ErrUnavailable", err)
	}

	if _, err := h.orch.InstallMod(context.Background(), "nope", "ghost"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("InstallMod(unknown game) error = %v, want ErrNotFound", err)
	}
}

func TestInstallModFailureCommitsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loader.installErr = fault.Incompatible("m", "g1")
	h.disk.put(localMod("m", "bepinex", h.loader.root))
	if err := h.store.SetLocalMods(h.disk.snapshot()); err != nil {
		t.Fatal(err)
	}
	h.resetEvents()

	_, err := h.orch.InstallMod(context.Background(), "g1", "m")
	if !errors.Is(err, fault.ErrIncompatible) {
		t.Fatalf("InstallMod() error = %v, want ErrIncompatible", err)
	}
	if events := h.recordedEvents(); len(events) != 0 {
		t.Errorf("events after failed install = %v, want none", events)
	}
	stored, _ := h.store.InstalledGame("g1")
	if len(stored.InstalledModIDs) != 0 {
		t.Errorf("InstalledModIDs = %v, want none", stored.InstalledModIDs)
	}
}

func TestUninstallMod(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.disk.put(localMod("m", "bepinex", h.loader.root))
	if err := h.store.SetLocalMods(h.disk.snapshot()); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := h.orch.InstallMod(ctx, "g1", "m"); err != nil {
		t.Fatalf("InstallMod() error = %v", err)
	}
	g, err := h.orch.UninstallMod(ctx, "g1", "m")
	if err != nil {
		t.Fatalf("UninstallMod() error = %v", err)
	}
	if g.IsModInstalled("m") {
		t.Errorf("m still installed after UninstallMod")
	}
	if stored, _ := h.store.InstalledGame("g1"); len(stored.InstalledModIDs) != 0 {
		t.Errorf("stored InstalledModIDs = %v, want none", stored.InstalledModIDs)
	}

	if _, err := h.orch.UninstallMod(ctx, "g1", "ghost"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("UninstallMod(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestDownloadMod(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.setRemote(t, remoteMod("m", "bepinex", gamemod.Download{URL: "https://example.test/m.zip"}))

	if err := h.orch.DownloadMod(context.Background(), "m"); err != nil {
		t.Fatalf("DownloadMod() error = %v", err)
	}
	if _, err := h.store.LocalMod("m"); err != nil {
		t.Errorf("LocalMod(m) after download: %v", err)
	}
	if n := h.rescanner.calls.Load(); n != 1 {
		t.Errorf("rescans = %d, want 1", n)
	}

	if err := h.orch.DownloadMod(context.Background(), "ghost"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("DownloadMod(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestAddAndRemoveGame(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	exe := filepath.Join(h.dir, "Other.exe")

	added, err := h.orch.AddGame(exe)
	if err != nil {
		t.Fatalf("AddGame() error = %v", err)
	}
	if _, err := h.store.InstalledGame(added.ID); err != nil {
		t.Errorf("added game not published: %v", err)
	}

	removed, err := h.orch.RemoveGame(added.ID)
	if err != nil {
		t.Fatalf("RemoveGame() error = %v", err)
	}
	if removed.ID != added.ID {
		t.Errorf("removed %q, want %q", removed.ID, added.ID)
	}

	want := []state.Event{
		{Kind: state.EventSyncInstalledGames},
		{Kind: state.EventGameAdded, Payload: "Other.exe"},
		{Kind: state.EventSyncInstalledGames},
		{Kind: state.EventGameRemoved, Payload: "Other.exe"},
	}
	if diff := cmp.Diff(want, h.recordedEvents()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAddGameRollsBackOnConflict(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	exe := filepath.Join(h.dir, "Other.exe")
	clash := newGame("manual-Other.exe", exe, h.manual.modsDir)
	clash.ProviderID = game.ProviderEpic
	if err := h.store.PutInstalledGame(clash); err != nil {
		t.Fatal(err)
	}

	if _, err := h.orch.AddGame(exe); !errors.Is(err, fault.ErrAlreadyExists) {
		t.Fatalf("AddGame() error = %v, want ErrAlreadyExists", err)
	}
	if diff := cmp.Diff([]string{exe}, h.manual.removed); diff != "" {
		t.Errorf("manual list not rolled back (-want +got):\n%s", diff)
	}
}

func TestRemoveGameOnlyManual(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if _, err := h.orch.RemoveGame("g1"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("RemoveGame(epic game) error = %v, want ErrNotFound", err)
	}
	if _, err := h.store.InstalledGame("g1"); err != nil {
		t.Errorf("epic game was removed: %v", err)
	}
}

func TestManualGamesDisabled(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	orch := New(Options{Store: h.store, Opener: h.opener})

	if _, err := orch.AddGame(h.game.Executable.Path); !errors.Is(err, ErrManualGamesDisabled) {
		t.Errorf("AddGame() error = %v, want ErrManualGamesDisabled", err)
	}
	if _, err := orch.RemoveGame("g1"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("RemoveGame() error = %v, want ErrNotFound", err)
	}
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		command    *game.Command
		force      bool
		wantRuns   []string
		wantStarts []testutil.StartCall
	}{
		{
			name:       "no start command runs the executable",
			wantStarts: []testutil.StartCall{{Path: "EXE"}},
		},
		{
			name:     "string command is run",
			command:  &game.Command{Line: "com.epicgames.launcher://apps/x?action=launch"},
			wantRuns: []string{"com.epicgames.launcher://apps/x?action=launch"},
		},
		{
			name:       "path command is started with its args",
			command:    &game.Command{Path: "/usr/bin/launcher", Args: []string{"--game", "x"}},
			wantStarts: []testutil.StartCall{{Path: "/usr/bin/launcher", Args: []string{"--game", "x"}}},
		},
		{
			name:       "forced executable ignores the command",
			command:    &game.Command{Line: "steam://run/1"},
			force:      true,
			wantStarts: []testutil.StartCall{{Path: "EXE"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			g := h.game
			g.StartCommand = tt.command
			if err := h.store.PutInstalledGame(g); err != nil {
				t.Fatal(err)
			}

			if err := h.orch.StartGame("g1", tt.force); err != nil {
				t.Fatalf("StartGame() error = %v", err)
			}

			wantStarts := tt.wantStarts
			for i := range wantStarts {
				if wantStarts[i].Path == "EXE" {
					wantStarts[i] = testutil.StartCall{Path: h.game.Executable.Path}
				}
			}
			if diff := cmp.Diff(tt.wantRuns, h.opener.Runs()); diff != "" {
				t.Errorf("runs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantStarts, h.opener.Starts()); diff != "" {
				t.Errorf("starts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunExecutable(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.orch.RunExecutable(h.game.Executable.Path); err != nil {
		t.Fatalf("RunExecutable() error = %v", err)
	}
	if err := h.orch.RunExecutable(filepath.Join(h.dir, "missing.exe")); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("RunExecutable(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOpenFolders(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.setRemote(t, remoteMod("remote-only", "bepinex"))

	steps := []struct {
		name string
		open func() error
		want string
	}{
		{"game folder", func() error { return h.orch.OpenGameFolder("g1") }, filepath.Dir(h.game.Executable.Path)},
		{"game mods folder", func() error { return h.orch.OpenGameModsFolder("g1") }, h.game.ModsPath},
		{"mod folder", func() error { return h.orch.OpenModFolder("remote-only") }, filepath.Join(h.loader.root, "mods", "remote-only")},
		{"loader folder", func() error { return h.orch.OpenLoaderFolder("bepinex") }, h.loader.root},
		{"all mods folder", h.orch.OpenModsFolder, filepath.Join(h.dir, "mod-loaders")},
	}

	var want []string
	for _, step := range steps {
		if err := step.open(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		want = append(want, step.want)
	}
	if diff := cmp.Diff(want, h.opener.Opened()); diff != "" {
		t.Errorf("opened mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(h.game.ModsPath); err != nil {
		t.Errorf("game mods folder not created: %v", err)
	}

	if err := h.orch.OpenLoaderFolder("nope"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("OpenLoaderFolder(nope) error = %v, want ErrNotFound", err)
	}
}

func TestRefreshGame(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.disk.put(localMod("m", "bepinex", h.loader.root))
	if err := h.store.SetLocalMods(h.disk.snapshot()); err != nil {
		t.Fatal(err)
	}
	// Installed behind modpal's back.
	if err := os.MkdirAll(filepath.Join(h.game.ModsPath, "bepinex", "m"), 0o755); err != nil {
		t.Fatal(err)
	}

	g, err := h.orch.RefreshGame("g1")
	if err != nil {
		t.Fatalf("RefreshGame() error = %v", err)
	}
	if diff := cmp.Diff([]string{"m"}, g.InstalledModIDs); diff != "" {
		t.Errorf("InstalledModIDs mismatch (-want +got):\n%s", diff)
	}
}
