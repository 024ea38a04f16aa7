// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/modloader"
	"github.com/modpal/modpal/internal/state"
	"github.com/modpal/modpal/internal/testutil"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

// disk stands in for the loaders' mods directories.
type disk struct {
	mu   sync.Mutex
	mods gamemod.LocalMap
}

func (d *disk) put(mod gamemod.LocalMod) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mods[mod.Common.ID] = mod
}

func (d *disk) snapshot() gamemod.LocalMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := gamemod.LocalMap{}
	for id, m := range d.mods {
		out[id] = m
	}
	return out
}

type fakeRescanner struct {
	store *state.Store
	disk  *disk
	calls atomic.Int32
}

func (r *fakeRescanner) RescanLocalMods(context.Context) error {
	r.calls.Add(1)
	return r.store.SetLocalMods(r.disk.snapshot())
}

type fakeLoader struct {
	id         string
	root       string
	disk       *disk
	installErr error

	downloads atomic.Int32
	installs  atomic.Int32
}

func (l *fakeLoader) Data() gamemod.LoaderData {
	return gamemod.LoaderData{ID: l.id, Path: l.root, Kind: gamemod.KindInstallable}
}

func (l *fakeLoader) Install(game.InstalledGame) error { return nil }

func (l *fakeLoader) InstallMod(_ context.Context, g game.InstalledGame, mod gamemod.LocalMod) error {
	l.installs.Add(1)
	if l.installErr != nil {
		return l.installErr
	}
	return os.MkdirAll(l.InstalledModPath(g, mod.Common.ID), 0o755)
}

func (l *fakeLoader) UninstallMod(g game.InstalledGame, modID string) error {
	path := l.InstalledModPath(g, modID)
	if _, err := os.Stat(path); err != nil {
		return fault.NotFound("installed mod", modID)
	}
	return os.RemoveAll(path)
}

func (l *fakeLoader) LocalMods() (gamemod.LocalMap, error) { return l.disk.snapshot(), nil }

func (l *fakeLoader) RemoteMods(context.Context, func(error)) gamemod.RemoteMap {
	return gamemod.RemoteMap{}
}

func (l *fakeLoader) DownloadMod(_ context.Context, mod gamemod.RemoteMod) error {
	l.downloads.Add(1)
	if _, ok := mod.FirstDownload(); !ok {
		return fault.Unavailable(mod.Common.ID, nil)
	}
	l.disk.put(localMod(mod.Common.ID, l.id, l.root))
	return nil
}

func (l *fakeLoader) ModPath(mod gamemod.CommonData) (string, error) {
	return filepath.Join(l.root, "mods", mod.ID), nil
}

func (l *fakeLoader) InstalledModPath(g game.InstalledGame, modID string) string {
	return filepath.Join(g.ModsPath, l.id, modID)
}

type fakeManual struct {
	mu      sync.Mutex
	modsDir string
	paths   map[string]bool
	removed []string
}

func (m *fakeManual) Add(path string) (game.InstalledGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paths[path] {
		return game.InstalledGame{}, fault.AlreadyExists("game", path)
	}
	m.paths[path] = true
	return newGame("manual-"+filepath.Base(path), path, m.modsDir), nil
}

func (m *fakeManual) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paths[path] {
		return fault.NotFound("manually added game", path)
	}
	delete(m.paths, path)
	m.removed = append(m.removed, path)
	return nil
}

type harness struct {
	store     *state.Store
	orch      *Orchestrator
	disk      *disk
	rescanner *fakeRescanner
	loader    *fakeLoader
	opener    *testutil.RecordingOpener
	manual    *fakeManual
	game      game.InstalledGame
	dir       string

	eventsMu sync.Mutex
	events   []state.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		dir:    dir,
		disk:   &disk{mods: gamemod.LocalMap{}},
		opener: &testutil.RecordingOpener{},
	}
	h.store = state.New(state.NotifierFunc(func(e state.Event) {
		h.eventsMu.Lock()
		defer h.eventsMu.Unlock()
		h.events = append(h.events, e)
	}))
	h.rescanner = &fakeRescanner{store: h.store, disk: h.disk}
	h.loader = &fakeLoader{id: "bepinex", root: filepath.Join(dir, "mod-loaders", "bepinex"), disk: h.disk}
	h.manual = &fakeManual{modsDir: filepath.Join(dir, "installed-mods"), paths: map[string]bool{}}

	exe := testutil.PlainExe(t, filepath.Join(dir, "games"), "GameX")
	h.game = newGame("g1", exe, filepath.Join(dir, "installed-mods"))
	h.game.ProviderID = game.ProviderEpic
	if err := h.store.SetInstalledGames(game.InstalledMap{h.game.ID: h.game}); err != nil {
		t.Fatal(err)
	}

	loaders := modloader.Map{h.loader.id: h.loader}
	h.orch = New(Options{
		Store:      h.store,
		Loaders:    func() modloader.Map { return loaders },
		Rescanner:  h.rescanner,
		Manual:     h.manual,
		Opener:     h.opener,
		LoadersDir: filepath.Join(dir, "mod-loaders"),
	})

	h.resetEvents()
	return h
}

func (h *harness) resetEvents() {
	h.eventsMu.Lock()
	defer h.eventsMu.Unlock()
	h.events = nil
}

func (h *harness) recordedEvents() []state.Event {
	h.eventsMu.Lock()
	defer h.eventsMu.Unlock()
	return append([]state.Event(nil), h.events...)
}

func (h *harness) setRemote(t *testing.T, mods ...gamemod.RemoteMod) {
	t.Helper()

	remote := gamemod.RemoteMap{}
	for _, m := range mods {
		remote[m.Common.ID] = m
	}
	if err := h.store.SetRemoteMods(remote); err != nil {
		t.Fatal(err)
	}
}

func newGame(id, exe, modsRoot string) game.InstalledGame {
	return game.InstalledGame{
		ID:              id,
		Name:            filepath.Base(exe),
		ProviderID:      game.ProviderManual,
		Executable:      game.Executable{Path: exe, Name: filepath.Base(exe)},
		ModsPath:        filepath.Join(modsRoot, id),
		InstalledModIDs: []string{},
		AvailableMods:   map[string]bool{},
	}
}

func localMod(id, loaderID, loaderRoot string) gamemod.LocalMod {
	return gamemod.LocalMod{
		Common: gamemod.CommonData{ID: id, LoaderID: loaderID},
		Data:   gamemod.LocalData{Path: filepath.Join(loaderRoot, "mods", id)},
	}
}

func remoteMod(id, loaderID string, downloads ...gamemod.Download) gamemod.RemoteMod {
	return gamemod.RemoteMod{
		Common: gamemod.CommonData{ID: id, LoaderID: loaderID},
		Data:   gamemod.RemoteData{Title: id, Downloads: downloads},
	}
}
