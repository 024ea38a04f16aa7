// SPDX-License-Identifier: MPL-2.0

package refresh

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

type fakeLoader struct {
	id        string
	local     gamemod.LocalMap
	localErr  error
	remote    gamemod.RemoteMap
	remoteErr error

	localCalls atomic.Int32
	// onLocate, when set, runs before every InstalledModPath lookup.
	onLocate func()
}

func (l *fakeLoader) Data() gamemod.LoaderData {
	return gamemod.LoaderData{ID: l.id, Path: filepath.Join("loaders", l.id), Kind: gamemod.KindInstallable}
}

func (l *fakeLoader) Install(game.InstalledGame) error { return nil }

func (l *fakeLoader) InstallMod(context.Context, game.InstalledGame, gamemod.LocalMod) error {
	return nil
}

func (l *fakeLoader) UninstallMod(game.InstalledGame, string) error { return nil }

func (l *fakeLoader) LocalMods() (gamemod.LocalMap, error) {
	l.localCalls.Add(1)
	if l.localErr != nil {
		return nil, l.localErr
	}
	out := gamemod.LocalMap{}
	for id, m := range l.local {
		out[id] = m
	}
	return out, nil
}

func (l *fakeLoader) RemoteMods(_ context.Context, onError func(error)) gamemod.RemoteMap {
	if l.remoteErr != nil {
		onError(l.remoteErr)
		return gamemod.RemoteMap{}
	}
	out := gamemod.RemoteMap{}
	for id, m := range l.remote {
		out[id] = m
	}
	return out
}

func (l *fakeLoader) DownloadMod(context.Context, gamemod.RemoteMod) error { return nil }

func (l *fakeLoader) ModPath(mod gamemod.CommonData) (string, error) {
	return filepath.Join("loaders", l.id, "mods", mod.ID), nil
}

func (l *fakeLoader) InstalledModPath(g game.InstalledGame, modID string) string {
	if l.onLocate != nil {
		l.onLocate()
	}
	return filepath.Join(g.ModsPath, l.id, modID)
}

type fakeProvider struct {
	id           game.ProviderID
	installed    []game.InstalledGame
	installedErr error
	owned        []game.OwnedGame
	ownedErr     error
}

func (p *fakeProvider) ID() game.ProviderID { return p.id }

func (p *fakeProvider) InstalledGames(context.Context) ([]game.InstalledGame, error) {
	return p.installed, p.installedErr
}

func (p *fakeProvider) OwnedGames(context.Context) ([]game.OwnedGame, error) {
	return p.owned, p.ownedErr
}

type failure struct {
	phase  Phase
	source string
}

type recordingReporter struct {
	mu       sync.Mutex
	failures []failure
}

func (r *recordingReporter) Report(phase Phase, sourceID string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{phase, sourceID})
}

func (r *recordingReporter) recorded() []failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]failure(nil), r.failures...)
}

func localMod(id, loaderID string) gamemod.LocalMod {
	return gamemod.LocalMod{
		Common: gamemod.CommonData{ID: id, LoaderID: loaderID},
		Data:   gamemod.LocalData{Path: filepath.Join("loaders", loaderID, "mods", id)},
	}
}

func remoteMod(id, loaderID, title string) gamemod.RemoteMod {
	return gamemod.RemoteMod{
		Common: gamemod.CommonData{ID: id, LoaderID: loaderID},
		Data:   gamemod.RemoteData{Title: title},
	}
}

func installedGame(id, name, exe, modsRoot string) game.InstalledGame {
	return game.InstalledGame{
		ID:         id,
		Name:       name,
		ProviderID: game.ProviderManual,
		Executable: game.Executable{Path: exe, Name: filepath.Base(exe)},
		ModsPath:   filepath.Join(modsRoot, id),
	}
}
