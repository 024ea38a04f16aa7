// SPDX-License-Identifier: MPL-2.0

package state

import (
	"fmt"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

// Store is the shared snapshot passed to every component that reads or
// publishes state. The zero value is not usable; call New.
type Store struct {
	notifier Notifier

	installedGames *collection[game.InstalledGame]
	ownedGames     *collection[game.OwnedGame]
	modLoaders     *collection[gamemod.LoaderData]
	localMods      *collection[gamemod.LocalMod]
	remoteMods     *collection[gamemod.RemoteMod]

	gameLocksMu sync.Mutex
	gameLocks   map[string]*sync.Mutex
}

// New returns an empty Store. A nil notifier discards events.
func New(notifier Notifier) *Store {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Store{
		notifier:       notifier,
		installedGames: newCollection[game.InstalledGame](EventSyncInstalledGames),
		ownedGames:     newCollection[game.OwnedGame](EventSyncOwnedGames),
		modLoaders:     newCollection[gamemod.LoaderData](EventSyncModLoaders),
		localMods:      newCollection[gamemod.LocalMod](EventSyncLocalMods),
		remoteMods:     newCollection[gamemod.RemoteMod](EventSyncRemoteMods),
		gameLocks:      make(map[string]*sync.Mutex),
	}
}

// Emit forwards e to the notifier.
func (s *Store) Emit(e Event) {
	s.notifier.Notify(e)
}

func publish[T any](s *Store, c *collection[T], items map[string]T) error {
	if err := c.replace(items); err != nil {
		return err
	}
	s.Emit(Event{Kind: c.event})
	return nil
}

func lookup[T any](c *collection[T], resource, id string) (T, error) {
	item, ok, err := c.get(id)
	if err != nil {
		return item, err
	}
	if !ok {
		return item, fault.NotFound(resource, id)
	}
	return item, nil
}

// InstalledGames returns a copy of the installed-games collection.
func (s *Store) InstalledGames() (game.InstalledMap, error) { return s.installedGames.snapshot() }

// InstalledGame returns one installed game or a fault.ErrNotFound error.
func (s *Store) InstalledGame(id string) (game.InstalledGame, error) {
	return lookup(s.installedGames, "game", id)
}

// SetInstalledGames replaces the installed-games collection.
func (s *Store) SetInstalledGames(games game.InstalledMap) error {
	return publish(s, s.installedGames, games)
}

// PutInstalledGame replaces a single game inside the collection. The rest of
// the collection is left as is.
func (s *Store) PutInstalledGame(g game.InstalledGame) error {
	var stored game.InstalledGame
	if err := deepcopy.Copy(&stored, &g); err != nil {
		return fmt.Errorf("copying game %q: %w", g.ID, err)
	}
	if err := s.installedGames.update(func(items map[string]game.InstalledGame) error {
		items[g.ID] = stored
		return nil
	}); err != nil {
		return err
	}
	s.Emit(Event{Kind: EventSyncInstalledGames})
	return nil
}

// UpdateInstalledGames runs fn against the live installed-games collection
// under its write lock. Changes made by fn are published only if it returns
// nil. Publishes of single games wait until fn is done, so none of them is
// overwritten by a recompute that started earlier.
func (s *Store) UpdateInstalledGames(fn func(games game.InstalledMap) error) error {
	if err := s.installedGames.update(fn); err != nil {
		return err
	}
	s.Emit(Event{Kind: EventSyncInstalledGames})
	return nil
}

// AddInstalledGame inserts g, failing with fault.ErrAlreadyExists when a game
// with the same id is present. On success it emits a sync event followed by
// EventGameAdded with the game's name.
func (s *Store) AddInstalledGame(g game.InstalledGame) error {
	var stored game.InstalledGame
	if err := deepcopy.Copy(&stored, &g); err != nil {
		return fmt.Errorf("copying game %q: %w", g.ID, err)
	}
	if err := s.installedGames.update(func(items map[string]game.InstalledGame) error {
		if _, exists := items[g.ID]; exists {
			return fault.AlreadyExists("game", g.Executable.Path)
		}
		items[g.ID] = stored
		return nil
	}); err != nil {
		return err
	}
	s.Emit(Event{Kind: EventSyncInstalledGames})
	s.Emit(Event{Kind: EventGameAdded, Payload: g.Name})
	return nil
}

// RemoveInstalledGame deletes the game with id and returns it. It emits a
// sync event followed by EventGameRemoved with the game's name.
func (s *Store) RemoveInstalledGame(id string) (game.InstalledGame, error) {
	var removed game.InstalledGame
	if err := s.installedGames.update(func(items map[string]game.InstalledGame) error {
		g, ok := items[id]
		if !ok {
			return fault.NotFound("game", id)
		}
		removed = g
		delete(items, id)
		return nil
	}); err != nil {
		return game.InstalledGame{}, err
	}
	s.Emit(Event{Kind: EventSyncInstalledGames})
	s.Emit(Event{Kind: EventGameRemoved, Payload: removed.Name})
	return removed, nil
}

// OwnedGames returns a copy of the owned-games collection.
func (s *Store) OwnedGames() (game.OwnedMap, error) { return s.ownedGames.snapshot() }

// SetOwnedGames replaces the owned-games collection.
func (s *Store) SetOwnedGames(games game.OwnedMap) error {
	return publish(s, s.ownedGames, games)
}

// ModLoaders returns a copy of the mod-loaders collection.
func (s *Store) ModLoaders() (gamemod.LoaderDataMap, error) { return s.modLoaders.snapshot() }

// ModLoader returns one loader or a fault.ErrNotFound error.
func (s *Store) ModLoader(id string) (gamemod.LoaderData, error) {
	return lookup(s.modLoaders, "mod loader", id)
}

// SetModLoaders replaces the mod-loaders collection.
func (s *Store) SetModLoaders(loaders gamemod.LoaderDataMap) error {
	return publish(s, s.modLoaders, loaders)
}

// LocalMods returns a copy of the local-mods collection.
func (s *Store) LocalMods() (gamemod.LocalMap, error) { return s.localMods.snapshot() }

// LocalMod returns one local mod or a fault.ErrNotFound error.
func (s *Store) LocalMod(id string) (gamemod.LocalMod, error) {
	return lookup(s.localMods, "local mod", id)
}

// SetLocalMods replaces the local-mods collection.
func (s *Store) SetLocalMods(mods gamemod.LocalMap) error {
	return publish(s, s.localMods, mods)
}

// RemoteMods returns a copy of the remote-mods collection.
func (s *Store) RemoteMods() (gamemod.RemoteMap, error) { return s.remoteMods.snapshot() }

// RemoteMod returns one remote mod or a fault.ErrNotFound error.
func (s *Store) RemoteMod(id string) (gamemod.RemoteMod, error) {
	return lookup(s.remoteMods, "remote mod", id)
}

// SetRemoteMods replaces the remote-mods collection.
func (s *Store) SetRemoteMods(mods gamemod.RemoteMap) error {
	return publish(s, s.remoteMods, mods)
}

// CommonModData reconciles the current local and remote snapshots.
func (s *Store) CommonModData() (gamemod.CommonMap, error) {
	local, err := s.LocalMods()
	if err != nil {
		return nil, err
	}
	remote, err := s.RemoteMods()
	if err != nil {
		return nil, err
	}
	return gamemod.ComputeCommonData(local, remote), nil
}

// Counts reports the size of every collection, keyed by its sync event.
func (s *Store) Counts() map[EventKind]int {
	return map[EventKind]int{
		EventSyncInstalledGames: s.installedGames.len(),
		EventSyncOwnedGames:     s.ownedGames.len(),
		EventSyncModLoaders:     s.modLoaders.len(),
		EventSyncLocalMods:      s.localMods.len(),
		EventSyncRemoteMods:     s.remoteMods.len(),
	}
}

// LockGame serializes mutating operations on one game id. It blocks until
// the lock is held and returns the function that releases it. Operations on
// different games never contend.
func (s *Store) LockGame(id string) (unlock func()) {
	s.gameLocksMu.Lock()
	mu, ok := s.gameLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.gameLocks[id] = mu
	}
	s.gameLocksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
