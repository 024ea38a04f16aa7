// SPDX-License-Identifier: MPL-2.0

package state

const (
	// EventSyncInstalledGames fires after the installed-games collection changes.
	EventSyncInstalledGames EventKind = "sync-installed-games"
	// EventSyncOwnedGames fires after the owned-games collection changes.
	EventSyncOwnedGames EventKind = "sync-owned-games"
	// EventSyncModLoaders fires after the mod-loaders collection changes.
	EventSyncModLoaders EventKind = "sync-mod-loaders"
	// EventSyncLocalMods fires after the local-mods collection changes.
	EventSyncLocalMods EventKind = "sync-local-mods"
	// EventSyncRemoteMods fires after the remote-mods collection changes.
	EventSyncRemoteMods EventKind = "sync-remote-mods"
	// EventGameAdded carries the name of a manually added game.
	EventGameAdded EventKind = "game-added"
	// EventGameRemoved carries the name of a removed game.
	EventGameRemoved EventKind = "game-removed"
)

type (
	// EventKind identifies a state change notification.
	EventKind string

	// Event is a one-way change notification. Payload is empty for sync events.
	Event struct {
		Kind    EventKind
		Payload string
	}

	// Notifier receives state change notifications. Implementations must not
	// call back into the Store synchronously while holding their own locks.
	Notifier interface {
		Notify(Event)
	}

	// NotifierFunc adapts a function to Notifier.
	NotifierFunc func(Event)
)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

type discardNotifier struct{}

func (discardNotifier) Notify(Event) {}
