// SPDX-License-Identifier: MPL-2.0

// Package provider implements the fixed set of game providers: the manual
// game list and the Epic Games launcher.
package provider

import (
	"context"
	"maps"
	"slices"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/game"
)

type (
	// Provider lists games from one source.
	Provider interface {
		ID() game.ProviderID
		// InstalledGames lists launchable games on this machine.
		InstalledGames(ctx context.Context) ([]game.InstalledGame, error)
		// OwnedGames lists games the user owns, installed or not.
		OwnedGames(ctx context.Context) ([]game.OwnedGame, error)
	}

	// Map indexes providers by id.
	Map map[game.ProviderID]Provider
)

// NewMap indexes providers by their ids. Nil providers are skipped so
// disabled providers can be passed through unconditionally.
func NewMap(providers ...Provider) Map {
	m := Map{}
	for _, p := range providers {
		if p == nil {
			continue
		}
		m[p.ID()] = p
	}
	return m
}

// IDs returns provider ids in sorted order as strings.
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		ids = append(ids, string(id))
	}
	return ids
}

// Get returns the provider with id or a fault.ErrNotFound error.
func (m Map) Get(id game.ProviderID) (Provider, error) {
	p, ok := m[id]
	if !ok {
		return nil, fault.NotFound("provider", string(id))
	}
	return p, nil
}
