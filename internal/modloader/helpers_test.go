// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modpal/modpal/internal/catalog"
	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/testutil"
	"github.com/modpal/modpal/pkg/game"
)

type fakeCatalog struct {
	mu        sync.Mutex
	databases map[string]*catalog.Database
	archives  map[string][]byte
	fetches   int
	downloads int
}

func (c *fakeCatalog) Fetch(_ context.Context, loaderID string) (*catalog.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	db, ok := c.databases[loaderID]
	if !ok {
		return nil, fault.Network("fetch mod database", loaderID, errors.New("unexpected status 404"))
	}
	return db, nil
}

func (c *fakeCatalog) Download(_ context.Context, url string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloads++
	data, ok := c.archives[url]
	if !ok {
		return nil, fault.Network("download mod", url, errors.New("unexpected status 404"))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// unityGame lays out a minimal Unity game and returns it as an InstalledGame.
func unityGame(t *testing.T, il2cpp bool) game.InstalledGame {
	t.Helper()

	exe := testutil.UnityGameExe(t, t.TempDir(), "Game", il2cpp)
	return game.NewInstalledGame(exe, "Game", game.ProviderManual, filepath.Join(t.TempDir(), "installed-mods"))
}

func unrealGame(t *testing.T) game.InstalledGame {
	t.Helper()

	exe := testutil.UnrealGameExe(t, t.TempDir(), "Game")
	return game.NewInstalledGame(exe, "Unreal Game", game.ProviderManual, filepath.Join(t.TempDir(), "installed-mods"))
}
