// SPDX-License-Identifier: MPL-2.0

// Package enginecache memoizes "which engine does this title use" across runs.
//
// Entries are keyed by game title. A present entry with a nil engine means a
// lookup already ran and found nothing; it is returned as-is so the slow
// external lookup is not repeated. A missing entry means unknown.
package enginecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
)

type (
	// Lookup resolves the engine for title from an external source. It
	// returns (nil, nil) when the source knows the title but has no engine.
	Lookup func(ctx context.Context, title string) (*engine.GameEngine, error)

	// Cache is safe for concurrent use.
	Cache struct {
		path   string
		lookup Lookup

		mu      sync.Mutex
		entries map[string]*engine.GameEngine
		fresh   map[string]*engine.GameEngine
	}
)

// FileName returns the cache file name used for a provider.
func FileName(providerID string) string {
	return providerID + "-engines.json"
}

// Open loads the cache stored at path. A missing or unreadable file yields
// an empty cache. lookup may be nil, in which case misses stay unknown.
func Open(path string, lookup Lookup) *Cache {
	c := &Cache{
		path:    path,
		lookup:  lookup,
		entries: map[string]*engine.GameEngine{},
		fresh:   map[string]*engine.GameEngine{},
	}

	loaded, err := read(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		slog.Warn("ignoring unreadable engine cache", "path", path, "error", err)
	default:
		c.entries = loaded
	}
	return c
}

// Get returns the engine for title. A cached value wins, including a cached
// "no engine"; otherwise the lookup runs once and its result is remembered
// for Save. Lookup failures are not cached.
func (c *Cache) Get(ctx context.Context, title string) *engine.GameEngine {
	c.mu.Lock()
	if e, ok := c.entries[title]; ok {
		c.mu.Unlock()
		return e
	}
	c.mu.Unlock()

	if c.lookup == nil {
		return nil
	}

	e, err := c.lookup(ctx, title)
	if err != nil {
		slog.Debug("engine lookup failed", "title", title, "error", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent Get may have resolved the same title first.
	if prev, ok := c.entries[title]; ok {
		return prev
	}
	c.entries[title] = e
	c.fresh[title] = e
	return e
}

// Len returns the number of known titles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save persists the cache. The file ends up holding whatever it held before
// plus every title resolved since Open; newly resolved titles overwrite only
// their own entries.
func (c *Cache) Save() error {
	c.mu.Lock()
	fresh := maps.Clone(c.fresh)
	c.mu.Unlock()

	merged, err := read(c.path)
	if err != nil {
		merged = map[string]*engine.GameEngine{}
	}
	maps.Copy(merged, fresh)

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding engine cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fault.IO("create cache directory", filepath.Dir(c.path), err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fault.IO("write engine cache", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fault.IO("replace engine cache", c.path, err)
	}
	return nil
}

func read(path string) (map[string]*engine.GameEngine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries := map[string]*engine.GameEngine{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}
