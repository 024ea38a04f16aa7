// SPDX-License-Identifier: MPL-2.0

package state

import (
	"fmt"
	"maps"
	"sync"

	"github.com/tiendc/go-deepcopy"
)

// collection is one lock-guarded, whole-replacement entity map.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	event EventKind
}

func newCollection[T any](event EventKind) *collection[T] {
	return &collection[T]{items: map[string]T{}, event: event}
}

func (c *collection[T]) snapshot() (map[string]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]T, len(c.items))
	if err := deepcopy.Copy(&out, c.items); err != nil {
		return nil, fmt.Errorf("copying %s snapshot: %w", c.event, err)
	}
	return out, nil
}

func (c *collection[T]) get(id string) (T, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out T
	item, ok := c.items[id]
	if !ok {
		return out, false, nil
	}
	if err := deepcopy.Copy(&out, &item); err != nil {
		return out, false, fmt.Errorf("copying %s entry %q: %w", c.event, id, err)
	}
	return out, true, nil
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// replace swaps in items. The caller's map is copied so later mutations by
// the caller cannot leak into the store.
func (c *collection[T]) replace(items map[string]T) error {
	fresh := make(map[string]T, len(items))
	if err := deepcopy.Copy(&fresh, items); err != nil {
		return fmt.Errorf("copying %s replacement: %w", c.event, err)
	}

	c.mu.Lock()
	c.items = fresh
	c.mu.Unlock()
	return nil
}

// update applies fn to a private clone and swaps it in only if fn succeeds.
func (c *collection[T]) update(fn func(items map[string]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := maps.Clone(c.items)
	if next == nil {
		next = map[string]T{}
	}
	if err := fn(next); err != nil {
		return err
	}
	c.items = next
	return nil
}
