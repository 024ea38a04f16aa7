// SPDX-License-Identifier: MPL-2.0

// Package watch rescans mods when the loaders' mod folders change on disk.
//
// A Watcher monitors one or more root directories recursively and invokes a
// callback once the filesystem has been quiet for a debounce period. Events
// within the window are coalesced so the callback fires once with every
// changed path.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// defaultIgnores covers archive downloads still being written, editor swap
// files and OS metadata that would otherwise trigger spurious rescans.
var defaultIgnores = []string{
	"**/*.part",
	"**/*.tmp",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
	"**/Thumbs.db",
}

var (
	// ErrNoRoots is returned when a Config names no directory to watch.
	ErrNoRoots = errors.New("watch: no root directories")
	// ErrInvalidPattern is returned for an ignore pattern doublestar rejects.
	ErrInvalidPattern = errors.New("watch: invalid ignore pattern")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid watch config")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories watched recursively. Missing roots are
		// created so a loader without any mod yet can still be watched.
		Roots []string

		// Ignore are extra doublestar patterns, matched against paths
		// relative to their root, that never trigger callbacks.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires.
		Debounce time.Duration

		// OnChange receives the sorted absolute paths that changed. A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		Logger *log.Logger
	}

	// InvalidConfigError lists every problem found in a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Watcher fires a debounced callback when files under its roots change.
	// Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid reports whether c can build a Watcher, returning every problem
// found.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if len(c.Roots) == 0 {
		errs = append(errs, ErrNoRoots)
	}
	for _, root := range c.Roots {
		if strings.TrimSpace(root) == "" {
			errs = append(errs, fmt.Errorf("watch: blank root directory"))
		}
	}
	for _, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("%w %q", ErrInvalidPattern, pat))
		}
	}
	return len(errs) == 0, errs
}

// Validate returns an *InvalidConfigError when c is not valid.
func (c Config) Validate() error {
	if ok, errs := c.IsValid(); !ok {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// New validates cfg, creates missing roots and registers every directory
// under them with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", root, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("watch: create root %q: %w", abs, err)
		}
		roots = append(roots, abs)
	}
	// Longest first so nested roots claim their own events.
	slices.SortFunc(roots, func(a, b string) int {
		return cmp.Or(len(b)-len(a), strings.Compare(a, b))
	})
	roots = slices.Compact(roots)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  ignores,
		logger:   logger,
		debounce: debounce,
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("closing watcher after init failure", "error", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute directories being watched.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the underlying watcher
// breaks. A callback still running when the window closes again is not
// re-entered; the pending paths are retried after another debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("rescan still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("mod folder change handler failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing fsnotify watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if w.isIgnored(evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[filepath.Clean(evt.Name)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // a single unreadable mod folder must not stop the watch
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

// maybeAddDir registers a directory created after startup, such as a freshly
// extracted mod, together with everything already inside it.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watching new directory", "path", path, "error", err)
	}
}

// isIgnored matches path, made relative to its root, against the ignore
// patterns. Paths outside every root are ignored.
func (w *Watcher) isIgnored(path string) bool {
	rel, ok := w.relative(path)
	if !ok {
		return true
	}
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Watcher) relative(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return rel, true
	}
	return "", false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
