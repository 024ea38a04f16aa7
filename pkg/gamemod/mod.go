// SPDX-License-Identifier: MPL-2.0

package gamemod

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/modpal/modpal/pkg/engine"
)

const (
	// KindInstallable mods are copied into the game's mod directory.
	KindInstallable Kind = "installable"
	// KindRunnable mods are standalone programs started next to the game.
	KindRunnable Kind = "runnable"

	// ManifestFileName is written next to downloaded mod files and records the
	// installed version for update checks.
	ManifestFileName = "modpal-manifest.json"
)

type (
	// Kind is the packaging convention of a mod loader.
	Kind string

	// CommonData holds the compatibility-relevant fields shared by local and
	// remote records. A nil Engine means the mod runs on any engine; a nil
	// UnityBackend means it runs on either backend.
	CommonData struct {
		ID           string               `json:"id"`
		LoaderID     string               `json:"loaderId"`
		Engine       *engine.Brand        `json:"engine,omitempty"`
		UnityBackend *engine.UnityBackend `json:"unityBackend,omitempty"`
	}

	// Manifest is persisted as ManifestFileName inside a local mod folder.
	Manifest struct {
		Version      string               `json:"version"`
		Engine       *engine.Brand        `json:"engine,omitempty"`
		UnityBackend *engine.UnityBackend `json:"unityBackend,omitempty"`
	}

	// LocalData describes where a local mod lives on disk.
	LocalData struct {
		Path     string    `json:"path"`
		Manifest *Manifest `json:"manifest,omitempty"`
	}

	// LocalMod is a mod whose files are present under a loader's mods directory.
	LocalMod struct {
		Common CommonData `json:"common"`
		Data   LocalData  `json:"data"`
	}

	// Download is one downloadable archive of a remote mod.
	Download struct {
		URL     string `json:"url"`
		Version string `json:"version"`
	}

	// RemoteData is the human metadata of a catalog entry.
	RemoteData struct {
		Title       string     `json:"title"`
		Author      string     `json:"author"`
		SourceCode  string     `json:"sourceCode"`
		Description string     `json:"description"`
		Downloads   []Download `json:"downloads"`
	}

	// RemoteMod is a mod as known from a loader's remote catalog.
	RemoteMod struct {
		Common CommonData `json:"common"`
		Data   RemoteData `json:"data"`
	}

	// LoaderData describes one mod loader backend. Kind is the packaging
	// convention of the mods it manages.
	LoaderData struct {
		ID   string `json:"id"`
		Path string `json:"path"`
		Kind Kind   `json:"kind"`
	}

	// LoaderDataMap indexes loader data by loader id.
	LoaderDataMap = map[string]LoaderData

	// LocalMap indexes local mods by mod id.
	LocalMap = map[string]LocalMod

	// RemoteMap indexes remote mods by mod id.
	RemoteMap = map[string]RemoteMod

	// CommonMap indexes reconciled compatibility data by mod id.
	CommonMap = map[string]CommonData
)

// CompatibleWith reports whether a game running brand/backend can use the mod.
func (c CommonData) CompatibleWith(brand *engine.Brand, backend *engine.UnityBackend) bool {
	if c.Engine == nil {
		return true
	}
	if brand == nil || *brand != *c.Engine {
		return false
	}
	if c.UnityBackend == nil {
		return true
	}
	return backend != nil && *backend == *c.UnityBackend
}

// FirstDownload returns the preferred download, if any.
func (r RemoteMod) FirstDownload() (Download, bool) {
	if len(r.Data.Downloads) == 0 {
		return Download{}, false
	}
	return r.Data.Downloads[0], true
}

// LatestVersion returns the version of the preferred download, or "".
func (r RemoteMod) LatestVersion() string {
	d, ok := r.FirstDownload()
	if !ok {
		return ""
	}
	return d.Version
}

// ReadManifest reads the manifest in dir. A missing manifest is not an error
// and yields (nil, nil); a present but malformed one is.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading mod manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing mod manifest %s: %w", filepath.Join(dir, ManifestFileName), err)
	}
	return &m, nil
}

// WriteManifest writes m into dir, replacing any existing manifest.
func WriteManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mod manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing mod manifest: %w", err)
	}
	return nil
}
