// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"

	"github.com/modpal/modpal/internal/enginecache"
	"github.com/modpal/modpal/internal/fanout"
	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/game"
)

const (
	epicManifestGlob = "Manifests/*.item"
	epicCatalogFile  = "Catalog/catcache.bin"
	epicGameCategory = "games"

	// DefaultEngineLookups bounds concurrent engine lookups per owned-games fetch.
	DefaultEngineLookups = 4
)

var errEpicNoExecutable = errors.New("manifest has no launch executable")

type (
	// Epic reads the Epic Games launcher's local data directory.
	Epic struct {
		dataPath      string
		modsRoot      string
		engines       *enginecache.Cache
		engineLookups int
	}

	// EpicOptions configures NewEpic.
	EpicOptions struct {
		// DataPath is the launcher's data directory, the one containing
		// Manifests/ and Catalog/.
		DataPath string
		ModsRoot string
		// Engines resolves owned-game engines. Nil leaves engines unknown.
		Engines *enginecache.Cache
		// EngineLookups bounds concurrent engine lookups; <= 0 uses the default.
		EngineLookups int
	}

	epicManifest struct {
		DisplayName      string `json:"DisplayName"`
		LaunchExecutable string `json:"LaunchExecutable"`
		InstallLocation  string `json:"InstallLocation"`
		CatalogNamespace string `json:"CatalogNamespace"`
		CatalogItemID    string `json:"CatalogItemId"`
		AppName          string `json:"AppName"`
	}

	epicCatalogItem struct {
		ID          string            `json:"id"`
		Namespace   string            `json:"namespace"`
		Title       string            `json:"title"`
		Categories  []epicCategory    `json:"categories"`
		ReleaseInfo []epicReleaseInfo `json:"releaseInfo"`
		KeyImages   []epicKeyImage    `json:"keyImages"`
	}

	epicCategory struct {
		Path string `json:"path"`
	}

	epicReleaseInfo struct {
		AppID     string   `json:"appId"`
		Platform  []string `json:"platform"`
		DateAdded string   `json:"dateAdded"`
	}

	epicKeyImage struct {
		Height int    `json:"height"`
		URL    string `json:"url"`
	}
)

// DefaultEpicDataPath returns the launcher data directory for the current
// platform. Outside Windows it points at the default Wine prefix.
func DefaultEpicDataPath() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "Epic", "EpicGamesLauncher", "Data")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wine", "drive_c", "ProgramData", "Epic", "EpicGamesLauncher", "Data")
}

// NewEpic returns the Epic provider.
func NewEpic(opts EpicOptions) *Epic {
	lookups := opts.EngineLookups
	if lookups <= 0 {
		lookups = DefaultEngineLookups
	}
	return &Epic{
		dataPath:      opts.DataPath,
		modsRoot:      opts.ModsRoot,
		engines:       opts.Engines,
		engineLookups: lookups,
	}
}

// ID implements Provider.
func (e *Epic) ID() game.ProviderID { return game.ProviderEpic }

// InstalledGames implements Provider. Unreadable manifests are skipped.
func (e *Epic) InstalledGames(context.Context) ([]game.InstalledGame, error) {
	if _, err := os.Stat(e.dataPath); err != nil {
		return nil, fault.NotFound("Epic launcher data", e.dataPath)
	}

	matches, err := doublestar.Glob(os.DirFS(e.dataPath), epicManifestGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fault.IO("list Epic manifests", e.dataPath, err)
	}
	slices.Sort(matches)

	// Thumbnails come from the catalog when it is readable.
	thumbnails := map[string]string{}
	if items, err := e.readCatalog(); err == nil {
		for _, item := range items {
			if url := item.thumbnailURL(); url != "" {
				thumbnails[item.ID] = url
			}
		}
	}

	games := make([]game.InstalledGame, 0, len(matches))
	for _, match := range matches {
		manifestPath := filepath.Join(e.dataPath, filepath.FromSlash(match))
		manifest, err := readEpicManifest(manifestPath)
		if err != nil {
			slog.Warn("skipping Epic manifest", "path", manifestPath, "error", err)
			continue
		}

		exe := filepath.Join(manifest.InstallLocation, manifest.LaunchExecutable)
		g := game.NewInstalledGame(exe, manifest.DisplayName, game.ProviderEpic, e.modsRoot)
		g.ProviderGameID = &manifest.CatalogItemID
		g.StartCommand = &game.Command{
			Line: fmt.Sprintf("com.epicgames.launcher://apps/%s?action=launch&silent=true", manifest.AppName),
		}
		if url, ok := thumbnails[manifest.CatalogItemID]; ok {
			g.ThumbnailURL = &url
		}
		games = append(games, g)
	}
	return games, nil
}

// OwnedGames implements Provider. Only catalog items in the games category
// are listed. Engine lookups run concurrently and the engine cache is saved
// once they finish.
func (e *Epic) OwnedGames(ctx context.Context) ([]game.OwnedGame, error) {
	items, err := e.readCatalog()
	if err != nil {
		return nil, err
	}

	items = slices.DeleteFunc(items, func(item epicCatalogItem) bool { return !item.isGame() })
	engines := e.lookupEngines(ctx, items)

	showLibrary := &game.Command{Line: "com.epicgames.launcher://store/library"}
	owned := make([]game.OwnedGame, 0, len(items))
	for _, item := range items {
		g := game.OwnedGame{
			ID:                 item.ID,
			ProviderID:         game.ProviderEpic,
			Name:               item.Title,
			OSList:             item.operatingSystems(),
			Engine:             engines[item.Title],
			InstallCommand:     &game.Command{Line: item.installURI()},
			ShowLibraryCommand: showLibrary,
		}
		if url := item.thumbnailURL(); url != "" {
			g.ThumbnailURL = &url
		}
		if date, ok := item.releaseDate(); ok {
			g.ReleaseDate = &date
		}
		owned = append(owned, g)
	}
	return owned, nil
}

func (e *Epic) lookupEngines(ctx context.Context, items []epicCatalogItem) map[string]*engine.GameEngine {
	engines := map[string]*engine.GameEngine{}
	if e.engines == nil {
		return engines
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(titles, item.Title) {
			titles = append(titles, item.Title)
		}
	}

	results := fanout.Run(ctx, e.engineLookups, titles, func(ctx context.Context, title string) (*engine.GameEngine, error) {
		return e.engines.Get(ctx, title), nil
	})
	for _, r := range results {
		engines[r.ID] = r.Value
	}

	if err := e.engines.Save(); err != nil {
		slog.Warn("failed to save engine cache", "error", err)
	}
	return engines
}

func (e *Epic) readCatalog() ([]epicCatalogItem, error) {
	path := filepath.Join(e.dataPath, filepath.FromSlash(epicCatalogFile))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.IO("read Epic catalog", path, err)
	}

	decoded, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(bytes.TrimSpace(raw))))
	if err != nil {
		return nil, fault.IO("decode Epic catalog", path, err)
	}

	var items []epicCatalogItem
	if err := json.Unmarshal(decoded, &items); err != nil {
		return nil, fault.IO("parse Epic catalog", path, err)
	}
	return items, nil
}

func readEpicManifest(path string) (epicManifest, error) {
	var m epicManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	if m.InstallLocation == "" || m.LaunchExecutable == "" {
		return m, errEpicNoExecutable
	}
	return m, nil
}

func (item epicCatalogItem) isGame() bool {
	return slices.ContainsFunc(item.Categories, func(c epicCategory) bool { return c.Path == epicGameCategory })
}

func (item epicCatalogItem) installURI() string {
	var appID string
	if len(item.ReleaseInfo) > 0 {
		appID = item.ReleaseInfo[0].AppID
	}
	return fmt.Sprintf("com.epicgames.launcher://apps/%s%%3A%s%%3A%s?action=install", item.Namespace, item.ID, appID)
}

// thumbnailURL picks the smallest key image; image types are inconsistent
// across catalog entries.
func (item epicCatalogItem) thumbnailURL() string {
	if len(item.KeyImages) == 0 {
		return ""
	}
	smallest := slices.MinFunc(item.KeyImages, func(a, b epicKeyImage) int { return a.Height - b.Height })
	return smallest.URL
}

func (item epicCatalogItem) releaseDate() (int64, bool) {
	if len(item.ReleaseInfo) == 0 || item.ReleaseInfo[0].DateAdded == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, item.ReleaseInfo[0].DateAdded)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

func (item epicCatalogItem) operatingSystems() []game.OperatingSystem {
	var list []game.OperatingSystem
	for _, info := range item.ReleaseInfo {
		for _, p := range info.Platform {
			var target game.OperatingSystem
			switch p {
			case "Windows", "Win32":
				target = game.OSWindows
			case "Linux":
				target = game.OSLinux
			default:
				continue
			}
			if !slices.Contains(list, target) {
				list = append(list, target)
			}
		}
	}
	return list
}
