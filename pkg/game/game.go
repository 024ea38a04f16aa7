// SPDX-License-Identifier: MPL-2.0

package game

import (
	"fmt"
	"strings"

	"github.com/modpal/modpal/pkg/engine"
)

const (
	// ProviderManual identifies games added by hand.
	ProviderManual ProviderID = "Manual"
	// ProviderEpic identifies games from the Epic Games launcher.
	ProviderEpic ProviderID = "Epic"

	// ModeFlat is a regular desktop game.
	ModeFlat Mode = "Flat"
	// ModeVR is a game that ships VR runtime support.
	ModeVR Mode = "VR"
)

type (
	// ProviderID names a game provider (storefront, launcher or manual list).
	ProviderID string

	// Mode is the detected presentation mode of a game.
	Mode string

	// Command is how a provider asks the OS layer to act: either an opaque
	// string (URI or shell command line) or an explicit program with arguments.
	Command struct {
		Line string   `json:"string,omitempty"`
		Path string   `json:"path,omitempty"`
		Args []string `json:"args,omitempty"`
	}

	// InstalledGame is one launchable game on this machine.
	InstalledGame struct {
		ID             string     `json:"id"`
		Name           string     `json:"name"`
		Discriminator  *string    `json:"discriminator,omitempty"`
		ProviderID     ProviderID `json:"providerId"`
		ProviderGameID *string    `json:"providerGameId,omitempty"`
		StartCommand   *Command   `json:"startCommand,omitempty"`
		ThumbnailURL   *string    `json:"thumbnailUrl,omitempty"`
		GameMode       *Mode      `json:"gameMode,omitempty"`
		Executable     Executable `json:"executable"`
		// ModsPath is the per-game directory loaders install mods into.
		ModsPath        string   `json:"modsPath"`
		InstalledModIDs []string `json:"installedModIds"`
		// AvailableMods maps every compatible mod id to whether it is installed.
		AvailableMods map[string]bool `json:"availableMods"`
		// LaunchDescription is the provider's label for this launch variant.
		// The Deduper prefers it over the executable name as discriminator.
		LaunchDescription string `json:"-"`
	}

	// OwnedGame is a game the user owns on some provider, installed or not.
	OwnedGame struct {
		ID                 string             `json:"id"`
		ProviderID         ProviderID         `json:"providerId"`
		Name               string             `json:"name"`
		ThumbnailURL       *string            `json:"thumbnailUrl,omitempty"`
		ReleaseDate        *int64             `json:"releaseDate,omitempty"`
		Engine             *engine.GameEngine `json:"engine,omitempty"`
		UevrScore          *string            `json:"uevrScore,omitempty"`
		OSList             []OperatingSystem  `json:"osList"`
		GameMode           *Mode              `json:"gameMode,omitempty"`
		InstallCommand     *Command           `json:"installCommand,omitempty"`
		OpenPageCommand    *Command           `json:"openPageCommand,omitempty"`
		ShowLibraryCommand *Command           `json:"showLibraryCommand,omitempty"`
	}

	// InstalledMap indexes installed games by id.
	InstalledMap = map[string]InstalledGame

	// OwnedMap indexes owned games by id.
	OwnedMap = map[string]OwnedGame
)

// IsString reports whether c is an opaque string command.
func (c Command) IsString() bool {
	return c.Line != ""
}

func (c Command) String() string {
	if c.IsString() {
		return c.Line
	}
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// DisplayName returns the name with its discriminator, if any.
func (g InstalledGame) DisplayName() string {
	if g.Discriminator == nil || *g.Discriminator == "" {
		return g.Name
	}
	return fmt.Sprintf("%s (%s)", g.Name, *g.Discriminator)
}
