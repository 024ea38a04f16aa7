// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Catalog entries. Zero is reserved for "no entry".
const (
	GameNotFoundId Id = iota + 1
	ModNotFoundId
	ModUnavailableId
	ModIncompatibleId
	LoaderNotFoundId
	GameAlreadyAddedId
	FileSystemFailureId
	NetworkFailureId
	PathResolutionFailedId
	ConfigLoadFailedId
	EpicLauncherNotFoundId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// HttpLink is a documentation or external link.
	HttpLink string //nolint:revive // matches MarkdownMsg naming

	// Issue is one catalog entry.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

// Id returns the entry id.
func (i *Issue) Id() Id { return i.id } //nolint:revive // catalog accessor

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the entry, plus its links, as terminal Markdown.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if links := append(i.DocLinks(), i.extLinks...); len(links) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range links {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	gameNotFoundIssue = &Issue{
		id: GameNotFoundId,
		mdMsg: `
# Game not found!

No installed game has that id.

## Things you can try:
- List installed games and copy the id from the first column:
~~~
$ modpal games list
~~~
- If the game was just installed, resync first:
~~~
$ modpal refresh
~~~
- Games from other launchers can be added by executable:
~~~
$ modpal games add /path/to/Game.exe
~~~`,
	}

	modNotFoundIssue = &Issue{
		id: ModNotFoundId,
		mdMsg: `
# Mod not found!

The mod id is neither in a loader's mods folder nor in any loader's catalog.

## Things you can try:
- List local and catalog mods:
~~~
$ modpal mods list
$ modpal mods list --remote
~~~
- Check the catalog is reachable (see 'catalog.base_url' in your config)`,
	}

	modUnavailableIssue = &Issue{
		id: ModUnavailableId,
		mdMsg: `
# Mod unavailable!

The mod could not be downloaded: it has no download entry, or fetching it failed.

## Things you can try:
- Download the mod by hand and place it in the loader folder:
~~~
$ modpal loaders open <loader-id>
~~~
- Then install it again; local copies are always preferred`,
	}

	modIncompatibleIssue = &Issue{
		id: ModIncompatibleId,
		mdMsg: `
# Mod is not compatible with this game!

The mod declares an engine (and for Unity, a scripting backend) that the game does not use.

## Things you can try:
- Check the engine modpal detected for the game:
~~~
$ modpal games list
~~~
- Pick a mod built for that engine or backend`,
	}

	loaderNotFoundIssue = &Issue{
		id: LoaderNotFoundId,
		mdMsg: `
# Mod loader not found!

No mod loader has that id.

## Things you can try:
~~~
$ modpal loaders list
~~~`,
	}

	gameAlreadyAddedIssue = &Issue{
		id: GameAlreadyAddedId,
		mdMsg: `
# Game already added!

A game with this executable is already tracked, either in your manual list or by a launcher.

## Things you can try:
~~~
$ modpal games list
~~~`,
	}

	fileSystemFailureIssue = &Issue{
		id: FileSystemFailureId,
		mdMsg: `
# File system error!

modpal could not read or write a file it needs.

## Things you can try:
- Check free disk space and permissions of the data directory ('data_dir' in your config)
- Close the game before installing or removing mods; running games lock their files
- Run with '--verbose' to see the full error chain`,
	}

	networkFailureIssue = &Issue{
		id: NetworkFailureId,
		mdMsg: `
# Network error!

A catalog, download or engine lookup request failed. Requests are not retried.

## Things you can try:
- Check your internet connection and try again
- Verify 'catalog.base_url' and 'engine_lookup.base_url' in your config`,
	}

	pathResolutionFailedIssue = &Issue{
		id: PathResolutionFailedId,
		mdMsg: `
# Path could not be resolved!

A required path could not be derived, for example a mod id that is not a valid folder name.

## Things you can try:
- Run with '--verbose' to see the offending path
- Report the mod id to the catalog maintainers if it contains path separators`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where modpal looks for its config:
~~~
$ modpal config path
~~~
- Compare with the defaults:
~~~
$ modpal config dump
~~~`,
	}

	epicLauncherNotFoundIssue = &Issue{
		id: EpicLauncherNotFoundId,
		mdMsg: `
# Epic Games launcher data not found!

## Things you can try:
- Set 'providers.epic.data_path' to the launcher's Data folder
- Or disable the provider with 'providers.epic.enabled: false'`,
	}

	issues = map[Id]*Issue{
		gameNotFoundIssue.Id():         gameNotFoundIssue,
		modNotFoundIssue.Id():          modNotFoundIssue,
		modUnavailableIssue.Id():       modUnavailableIssue,
		modIncompatibleIssue.Id():      modIncompatibleIssue,
		loaderNotFoundIssue.Id():       loaderNotFoundIssue,
		gameAlreadyAddedIssue.Id():     gameAlreadyAddedIssue,
		fileSystemFailureIssue.Id():    fileSystemFailureIssue,
		networkFailureIssue.Id():       networkFailureIssue,
		pathResolutionFailedIssue.Id(): pathResolutionFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		epicLauncherNotFoundIssue.Id(): epicLauncherNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return int(a.id - b.id) })
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
