// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modpal",
		Short: "A mod manager for PC games",
		Long: TitleStyle.Render("modpal") + SubtitleStyle.Render(" - A mod manager for PC games") + `

modpal finds the games installed on this machine, works out which engine
each one runs on and installs compatible mods through mod loaders such as
BepInEx (Unity) and UEVR (Unreal).

` + SubtitleStyle.Render("Examples:") + `
  modpal games list                      List installed games
  modpal mods list --remote              Browse the mod catalog
  modpal mods install <game-id> <mod-id> Install a mod into a game
  modpal games add ~/Games/Foo/Foo.exe   Track a game by hand
  modpal watch                           Rescan mods when their folders change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is <config dir>/modpal/config.cue)")

	rootCmd.AddCommand(newGamesCommand(app))
	rootCmd.AddCommand(newLoadersCommand(app))
	rootCmd.AddCommand(newModsCommand(app))
	rootCmd.AddCommand(newRefreshCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newIssuesCommand(app))

	return rootCmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits non-zero on failure. It is called by
// main.main.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.verbose)
		}),
	); err != nil {
		os.Exit(1)
	}
}
