// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/pkg/game"
)

func newGamesCommand(app *App) *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "List, track and launch games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			games, err := s.store.InstalledGames()
			if err != nil {
				return err
			}
			printInstalledGames(app.stdout, games)
			return nil
		},
	})

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "owned",
		Short: "List games owned on launchers, installed or not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			games, err := s.store.OwnedGames()
			if err != nil {
				return err
			}
			printOwnedGames(app.stdout, games)
			return nil
		},
	})

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "add <executable>",
		Short: "Track a game by its executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			g, err := s.orch.AddGame(args[0])
			if err != nil {
				return actionable(err, "add game", args[0])
			}
			fmt.Fprintf(app.stdout, "%s Added %s %s\n", successIcon, nameStyle.Render(g.DisplayName()), CmdStyle.Render(g.ID))
			return nil
		},
	})

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "remove <game-id>",
		Short: "Stop tracking a manually added game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			g, err := s.orch.RemoveGame(args[0])
			if err != nil {
				return actionable(err, "remove game", args[0])
			}
			fmt.Fprintf(app.stdout, "%s Removed %s\n", successIcon, nameStyle.Render(g.DisplayName()))
			return nil
		},
	})

	var forceExe bool
	startCmd := &cobra.Command{
		Use:   "start <game-id>",
		Short: "Start a game through its launcher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			if err := s.orch.StartGame(args[0], forceExe); err != nil {
				return actionable(err, "start game", args[0])
			}
			fmt.Fprintf(app.stdout, "%s Started %s\n", arrowIcon, CmdStyle.Render(args[0]))
			return nil
		},
	}
	startCmd.Flags().BoolVar(&forceExe, "exe", false, "run the executable directly, bypassing the launcher")
	gamesCmd.AddCommand(startCmd)

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "run <executable>",
		Short: "Run an executable from its own folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			if err := s.orch.RunExecutable(args[0]); err != nil {
				return actionable(err, "run executable", args[0])
			}
			return nil
		},
	})

	var openMods bool
	openCmd := &cobra.Command{
		Use:   "open <game-id>",
		Short: "Open a game's folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			open := s.orch.OpenGameFolder
			if openMods {
				open = s.orch.OpenGameModsFolder
			}
			if err := open(args[0]); err != nil {
				return actionable(err, "open game folder", args[0])
			}
			return nil
		},
	}
	openCmd.Flags().BoolVar(&openMods, "mods", false, "open the folder holding the game's mods instead")
	gamesCmd.AddCommand(openCmd)

	gamesCmd.AddCommand(&cobra.Command{
		Use:   "refresh <game-id>",
		Short: "Re-detect a game's executable and available mods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			g, err := s.orch.RefreshGame(args[0])
			if err != nil {
				return actionable(err, "refresh game", args[0])
			}
			printInstalledGame(app.stdout, g)
			return nil
		},
	})

	return gamesCmd
}

func printInstalledGames(w io.Writer, games game.InstalledMap) {
	fmt.Fprintln(w, TitleStyle.Render("Installed Games"))
	if len(games) == 0 {
		fmt.Fprintf(w, "%s No games found\n\n", infoIcon)
		fmt.Fprintf(w, "%s To track a game by hand, use: modpal games add <executable>\n", infoIcon)
		return
	}
	fmt.Fprintf(w, "%s Found %d game(s)\n\n", infoIcon, len(games))

	sorted := slices.SortedFunc(maps.Values(games), func(a, b game.InstalledGame) int {
		return cmp.Or(strings.Compare(a.DisplayName(), b.DisplayName()), strings.Compare(a.ID, b.ID))
	})
	for _, g := range sorted {
		printInstalledGame(w, g)
	}
}

func printInstalledGame(w io.Writer, g game.InstalledGame) {
	fmt.Fprintf(w, "%s %s %s\n", successIcon, nameStyle.Render(g.DisplayName()), SubtitleStyle.Render("("+string(g.ProviderID)+")"))
	fmt.Fprintf(w, "   ID:      %s\n", CmdStyle.Render(g.ID))
	fmt.Fprintf(w, "   Engine:  %s\n", executableEngine(g.Executable))
	if g.GameMode != nil {
		fmt.Fprintf(w, "   Mode:    %s\n", *g.GameMode)
	}
	fmt.Fprintf(w, "   Path:    %s\n", VerboseStyle.Render(g.Executable.Path))

	installed := 0
	for _, ok := range g.AvailableMods {
		if ok {
			installed++
		}
	}
	fmt.Fprintf(w, "   Mods:    %d available, %d installed\n", len(g.AvailableMods), installed)
	for _, id := range slices.Sorted(maps.Keys(g.AvailableMods)) {
		mark := infoIcon
		if g.AvailableMods[id] {
			mark = successIcon
		}
		fmt.Fprintf(w, "     %s %s\n", mark, id)
	}
	fmt.Fprintln(w)
}

func printOwnedGames(w io.Writer, games game.OwnedMap) {
	fmt.Fprintln(w, TitleStyle.Render("Owned Games"))
	if len(games) == 0 {
		fmt.Fprintf(w, "%s No owned games found\n", infoIcon)
		return
	}
	fmt.Fprintf(w, "%s Found %d game(s)\n\n", infoIcon, len(games))

	sorted := slices.SortedFunc(maps.Values(games), func(a, b game.OwnedGame) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	for _, g := range sorted {
		fmt.Fprintf(w, "%s %s %s\n", infoIcon, nameStyle.Render(g.Name), SubtitleStyle.Render("("+string(g.ProviderID)+")"))
		fmt.Fprintf(w, "   ID:       %s\n", CmdStyle.Render(g.ID))
		engineName := SubtitleStyle.Render("unknown")
		if g.Engine != nil {
			engineName = g.Engine.String()
		}
		fmt.Fprintf(w, "   Engine:   %s\n", engineName)
		if len(g.OSList) > 0 {
			names := make([]string, len(g.OSList))
			for i, sys := range g.OSList {
				names[i] = string(sys)
			}
			fmt.Fprintf(w, "   Systems:  %s\n", strings.Join(names, ", "))
		}
		if g.ReleaseDate != nil {
			fmt.Fprintf(w, "   Released: %s\n", time.Unix(*g.ReleaseDate, 0).UTC().Format(time.DateOnly))
		}
		if g.InstallCommand != nil {
			fmt.Fprintf(w, "   Install:  %s\n", VerboseStyle.Render(g.InstallCommand.String()))
		}
		fmt.Fprintln(w)
	}
}

func executableEngine(exe game.Executable) string {
	if exe.Engine == nil {
		return SubtitleStyle.Render("unknown")
	}
	label := exe.Engine.String()
	if exe.UnityBackend != nil {
		label += " (" + string(*exe.UnityBackend) + ")"
	}
	return label
}
