// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/orchestrator"
	"github.com/modpal/modpal/pkg/gamemod"
)

func newModsCommand(app *App) *cobra.Command {
	modsCmd := &cobra.Command{
		Use:   "mods",
		Short: "Browse, download and install mods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var remote bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List mods on disk, or in the catalog with --remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			local, err := s.store.LocalMods()
			if err != nil {
				return err
			}
			remoteMods, err := s.store.RemoteMods()
			if err != nil {
				return err
			}
			if remote {
				printRemoteMods(app.stdout, remoteMods, local)
				return nil
			}
			printLocalMods(app.stdout, local, remoteMods)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&remote, "remote", false, "list the remote catalog instead of mods on disk")
	modsCmd.AddCommand(listCmd)

	modsCmd.AddCommand(&cobra.Command{
		Use:   "install <game-id> <mod-id>",
		Short: "Install a mod into a game, downloading it first if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			gameID, modID := args[0], args[1]
			res, err := s.orch.InstallMod(cmd.Context(), gameID, modID)
			if err != nil {
				return actionable(err, "install mod", modID)
			}
			if res.Outcome == orchestrator.OutcomeManualActionRequired {
				fmt.Fprintf(app.stdout, "%s %s has no download; place its files in %s and run the command again\n",
					warningIcon, CmdStyle.Render(modID), VerboseStyle.Render(res.ModPath))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Installed %s into %s\n", successIcon, CmdStyle.Render(modID), nameStyle.Render(res.Game.DisplayName()))
			return nil
		},
	})

	modsCmd.AddCommand(&cobra.Command{
		Use:   "uninstall <game-id> <mod-id>",
		Short: "Remove a mod from a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			gameID, modID := args[0], args[1]
			g, err := s.orch.UninstallMod(cmd.Context(), gameID, modID)
			if err != nil {
				return actionable(err, "uninstall mod", modID)
			}
			fmt.Fprintf(app.stdout, "%s Uninstalled %s from %s\n", successIcon, CmdStyle.Render(modID), nameStyle.Render(g.DisplayName()))
			return nil
		},
	})

	modsCmd.AddCommand(&cobra.Command{
		Use:   "download <mod-id>",
		Short: "Download a mod from the catalog without installing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			if err := s.orch.DownloadMod(cmd.Context(), args[0]); err != nil {
				return actionable(err, "download mod", args[0])
			}
			fmt.Fprintf(app.stdout, "%s Downloaded %s\n", successIcon, CmdStyle.Render(args[0]))
			return nil
		},
	})

	modsCmd.AddCommand(&cobra.Command{
		Use:   "open [mod-id]",
		Short: "Open a mod's folder, or the folder of all loaders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				if err := s.orch.OpenModsFolder(); err != nil {
					return actionable(err, "open mods folder", "")
				}
				return nil
			}
			if err := s.orch.OpenModFolder(args[0]); err != nil {
				return actionable(err, "open mod folder", args[0])
			}
			return nil
		},
	})

	return modsCmd
}

func printLocalMods(w io.Writer, local gamemod.LocalMap, remote gamemod.RemoteMap) {
	fmt.Fprintln(w, TitleStyle.Render("Local Mods"))
	if len(local) == 0 {
		fmt.Fprintf(w, "%s No mods on disk\n\n", infoIcon)
		fmt.Fprintf(w, "%s To browse the catalog, use: modpal mods list --remote\n", infoIcon)
		return
	}
	fmt.Fprintf(w, "%s Found %d mod(s)\n\n", infoIcon, len(local))

	for _, id := range slices.Sorted(maps.Keys(local)) {
		mod := local[id]
		icon := successIcon
		status := ""
		if r, ok := remote[id]; ok && gamemod.IsOutdated(mod, r) {
			icon = warningIcon
			status = WarningStyle.Render(" update available: " + r.LatestVersion())
		}
		fmt.Fprintf(w, "%s %s%s\n", icon, nameStyle.Render(id), status)
		fmt.Fprintf(w, "   Loader:  %s\n", mod.Common.LoaderID)
		fmt.Fprintf(w, "   Engine:  %s\n", modEngine(mod.Common))
		if mod.Data.Manifest != nil && mod.Data.Manifest.Version != "" {
			fmt.Fprintf(w, "   Version: %s\n", mod.Data.Manifest.Version)
		}
		fmt.Fprintf(w, "   Path:    %s\n", VerboseStyle.Render(mod.Data.Path))
		fmt.Fprintln(w)
	}
}

func printRemoteMods(w io.Writer, remote gamemod.RemoteMap, local gamemod.LocalMap) {
	fmt.Fprintln(w, TitleStyle.Render("Remote Mods"))
	if len(remote) == 0 {
		fmt.Fprintf(w, "%s The catalog is empty or unreachable\n", infoIcon)
		return
	}
	fmt.Fprintf(w, "%s Found %d mod(s)\n\n", infoIcon, len(remote))

	for _, id := range slices.Sorted(maps.Keys(remote)) {
		mod := remote[id]
		icon := infoIcon
		if _, ok := local[id]; ok {
			icon = successIcon
		}
		title := mod.Data.Title
		if title == "" {
			title = id
		}
		fmt.Fprintf(w, "%s %s %s\n", icon, nameStyle.Render(title), CmdStyle.Render(id))
		fmt.Fprintf(w, "   Loader:  %s\n", mod.Common.LoaderID)
		fmt.Fprintf(w, "   Engine:  %s\n", modEngine(mod.Common))
		if mod.Data.Author != "" {
			fmt.Fprintf(w, "   Author:  %s\n", mod.Data.Author)
		}
		if v := mod.LatestVersion(); v != "" {
			fmt.Fprintf(w, "   Latest:  %s\n", v)
		}
		if mod.Data.Description != "" {
			fmt.Fprintf(w, "   %s\n", VerboseStyle.Render(mod.Data.Description))
		}
		fmt.Fprintln(w)
	}
}

func modEngine(c gamemod.CommonData) string {
	if c.Engine == nil {
		return SubtitleStyle.Render("any")
	}
	label := string(*c.Engine)
	if c.UnityBackend != nil {
		label += " (" + string(*c.UnityBackend) + ")"
	}
	return label
}
