// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/modloader"
	"github.com/modpal/modpal/pkg/gamemod"
)

func newLoadersCommand(app *App) *cobra.Command {
	loadersCmd := &cobra.Command{
		Use:   "loaders",
		Short: "Inspect mod loaders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	loadersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List mod loaders and where they keep their mods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			loaders, err := s.store.ModLoaders()
			if err != nil {
				return err
			}
			printLoaders(app.stdout, loaders)
			return nil
		},
	})

	loadersCmd.AddCommand(&cobra.Command{
		Use:   "open <loader-id>",
		Short: "Open a mod loader's folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			if err := s.orch.OpenLoaderFolder(args[0]); err != nil {
				return actionable(err, "open loader folder", args[0])
			}
			return nil
		},
	})

	return loadersCmd
}

func printLoaders(w io.Writer, loaders gamemod.LoaderDataMap) {
	fmt.Fprintln(w, TitleStyle.Render("Mod Loaders"))
	fmt.Fprintf(w, "%s Found %d loader(s)\n\n", infoIcon, len(loaders))
	for _, id := range slices.Sorted(maps.Keys(loaders)) {
		l := loaders[id]
		fmt.Fprintf(w, "%s %s %s\n", successIcon, nameStyle.Render(id), SubtitleStyle.Render("("+string(l.Kind)+")"))
		fmt.Fprintf(w, "   Path:  %s\n", VerboseStyle.Render(l.Path))
		fmt.Fprintf(w, "   Mods:  %s\n", VerboseStyle.Render(modloader.ModsDir(l)))
		fmt.Fprintln(w)
	}
}
