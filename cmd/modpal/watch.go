// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/watch"
)

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan local mods whenever a loader's mods folder changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), app, s)
		},
	}
}

func runWatch(ctx context.Context, app *App, s *session) error {
	w, err := watch.New(watch.Config{
		Roots:    s.pipeline.Loaders().ModsDirs(),
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s), rescanning mods\n", arrowIcon, len(changed))
			if err := s.pipeline.RescanLocalMods(ctx); err != nil {
				return err
			}
			local, err := s.store.LocalMods()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %d local mod(s)\n", successIcon, len(local))
			return nil
		},
	})
	if err != nil {
		return actionable(err, "start watcher", "")
	}

	for _, root := range w.Roots() {
		fmt.Fprintf(app.stdout, "%s Watching %s\n", infoIcon, VerboseStyle.Render(root))
	}
	fmt.Fprintf(app.stdout, "\n%s Waiting for changes (Ctrl+C to stop)...\n", arrowIcon)
	return w.Run(ctx)
}
