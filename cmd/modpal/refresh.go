// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/refresh"
)

func newRefreshCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Resynchronize games, loaders and mods",
		Long: `Resynchronize everything modpal knows about.

Loaders are rebuilt, local mods rescanned, installed games collected from
every provider, the remote catalog fetched and owned games listed. A source
that fails is reported and skipped; the rest of the refresh goes on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd)
			if err != nil {
				return err
			}
			printSummary(app.stdout, s.summary, s.failures.list())
			return nil
		},
	}
}

func printSummary(w io.Writer, summary refresh.Summary, failures []failure) {
	fmt.Fprintln(w, TitleStyle.Render("Refresh"))
	for _, p := range summary.Phases {
		icon := successIcon
		if p.Failures > 0 {
			icon = warningIcon
		}
		fmt.Fprintf(w, "%s %-16s %4d  %s\n", icon, p.Phase, p.Count, SubtitleStyle.Render(p.Duration.Round(time.Millisecond).String()))
	}

	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s %d source(s) failed\n", warningIcon, len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "   %s %s: %s\n", CmdStyle.Render(string(f.phase)), f.source, VerboseStyle.Render(f.err.Error()))
	}
}
