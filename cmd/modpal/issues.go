// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/issue"
)

// newIssuesCommand creates `modpal issues`, which prints the troubleshooting
// guide behind every error modpal can report.
func newIssuesCommand(app *App) *cobra.Command {
	var (
		raw   bool
		style string
	)
	issuesCmd := &cobra.Command{
		Use:   "issues",
		Short: "Show the troubleshooting guide for every known error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range issue.Values() {
				if raw {
					fmt.Fprintln(app.stdout, string(entry.MarkdownMsg()))
					continue
				}
				rendered, err := entry.Render(style)
				if err != nil {
					return fmt.Errorf("rendering issue %d: %w", entry.Id(), err)
				}
				fmt.Fprint(app.stdout, rendered)
			}
			return nil
		},
	}
	issuesCmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source instead of rendering it")
	issuesCmd.Flags().StringVar(&style, "style", "dark", "glamour style used for rendering")
	return issuesCmd
}
