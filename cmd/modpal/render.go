// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/modpal/modpal/internal/issue"
)

// renderError prints err for the user. Actionable errors show their
// suggestions; in verbose mode the cause chain and the linked issue catalog
// entry follow.
func renderError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorIcon, formatErrorForDisplay(err, verbose))

	if !verbose {
		return
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render("dark")
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", ae.Issue, "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay uses ActionableError.Format when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// actionable attaches the fault kind's advice to err for the operation.
func actionable(err error, operation, resource string) error {
	return issue.FromFault(err, operation, resource)
}
