// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/modpal/modpal/internal/fault"
)

type kindAdvice struct {
	issue       Id
	suggestions []string
}

var adviceByKind = map[error]kindAdvice{
	fault.ErrNotFound: {
		issue:       GameNotFoundId,
		suggestions: []string{"Run 'modpal refresh' and check the id with 'modpal games list' or 'modpal mods list'"},
	},
	fault.ErrAlreadyExists: {
		issue:       GameAlreadyAddedId,
		suggestions: []string{"The game is already tracked; see 'modpal games list'"},
	},
	fault.ErrUnavailable: {
		issue:       ModUnavailableId,
		suggestions: []string{"Place the mod in its loader folder by hand ('modpal loaders open <loader-id>') and retry"},
	},
	fault.ErrIncompatible: {
		issue:       ModIncompatibleId,
		suggestions: []string{"Pick a mod built for the game's engine and scripting backend"},
	},
	fault.ErrExternalIO: {
		issue:       FileSystemFailureId,
		suggestions: []string{"Check permissions and free space of the data directory", "Close the game before changing its mods"},
	},
	fault.ErrExternalNetwork: {
		issue:       NetworkFailureId,
		suggestions: []string{"Check your connection and the catalog URL in your config, then retry"},
	},
	fault.ErrPathResolution: {
		issue:       PathResolutionFailedId,
		suggestions: []string{"Run with --verbose to see the offending path"},
	},
}

// FromFault wraps err as an ActionableError for operation, attaching the
// suggestions and catalog entry of its fault kind. Errors that are already
// actionable are returned as they are; nil yields nil.
func FromFault(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ctx := NewErrorContext().WithOperation(operation).WithResource(resource).Wrap(err)
	if advice, ok := adviceByKind[fault.KindOf(err)]; ok {
		ctx.WithSuggestions(advice.suggestions...).WithIssue(advice.issue)
	}
	return ctx.BuildError()
}
