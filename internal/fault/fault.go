// SPDX-License-Identifier: MPL-2.0

// Package fault defines the error kinds shared by every modpal component.
//
// Each kind is a sentinel error. Concrete failures are reported as *Error
// values that unwrap to both their kind and their cause, so callers can test
// with errors.Is(err, fault.ErrNotFound) no matter how many fmt.Errorf("%w")
// layers sit in between.
package fault

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a game, mod or loader id cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a manual game is added twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable is returned when a remote mod has no usable download.
	ErrUnavailable = errors.New("unavailable")
	// ErrIncompatible is returned when a mod's engine or backend does not match the game.
	ErrIncompatible = errors.New("incompatible")
	// ErrExternalIO is returned for filesystem and archive extraction failures.
	ErrExternalIO = errors.New("external I/O failure")
	// ErrExternalNetwork is returned for catalog and download fetch failures.
	ErrExternalNetwork = errors.New("external network failure")
	// ErrPathResolution is returned when a required path cannot be derived or canonicalized.
	ErrPathResolution = errors.New("path resolution failure")
)

// kinds lists every sentinel in rendering priority order.
var kinds = []error{
	ErrNotFound,
	ErrAlreadyExists,
	ErrUnavailable,
	ErrIncompatible,
	ErrPathResolution,
	ErrExternalNetwork,
	ErrExternalIO,
}

// Error is a classified failure. Kind is one of the package sentinels; Err is
// the optional underlying cause.
type Error struct {
	Kind     error
	Op       string
	Resource string
	Err      error
}

// Error formats as "<op>: <resource>: <kind>: <cause>", omitting empty parts.
func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NotFound reports that the resource (e.g. "game", "mod") with the given id does not exist.
func NotFound(resource, id string) error {
	return &Error{Kind: ErrNotFound, Resource: resource + " " + quote(id)}
}

// AlreadyExists reports a duplicate resource.
func AlreadyExists(resource, id string) error {
	return &Error{Kind: ErrAlreadyExists, Resource: resource + " " + quote(id)}
}

// Unavailable reports that the mod cannot be obtained remotely.
func Unavailable(modID string, cause error) error {
	return &Error{Kind: ErrUnavailable, Resource: "mod " + quote(modID), Err: cause}
}

// Incompatible reports that modID cannot be installed into gameID.
func Incompatible(modID, gameID string) error {
	return &Error{Kind: ErrIncompatible, Op: "install mod " + quote(modID), Resource: "game " + quote(gameID)}
}

// IO wraps a filesystem or archive failure. A nil err yields nil.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrExternalIO, Op: op, Resource: path, Err: err}
}

// Network wraps a catalog or download failure. A nil err yields nil.
func Network(op, url string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrExternalNetwork, Op: op, Resource: url, Err: err}
}

// Path wraps a path derivation failure.
func Path(op, path string, err error) error {
	return &Error{Kind: ErrPathResolution, Op: op, Resource: path, Err: err}
}

// KindOf returns the sentinel kind carried by err, or nil if err is
// unclassified. The outermost *Error wins, so an unavailable mod whose cause
// is a missing catalog entry reports ErrUnavailable.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Kind != nil {
		return fe.Kind
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
