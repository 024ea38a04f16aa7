// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/modpal/modpal/internal/fault"
)

func TestCatalogIsComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(EpicLauncherNotFoundId) {
		t.Fatalf("catalog has %d entries, want %d", len(values), EpicLauncherNotFoundId)
	}
	for i, is := range values {
		if want := Id(i + 1); is.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), want)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", is.Id())
		}
		if Get(is.Id()) != is {
			t.Errorf("Get(%d) does not return the catalog entry", is.Id())
		}
	}
	if Get(0) != nil {
		t.Error("Get(0) should be nil")
	}
}

func TestRenderAppendsLinks(t *testing.T) {
	var got string
	is := &Issue{id: 99, mdMsg: "# Title", docLinks: []HttpLink{"https://docs.example/a"}}

	orig := render
	t.Cleanup(func() { render = orig })
	render = func(in, _ string) (string, error) {
		got = in
		return in, nil
	}

	if _, err := is.Render("dark"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "## See also") || !strings.Contains(got, "https://docs.example/a") {
		t.Errorf("rendered markdown missing links:\n%s", got)
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("outer: %w", errors.New("inner"))
	err := NewErrorContext().
		WithOperation("install mod").
		WithResource("m").
		WithSuggestion("try again").
		Wrap(cause).
		Build()

	if got, want := err.Error(), "failed to install mod: m: outer: inner"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	short := err.Format(false)
	if !strings.Contains(short, "• try again") || strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) = %q", short)
	}
	long := err.Format(true)
	if !strings.Contains(long, "1. outer: inner") || !strings.Contains(long, "2. inner") {
		t.Errorf("Format(true) = %q", long)
	}
	if !errors.Is(err, cause) {
		t.Error("ActionableError does not unwrap to its cause")
	}
}

func TestBuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().Wrap(errors.New("x")).BuildError() != nil {
		t.Error("BuildError() without operation should be nil")
	}
	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}
}

func TestFromFault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantIssue Id
	}{
		{"unavailable", fault.Unavailable("m", nil), ModUnavailableId},
		{"incompatible", fault.Incompatible("m", "g"), ModIncompatibleId},
		{"network", fault.Network("fetch", "https://x", errors.New("timeout")), NetworkFailureId},
		{"unclassified", errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := FromFault(tt.err, "install mod", "m")
			var ae *ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("FromFault() = %T, want *ActionableError", err)
			}
			if ae.Issue != tt.wantIssue {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.wantIssue)
			}
			if tt.wantIssue != 0 && !ae.HasSuggestions() {
				t.Error("classified error has no suggestions")
			}
			if !errors.Is(err, tt.err) {
				t.Error("FromFault() does not unwrap to the original error")
			}
		})
	}

	already := NewErrorContext().WithOperation("x").BuildError()
	if FromFault(already, "y", "") != already {
		t.Error("FromFault() rewrapped an actionable error")
	}
	if FromFault(nil, "y", "") != nil {
		t.Error("FromFault(nil) should be nil")
	}
}
