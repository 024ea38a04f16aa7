// SPDX-License-Identifier: MPL-2.0

package osopen

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/platform"
)

type capture struct {
	cmds []*exec.Cmd
	err  error
}

func (c *capture) start(cmd *exec.Cmd) error {
	c.cmds = append(c.cmds, cmd)
	return c.err
}

func newTestSystem(goos string, sandbox platform.SandboxType) (*System, *capture) {
	c := &capture{}
	return &System{goos: goos, sandbox: sandbox, start: c.start}, c
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos    string
		sandbox platform.SandboxType
		want    []string
	}{
		{platform.Linux, platform.SandboxNone, []string{"xdg-open", "/games"}},
		{platform.Darwin, platform.SandboxNone, []string{"open", "/games"}},
		{platform.Windows, platform.SandboxNone, []string{"rundll32", "url.dll,FileProtocolHandler", "/games"}},
		{platform.Linux, platform.SandboxFlatpak, []string{"flatpak-spawn", "--host", "xdg-open", "/games"}},
	}

	for _, tt := range tests {
		s, c := newTestSystem(tt.goos, tt.sandbox)
		if err := s.Open("/games"); err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if diff := cmp.Diff(tt.want, c.cmds[0].Args); diff != "" {
			t.Errorf("%s/%s argv mismatch (-want +got):\n%s", tt.goos, tt.sandbox, diff)
		}
	}
}

func TestRunURIOpensIt(t *testing.T) {
	t.Parallel()

	s, c := newTestSystem(platform.Linux, platform.SandboxNone)
	uri := "com.epicgames.launcher://apps/Fortnite?action=launch&silent=true"

	if err := s.Run(uri); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if diff := cmp.Diff([]string{"xdg-open", uri}, c.cmds[0].Args); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSplitsCommandLine(t *testing.T) {
	t.Parallel()

	s, c := newTestSystem(platform.Linux, platform.SandboxNone)
	if err := s.Run(`"/opt/my games/game.sh" --vr -name 'Player One'`); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	cmd := c.cmds[0]
	want := []string{"/opt/my games/game.sh", "--vr", "-name", "Player One"}
	if diff := cmp.Diff(want, cmd.Args); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}
	if cmd.Dir != filepath.Dir("/opt/my games/game.sh") {
		t.Errorf("Dir = %q", cmd.Dir)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestSystem(platform.Linux, platform.SandboxNone)
	for _, command := range []string{"", "   ", `"unterminated`} {
		if err := s.Run(command); !errors.Is(err, fault.ErrExternalIO) {
			t.Errorf("Run(%q) error = %v, want ErrExternalIO", command, err)
		}
	}

	failing, c := newTestSystem(platform.Linux, platform.SandboxNone)
	c.err = errors.New("exec: not found")
	if err := failing.Start("/games/game"); !errors.Is(err, fault.ErrExternalIO) {
		t.Errorf("Start() error = %v, want ErrExternalIO", err)
	}
}

func TestIsURI(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]bool{
		"steam://run/620":                 true,
		"com.epicgames.launcher://apps/x": true,
		"https://example.com":             true,
		`C:\Games\game.exe`:               false,
		"/usr/bin/game":                   false,
		"game --url=https://x":            false,
	} {
		if got := isURI(s); got != want {
			t.Errorf("isURI(%q) = %v, want %v", s, got, want)
		}
	}
}
