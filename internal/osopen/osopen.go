// SPDX-License-Identifier: MPL-2.0

// Package osopen is modpal's OS launch layer: opening folders and URIs with
// the desktop's default handler and starting game or mod executables.
package osopen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/platform"
)

type (
	// Opener is the OS launch surface the rest of modpal depends on.
	Opener interface {
		// Open hands a path or URI to the desktop's default handler.
		Open(target string) error
		// Run executes a command string: URIs are opened, anything else is
		// split into words and started.
		Run(command string) error
		// Start launches the executable at path from its own directory.
		Start(path string, args ...string) error
	}

	// System launches processes on the host, escaping Flatpak or Snap
	// sandboxes when needed.
	System struct {
		goos    string
		sandbox platform.SandboxType
		// start is a test seam; it defaults to starting cmd and reaping it
		// in the background.
		start func(cmd *exec.Cmd) error
	}
)

// NewSystem returns an Opener for the running OS.
func NewSystem() *System {
	return &System{
		goos:    runtime.GOOS,
		sandbox: platform.DetectSandbox(),
		start:   startDetached,
	}
}

// Open implements Opener.
func (s *System) Open(target string) error {
	name, args := openCommand(s.goos, target)
	if err := s.launch("", name, args...); err != nil {
		return fault.IO("open", target, err)
	}
	return nil
}

// Run implements Opener.
func (s *System) Run(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fault.IO("run", command, fmt.Errorf("empty command"))
	}
	if isURI(command) {
		return s.Open(command)
	}

	words, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return fault.IO("parse command", command, err)
	}
	if len(words) == 0 {
		return fault.IO("run", command, fmt.Errorf("empty command"))
	}
	return s.Start(words[0], words[1:]...)
}

// Start implements Opener.
func (s *System) Start(path string, args ...string) error {
	if err := s.launch(filepath.Dir(path), path, args...); err != nil {
		return fault.IO("start", path, err)
	}
	return nil
}

func (s *System) launch(dir, name string, args ...string) error {
	name, args = platform.HostCommand(s.sandbox, name, args...)
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return s.start(cmd)
}

func openCommand(goos, target string) (string, []string) {
	switch goos {
	case platform.Windows:
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case platform.Darwin:
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// isURI reports whether s looks like "scheme://...". Windows drive paths
// such as C:\Games are not URIs.
func isURI(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 1 {
		return false
	}
	for _, r := range s[:idx] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }() // reap; exit status of a launched game is not ours to report
	return nil
}
