// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone means the process runs directly on the host.
	SandboxNone SandboxType = ""
	// SandboxFlatpak means the process runs inside a Flatpak.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap means the process runs inside a Snap.
	SandboxSnap SandboxType = "snap"
)

// detectOnce caches detection for the process lifetime.
// detectSandboxFrom must not panic: sync.OnceValue re-panics on every call.
var detectOnce = sync.OnceValue(func() SandboxType { //nolint:gochecknoglobals // process-wide cache
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand rewrites name/args so the program runs on the host rather than
// inside st. Games and launcher URIs must be opened on the host.
func HostCommand(st SandboxType, name string, args ...string) (string, []string) {
	switch st {
	case SandboxFlatpak:
		return "flatpak-spawn", append([]string{"--host", name}, args...)
	case SandboxSnap:
		return "snap", append([]string{"run", "--shell", name}, args...)
	default:
		return name, args
	}
}

func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// /.flatpak-info exists in every Flatpak sandbox and takes precedence.
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
