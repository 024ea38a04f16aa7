// SPDX-License-Identifier: MPL-2.0

package modloader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/testutil"
	"github.com/modpal/modpal/pkg/gamemod"
)

func TestNewMap(t *testing.T) {
	t.Parallel()

	loadersDir := t.TempDir()
	m := NewMap(Options{
		LoadersDir:   loadersDir,
		ResourcesDir: t.TempDir(),
		Opener:       &testutil.RecordingOpener{},
		Logger:       testutil.DiscardLogger(),
	})

	if diff := cmp.Diff([]string{BepInExID, UnrealVRID}, m.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}

	want := gamemod.LoaderDataMap{
		BepInExID:  {ID: BepInExID, Path: filepath.Join(loadersDir, BepInExID), Kind: gamemod.KindInstallable},
		UnrealVRID: {ID: UnrealVRID, Path: filepath.Join(loadersDir, UnrealVRID), Kind: gamemod.KindRunnable},
	}
	if diff := cmp.Diff(want, m.Data()); diff != "" {
		t.Errorf("Data() mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.Get("nope"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}

	wantDirs := []string{
		filepath.Join(loadersDir, BepInExID, "mods"),
		filepath.Join(loadersDir, UnrealVRID, "mods"),
	}
	if diff := cmp.Diff(wantDirs, m.ModsDirs()); diff != "" {
		t.Errorf("ModsDirs() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapLocate(t *testing.T) {
	t.Parallel()

	m := NewMap(Options{LoadersDir: t.TempDir(), Logger: testutil.DiscardLogger()})
	g := unityGame(t, false)

	if got := m.Locate(g, gamemod.CommonData{ID: "uuvr", LoaderID: BepInExID}); got != filepath.Join(g.ModsPath, BepInExID, "BepInEx", "plugins", "uuvr") {
		t.Errorf("Locate(bepinex) = %q", got)
	}
	if got := m.Locate(g, gamemod.CommonData{ID: "uevr", LoaderID: UnrealVRID}); got != "" {
		t.Errorf("Locate(unrealvr) = %q, want empty", got)
	}
	if got := m.Locate(g, gamemod.CommonData{ID: "x", LoaderID: "unknown"}); got != "" {
		t.Errorf("Locate(unknown) = %q, want empty", got)
	}
}
