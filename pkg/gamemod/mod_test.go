// SPDX-License-Identifier: MPL-2.0

package gamemod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modpal/modpal/pkg/engine"
)

func TestManifestRoundTripOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := Manifest{Version: "1.0.3", Engine: ptr(engine.Unity), UnityBackend: ptr(engine.Mono)}

	if err := WriteManifest(dir, want); err != nil {
		t.Fatalf("WriteManifest() error: %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("ReadManifest() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadManifestMissingIsNil(t *testing.T) {
	t.Parallel()

	got, err := ReadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if got != nil {
		t.Errorf("ReadManifest() = %+v, want nil", got)
	}
}

func TestReadManifestMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(dir); err == nil {
		t.Error("ReadManifest() error = nil, want parse error")
	}
}

func TestFirstDownload(t *testing.T) {
	t.Parallel()

	if _, ok := (RemoteMod{}).FirstDownload(); ok {
		t.Error("FirstDownload() on empty mod reported ok")
	}

	rm := RemoteMod{Data: RemoteData{Downloads: []Download{{URL: "a", Version: "2"}, {URL: "b", Version: "1"}}}}
	d, ok := rm.FirstDownload()
	if !ok || d.URL != "a" {
		t.Errorf("FirstDownload() = %+v, %v", d, ok)
	}
	if rm.LatestVersion() != "2" {
		t.Errorf("LatestVersion() = %q, want 2", rm.LatestVersion())
	}
}
