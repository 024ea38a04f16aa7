// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/pkg/engine"
	"github.com/modpal/modpal/pkg/gamemod"
)

const bepinexDatabase = `{
  "mods": {
    "uuvr": {
      "title": "Universal Unity VR",
      "author": "Raicuparta",
      "sourceCode": "https://github.com/Raicuparta/uuvr",
      "description": "VR for Unity games",
      "engine": "Unity",
      "unityBackend": "Il2Cpp",
      "downloads": [{"url": "https://example.com/uuvr-1.0.0.zip", "version": "1.0.0"}]
    },
    "manual-only": {"title": "Manual", "downloads": []}
  }
}`

func TestFetchAndConvert(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, bepinexDatabase)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	db, err := c.Fetch(context.Background(), "bepinex")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := <-paths; got != "/bepinex.json" {
		t.Errorf("requested %q, want /bepinex.json", got)
	}

	mods := db.RemoteMods("bepinex")
	unity, il2cpp := engine.Unity, engine.Il2Cpp
	want := gamemod.RemoteMod{
		Common: gamemod.CommonData{ID: "uuvr", LoaderID: "bepinex", Engine: &unity, UnityBackend: &il2cpp},
		Data: gamemod.RemoteData{
			Title:       "Universal Unity VR",
			Author:      "Raicuparta",
			SourceCode:  "https://github.com/Raicuparta/uuvr",
			Description: "VR for Unity games",
			Downloads:   []gamemod.Download{{URL: "https://example.com/uuvr-1.0.0.zip", Version: "1.0.0"}},
		},
	}
	if diff := cmp.Diff(want, mods["uuvr"]); diff != "" {
		t.Errorf("uuvr mismatch (-want +got):\n%s", diff)
	}
	if _, ok := mods["manual-only"].FirstDownload(); ok {
		t.Error("manual-only should have no download")
	}
}

func TestFetchFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "{mods")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).Fetch(context.Background(), "bepinex")
			if !errors.Is(err, fault.ErrExternalNetwork) {
				t.Errorf("Fetch() error = %v, want ErrExternalNetwork", err)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.zip" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "archive-bytes")
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(0))

	body, err := c.Download(context.Background(), srv.URL+"/mod.zip?token=secret")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil || string(data) != "archive-bytes" {
		t.Errorf("body = %q, %v", data, err)
	}

	_, err = c.Download(context.Background(), srv.URL+"/missing.zip?token=secret")
	if !errors.Is(err, fault.ErrExternalNetwork) {
		t.Fatalf("Download(missing) error = %v, want ErrExternalNetwork", err)
	}
	if got := err.Error(); strings.Contains(got, "secret") {
		t.Errorf("error leaks query string: %s", got)
	}
}
