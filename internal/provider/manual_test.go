// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/modpal/modpal/internal/fault"
	"github.com/modpal/modpal/internal/paths"
	"github.com/modpal/modpal/internal/testutil"
	"github.com/modpal/modpal/pkg/game"
)

func TestManualAddListRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "games", "Some Game", "SomeGame.exe")
	testutil.MustWriteFile(t, exe, "MZ")

	m := NewManual(filepath.Join(dir, "data"), filepath.Join(dir, "installed-mods"))
	ctx := context.Background()

	if games, err := m.InstalledGames(ctx); err != nil || len(games) != 0 {
		t.Fatalf("InstalledGames() on empty list = %v, %v", games, err)
	}

	added, err := m.Add(exe)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.Name != "SomeGame" {
		t.Errorf("Name = %q, want SomeGame", added.Name)
	}
	if added.ProviderID != game.ProviderManual {
		t.Errorf("ProviderID = %q", added.ProviderID)
	}
	if want := paths.Hash(paths.Normalize(exe)); added.ID != want {
		t.Errorf("ID = %q, want %q", added.ID, want)
	}

	if _, err := os.Stat(m.ListPath()); err != nil {
		t.Fatalf("list file not written: %v", err)
	}

	games, err := m.InstalledGames(ctx)
	if err != nil {
		t.Fatalf("InstalledGames() error = %v", err)
	}
	if len(games) != 1 || games[0].ID != added.ID {
		t.Fatalf("InstalledGames() = %+v, want the added game", games)
	}

	if err := m.Remove(exe); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if games, _ := m.InstalledGames(ctx); len(games) != 0 {
		t.Errorf("InstalledGames() after Remove = %+v, want none", games)
	}
}

func TestManualAddRejectsDuplicatesAndMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "Game.exe")
	testutil.MustWriteFile(t, exe, "MZ")

	m := NewManual(dir, filepath.Join(dir, "installed-mods"))

	if _, err := m.Add(exe); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}
	if _, err := m.Add(exe); !errors.Is(err, fault.ErrAlreadyExists) {
		t.Errorf("second Add() error = %v, want ErrAlreadyExists", err)
	}
	if _, err := m.Add(filepath.Join(dir, "Missing.exe")); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Add(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := m.Add(dir); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Add(directory) error = %v, want ErrNotFound", err)
	}
}

func TestManualRemoveUnknown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManual(dir, dir)

	if err := m.Remove(filepath.Join(dir, "Nope.exe")); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
}

func TestManualSkipsVanishedExecutables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keep := filepath.Join(dir, "Keep.exe")
	gone := filepath.Join(dir, "Gone.exe")
	testutil.MustWriteFile(t, keep, "MZ")
	testutil.MustWriteFile(t, gone, "MZ")

	m := NewManual(dir, dir)
	for _, exe := range []string{keep, gone} {
		if _, err := m.Add(exe); err != nil {
			t.Fatalf("Add(%s) error = %v", exe, err)
		}
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	games, err := m.InstalledGames(context.Background())
	if err != nil {
		t.Fatalf("InstalledGames() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Keep" {
		t.Errorf("InstalledGames() = %+v, want only Keep", games)
	}
}

func TestManualRejectsCorruptList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, ManualListFileName), "[[games]\npath = ")

	m := NewManual(dir, dir)
	if _, err := m.InstalledGames(context.Background()); !errors.Is(err, fault.ErrExternalIO) {
		t.Errorf("InstalledGames() error = %v, want ErrExternalIO", err)
	}
}

func TestManualCarriesLaunchDescription(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "Game.exe")
	testutil.MustWriteFile(t, exe, "MZ")
	list := "[[games]]\npath = '" + exe + "'\ndescription = 'DX11'\n"
	testutil.MustWriteFile(t, filepath.Join(dir, ManualListFileName), list)

	m := NewManual(dir, dir)
	games, err := m.InstalledGames(context.Background())
	if err != nil {
		t.Fatalf("InstalledGames() error = %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("InstalledGames() = %+v, want one game", games)
	}
	if got := games[0].LaunchDescription; got != "DX11" {
		t.Errorf("LaunchDescription = %q, want DX11", got)
	}

	// Rewriting the list keeps descriptions.
	other := filepath.Join(dir, "Other.exe")
	testutil.MustWriteFile(t, other, "MZ")
	if _, err := m.Add(other); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	games, err = m.InstalledGames(context.Background())
	if err != nil {
		t.Fatalf("InstalledGames() error = %v", err)
	}
	if len(games) != 2 || games[0].LaunchDescription != "DX11" {
		t.Errorf("InstalledGames() after Add = %+v, want DX11 kept on the first game", games)
	}
}
