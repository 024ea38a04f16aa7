// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// UnityGameExe lays out a minimal Unity game named name under root and
// returns its executable path. With il2cpp the IL2CPP runtime is added,
// otherwise the game looks like a Mono build.
func UnityGameExe(t testing.TB, root, name string, il2cpp bool) string {
	t.Helper()

	MustMkdirAll(t, filepath.Join(root, name+"_Data"))
	MustWriteFile(t, filepath.Join(root, "UnityPlayer.dll"), "stub")
	if il2cpp {
		MustWriteFile(t, filepath.Join(root, "GameAssembly.dll"), "stub")
	}
	exe := filepath.Join(root, name+".exe")
	MustWriteFile(t, exe, "MZ")
	return exe
}

// UnrealGameExe lays out the shipping binary of an Unreal game named name
// under root and returns its path.
func UnrealGameExe(t testing.TB, root, name string) string {
	t.Helper()

	exe := filepath.Join(root, name, "Binaries", "Win64", name+"-Win64-Shipping.exe")
	MustWriteFile(t, exe, "MZ")
	return exe
}

// PlainExe writes an executable with nothing around it that hints at an
// engine and returns its path.
func PlainExe(t testing.TB, root, name string) string {
	t.Helper()

	exe := filepath.Join(root, name, name+".exe")
	MustWriteFile(t, exe, "MZ")
	return exe
}
