// SPDX-License-Identifier: MPL-2.0

package game

import (
	"debug/elf"
	"debug/pe"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/modpal/modpal/pkg/engine"
)

const (
	// OSWindows is a PE executable.
	OSWindows OperatingSystem = "Windows"
	// OSLinux is an ELF executable.
	OSLinux OperatingSystem = "Linux"

	// ArchX64 is a 64-bit x86 binary.
	ArchX64 Architecture = "X64"
	// ArchX86 is a 32-bit x86 binary.
	ArchX86 Architecture = "X86"
)

// vrRuntimePattern matches VR runtime libraries shipped with a game.
const vrRuntimePattern = "**/{openvr_api,openxr_loader}.{dll,so}"

type (
	// OperatingSystem is the target OS of a game executable.
	OperatingSystem string

	// Architecture is the target CPU architecture of a game executable.
	Architecture string

	// Executable is what modpal knows about a game's main binary.
	Executable struct {
		Path         string               `json:"path"`
		Name         string               `json:"name"`
		OS           *OperatingSystem     `json:"os,omitempty"`
		Architecture *Architecture        `json:"architecture,omitempty"`
		Engine       *engine.GameEngine   `json:"engine,omitempty"`
		UnityBackend *engine.UnityBackend `json:"unityBackend,omitempty"`
		// Fingerprint changes whenever the binary is rewritten, e.g. by a
		// loader injection. Empty when the file cannot be stat'ed.
		Fingerprint string `json:"fingerprint"`
	}
)

// DetectExecutable inspects the binary at path and the files around it.
// Detection is best-effort: anything that cannot be determined stays nil.
func DetectExecutable(path string) Executable {
	exe := Executable{
		Path:        path,
		Name:        filepath.Base(path),
		Fingerprint: fingerprint(path),
	}

	exe.OS, exe.Architecture = detectBinaryFormat(path)

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(exe.Name, filepath.Ext(exe.Name))

	switch {
	case isUnity(dir, stem):
		exe.Engine = &engine.GameEngine{Brand: engine.Unity}
		backend := detectUnityBackend(dir, stem)
		exe.UnityBackend = &backend
	case isUnreal(path, stem):
		exe.Engine = &engine.GameEngine{Brand: engine.Unreal}
	case exists(filepath.Join(dir, stem+".pck")):
		exe.Engine = &engine.GameEngine{Brand: engine.Godot}
	case exists(filepath.Join(dir, "data.win")):
		exe.Engine = &engine.GameEngine{Brand: engine.GameMaker}
	}

	return exe
}

// DetectMode reports VR when the game ships a VR runtime next to its binary.
func DetectMode(exe Executable) Mode {
	dir := filepath.Dir(exe.Path)
	stem := strings.TrimSuffix(exe.Name, filepath.Ext(exe.Name))

	for _, root := range []string{
		filepath.Join(dir, stem+"_Data", "Plugins"),
		filepath.Join(dir, "Engine", "Binaries", "ThirdParty"),
		dir,
	} {
		pattern := vrRuntimePattern
		if root == dir {
			// Only the executable directory itself; a full walk of a game
			// install can be very large.
			pattern = "{openvr_api,openxr_loader}.{dll,so}"
		}
		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err == nil && len(matches) > 0 {
			return ModeVR
		}
	}
	return ModeFlat
}

func detectBinaryFormat(path string) (*OperatingSystem, *Architecture) {
	if f, err := pe.Open(path); err == nil {
		defer f.Close()
		osName := OSWindows
		var arch *Architecture
		switch f.Machine {
		case pe.IMAGE_FILE_MACHINE_AMD64:
			a := ArchX64
			arch = &a
		case pe.IMAGE_FILE_MACHINE_I386:
			a := ArchX86
			arch = &a
		}
		return &osName, arch
	}

	if f, err := elf.Open(path); err == nil {
		defer f.Close()
		osName := OSLinux
		var arch *Architecture
		switch f.Machine {
		case elf.EM_X86_64:
			a := ArchX64
			arch = &a
		case elf.EM_386:
			a := ArchX86
			arch = &a
		}
		return &osName, arch
	}

	return nil, nil
}

func isUnity(dir, stem string) bool {
	return isDir(filepath.Join(dir, stem+"_Data")) ||
		exists(filepath.Join(dir, "UnityPlayer.dll")) ||
		exists(filepath.Join(dir, "UnityPlayer.so"))
}

func detectUnityBackend(dir, stem string) engine.UnityBackend {
	if exists(filepath.Join(dir, "GameAssembly.dll")) ||
		exists(filepath.Join(dir, "GameAssembly.so")) ||
		isDir(filepath.Join(dir, stem+"_Data", "il2cpp_data")) {
		return engine.Il2Cpp
	}
	return engine.Mono
}

// isUnreal matches packaged Unreal games: either a "-Shipping" binary or a
// binary living under <root>/<Project>/Binaries/<Platform> next to <root>/Engine.
func isUnreal(path, stem string) bool {
	if strings.HasSuffix(stem, "-Shipping") {
		return true
	}
	platformDir := filepath.Dir(path)
	binariesDir := filepath.Dir(platformDir)
	if !strings.EqualFold(filepath.Base(binariesDir), "Binaries") {
		return false
	}
	root := filepath.Dir(filepath.Dir(binariesDir))
	return isDir(filepath.Join(root, "Engine", "Binaries"))
}

func fingerprint(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	key := strconv.FormatInt(info.Size(), 10) + ":" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
