// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Unity is the Unity engine.
	Unity Brand = "Unity"
	// Unreal is Unreal Engine.
	Unreal Brand = "Unreal"
	// Godot is the Godot engine.
	Godot Brand = "Godot"
	// GameMaker is GameMaker Studio.
	GameMaker Brand = "GameMaker"

	// Mono is the Unity Mono scripting backend.
	Mono UnityBackend = "Mono"
	// Il2Cpp is the Unity IL2CPP scripting backend.
	Il2Cpp UnityBackend = "Il2Cpp"
)

var (
	// ErrInvalidBrand is returned when a Brand value is not recognized.
	ErrInvalidBrand = errors.New("invalid engine brand")
	// ErrInvalidUnityBackend is returned when a UnityBackend value is not recognized.
	ErrInvalidUnityBackend = errors.New("invalid unity backend")
	// ErrInvalidVersion is returned when a version string has no leading major number.
	ErrInvalidVersion = errors.New("invalid engine version")

	versionPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(.*)$`)
)

type (
	// Brand identifies an engine family.
	Brand string

	// UnityBackend is the Unity scripting backend a game was built with.
	UnityBackend string

	// VersionNumbers holds the numeric part of an engine version.
	VersionNumbers struct {
		Major uint32  `json:"major"`
		Minor *uint32 `json:"minor,omitempty"`
		Patch *uint32 `json:"patch,omitempty"`
	}

	// Version is a parsed engine version. Display keeps the original text.
	Version struct {
		Numbers VersionNumbers `json:"numbers"`
		Suffix  *string        `json:"suffix,omitempty"`
		Display string         `json:"display"`
	}

	// GameEngine is a detected engine.
	GameEngine struct {
		Brand   Brand    `json:"brand"`
		Version *Version `json:"version,omitempty"`
	}
)

// Brands returns every known brand in display order.
func Brands() []Brand {
	return []Brand{Unity, Unreal, Godot, GameMaker}
}

// Validate returns ErrInvalidBrand if b is not a known brand.
func (b Brand) Validate() error {
	switch b {
	case Unity, Unreal, Godot, GameMaker:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBrand, string(b))
	}
}

// ParseBrand matches s case-insensitively against the known brands. It also
// accepts the "Engine:" page prefix used by wiki sources and common aliases
// such as "Unreal Engine 4".
func ParseBrand(s string) (Brand, error) {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "Engine:")))
	switch {
	case strings.HasPrefix(normalized, "unity"):
		return Unity, nil
	case strings.HasPrefix(normalized, "unreal"):
		return Unreal, nil
	case strings.HasPrefix(normalized, "godot"):
		return Godot, nil
	case strings.HasPrefix(normalized, "gamemaker"), strings.HasPrefix(normalized, "game maker"):
		return GameMaker, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBrand, s)
	}
}

// Validate returns ErrInvalidUnityBackend if b is not a known backend.
func (b UnityBackend) Validate() error {
	switch b {
	case Mono, Il2Cpp:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidUnityBackend, string(b))
	}
}

// ParseVersion parses strings like "2019.4.31f1", "4.27" or "5". Anything
// after the last numeric component becomes the suffix.
func ParseVersion(s string) (*Version, error) {
	trimmed := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	major, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}

	v := &Version{
		Numbers: VersionNumbers{Major: uint32(major)},
		Display: trimmed,
	}
	if v.Numbers.Minor, err = optionalUint(m[2]); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}
	if v.Numbers.Patch, err = optionalUint(m[3]); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}
	if suffix := m[4]; suffix != "" {
		v.Suffix = &suffix
	}

	return v, nil
}

// String returns "<brand> <display version>" or just the brand.
func (e GameEngine) String() string {
	if e.Version == nil || e.Version.Display == "" {
		return string(e.Brand)
	}
	return string(e.Brand) + " " + e.Version.Display
}

func optionalUint(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, err
	}
	v := uint32(n)
	return &v, nil
}
