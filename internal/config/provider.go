// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from. With both fields
	// empty the platform config directory is used.
	LoadOptions struct {
		// ConfigFilePath is the --config flag: read exactly this file, which
		// must exist.
		ConfigFilePath string
		// ConfigDirPath looks for config.cue in this directory instead of the
		// platform one. A missing file there means defaults.
		ConfigDirPath string
	}

	// Provider is how the CLI obtains configuration. Tests substitute their
	// own to skip the filesystem.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	cueProvider struct{}
)

// NewProvider returns the Provider that reads config.cue through viper.
func NewProvider() Provider {
	return cueProvider{}
}

func (cueProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

// LoadWithPath is Load that also reports which file was read; the path is
// empty when only defaults were used.
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
