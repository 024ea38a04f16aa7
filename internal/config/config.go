// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/modpal/modpal/internal/issue"
	"github.com/modpal/modpal/internal/paths"
	"github.com/modpal/modpal/pkg/platform"
)

const (
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"

	// DefaultCatalogURL serves one <loader-id>.json database per loader.
	DefaultCatalogURL = "https://raw.githubusercontent.com/modpal/mod-db/main"
	// DefaultEngineLookupURL is the PCGamingWiki API endpoint.
	DefaultEngineLookupURL = "https://www.pcgamingwiki.com/w/api.php"
)

//go:embed config_schema.cue
var configSchema string

// DefaultConfig returns the configuration used for keys a file leaves out.
func DefaultConfig() *Config {
	dataDir, err := paths.DataDir()
	if err != nil {
		dataDir = filepath.Join(os.TempDir(), paths.AppName)
	}
	return &Config{
		DataDir: dataDir,
		Catalog: CatalogConfig{
			BaseURL: DefaultCatalogURL,
			Timeout: 30 * time.Second,
		},
		EngineLookup: EngineLookupConfig{
			Enabled: true,
			BaseURL: DefaultEngineLookupURL,
		},
		Providers: ProvidersConfig{
			Epic:   EpicConfig{Enabled: true},
			Manual: ManualConfig{Enabled: true},
		},
		Refresh: RefreshConfig{Concurrency: 8},
		Watch:   WatchConfig{Debounce: 500 * time.Millisecond},
		Log:     LogConfig{Level: LogLevelInfo},
	}
}

// ResourcesPath returns ResourcesDir, defaulting to <data_dir>/resources.
func (c *Config) ResourcesPath() string {
	if c.ResourcesDir != "" {
		return c.ResourcesDir
	}
	return filepath.Join(c.DataDir, "resources")
}

// ConfigDir returns the modpal configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, paths.AppName), nil
}

// FilePath returns where the config file lives inside dir, or inside
// ConfigDir when dir is empty.
func FilePath(dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading: defaults first, then
// the CUE file validated against #Config, then decoding and validation.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'modpal config path' to see where modpal looks by default").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", invalidFileError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cuePath, err := FilePath(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		// No config file means defaults only.
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", invalidFileError(cuePath, err)
			}
			resolvedPath = cuePath
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Durations use Go syntax, e.g. \"30s\" or \"500ms\"").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("resources_dir", defaults.ResourcesDir)
	v.SetDefault("catalog.base_url", defaults.Catalog.BaseURL)
	v.SetDefault("catalog.timeout", defaults.Catalog.Timeout)
	v.SetDefault("engine_lookup.enabled", defaults.EngineLookup.Enabled)
	v.SetDefault("engine_lookup.base_url", defaults.EngineLookup.BaseURL)
	v.SetDefault("providers.epic.enabled", defaults.Providers.Epic.Enabled)
	v.SetDefault("providers.epic.data_path", defaults.Providers.Epic.DataPath)
	v.SetDefault("providers.manual.enabled", defaults.Providers.Manual.Enabled)
	v.SetDefault("refresh.concurrency", defaults.Refresh.Concurrency)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("log.level", string(defaults.Log.Level))
}

func invalidFileError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Compare your values with 'modpal config dump'").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper reads a CUE config file and merges it into v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := decodeCUE(data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir (ConfigDir
// when empty) unless one exists. It returns the file path and whether it
// was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath, err := FilePath(dir)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}
	if err := Save(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg as CUE to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modpal configuration file\n")
	sb.WriteString("// Every key is optional; removed keys fall back to their defaults.\n\n")

	fmt.Fprintf(&sb, "data_dir: %q\n", cfg.DataDir)
	if cfg.ResourcesDir != "" {
		fmt.Fprintf(&sb, "resources_dir: %q\n", cfg.ResourcesDir)
	}

	sb.WriteString("\ncatalog: {\n")
	fmt.Fprintf(&sb, "\tbase_url: %q\n", cfg.Catalog.BaseURL)
	fmt.Fprintf(&sb, "\ttimeout:  %q\n", cfg.Catalog.Timeout.String())
	sb.WriteString("}\n")

	sb.WriteString("\nengine_lookup: {\n")
	fmt.Fprintf(&sb, "\tenabled:  %v\n", cfg.EngineLookup.Enabled)
	fmt.Fprintf(&sb, "\tbase_url: %q\n", cfg.EngineLookup.BaseURL)
	sb.WriteString("}\n")

	sb.WriteString("\nproviders: {\n")
	sb.WriteString("\tepic: {\n")
	fmt.Fprintf(&sb, "\t\tenabled: %v\n", cfg.Providers.Epic.Enabled)
	if cfg.Providers.Epic.DataPath != "" {
		fmt.Fprintf(&sb, "\t\tdata_path: %q\n", cfg.Providers.Epic.DataPath)
	}
	sb.WriteString("\t}\n")
	sb.WriteString("\tmanual: {\n")
	fmt.Fprintf(&sb, "\t\tenabled: %v\n", cfg.Providers.Manual.Enabled)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\nrefresh: {\n")
	fmt.Fprintf(&sb, "\tconcurrency: %d\n", cfg.Refresh.Concurrency)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	return sb.String()
}
