// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LogLevelDebug logs everything, including refresh phase timings.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs swallowed refresh failures and worse.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects field-level validation errors. It wraps
	// ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DataDir is the root of modpal's data: loaders, mods, caches and the
		// manual game list.
		DataDir string `json:"data_dir" mapstructure:"data_dir"`
		// ResourcesDir holds loader payloads injected into games; empty means
		// <data_dir>/resources.
		ResourcesDir string             `json:"resources_dir" mapstructure:"resources_dir"`
		Catalog      CatalogConfig      `json:"catalog" mapstructure:"catalog"`
		EngineLookup EngineLookupConfig `json:"engine_lookup" mapstructure:"engine_lookup"`
		Providers    ProvidersConfig    `json:"providers" mapstructure:"providers"`
		Refresh      RefreshConfig      `json:"refresh" mapstructure:"refresh"`
		Watch        WatchConfig        `json:"watch" mapstructure:"watch"`
		Log          LogConfig          `json:"log" mapstructure:"log"`
	}

	// CatalogConfig configures the remote mod catalog.
	CatalogConfig struct {
		BaseURL string        `json:"base_url" mapstructure:"base_url"`
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// EngineLookupConfig configures engine detection for owned games.
	EngineLookupConfig struct {
		Enabled bool   `json:"enabled" mapstructure:"enabled"`
		BaseURL string `json:"base_url" mapstructure:"base_url"`
	}

	// ProvidersConfig toggles and configures game providers.
	ProvidersConfig struct {
		Epic   EpicConfig   `json:"epic" mapstructure:"epic"`
		Manual ManualConfig `json:"manual" mapstructure:"manual"`
	}

	// EpicConfig configures the Epic Games provider.
	EpicConfig struct {
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// DataPath is the launcher's Data folder; empty means the platform default.
		DataPath string `json:"data_path" mapstructure:"data_path"`
	}

	// ManualConfig configures the manual game list.
	ManualConfig struct {
		Enabled bool `json:"enabled" mapstructure:"enabled"`
	}

	// RefreshConfig tunes the refresh pipeline.
	RefreshConfig struct {
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	}

	// WatchConfig tunes the mod folder watcher.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels, and a
// list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid checks the constraints the CUE schema cannot see once values are
// decoded: positive durations and concurrency, a data directory and a known
// log level.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.Catalog.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("catalog.timeout must be positive, got %s", c.Catalog.Timeout))
	}
	if c.Refresh.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("refresh.concurrency must be positive, got %d", c.Refresh.Concurrency))
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce))
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Validate returns an *InvalidConfigError when IsValid fails.
func (c Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
