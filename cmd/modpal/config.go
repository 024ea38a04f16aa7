// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/config"
	"github.com/modpal/modpal/internal/issue"
)

// newConfigCommand creates the `modpal config` command tree. None of its
// subcommands open a session.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modpal configuration",
		Long: `Manage modpal configuration.

Configuration is stored in:
  - Linux: ~/.config/modpal/config.cue
  - macOS: ~/Library/Application Support/modpal/config.cue
  - Windows: %APPDATA%\modpal\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := app.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

// configPath is the --config value, or the default file location.
func (a *App) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	return config.FilePath("")
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		if entry := issue.Get(issue.ConfigLoadFailedId); entry != nil {
			if rendered, renderErr := entry.Render("dark"); renderErr == nil {
				fmt.Fprint(app.stderr, rendered)
			}
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	cfgPath, pathErr := app.configPath()
	if pathErr == nil && fileExistsCheck(cfgPath) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("data_dir"), valueStyle.Render(cfg.DataDir))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("resources_dir"), valueStyle.Render(cfg.ResourcesPath()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("catalog"))
	fmt.Fprintf(w, "  base_url: %s\n", valueStyle.Render(cfg.Catalog.BaseURL))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Catalog.Timeout.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("engine_lookup"))
	fmt.Fprintf(w, "  enabled: %s\n", valueStyle.Render(fmt.Sprint(cfg.EngineLookup.Enabled)))
	fmt.Fprintf(w, "  base_url: %s\n", valueStyle.Render(cfg.EngineLookup.BaseURL))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("providers"))
	fmt.Fprintf(w, "  epic.enabled: %s\n", valueStyle.Render(fmt.Sprint(cfg.Providers.Epic.Enabled)))
	epicPath := cfg.Providers.Epic.DataPath
	if epicPath == "" {
		epicPath = "(platform default)"
	}
	fmt.Fprintf(w, "  epic.data_path: %s\n", valueStyle.Render(epicPath))
	fmt.Fprintf(w, "  manual.enabled: %s\n", valueStyle.Render(fmt.Sprint(cfg.Providers.Manual.Enabled)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("refresh.concurrency"), valueStyle.Render(fmt.Sprint(cfg.Refresh.Concurrency)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("watch.debounce"), valueStyle.Render(cfg.Watch.Debounce.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log.level"), valueStyle.Render(cfg.Log.Level.String()))

	return nil
}

func initConfig(app *App) error {
	if app.cfgFile != "" {
		if fileExistsCheck(app.cfgFile) {
			fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", infoIcon, app.cfgFile)
			return nil
		}
		if err := config.Save(app.cfgFile, config.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", successIcon, app.cfgFile)
		return nil
	}

	cfgPath, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", infoIcon, cfgPath)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", successIcon, cfgPath)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
