// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/modpal/modpal/internal/catalog"
	"github.com/modpal/modpal/internal/config"
	"github.com/modpal/modpal/internal/enginecache"
	"github.com/modpal/modpal/internal/modloader"
	"github.com/modpal/modpal/internal/orchestrator"
	"github.com/modpal/modpal/internal/osopen"
	"github.com/modpal/modpal/internal/paths"
	"github.com/modpal/modpal/internal/pcgamingwiki"
	"github.com/modpal/modpal/internal/provider"
	"github.com/modpal/modpal/internal/refresh"
	"github.com/modpal/modpal/internal/state"
	"github.com/modpal/modpal/pkg/game"
)

type (
	// App is the composition root of the CLI. Command handlers receive it
	// and reach every service through it.
	App struct {
		Config config.Provider
		Opener osopen.Opener
		stdout io.Writer
		stderr io.Writer

		verbose bool
		cfgFile string
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config config.Provider
		Opener osopen.Opener
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is everything one command invocation works with.
	session struct {
		cfg      *config.Config
		logger   *log.Logger
		store    *state.Store
		pipeline *refresh.Pipeline
		orch     *orchestrator.Orchestrator
		failures *failureLog
		summary  refresh.Summary
	}

	failure struct {
		phase  refresh.Phase
		source string
		err    error
	}

	// failureLog is the refresh.Reporter of the CLI: failures are logged as
	// warnings and kept for the refresh summary.
	failureLog struct {
		logger *log.Logger
		mu     sync.Mutex
		items  []failure
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Opener == nil {
		deps.Opener = osopen.NewSystem()
	}
	return &App{
		Config: deps.Config,
		Opener: deps.Opener,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
}

// newLogger builds the charm logger for cfg and installs it as the slog
// default so library packages logging through slog share the same sink.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level.String())
	if err != nil {
		level = log.InfoLevel
	}
	if a.verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "modpal",
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
	return logger
}

// session opens a session for cmd, reporting failures as actionable errors.
func (a *App) session(cmd *cobra.Command) (*session, error) {
	s, err := a.openSession(cmd.Context())
	if err != nil {
		return nil, actionable(err, "load modpal state", "")
	}
	return s, nil
}

// openSession wires the engine from configuration and runs a full refresh.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(cfg)

	store := state.New(state.NotifierFunc(func(e state.Event) {
		logger.Debug("state changed", "event", e.Kind, "payload", e.Payload)
	}))

	client := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithUserAgent(userAgent()),
	)

	loadersDir := paths.LoadersDir(cfg.DataDir)
	buildLoaders := func() modloader.Map {
		return modloader.NewMap(modloader.Options{
			LoadersDir:   loadersDir,
			ResourcesDir: cfg.ResourcesPath(),
			Catalog:      client,
			Opener:       a.Opener,
			Logger:       logger,
		})
	}

	providers, manual := a.buildProviders(cfg)

	failures := &failureLog{logger: logger}
	pipeline := refresh.New(refresh.Options{
		Store:       store,
		Providers:   providers,
		Loaders:     buildLoaders,
		Reporter:    failures,
		Logger:      logger,
		Concurrency: cfg.Refresh.Concurrency,
	})

	var manualGames orchestrator.ManualGames
	if manual != nil {
		manualGames = manual
	}
	orch := orchestrator.New(orchestrator.Options{
		Store:      store,
		Loaders:    pipeline.Loaders,
		Rescanner:  pipeline,
		Manual:     manualGames,
		Opener:     a.Opener,
		LoadersDir: loadersDir,
		Logger:     logger,
	})

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: pipeline,
		orch:     orch,
		failures: failures,
		summary:  summary,
	}, nil
}

func (a *App) buildProviders(cfg *config.Config) (provider.Map, *provider.Manual) {
	modsRoot := paths.InstalledModsDir(cfg.DataDir)

	var (
		all    []provider.Provider
		manual *provider.Manual
	)
	if cfg.Providers.Manual.Enabled {
		manual = provider.NewManual(cfg.DataDir, modsRoot)
		all = append(all, manual)
	}
	if cfg.Providers.Epic.Enabled {
		var lookup enginecache.Lookup
		if cfg.EngineLookup.Enabled {
			wiki := pcgamingwiki.NewClient(
				pcgamingwiki.WithBaseURL(cfg.EngineLookup.BaseURL),
				pcgamingwiki.WithUserAgent(userAgent()),
			)
			lookup = wiki.EngineByTitle
		}
		cachePath := filepath.Join(paths.CacheDir(cfg.DataDir), enginecache.FileName(string(game.ProviderEpic)))
		all = append(all, provider.NewEpic(provider.EpicOptions{
			DataPath:      cmp.Or(cfg.Providers.Epic.DataPath, provider.DefaultEpicDataPath()),
			ModsRoot:      modsRoot,
			Engines:       enginecache.Open(cachePath, lookup),
			EngineLookups: provider.DefaultEngineLookups,
		}))
	}
	return provider.NewMap(all...), manual
}

func userAgent() string {
	return "modpal/" + Version
}

// Report implements refresh.Reporter.
func (f *failureLog) Report(phase refresh.Phase, source string, err error) {
	f.logger.Warn("refresh source failed", "phase", phase, "source", source, "error", err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, failure{phase: phase, source: source, err: err})
}

func (f *failureLog) list() []failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]failure, len(f.items))
	copy(out, f.items)
	return out
}
