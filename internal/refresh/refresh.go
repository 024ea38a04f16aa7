// SPDX-License-Identifier: MPL-2.0

// Package refresh resynchronizes the state store with loaders and providers.
//
// A full run goes through six phases, each publishing its collection before
// the next starts: mod loaders, local mods, installed games (from local
// mods only), remote mods, available mods (now including remote data) and
// owned games. Sources inside a phase run concurrently; a failing source is
// reported and contributes nothing.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/modpal/modpal/internal/fanout"
	"github.com/modpal/modpal/internal/modloader"
	"github.com/modpal/modpal/internal/provider"
	"github.com/modpal/modpal/internal/state"
	"github.com/modpal/modpal/pkg/game"
	"github.com/modpal/modpal/pkg/gamemod"
)

// Phases in run order.
const (
	PhaseModLoaders     Phase = "mod-loaders"
	PhaseLocalMods      Phase = "local-mods"
	PhaseInstalledGames Phase = "installed-games"
	PhaseRemoteMods     Phase = "remote-mods"
	PhaseAvailableMods  Phase = "available-mods"
	PhaseOwnedGames     Phase = "owned-games"

	// DefaultConcurrency bounds the sources queried at once within a phase.
	DefaultConcurrency = 8
)

// ErrLoaderConflict is reported when a local and a remote mod share an id
// but name different loaders.
var ErrLoaderConflict = errors.New("mod loader conflict")

type (
	// Phase names one step of a refresh run.
	Phase string

	// Reporter receives the failures a phase swallowed.
	Reporter interface {
		Report(phase Phase, sourceID string, err error)
	}

	// ReporterFunc adapts a function to Reporter.
	ReporterFunc func(phase Phase, sourceID string, err error)

	// PhaseSummary describes one finished phase.
	PhaseSummary struct {
		Phase    Phase
		Count    int
		Failures int
		Duration time.Duration
	}

	// Summary describes a full run.
	Summary struct {
		Phases []PhaseSummary
	}

	// Options configures New.
	Options struct {
		Store     *state.Store
		Providers provider.Map
		// Loaders builds the loader backends from disk layout.
		Loaders     func() modloader.Map
		Reporter    Reporter
		Logger      *log.Logger
		Concurrency int
	}

	// Pipeline runs refresh phases against one store. Runs are serialized.
	Pipeline struct {
		store       *state.Store
		providers   provider.Map
		build       func() modloader.Map
		reporter    Reporter
		logger      *log.Logger
		concurrency int

		runMu   sync.Mutex
		mu      sync.RWMutex
		loaders modloader.Map
	}
)

// Report implements Reporter.
func (f ReporterFunc) Report(phase Phase, sourceID string, err error) { f(phase, sourceID, err) }

// Failures sums failures across phases.
func (s Summary) Failures() int {
	var n int
	for _, p := range s.Phases {
		n += p.Failures
	}
	return n
}

// New returns a Pipeline. Loaders are not built until the first run or
// RebuildLoaders.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = ReporterFunc(func(phase Phase, id string, err error) {
			logger.Warn("refresh source failed", "phase", phase, "source", id, "error", err)
		})
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	build := opts.Loaders
	if build == nil {
		build = func() modloader.Map { return modloader.Map{} }
	}
	return &Pipeline{
		store:       opts.Store,
		providers:   opts.Providers,
		build:       build,
		reporter:    reporter,
		logger:      logger,
		concurrency: concurrency,
		loaders:     modloader.Map{},
	}
}

// Loaders returns the loader backends built by the last RebuildLoaders.
func (p *Pipeline) Loaders() modloader.Map {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaders
}

// Run performs every phase in order. Only store failures abort a run;
// source failures go to the Reporter.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	steps := []struct {
		phase Phase
		run   func(context.Context) (int, int, error)
	}{
		{PhaseModLoaders, p.rebuildLoaders},
		{PhaseLocalMods, p.rescanLocalMods},
		{PhaseInstalledGames, p.syncInstalledGames},
		{PhaseRemoteMods, p.syncRemoteMods},
		{PhaseAvailableMods, p.refreshAvailableMods},
		{PhaseOwnedGames, p.syncOwnedGames},
	}

	var summary Summary
	for _, step := range steps {
		start := time.Now()
		count, failures, err := step.run(ctx)
		if err != nil {
			return summary, fmt.Errorf("refresh %s: %w", step.phase, err)
		}
		summary.Phases = append(summary.Phases, PhaseSummary{
			Phase:    step.phase,
			Count:    count,
			Failures: failures,
			Duration: time.Since(start),
		})
		p.logger.Debug("refresh phase done", "phase", step.phase, "count", count, "failures", failures)
	}
	return summary, nil
}

// RebuildLoaders rebuilds the loader backends and publishes their data.
func (p *Pipeline) RebuildLoaders(ctx context.Context) error {
	_, _, err := p.rebuildLoaders(ctx)
	return err
}

// RescanLocalMods rescans every loader's mods directory, publishes the
// result and recomputes installed games' available mods.
func (p *Pipeline) RescanLocalMods(ctx context.Context) error {
	if _, _, err := p.rescanLocalMods(ctx); err != nil {
		return err
	}
	_, _, err := p.refreshAvailableMods(ctx)
	return err
}

// SyncInstalledGames queries providers for installed games and publishes them.
func (p *Pipeline) SyncInstalledGames(ctx context.Context) error {
	_, _, err := p.syncInstalledGames(ctx)
	return err
}

// SyncRemoteMods fetches every loader catalog, publishes the result and
// recomputes installed games' available mods.
func (p *Pipeline) SyncRemoteMods(ctx context.Context) error {
	if _, _, err := p.syncRemoteMods(ctx); err != nil {
		return err
	}
	_, _, err := p.refreshAvailableMods(ctx)
	return err
}

// SyncOwnedGames queries providers for owned games and publishes them.
func (p *Pipeline) SyncOwnedGames(ctx context.Context) error {
	_, _, err := p.syncOwnedGames(ctx)
	return err
}

func (p *Pipeline) rebuildLoaders(context.Context) (int, int, error) {
	loaders := p.build()

	p.mu.Lock()
	p.loaders = loaders
	p.mu.Unlock()

	return len(loaders), 0, p.store.SetModLoaders(loaders.Data())
}

func (p *Pipeline) rescanLocalMods(ctx context.Context) (int, int, error) {
	loaders := p.Loaders()

	results := fanout.Run(ctx, p.concurrency, loaders.IDs(), func(_ context.Context, id string) (gamemod.LocalMap, error) {
		return loaders[id].LocalMods()
	})
	succeeded, failed := fanout.Partition(results)
	report(p.reporter, PhaseLocalMods, failed)

	// Loader ids are sorted, so a mod id claimed by two loaders resolves
	// to the same loader on every scan.
	mods := gamemod.LocalMap{}
	for _, r := range succeeded {
		for id, mod := range r.Value {
			if _, taken := mods[id]; taken {
				continue
			}
			mods[id] = mod
		}
	}
	return len(mods), len(failed), p.store.SetLocalMods(mods)
}

func (p *Pipeline) syncInstalledGames(ctx context.Context) (int, int, error) {
	results := fanout.Run(ctx, p.concurrency, p.providers.IDs(), func(ctx context.Context, id string) ([]game.InstalledGame, error) {
		return p.providers[game.ProviderID(id)].InstalledGames(ctx)
	})
	succeeded, failed := fanout.Partition(results)
	report(p.reporter, PhaseInstalledGames, failed)

	local, err := p.store.LocalMods()
	if err != nil {
		return 0, len(failed), err
	}
	common := gamemod.ComputeCommonData(local, nil)
	locate := p.Loaders().Locate

	dedupe := game.NewDeduper()
	games := game.InstalledMap{}
	for _, r := range succeeded {
		for _, g := range r.Value {
			if !dedupe.Admit(&g, g.LaunchDescription) {
				continue
			}
			g.RefreshAvailableMods(common, locate)
			games[g.ID] = g
		}
	}
	return len(games), len(failed), p.store.SetInstalledGames(games)
}

func (p *Pipeline) syncRemoteMods(ctx context.Context) (int, int, error) {
	loaders := p.Loaders()

	var (
		mu       sync.Mutex
		failures int
	)
	results := fanout.Run(ctx, p.concurrency, loaders.IDs(), func(ctx context.Context, id string) (gamemod.RemoteMap, error) {
		return loaders[id].RemoteMods(ctx, func(err error) {
			mu.Lock()
			failures++
			mu.Unlock()
			p.reporter.Report(PhaseRemoteMods, id, err)
		}), nil
	})
	succeeded, failed := fanout.Partition(results)
	report(p.reporter, PhaseRemoteMods, failed)

	mods := gamemod.RemoteMap{}
	for _, r := range succeeded {
		for id, mod := range r.Value {
			if _, taken := mods[id]; taken {
				continue
			}
			mods[id] = mod
		}
	}
	if err := p.store.SetRemoteMods(mods); err != nil {
		return 0, failures + len(failed), err
	}

	local, err := p.store.LocalMods()
	if err != nil {
		return len(mods), failures + len(failed), err
	}
	for _, c := range gamemod.LoaderConflicts(local, mods) {
		p.reporter.Report(PhaseRemoteMods, c.ModID, fmt.Errorf("%w: mod %s is local to %s but listed by %s",
			ErrLoaderConflict, c.ModID, c.LocalLoaderID, c.RemoteLoaderID))
	}
	return len(mods), failures + len(failed), nil
}

func (p *Pipeline) refreshAvailableMods(context.Context) (int, int, error) {
	common, err := p.store.CommonModData()
	if err != nil {
		return 0, 0, err
	}

	// Recompute against the live collection so games published while this
	// runs are neither reverted nor resurrected.
	locate := p.Loaders().Locate
	var count int
	err = p.store.UpdateInstalledGames(func(games game.InstalledMap) error {
		for id, g := range games {
			g.RefreshAvailableMods(common, locate)
			games[id] = g
		}
		count = len(games)
		return nil
	})
	return count, 0, err
}

func (p *Pipeline) syncOwnedGames(ctx context.Context) (int, int, error) {
	results := fanout.Run(ctx, p.concurrency, p.providers.IDs(), func(ctx context.Context, id string) ([]game.OwnedGame, error) {
		return p.providers[game.ProviderID(id)].OwnedGames(ctx)
	})
	succeeded, failed := fanout.Partition(results)
	report(p.reporter, PhaseOwnedGames, failed)

	games := game.OwnedMap{}
	for _, r := range succeeded {
		for _, g := range r.Value {
			if _, taken := games[g.ID]; taken {
				continue
			}
			games[g.ID] = g
		}
	}
	return len(games), len(failed), p.store.SetOwnedGames(games)
}

func report[T any](r Reporter, phase Phase, failed []fanout.Result[T]) {
	for _, f := range failed {
		r.Report(phase, f.ID, f.Err)
	}
}
