// Package app assembles the service: configuration, stores, the live engine,
// the replay harness, and the HTTP surface.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"volcast/internal/config"
	"volcast/internal/engine"
	"volcast/internal/logger"
	"volcast/internal/market"
	"volcast/internal/replay"
	"volcast/internal/trader"
	httpapi "volcast/internal/transport/http"
)

type App struct {
	cfg     *config.Config
	path    string
	candles *market.Store
	results *replay.ResultStore
	trader  *trader.Service
	replays *replay.Replayer
	server  *httpapi.Server
	watcher *config.Watcher
}

// NewApp builds the dependency graph without starting anything.
func NewApp(cfg *config.Config, configPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	candles, err := market.NewStore(cfg.Data.Root)
	if err != nil {
		return nil, fmt.Errorf("open candle store: %w", err)
	}
	results, err := replay.NewResultStore(cfg.Replay.ResultsRoot)
	if err != nil {
		candles.Close()
		return nil, fmt.Errorf("open result store: %w", err)
	}

	settings := cfg.Engine.Settings()
	var opts []engine.Option
	if cfg.Engine.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Engine.Seed))
	}
	eng, err := engine.New(settings, opts...)
	if err != nil {
		candles.Close()
		results.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}
	svc := trader.NewService(eng)

	replays, err := replay.NewReplayer(replay.ReplayerConfig{
		CandleStore:   candles,
		ResultStore:   results,
		Settings:      settings,
		InitialEquity: cfg.Replay.InitialEquity,
		LotStep:       cfg.Replay.LotStep,
		ChartDir:      cfg.Replay.ChartDir,
		MaxConcurrent: cfg.Replay.MaxConcurrent,
	})
	if err != nil {
		candles.Close()
		results.Close()
		return nil, fmt.Errorf("build replayer: %w", err)
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:     cfg.App.HTTPAddr,
		Trader:   svc,
		Candles:  candles,
		Replayer: replays,
		Results:  results,
	})
	if err != nil {
		candles.Close()
		results.Close()
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:     cfg,
		path:    configPath,
		candles: candles,
		results: results,
		trader:  svc,
		replays: replays,
		server:  server,
	}, nil
}

// Run starts the HTTP server and the config watcher and blocks until ctx is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.close()

	a.replays.SetContext(ctx)

	if a.path != "" {
		watcher, err := config.NewWatcher(a.path)
		if err != nil {
			logger.Warnf("config watcher disabled: %v", err)
		} else {
			a.watcher = watcher
			watcher.Subscribe(func(snap config.Snapshot) {
				if snap.Version <= 1 {
					return // initial snapshot, already applied at build time
				}
				logger.SetLevel(snap.Config.App.LogLevel)
				if err := a.trader.ApplySettings(snap.Config.Engine.Settings()); err != nil {
					logger.Warnf("reloaded engine settings rejected: %v", err)
					return
				}
				logger.Infof("engine settings reloaded (config version %d)", snap.Version)
			})
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Trader exposes the live service for harnesses.
func (a *App) Trader() *trader.Service {
	if a == nil {
		return nil
	}
	return a.trader
}

func (a *App) close() {
	if a.candles != nil {
		if err := a.candles.Close(); err != nil {
			logger.Warnf("closing candle store: %v", err)
		}
	}
	if a.results != nil {
		if err := a.results.Close(); err != nil {
			logger.Warnf("closing result store: %v", err)
		}
	}
}
