package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kalambet/pathwise/internal/config"
	"github.com/kalambet/pathwise/internal/forecast"
	"github.com/kalambet/pathwise/internal/logging"
	"github.com/kalambet/pathwise/internal/remote"
	"github.com/kalambet/pathwise/internal/stats"
	"github.com/kalambet/pathwise/internal/storage"
)

// app is the wiring shared by every command that touches the store or
// the remote services.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	stats     *stats.Aggregator
	remote    *remote.Client
	forecasts *forecast.Service
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	rc := remote.New(remote.Options{
		AdvisorURL:  cfg.Services.AdvisorURL,
		BackendURL:  cfg.Services.BackendURL,
		Timeout:     cfg.Services.Timeout,
		MaxFailures: uint32(cfg.Breaker.MaxFailures),
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		stats:     stats.New(store, logger),
		remote:    rc,
		forecasts: forecast.New(rc, cfg.Forecast.CacheSize, cfg.Forecast.CacheTTL, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}
