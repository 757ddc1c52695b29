// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jeranaias/genchat/internal/config"
	"github.com/jeranaias/genchat/internal/genclient"
	"github.com/jeranaias/genchat/internal/logging"
	"github.com/jeranaias/genchat/internal/session"
	"github.com/jeranaias/genchat/internal/storage"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	endpoint   string
	mode       string
	storage    string
	verbose    bool
}

// loadConfig loads the config file and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, string, error) {
	path := o.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := o.applyFlags(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// applyFlags overrides cfg with any flags that were set. It is applied
// again to every config reloaded while the TUI runs.
func (o *globalOptions) applyFlags(cfg *config.Config) error {
	if o.endpoint != "" {
		cfg.Endpoint.URL = o.endpoint
	}
	if o.mode != "" {
		cfg.UI.DefaultMode = o.mode
	}
	if o.storage != "" {
		cfg.Storage.Backend = o.storage
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app bundles the components a command needs: config, logger, store,
// endpoint client and session controller.
type app struct {
	cfg        *config.Config
	configPath string
	logger     zerolog.Logger
	store      storage.Store
	client     *genclient.Client
	ctrl       *session.Controller

	logCloser io.Closer
}

// newApp loads configuration and opens the store. It does not restore
// the transcript; commands decide whether they need it.
func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, path, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.Setup(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Verbose: opts.verbose,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	client := genclient.NewClientWithConfig(&genclient.ClientConfig{
		BaseURL: cfg.Endpoint.URL,
		Timeout: cfg.Endpoint.Timeout.Duration,
	})

	ctrl := session.New(session.Options{
		Store:  store,
		Key:    cfg.Storage.Key,
		Client: client,
		Mode:   cfg.Mode(),
		Logger: logger,
	})

	logger.Debug().
		Str("config", path).
		Str("endpoint", cfg.Endpoint.URL).
		Str("storage", cfg.Storage.Backend).
		Msg("genchat started")

	return &app{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		store:      store,
		client:     client,
		ctrl:       ctrl,
		logCloser:  closer,
	}, nil
}

// Close releases the store, idle connections and the log file.
func (a *app) Close() error {
	a.client.CloseIdleConnections()
	err := a.store.Close()
	if cerr := a.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}
