// Package app provides the application context and dependency wiring
// for the ipopulse CLI: configuration, logging, the offering store and
// the feed adapters, with commands built on top.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ipomoney/ipopulse/internal/feeds"
	"github.com/ipomoney/ipopulse/internal/store"
	"github.com/ipomoney/ipopulse/pkg/authority"
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/sources"
)

// App holds the application's configuration and shared dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// Store is opened lazily so commands that never touch the
	// database don't create one.
	mu sync.Mutex
	db *store.Store
}

// New creates an App with the given version information, loading
// configuration from flags, environment and config files.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(config)
	logging.SetDefault(logger)

	return &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
	}, nil
}

// Version returns the application version.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Store returns the offering store, opening it on first use.
func (a *App) Store() (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db != nil {
		return a.db, nil
	}

	db, err := store.Open(a.config.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// Close releases the store if it was opened.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close store")
		}
		a.db = nil
	}
}

// loadSources loads the source registry and builds feed adapters plus
// the authority table the registry declares. Without a registry file
// the compiled-in defaults apply.
func (a *App) loadSources() ([]sources.Source, *authority.Table, error) {
	if a.config.SourcesFile == "" {
		return nil, authority.Default(), nil
	}

	reg, err := sources.LoadRegistry(a.config.SourcesFile)
	if err != nil {
		return nil, nil, err
	}

	srcs, err := feeds.Build(reg)
	if err != nil {
		return nil, nil, err
	}

	table := reg.Table()
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}
	return srcs, table, nil
}
