// Package app assembles the game's components from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/frontend/handlers"
	"github.com/cory-johannsen/quartermaster/internal/frontend/httpapi"
	"github.com/cory-johannsen/quartermaster/internal/frontend/telnet"
	"github.com/cory-johannsen/quartermaster/internal/game/command"
	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/game/session"
	"github.com/cory-johannsen/quartermaster/internal/game/shop"
	"github.com/cory-johannsen/quartermaster/internal/storage"
	"github.com/cory-johannsen/quartermaster/internal/storage/cache"
	"github.com/cory-johannsen/quartermaster/internal/storage/file"
	"github.com/cory-johannsen/quartermaster/internal/storage/memory"
	"github.com/cory-johannsen/quartermaster/internal/storage/postgres"
)

// Services is the assembled application.
type Services struct {
	Config   config.Config
	Logger   *zap.Logger
	Store    storage.Store
	Prices   *pricing.Table
	Players  *player.Repository
	Shop     *shop.Shop
	Registry *command.Registry
	Sessions *session.Manager
	Telnet   *telnet.Acceptor
	HTTP     *httpapi.Server
}

// NewProcessor builds a standalone Processor outside any session manager,
// for single-user frontends.
func (s *Services) NewProcessor(opts ...command.Option) *command.Processor {
	return command.NewProcessor(s.Registry, s.Players, s.Shop, s.Logger, opts...)
}

// ProvideStore opens the configured backend and wraps it in the read cache
// when storage.cache_size is positive.
//
// Postcondition: the returned cleanup releases backend resources.
func ProvideStore(ctx context.Context, sc config.StorageConfig, dc config.DatabaseConfig, logger *zap.Logger) (storage.Store, func(), error) {
	var (
		backend storage.Store
		cleanup = func() {}
	)
	switch sc.Backend {
	case config.BackendMemory:
		backend = memory.New()
	case config.BackendFile:
		fs, err := file.New(sc.Dir)
		if err != nil {
			return nil, nil, err
		}
		backend = fs
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, dc)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		backend = postgres.NewKVStore(pool.DB())
		cleanup = pool.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
	logger.Info("storage opened", zap.String("backend", sc.Backend), zap.Int("cache_size", sc.CacheSize))

	if sc.CacheSize > 0 {
		return cache.New(backend, sc.CacheSize, sc.CacheTTL), cleanup, nil
	}
	return backend, cleanup, nil
}

// ProvidePrices loads game.pricing_file, or the built-in table when unset.
func ProvidePrices(gc config.GameConfig) (*pricing.Table, error) {
	if gc.PricingFile == "" {
		return pricing.Default(), nil
	}
	return pricing.Load(gc.PricingFile)
}

// ProvideDefaults maps game settings to new-player stats.
func ProvideDefaults(gc config.GameConfig) player.Defaults {
	return player.Defaults{Level: gc.StartingLevel, Gold: gc.StartingGold}
}

// ProvideRegistry returns the built-in command registry.
func ProvideRegistry() *command.Registry {
	return command.DefaultRegistry()
}

// ProvideProcessorFactory binds Processor construction to shared services.
func ProvideProcessorFactory(reg *command.Registry, players *player.Repository, sh *shop.Shop, logger *zap.Logger) session.ProcessorFactory {
	return func(opts ...command.Option) *command.Processor {
		return command.NewProcessor(reg, players, sh, logger, opts...)
	}
}

// ProvideTelnet builds the telnet acceptor around a GameHandler.
func ProvideTelnet(tc config.TelnetConfig, sessions *session.Manager, logger *zap.Logger) *telnet.Acceptor {
	return telnet.NewAcceptor(tc, handlers.NewGameHandler(sessions, logger), logger)
}
