//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/frontend/httpapi"
	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/session"
	"github.com/cory-johannsen/quartermaster/internal/game/shop"
)

// InitializeServices builds every component from cfg.
func InitializeServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Services, func(), error) {
	wire.Build(
		wire.FieldsOf(new(config.Config), "Storage", "Database", "Telnet", "HTTP", "Game"),
		ProvideStore,
		ProvidePrices,
		ProvideDefaults,
		ProvideRegistry,
		ProvideProcessorFactory,
		ProvideTelnet,
		player.NewRepository,
		shop.New,
		session.NewManager,
		httpapi.NewServer,
		wire.Struct(new(Services), "*"),
	)
	return nil, nil, nil
}
