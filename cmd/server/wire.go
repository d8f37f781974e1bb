//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"waves-server/internal/config"
	"waves-server/internal/domain"
	"waves-server/internal/infrastructure"
	"waves-server/internal/interfaces"
)

func CreateApplication(cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		domain.DomainProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
