//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/rocketman0418/astra-chats/internal/domain"
	"github.com/rocketman0418/astra-chats/internal/infrastructure"
	"github.com/rocketman0418/astra-chats/internal/interfaces"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
