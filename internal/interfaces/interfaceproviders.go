package interfaces

import (
	"github.com/google/wire"

	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
