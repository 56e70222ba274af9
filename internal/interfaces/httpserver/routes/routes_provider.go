package routes

import (
	"github.com/google/wire"

	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/routes/v1"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/routes/v1/chat"
)

var RouteProvider = wire.NewSet(
	// Handlers
	chathandler.NewChatHandler,

	// Routes
	v1.NewV1Route,
	chat.NewChatRoute,
)
