package domain

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/rocketman0418/astra-chats/internal/config"
	"github.com/rocketman0418/astra-chats/internal/domain/chat"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	ProvideSessionRegistry,
)

// ProvideSessionRegistry provides the owner session registry.
func ProvideSessionRegistry(cfg *config.Config, repo chat.TurnRepository, log zerolog.Logger) *chat.SessionRegistry {
	return chat.NewSessionRegistry(repo, log, cfg.SessionIdleTimeout)
}
