package infrastructure

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rocketman0418/astra-chats/internal/config"
	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/crontab"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database/repository/turnrepo"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database/transaction"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/logger"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/remotelog"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideDatabase provides a database connection. Only the postgres backend
// opens one; the remote backend runs without a local database.
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.ChatLogBackend != config.ChatLogBackendPostgres {
		return nil, nil
	}

	db, err := database.NewDB(cfg.WriteDSN(), cfg.DBPostgresqlRead1DSN)
	if err != nil {
		return nil, err
	}

	// Run migrations if AUTO_MIGRATE is enabled
	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.AutoMigrate(db); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideTransactionDatabase provides a transaction database wrapper
func ProvideTransactionDatabase(db *gorm.DB) *transaction.Database {
	if db == nil {
		return nil
	}
	return transaction.NewDatabase(db)
}

// ProvideTurnRepository selects the turn log implementation from CHAT_LOG_BACKEND.
func ProvideTurnRepository(cfg *config.Config, db *transaction.Database) chat.TurnRepository {
	if cfg.ChatLogBackend == config.ChatLogBackendRemote {
		return remotelog.NewClient(cfg.ChatLogURL, cfg.ChatLogAPIKey, cfg.ChatLogTimeout)
	}
	return turnrepo.NewTurnGormRepository(db)
}

// Infrastructure holds all infrastructure dependencies
type Infrastructure struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(db *gorm.DB, logger zerolog.Logger) *Infrastructure {
	return &Infrastructure{
		DB:     db,
		Logger: logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Database
	ProvideDatabase,
	ProvideTransactionDatabase,

	// Turn log backend
	ProvideTurnRepository,

	// Logger
	logger.GetLogger,

	// Crontab for idle session sweeps
	crontab.NewCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
