package database

import (
	"fmt"
	"time"

	"github.com/rocketman0418/astra-chats/internal/infrastructure/logger"
	"github.com/rocketman0418/astra-chats/internal/utils/functional"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

const SchemaName = "astra_chats"

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

var DB *gorm.DB

// Config holds database configuration
type Config struct {
	WriteDSN    string
	ReadDSNs    []string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration.
// When read DSNs are present, reads are routed to the replicas through
// dbresolver and writes stay on the primary.
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.WriteDSN), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   SchemaName + ".",
			SingularTable: false,
		},
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log := logger.GetLogger()
		log.Error().
			Str("error_code", "b7d3f2a9-6e1c-4a8b-9d5f-2c7e0a4b8d16").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	if len(cfg.ReadDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReadDSNs))
		for _, dsn := range cfg.ReadDSNs {
			replicas = append(replicas, postgres.Open(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	log := logger.GetLogger()
	log.Info().Msg("Successfully connected to database")
	DB = db
	return DB, nil
}

// NewDB creates a new database connection using the write DSN and optional
// read replica DSNs.
func NewDB(writeDSN string, readDSNs ...string) (*gorm.DB, error) {
	replicas := functional.Filter(readDSNs, func(dsn string) bool { return dsn != "" })
	return Connect(Config{
		WriteDSN:    writeDSN,
		ReadDSNs:    replicas,
		MaxIdle:     10,
		MaxOpen:     25,
		MaxLifetime: 1 * time.Hour,
		LogLevel:    gormlogger.Silent,
	})
}
