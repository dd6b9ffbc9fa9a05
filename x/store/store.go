// Package store opens the ledger database and keeps its schema
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/kindredkeeper/keeper/core"
	"github.com/kindredkeeper/keeper/x/util"
)

var tracer = otel.Tracer("store")

// Open connects to the configured database and creates the schema if absent
func Open(config util.Server) (*gorm.DB, error) {

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch config.Driver {
	case "", "postgres":
		dialector = postgres.Open(config.Dsn)
	case "sqlite":
		dialector = sqlite.Open(config.Dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	err = db.Use(tracing.NewPlugin(
		tracing.WithDBName(dialector.Name()),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to setup tracing plugin: %w", err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// a single connection keeps the foreign key pragma and serializes writers
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the character and transaction tables. It is idempotent.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&core.Character{},
		&core.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks the database connection
func Ping(ctx context.Context, db *gorm.DB) error {
	ctx, span := tracer.Start(ctx, "Store.Ping")
	defer span.End()

	sqlDB, err := db.DB()
	if err != nil {
		span.RecordError(err)
		return err
	}
	return sqlDB.PingContext(ctx)
}
