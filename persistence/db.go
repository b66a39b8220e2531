// Package persistence anchors domain-event publication to a gorm transaction boundary.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	merr "github.com/next-trace/scg-mediator/contract/errors"
)

// Open connects to the database named by driver ("sqlite" or "postgres").
// SQL logging goes through logger at warn level and above.
func Open(driver, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("open database %q: %w", driver, merr.ErrInvalidArgument)
	}

	gormLog := gormLogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open database %q: %w", driver, err)
		}

		// sqlite has a single writer; in-memory databases live per connection
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
