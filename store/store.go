// Package store opens the relational store and owns the writes that keep the
// schema invariants: card plant lists, live plant values and the monthly
// report sequence.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/conf"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the configured database and migrates the schema.
func Open(settings conf.DatabaseSettings) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch settings.Driver {
	case "sqlite":
		if dir := filepath.Dir(settings.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
		dialector = sqlite.Open(settings.Path + "?_foreign_keys=on&_busy_timeout=5000")
	case "mysql":
		dialector = mysql.Open(settings.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", settings.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.NewGormLogger(logging.Module("store"), slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", settings.Driver, err)
	}

	if settings.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; sqlite locks the whole file anyway
		sqlDB.SetMaxOpenConns(1)

		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
