package database

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/database/schema"
	"github.com/mrlokans/journal/internal/logging"
)

// dsnOptions keeps writers from failing immediately on a locked database file.
const dsnOptions = "?_journal=WAL&_timeout=5000&_busy_timeout=5000"

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the journal database at dbPath and brings its schema up
// to date. A schema failure is returned and the connection closed.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+dsnOptions), &gorm.Config{
		Logger: logging.GormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql database: %w", err)
	}

	if err := schema.Ensure(context.Background(), sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.WithField("path", dbPath).Info("Database initialized")

	return database, nil
}

// Ping checks that the database file is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
