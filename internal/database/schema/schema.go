// Package schema brings the journal database to the current shape.
//
// Migrations are versioned Go functions run through a goose provider, each in
// its own transaction. Version 1 is the baseline: it creates missing tables
// and patches the two legacy shapes older journal databases may have, an
// entries table without entry_date and a media table without
// file_type/file_size. Databases created from scratch and legacy databases end
// up with the same schema.
//
// # Usage
//
//	if err := schema.Ensure(ctx, sqlDB); err != nil {
//		return err
//	}
package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

// Migrations returns the ordered migration sequence.
func Migrations() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1, &goose.GoFunc{RunTx: baselineUp}, nil),
		goose.NewGoMigration(2, &goose.GoFunc{RunTx: indexesUp}, nil),
	}
}

// Ensure applies every pending migration. It is safe to call on every start.
// A failing version is rolled back and its error returned.
func Ensure(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(Migrations()...),
	)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, result := range results {
		log.WithFields(log.Fields{
			"version":  result.Source.Version,
			"duration": result.Duration,
		}).Info("Applied schema migration")
	}
	return nil
}

// Version returns the highest applied migration version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(Migrations()...),
	)
	if err != nil {
		return 0, fmt.Errorf("create migration provider: %w", err)
	}
	return provider.GetDBVersion(ctx)
}
