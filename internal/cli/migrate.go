package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/schema"
)

// MigrateCommand brings the database schema up to date and reports the
// resulting version.
type MigrateCommand struct {
	DatabasePath string

	cfg *config.Config
	out io.Writer
}

func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Apply pending schema migrations. Existing data is upgraded in place.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *MigrateCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql database: %w", err)
	}

	version, err := schema.Version(context.Background(), sqlDB)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Database %s is at schema version %d\n", cmd.DatabasePath, version)
	return nil
}
