package entrypoint

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/database/tags"
	"github.com/mrlokans/journal/internal/media"
	"github.com/mrlokans/journal/internal/storage"
	"github.com/mrlokans/journal/internal/storage/providers/local"
	"github.com/mrlokans/journal/internal/storage/providers/s3"
)

// App holds the components shared by the server and the CLI commands.
type App struct {
	Database *database.Database
	Backend  storage.Backend
	Media    *media.Store
	Entries  *entries.Repository
	Tags     *tags.Repository
	Sweeper  *media.Sweeper

	// MediaDir is the local media root, empty for remote backends.
	MediaDir string
}

// NewApp opens the database and the configured media backend.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, mediaDir, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	store := media.NewStore(backend)
	repo := entries.NewRepository(db.DB, store)

	return &App{
		Database: db,
		Backend:  backend,
		Media:    store,
		Entries:  repo,
		Tags:     tags.NewRepository(db.DB),
		Sweeper:  media.NewSweeper(backend, repo, cfg.MediaSweep.Grace),
		MediaDir: mediaDir,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.Database.Close()
}

func newBackend(ctx context.Context, cfg *config.Config) (storage.Backend, string, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendLocal, "":
		backend, err := local.New(cfg.Media.Path, cfg.Media.URLPrefix)
		if err != nil {
			return nil, "", err
		}
		log.WithField("path", backend.Root()).Info("Using local media storage")
		return backend, backend.Root(), nil

	case config.MediaBackendS3:
		backend, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, "", fmt.Errorf("init s3 media storage: %w", err)
		}
		log.WithFields(log.Fields{
			"bucket": cfg.S3.Bucket,
			"prefix": cfg.S3.Prefix,
		}).Info("Using S3 media storage")
		return backend, "", nil
	}
	return nil, "", errors.New("unknown media backend: " + string(cfg.Media.Backend))
}
