package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/storage"
)

// DefaultSweepGrace keeps directories modified within the last hour, which
// covers creates whose transaction has not committed yet.
const DefaultSweepGrace = time.Hour

// EntryLookup reports which of the given entry ids exist.
type EntryLookup interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Scanned int
	Skipped int
	Removed []string
	Failed  []string
}

// Sweeper removes media directories whose entry no longer exists.
type Sweeper struct {
	backend storage.Backend
	entries EntryLookup
	grace   time.Duration
	now     func() time.Time
}

func NewSweeper(backend storage.Backend, entries EntryLookup, grace time.Duration) *Sweeper {
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &Sweeper{backend: backend, entries: entries, grace: grace, now: time.Now}
}

// Run performs one sweep. Removal failures do not stop the sweep; they are
// reported in the result and the returned error.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	dirs, err := s.backend.ListDirs(ctx)
	if err != nil {
		return result, fmt.Errorf("list media dirs: %w", err)
	}
	result.Scanned = len(dirs)

	cutoff := s.now().Add(-s.grace)
	settled := storage.FilterDirs(dirs, func(d storage.FileInfo) bool {
		return d.ModifiedAt.Before(cutoff)
	})
	result.Skipped = len(dirs) - len(settled)
	if len(settled) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(settled))
	for _, d := range settled {
		ids = append(ids, d.Name)
	}
	existing, err := s.entries.ExistingIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("look up entries: %w", err)
	}

	var errs []error
	for _, d := range settled {
		if existing[d.Name] {
			continue
		}
		if err := s.backend.DeleteDir(ctx, d.Name); err != nil {
			result.Failed = append(result.Failed, d.Name)
			errs = append(errs, fmt.Errorf("remove %s: %w", d.Name, err))
			continue
		}
		result.Removed = append(result.Removed, d.Name)
		log.WithFields(log.Fields{"entry_id": d.Name, "size": d.Size}).Info("Removed orphaned media")
	}

	log.WithFields(log.Fields{
		"scanned": result.Scanned,
		"skipped": result.Skipped,
		"removed": len(result.Removed),
		"failed":  len(result.Failed),
	}).Info("Media sweep finished")

	return result, errors.Join(errs...)
}
