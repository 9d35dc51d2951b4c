package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/media"
)

// MediaSweeper runs one reconciliation pass over stored media.
type MediaSweeper interface {
	Run(ctx context.Context) (media.SweepResult, error)
}

// SweepMediaTask removes media directories whose entry no longer exists.
type SweepMediaTask struct {
	Trigger string `json:"trigger"` // "schedule" or "manual"
}

// Config returns the queue configuration for media sweeps.
func (t SweepMediaTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_media",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepMediaProcessor creates a processor function for SweepMediaTask.
func SweepMediaProcessor(sweeper MediaSweeper) backlite.QueueProcessor[SweepMediaTask] {
	return func(ctx context.Context, task SweepMediaTask) error {
		if sweeper == nil {
			return fmt.Errorf("media sweeper not configured")
		}

		result, err := sweeper.Run(ctx)
		if err != nil {
			return fmt.Errorf("sweep media: %w", err)
		}

		log.WithFields(log.Fields{
			"trigger": task.Trigger,
			"removed": len(result.Removed),
		}).Info("[TASK] Media sweep done")
		return nil
	}
}

// NewSweepMediaQueue creates a backlite queue for media sweep tasks.
func NewSweepMediaQueue(sweeper MediaSweeper) backlite.Queue {
	return backlite.NewQueue(SweepMediaProcessor(sweeper))
}
