package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// SweepTrigger starts one media sweep, either by enqueueing a task or by
// running it in place.
type SweepTrigger func(ctx context.Context) error

// MediaSweepScheduler runs the orphaned media sweep on a cron schedule.
type MediaSweepScheduler struct {
	schedule string
	trigger  SweepTrigger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewMediaSweepScheduler creates a new scheduler instance
func NewMediaSweepScheduler(schedule string, trigger SweepTrigger) *MediaSweepScheduler {
	return &MediaSweepScheduler{
		schedule: schedule,
		trigger:  trigger,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the sweep job and starts the cron loop. The scheduler
// stops when ctx is cancelled.
func (s *MediaSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, s.runSweep)
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule media sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.WithFields(log.Fields{
		"schedule": s.schedule,
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("Media sweep scheduler started")

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep trigger.
func (s *MediaSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	s.cancelFunc()
	s.isRunning = false

	log.Info("Media sweep scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *MediaSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur
func (s *MediaSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	t := s.cron.Entry(s.entryID).Next
	return &t
}

// runSweep must not take s.mu: Stop holds it while waiting for running jobs.
func (s *MediaSweepScheduler) runSweep() {
	if err := s.trigger(s.ctx); err != nil {
		log.WithError(err).Error("Media sweep: failed to start")
		return
	}
	log.Info("Media sweep: triggered")
}
