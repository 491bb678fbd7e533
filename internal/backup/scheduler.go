// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taibuivan/librarium/internal/platform/validate"
)

// Schedule kinds.
const (
	KindDaily  = "daily"
	KindWeekly = "weekly"
)

// scheduledRunTimeout bounds one scheduled snapshot.
const scheduledRunTimeout = 5 * time.Minute

// Schedule describes the active backup job.
type Schedule struct {
	Kind string `json:"kind"`

	// Day is 0..6 for Monday..Sunday on a weekly schedule.
	Day    *int      `json:"day,omitempty"`
	Hour   int       `json:"hour"`
	Minute int       `json:"minute"`
	Next   time.Time `json:"next"`
}

// Creator takes one backup. [*Service] satisfies it.
type Creator interface {
	Create(ctx context.Context, notes string, scheduled bool) (*Backup, error)
}

// Scheduler runs at most one recurring backup job. It must be started before
// jobs fire and stopped on shutdown.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	creator Creator
	logger  *slog.Logger
	entry   cron.EntryID
	current *Schedule
}

func NewScheduler(creator Creator, logger *slog.Logger) *Scheduler {
	cronLogger := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		creator: creator,
		logger:  logger,
	}
}

func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
}

// Stop halts the cron loop and waits for a running backup to finish.
func (scheduler *Scheduler) Stop() {
	<-scheduler.cron.Stop().Done()
}

// SetDaily replaces the current job with a daily backup at hour:minute.
func (scheduler *Scheduler) SetDaily(hour, minute int) (*Schedule, error) {
	if err := validateTime(hour, minute); err != nil {
		return nil, err
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	return scheduler.replace(spec, Schedule{Kind: KindDaily, Hour: hour, Minute: minute}, "Daily scheduled backup")
}

// SetWeekly replaces the current job with a weekly backup. day counts from
// Monday (0) to Sunday (6).
func (scheduler *Scheduler) SetWeekly(day, hour, minute int) (*Schedule, error) {
	validator := &validate.Validator{}
	validator.Range("day", day, 0, 6)
	validator.Range("hour", hour, 0, 23)
	validator.Range("minute", minute, 0, 59)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// cron counts weekdays from Sunday
	spec := fmt.Sprintf("%d %d * * %d", minute, hour, (day+1)%7)
	return scheduler.replace(spec, Schedule{Kind: KindWeekly, Day: &day, Hour: hour, Minute: minute}, "Weekly scheduled backup")
}

// Clear removes the current job, if any.
func (scheduler *Scheduler) Clear() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.current != nil {
		scheduler.cron.Remove(scheduler.entry)
		scheduler.current = nil
		scheduler.logger.Info("backup_schedule_cleared")
	}
}

// Current returns the active schedule with its next run, or nil.
func (scheduler *Scheduler) Current() *Schedule {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.current == nil {
		return nil
	}
	current := *scheduler.current
	current.Next = scheduler.cron.Entry(scheduler.entry).Schedule.Next(time.Now())
	return &current
}

func (scheduler *Scheduler) replace(spec string, schedule Schedule, notes string) (*Schedule, error) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	entry, err := scheduler.cron.AddFunc(spec, func() { scheduler.run(notes) })
	if err != nil {
		return nil, fmt.Errorf("backup: add schedule %q: %w", spec, err)
	}
	if scheduler.current != nil {
		scheduler.cron.Remove(scheduler.entry)
	}
	scheduler.entry = entry
	scheduler.current = &schedule

	current := schedule
	current.Next = scheduler.cron.Entry(entry).Schedule.Next(time.Now())

	scheduler.logger.Info("backup_schedule_set",
		slog.String("kind", schedule.Kind),
		slog.String("spec", spec),
		slog.Time("next", current.Next),
	)
	return &current, nil
}

func (scheduler *Scheduler) run(notes string) {
	ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
	defer cancel()

	if _, err := scheduler.creator.Create(ctx, notes, true); err != nil {
		scheduler.logger.Error("scheduled_backup_failed", slog.Any("error", err))
	}
}

func validateTime(hour, minute int) error {
	validator := &validate.Validator{}
	validator.Range("hour", hour, 0, 23)
	validator.Range("minute", minute, 0, 59)
	return validator.Err()
}

// cronLogger routes cron's own messages into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (adapter cronLogger) Info(msg string, keysAndValues ...interface{}) {
	adapter.logger.Debug("cron_"+msg, keysAndValues...)
}

func (adapter cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	adapter.logger.Error("cron_"+msg, append(keysAndValues, "error", err)...)
}
