// Package scheduler sends the daily starred-review reminders.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/example/vocabquiz/internal/database"
)

// DefaultReminderTime is when reminders go out, in UTC
const DefaultReminderTime = "09:00"

// ErrUnreachable is returned by a Notifier for owners it cannot deliver
// to, such as CLI profiles. Those owners are skipped quietly.
var ErrUnreachable = errors.New("owner is not reachable")

// Notifier interface for sending notifications
type Notifier interface {
	SendStarredReminder(owner string, starred int) error
}

// OwnerSource lists the owners that have starred terms
type OwnerSource interface {
	Owners(ctx context.Context) ([]database.OwnerBookmarkCount, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	owners    OwnerSource
	notifier  Notifier
	logger    *slog.Logger
}

// New creates a new scheduler instance
func New(owners OwnerSource, notifier Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		owners:    owners,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start schedules the daily reminder at reminderTime (HH:MM) and runs the
// scheduler in the background
func (s *Scheduler) Start(reminderTime string) error {
	if reminderTime == "" {
		reminderTime = DefaultReminderTime
	}
	if _, err := s.scheduler.Every(1).Day().At(reminderTime).Do(s.sendReminders); err != nil {
		return errors.Wrapf(err, "failed to schedule reminders at %s", reminderTime)
	}

	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", "at", reminderTime)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun returns when the reminder job runs next
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

func (s *Scheduler) sendReminders() {
	sent, err := s.RunOnce(context.Background())
	if err != nil {
		s.logger.Error("failed to send reminders", "error", err)
		return
	}
	s.logger.Info("reminders sent", "owners", sent)
}

// RunOnce notifies every owner with starred terms and returns how many
// reminders went out. A failing owner does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	owners, err := s.owners.Owners(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get owners for reminders")
	}

	sent := 0
	for _, o := range owners {
		if o.Starred == 0 {
			continue
		}
		err := s.notifier.SendStarredReminder(o.Owner, o.Starred)
		if errors.Is(err, ErrUnreachable) {
			s.logger.Debug("skipping reminder", "owner", o.Owner, "reason", err)
			continue
		}
		if err != nil {
			s.logger.Error("failed to send reminder", "owner", o.Owner, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
