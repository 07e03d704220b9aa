package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"go.uber.org/zap"
)

// Scheduler runs the end-of-day job once a day at a fixed wall-clock minute.
type Scheduler struct {
	store    database.Store
	notifier Notifier
	loc      *time.Location
	hour     int
	minute   int
	logger   *zap.Logger

	lastRun string
}

func NewScheduler(store database.Store, notifier Notifier, loc *time.Location, hour, minute int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{store: store, notifier: notifier, loc: loc, hour: hour, minute: minute, logger: logger}
}

// Run checks the clock every minute until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started...", zap.String("at", fmt.Sprintf("%02d:%02d", s.hour, s.minute)))
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			s.Tick(ctx, t)
		}
	}
}

// Tick runs the daily job if now is the scheduled minute and it has not run today.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	now = now.In(s.loc)
	if now.Hour() != s.hour || now.Minute() != s.minute {
		return false
	}
	day := now.Format(DateLayout)
	if s.lastRun == day {
		return false
	}
	s.lastRun = day

	s.logger.Info("Triggering scheduled tasks", zap.String("date", day))
	if err := s.RunDaily(ctx, now); err != nil {
		s.logger.Error("daily job failed", zap.Error(err))
	}
	return true
}

// RunDaily stores today's profit snapshot and sends the report.
func (s *Scheduler) RunDaily(ctx context.Context, now time.Time) error {
	records, err := s.store.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	report := BuildDailyReport(records, now.In(s.loc))
	if err := s.store.SaveProfitSnapshot(ctx, report.Snapshot); err != nil {
		return fmt.Errorf("save profit snapshot: %w", err)
	}
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, FormatDailyReport(report)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
