// Package scheduler drives the periodic reminder due-check and delivers the
// notifications for reminders that fire.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notexe/taskboard/internal/core"
)

// DueChecker fires the reminders that are due now.
type DueChecker interface {
	CheckDue(ctx context.Context) ([]core.Reminder, error)
}

// Loop calls CheckDue on a fixed interval and notifies for every fired
// reminder.
type Loop struct {
	checker  DueChecker
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Loop. A nil notifier discards notifications.
func New(checker DueChecker, notifier Notifier, interval time.Duration, logger *slog.Logger) *Loop {
	if notifier == nil {
		notifier = MultiNotifier{}
	}
	return &Loop{
		checker:  checker,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks and runs Tick on interval + immediately on start.
// It exits when ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", l.interval)
	}

	l.logger.Debug("scheduler started", "interval", l.interval)

	l.Tick(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("scheduler stopped")
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Start runs the loop in a goroutine. stop cancels it and waits for the
// goroutine to exit.
func (l *Loop) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := l.Run(ctx); err != nil {
			l.logger.Error("scheduler failed", "error", err)
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// Tick runs one due-check and returns the reminders that fired. Notifier
// failures are logged; the reminders still count as fired.
func (l *Loop) Tick(ctx context.Context) []core.Reminder {
	fired, err := l.checker.CheckDue(ctx)
	if err != nil {
		l.logger.Error("due check failed", "error", err)
		return nil
	}

	for _, r := range fired {
		l.logger.Info("reminder fired", "id", r.ID, "title", r.Title, "at", r.Datetime)

		if err := l.notifier.Notify(ctx, r); err != nil {
			l.logger.Error("notification failed", "id", r.ID, "error", err)
		}
	}
	return fired
}
