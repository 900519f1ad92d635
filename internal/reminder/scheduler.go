// Package reminder keeps the reminder collection ordered by fire time and
// decides which reminders are due.
package reminder

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/kvstore"
)

// DefaultGraceWindow is how late a due check may run and still fire a
// reminder when catch-up is off.
const DefaultGraceWindow = time.Second

var timeLayouts = []string{"15:04", "15:04:05"}

// Policy controls which overdue reminders fire.
type Policy struct {
	// GraceWindow bounds how far past its datetime a reminder may still fire.
	GraceWindow time.Duration
	// CatchUp fires every overdue reminder regardless of GraceWindow.
	CatchUp bool
}

// DefaultPolicy fires missed reminders on the next check.
func DefaultPolicy() Policy {
	return Policy{GraceWindow: DefaultGraceWindow, CatchUp: true}
}

// Scheduler owns the reminder collection. It is not safe for concurrent use;
// the board serializes access.
type Scheduler struct {
	store     kvstore.Store
	now       core.Clock
	ids       *core.IDGenerator
	policy    Policy
	reminders []core.Reminder
}

// NewScheduler loads the reminder collection from store and sorts it.
func NewScheduler(ctx context.Context, store kvstore.Store, now core.Clock, policy Policy) (*Scheduler, error) {
	reminders, err := kvstore.LoadList[core.Reminder](ctx, store, kvstore.KeyReminders)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	if policy.GraceWindow <= 0 {
		policy.GraceWindow = DefaultGraceWindow
	}

	ids := core.NewIDGenerator(now)
	for _, r := range reminders {
		ids.Observe(r.ID)
	}
	sortByDatetime(reminders)

	return &Scheduler{
		store:     store,
		now:       now,
		ids:       ids,
		policy:    policy,
		reminders: reminders,
	}, nil
}

// Add validates in, inserts the reminder in fire-time order and persists.
func (s *Scheduler) Add(ctx context.Context, in core.NewReminder) (core.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	date := strings.TrimSpace(in.Date)
	clock := strings.TrimSpace(in.Time)

	if title == "" {
		return core.Reminder{}, fmt.Errorf("%w: title is required", core.ErrValidation)
	}
	if date == "" || clock == "" {
		return core.Reminder{}, fmt.Errorf("%w: date and time are required", core.ErrValidation)
	}

	at, err := composeDatetime(date, clock, s.now().Location())
	if err != nil {
		return core.Reminder{}, err
	}

	r := core.Reminder{
		ID:       s.ids.Peek(),
		Title:    title,
		Datetime: at,
	}

	if strings.TrimSpace(in.Recurrence) != "" {
		if _, err := parseRule(in.Recurrence, at); err != nil {
			return core.Reminder{}, fmt.Errorf("%w: %v", core.ErrValidation, err)
		}
		r.Recurrence = normalizeRule(in.Recurrence)
	}

	reminders := append(s.List(), r)
	sortByDatetime(reminders)

	if err := s.commit(ctx, reminders); err != nil {
		return core.Reminder{}, err
	}
	s.ids.Next()

	return r, nil
}

// Delete removes the reminder with id. Deleting an unknown id is not an error.
func (s *Scheduler) Delete(ctx context.Context, id int64) error {
	reminders := make([]core.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.ID != id {
			reminders = append(reminders, r)
		}
	}
	return s.commit(ctx, reminders)
}

// Get returns the reminder with id.
func (s *Scheduler) Get(id int64) (core.Reminder, error) {
	for _, r := range s.reminders {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Reminder{}, fmt.Errorf("%w: reminder %d", core.ErrNotFound, id)
}

// List returns a copy of the reminders in fire-time order.
func (s *Scheduler) List() []core.Reminder {
	out := make([]core.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// CheckDue fires every reminder that is due at now and returns them as they
// were before firing. One-shot reminders are removed; recurring ones move to
// their next occurrence after now.
func (s *Scheduler) CheckDue(ctx context.Context, now time.Time) ([]core.Reminder, error) {
	var fired []core.Reminder
	kept := make([]core.Reminder, 0, len(s.reminders))

	for _, r := range s.reminders {
		if !s.isDue(r, now) {
			kept = append(kept, r)
			continue
		}
		fired = append(fired, r)

		if !r.IsRecurring() {
			continue
		}
		next, ok, err := nextOccurrence(r.Recurrence, r.Datetime, now)
		if err != nil || !ok {
			continue
		}
		r.Datetime = next
		kept = append(kept, r)
	}

	if len(fired) == 0 {
		return nil, nil
	}

	sortByDatetime(kept)
	if err := s.commit(ctx, kept); err != nil {
		return nil, err
	}
	return fired, nil
}

// Forget empties the collection in memory only. Callers clear the store
// first; a missing key loads as an empty list.
func (s *Scheduler) Forget() {
	s.reminders = []core.Reminder{}
}

func (s *Scheduler) isDue(r core.Reminder, now time.Time) bool {
	if r.Datetime.After(now) {
		return false
	}
	if s.policy.CatchUp {
		return true
	}
	return now.Sub(r.Datetime) < s.policy.GraceWindow
}

func (s *Scheduler) commit(ctx context.Context, reminders []core.Reminder) error {
	data, err := kvstore.EncodeList(reminders)
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}
	if err := s.store.Set(ctx, kvstore.KeyReminders, data); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	s.reminders = reminders
	return nil
}

func composeDatetime(date, clock string, loc *time.Location) (time.Time, error) {
	if _, err := time.ParseInLocation(core.DateLayout, date, loc); err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", core.ErrValidation, date)
	}
	for _, layout := range timeLayouts {
		if at, err := time.ParseInLocation(core.DateLayout+" "+layout, date+" "+clock, loc); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM", core.ErrValidation, clock)
}

func sortByDatetime(reminders []core.Reminder) {
	slices.SortStableFunc(reminders, func(a, b core.Reminder) int {
		return a.Datetime.Compare(b.Datetime)
	})
}
