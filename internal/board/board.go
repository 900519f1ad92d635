// Package board is the single state object of the application. It owns the
// task repository and the reminder scheduler, serializes every operation and
// publishes a fresh Snapshot after each mutation.
package board

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/kvstore"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/reminder"
	"github.com/notexe/taskboard/internal/task"
)

// Board owns every collection and serializes all reads and writes to them.
type Board struct {
	mu        sync.Mutex
	store     kvstore.Store
	now       core.Clock
	logger    *slog.Logger
	tasks     *task.Repository
	reminders *reminder.Scheduler
	filter    query.Criteria
	seq       uint64
	current   Snapshot

	subsMu    sync.Mutex
	subs      map[int]func(Snapshot)
	nextSub   int
	published uint64
}

type options struct {
	now    core.Clock
	logger *slog.Logger
	policy reminder.Policy
}

// Option configures Open.
type Option func(*options)

func WithClock(now core.Clock) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithPolicy(policy reminder.Policy) Option {
	return func(o *options) { o.policy = policy }
}

// Open loads the board's collections from store.
func Open(ctx context.Context, store kvstore.Store, opts ...Option) (*Board, error) {
	o := options{
		now:    core.SystemClock,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy: reminder.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	tasks, err := task.NewRepository(ctx, store, o.now)
	if err != nil {
		return nil, err
	}
	reminders, err := reminder.NewScheduler(ctx, store, o.now, o.policy)
	if err != nil {
		return nil, err
	}

	b := &Board{
		store:     store,
		now:       o.now,
		logger:    o.logger,
		tasks:     tasks,
		reminders: reminders,
		filter:    query.DefaultCriteria(),
		subs:      make(map[int]func(Snapshot)),
	}
	b.deriveLocked()

	b.logger.Debug("board opened",
		"tasks", len(tasks.ListActive()),
		"completed", len(tasks.ListCompleted()),
		"reminders", len(reminders.List()))

	return b, nil
}

// AddTask creates an active task.
func (b *Board) AddTask(ctx context.Context, in core.NewTask) (core.Task, error) {
	var t core.Task
	err := b.mutate(func() error {
		var err error
		t, err = b.tasks.Add(ctx, in)
		return err
	})
	if err != nil {
		return core.Task{}, err
	}

	b.logger.Debug("task added", "id", t.ID, "title", t.Title)
	return t, nil
}

// SetCompleted moves a task between the active and completed collections.
func (b *Board) SetCompleted(ctx context.Context, id int64, completed bool) (core.Task, error) {
	var t core.Task
	err := b.mutate(func() error {
		var err error
		t, err = b.tasks.SetCompleted(ctx, id, completed)
		return err
	})
	if err != nil {
		return core.Task{}, err
	}

	b.logger.Debug("task updated", "id", id, "completed", completed)
	return t, nil
}

// DeleteTask removes a task. Unknown ids are ignored.
func (b *Board) DeleteTask(ctx context.Context, id int64) error {
	if err := b.mutate(func() error { return b.tasks.Delete(ctx, id) }); err != nil {
		return err
	}

	b.logger.Debug("task deleted", "id", id)
	return nil
}

// AddReminder schedules a reminder.
func (b *Board) AddReminder(ctx context.Context, in core.NewReminder) (core.Reminder, error) {
	var r core.Reminder
	err := b.mutate(func() error {
		var err error
		r, err = b.reminders.Add(ctx, in)
		return err
	})
	if err != nil {
		return core.Reminder{}, err
	}

	b.logger.Debug("reminder added", "id", r.ID, "at", r.Datetime)
	return r, nil
}

// DeleteReminder removes a reminder. Unknown ids are ignored.
func (b *Board) DeleteReminder(ctx context.Context, id int64) error {
	if err := b.mutate(func() error { return b.reminders.Delete(ctx, id) }); err != nil {
		return err
	}

	b.logger.Debug("reminder deleted", "id", id)
	return nil
}

// CheckDue fires the reminders due at the clock's current time and returns
// them. Subscribers are only notified when something fired.
func (b *Board) CheckDue(ctx context.Context) ([]core.Reminder, error) {
	b.mu.Lock()
	fired, err := b.reminders.CheckDue(ctx, b.now())
	if err != nil || len(fired) == 0 {
		b.mu.Unlock()
		return nil, err
	}
	snap := b.deriveLocked()
	b.mu.Unlock()

	b.publish(snap)
	return fired, nil
}

// Reset deletes every task and reminder. The store is cleared in one call
// before memory is touched, so a failure leaves the board as it was.
func (b *Board) Reset(ctx context.Context) error {
	err := b.mutate(func() error {
		if err := b.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		b.tasks.Forget()
		b.reminders.Forget()
		return nil
	})
	if err != nil {
		return err
	}

	b.logger.Info("board reset")
	return nil
}

// SetFilter changes the criteria applied to the active list.
func (b *Board) SetFilter(c query.Criteria) Snapshot {
	b.mu.Lock()
	b.filter = c
	snap := b.deriveLocked()
	b.mu.Unlock()

	b.publish(snap)
	return snap
}

// Filter returns the current view criteria.
func (b *Board) Filter() query.Criteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Snapshot returns the latest derived view.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Refresh re-derives the view at the current time, for date-dependent
// fields such as overdue markers and the upcoming histogram.
func (b *Board) Refresh() Snapshot {
	b.mu.Lock()
	snap := b.deriveLocked()
	b.mu.Unlock()

	b.publish(snap)
	return snap
}

// Task returns the task with id from either collection.
func (b *Board) Task(id int64) (core.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks.Get(id)
}

// Query filters the active tasks without touching the view criteria.
func (b *Board) Query(c query.Criteria) []core.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return query.Filter(b.tasks.ListActive(), c)
}

// Subscribe registers fn to receive every new Snapshot. fn runs outside the
// board lock.
func (b *Board) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	b.subsMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.subsMu.Unlock()

	return func() {
		b.subsMu.Lock()
		delete(b.subs, id)
		b.subsMu.Unlock()
	}
}

func (b *Board) mutate(fn func() error) error {
	b.mu.Lock()
	if err := fn(); err != nil {
		b.mu.Unlock()
		return err
	}
	snap := b.deriveLocked()
	b.mu.Unlock()

	b.publish(snap)
	return nil
}

func (b *Board) deriveLocked() Snapshot {
	b.seq++
	b.current = derive(b.seq, b.filter,
		b.tasks.ListActive(), b.tasks.ListCompleted(), b.reminders.List(), b.now())
	return b.current
}

func (b *Board) publish(snap Snapshot) {
	b.subsMu.Lock()
	// A slower publisher may arrive after a newer snapshot went out.
	if snap.Seq <= b.published {
		b.subsMu.Unlock()
		return
	}
	b.published = snap.Seq

	subs := make([]func(Snapshot), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.subsMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
