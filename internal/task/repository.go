// Package task keeps the active and completed task collections and persists
// both on every mutation.
package task

import (
	"context"
	"fmt"

	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/kvstore"
)

// Repository owns the active and completed collections. It is not safe for
// concurrent use; the board serializes access.
type Repository struct {
	store     kvstore.Store
	now       core.Clock
	ids       *core.IDGenerator
	active    []core.Task
	completed []core.Task
}

// NewRepository loads both collections from store.
func NewRepository(ctx context.Context, store kvstore.Store, now core.Clock) (*Repository, error) {
	active, err := kvstore.LoadList[core.Task](ctx, store, kvstore.KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	completed, err := kvstore.LoadList[core.Task](ctx, store, kvstore.KeyCompletedTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed tasks: %w", err)
	}

	ids := core.NewIDGenerator(now)
	for i := range active {
		active[i].Completed = false
		ids.Observe(active[i].ID)
	}
	for i := range completed {
		completed[i].Completed = true
		ids.Observe(completed[i].ID)
	}

	return &Repository{
		store:     store,
		now:       now,
		ids:       ids,
		active:    active,
		completed: completed,
	}, nil
}

// Add validates in, appends a new active task and persists.
func (r *Repository) Add(ctx context.Context, in core.NewTask) (core.Task, error) {
	in = in.Normalize()
	if in.Title == "" {
		return core.Task{}, fmt.Errorf("%w: title is required", core.ErrValidation)
	}
	if in.DueDate != "" {
		if _, ok := core.ParseDate(in.DueDate, r.now().Location()); !ok {
			return core.Task{}, fmt.Errorf("%w: due date %q is not YYYY-MM-DD", core.ErrValidation, in.DueDate)
		}
	}

	t := core.Task{
		ID:          r.ids.Peek(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Category:    in.Category,
	}

	active := append(cloneTasks(r.active), t)
	if err := r.commit(ctx, active, r.completed); err != nil {
		return core.Task{}, err
	}
	r.ids.Next()

	return t, nil
}

// SetCompleted moves the task with id to the end of the completed or active
// collection. Setting the state a task already has only re-persists.
func (r *Repository) SetCompleted(ctx context.Context, id int64, completed bool) (core.Task, error) {
	ai := indexOf(r.active, id)
	ci := indexOf(r.completed, id)
	if ai < 0 && ci < 0 {
		return core.Task{}, fmt.Errorf("%w: task %d", core.ErrNotFound, id)
	}

	// Already in the requested state: keep both orders and re-persist.
	if (ai >= 0 && !completed) || (ci >= 0 && completed) {
		var t core.Task
		if ai >= 0 {
			t = r.active[ai]
		} else {
			t = r.completed[ci]
		}
		if err := r.commit(ctx, r.active, r.completed); err != nil {
			return core.Task{}, err
		}
		return t, nil
	}

	active := cloneTasks(r.active)
	done := cloneTasks(r.completed)

	var t core.Task
	if ai >= 0 {
		t = active[ai]
		active = append(active[:ai], active[ai+1:]...)
	} else {
		t = done[ci]
		done = append(done[:ci], done[ci+1:]...)
	}

	t.Completed = completed
	if completed {
		done = append(done, t)
	} else {
		active = append(active, t)
	}

	if err := r.commit(ctx, active, done); err != nil {
		return core.Task{}, err
	}
	return t, nil
}

// Delete removes the task with id from whichever collection holds it.
// Deleting an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	active := removeID(r.active, id)
	done := removeID(r.completed, id)
	return r.commit(ctx, active, done)
}

// Get returns the task with id from either collection.
func (r *Repository) Get(id int64) (core.Task, error) {
	if i := indexOf(r.active, id); i >= 0 {
		return r.active[i], nil
	}
	if i := indexOf(r.completed, id); i >= 0 {
		return r.completed[i], nil
	}
	return core.Task{}, fmt.Errorf("%w: task %d", core.ErrNotFound, id)
}

// ListActive returns a copy of the active tasks in insertion order.
func (r *Repository) ListActive() []core.Task {
	return cloneTasks(r.active)
}

// ListCompleted returns a copy of the completed tasks in completion order.
func (r *Repository) ListCompleted() []core.Task {
	return cloneTasks(r.completed)
}

// Forget empties both collections in memory only. Callers clear the store
// first; missing keys load as empty lists.
func (r *Repository) Forget() {
	r.active = []core.Task{}
	r.completed = []core.Task{}
}

// commit persists both collections in one write and only then replaces the
// in-memory state.
func (r *Repository) commit(ctx context.Context, active, completed []core.Task) error {
	activeData, err := kvstore.EncodeList(active)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	completedData, err := kvstore.EncodeList(completed)
	if err != nil {
		return fmt.Errorf("failed to encode completed tasks: %w", err)
	}

	err = r.store.SetMany(ctx, map[string][]byte{
		kvstore.KeyTasks:          activeData,
		kvstore.KeyCompletedTasks: completedData,
	})
	if err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}

	r.active = active
	r.completed = completed
	return nil
}

func indexOf(tasks []core.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func removeID(tasks []core.Task, id int64) []core.Task {
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func cloneTasks(tasks []core.Task) []core.Task {
	out := make([]core.Task, len(tasks))
	copy(out, tasks)
	return out
}
