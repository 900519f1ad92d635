package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/kvstore"
)

var errStoreDown = errors.New("store down")

// failingStore delegates reads and fails writes while fail is set.
type failingStore struct {
	kvstore.Store
	fail bool
}

func (s *failingStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SetMany(ctx, entries)
}

func newClock() *core.ManualClock {
	return core.NewManualClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

func newRepository(t *testing.T, store kvstore.Store) *Repository {
	t.Helper()

	repo, err := NewRepository(context.Background(), store, newClock().Now)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func mustAdd(t *testing.T, repo *Repository, in core.NewTask) core.Task {
	t.Helper()

	task, err := repo.Add(context.Background(), in)
	if err != nil {
		t.Fatalf("Add(%+v): %v", in, err)
	}
	return task
}

func assertMembership(t *testing.T, repo *Repository) {
	t.Helper()

	seen := map[int64]bool{}
	for _, task := range repo.ListActive() {
		if task.Completed {
			t.Errorf("active task %d has completed=true", task.ID)
		}
		seen[task.ID] = true
	}
	for _, task := range repo.ListCompleted() {
		if !task.Completed {
			t.Errorf("completed task %d has completed=false", task.ID)
		}
		if seen[task.ID] {
			t.Errorf("task %d is in both collections", task.ID)
		}
	}
}

func TestAddDefaultsAndRoundTrip(t *testing.T) {
	store := kvstore.NewMemory()
	repo := newRepository(t, store)

	task := mustAdd(t, repo, core.NewTask{Title: "  Buy milk  ", DueDate: "2024-01-03"})

	if task.Title != "Buy milk" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Category != core.DefaultCategory || task.Priority != core.PriorityMedium {
		t.Errorf("expected defaults, got category=%q priority=%q", task.Category, task.Priority)
	}
	if task.Completed {
		t.Errorf("new task must be active")
	}

	reopened := newRepository(t, store)
	got := reopened.ListActive()
	if len(got) != 1 || got[0] != task {
		t.Fatalf("expected %+v after reopen, got %+v", task, got)
	}
}

func TestAddValidation(t *testing.T) {
	repo := newRepository(t, kvstore.NewMemory())

	tests := []struct {
		name string
		in   core.NewTask
	}{
		{name: "empty title", in: core.NewTask{Title: ""}},
		{name: "blank title", in: core.NewTask{Title: "   "}},
		{name: "bad due date", in: core.NewTask{Title: "x", DueDate: "tomorrow"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Add(context.Background(), tc.in)
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if n := len(repo.ListActive()); n != 0 {
		t.Errorf("rejected adds must not change state, have %d tasks", n)
	}
}

func TestIDsIncrease(t *testing.T) {
	repo := newRepository(t, kvstore.NewMemory())

	first := mustAdd(t, repo, core.NewTask{Title: "a"})
	second := mustAdd(t, repo, core.NewTask{Title: "b"})

	if second.ID <= first.ID {
		t.Errorf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
}

func TestSetCompletedMovesTask(t *testing.T) {
	repo := newRepository(t, kvstore.NewMemory())
	ctx := context.Background()

	a := mustAdd(t, repo, core.NewTask{Title: "a"})
	b := mustAdd(t, repo, core.NewTask{Title: "b"})

	if _, err := repo.SetCompleted(ctx, a.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	assertMembership(t, repo)

	if active := repo.ListActive(); len(active) != 1 || active[0].ID != b.ID {
		t.Errorf("expected only b active, got %+v", active)
	}
	if done := repo.ListCompleted(); len(done) != 1 || done[0].ID != a.ID {
		t.Errorf("expected a completed, got %+v", done)
	}

	// Un-completing appends to the end of the active list.
	if _, err := repo.SetCompleted(ctx, a.ID, false); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	assertMembership(t, repo)

	active := repo.ListActive()
	if len(active) != 2 || active[0].ID != b.ID || active[1].ID != a.ID {
		t.Errorf("expected [b a], got %+v", active)
	}
}

func TestSetCompletedSameStateIsNoop(t *testing.T) {
	store := kvstore.NewMemory()
	repo := newRepository(t, store)
	ctx := context.Background()

	a := mustAdd(t, repo, core.NewTask{Title: "a"})
	b := mustAdd(t, repo, core.NewTask{Title: "b"})
	c := mustAdd(t, repo, core.NewTask{Title: "c"})
	d := mustAdd(t, repo, core.NewTask{Title: "d"})

	if got, err := repo.SetCompleted(ctx, a.ID, false); err != nil || got != a {
		t.Fatalf("SetCompleted(a, false) = %+v, %v", got, err)
	}
	if got := ids(repo.ListActive()); !equalIDs(got, a.ID, b.ID, c.ID, d.ID) {
		t.Errorf("expected active order [a b c d], got %v", got)
	}

	for _, id := range []int64{c.ID, d.ID} {
		if _, err := repo.SetCompleted(ctx, id, true); err != nil {
			t.Fatalf("SetCompleted(%d, true): %v", id, err)
		}
	}
	if got, err := repo.SetCompleted(ctx, c.ID, true); err != nil || !got.Completed || got.ID != c.ID {
		t.Fatalf("SetCompleted(c, true) = %+v, %v", got, err)
	}
	assertMembership(t, repo)

	if got := ids(repo.ListActive()); !equalIDs(got, a.ID, b.ID) {
		t.Errorf("expected active order [a b], got %v", got)
	}
	if got := ids(repo.ListCompleted()); !equalIDs(got, c.ID, d.ID) {
		t.Errorf("expected completed order [c d], got %v", got)
	}

	reopened := newRepository(t, store)
	if got := ids(reopened.ListCompleted()); !equalIDs(got, c.ID, d.ID) {
		t.Errorf("expected persisted completed order [c d], got %v", got)
	}
}

func ids(tasks []core.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSetCompletedUnknownID(t *testing.T) {
	repo := newRepository(t, kvstore.NewMemory())

	_, err := repo.SetCompleted(context.Background(), 42, true)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newRepository(t, kvstore.NewMemory())
	ctx := context.Background()

	a := mustAdd(t, repo, core.NewTask{Title: "a"})
	b := mustAdd(t, repo, core.NewTask{Title: "b"})
	if _, err := repo.SetCompleted(ctx, b.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete active: %v", err)
	}
	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete completed: %v", err)
	}
	if err := repo.Delete(ctx, 999); err != nil {
		t.Fatalf("Delete unknown must succeed, got %v", err)
	}

	if len(repo.ListActive())+len(repo.ListCompleted()) != 0 {
		t.Errorf("expected both collections empty")
	}
	if _, err := repo.Get(a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFailingStoreLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{Store: kvstore.NewMemory()}
	repo := newRepository(t, store)
	ctx := context.Background()

	a := mustAdd(t, repo, core.NewTask{Title: "a"})
	store.fail = true

	if _, err := repo.Add(ctx, core.NewTask{Title: "b"}); !errors.Is(err, errStoreDown) {
		t.Errorf("Add: expected store error, got %v", err)
	}
	if _, err := repo.SetCompleted(ctx, a.ID, true); !errors.Is(err, errStoreDown) {
		t.Errorf("SetCompleted: expected store error, got %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, errStoreDown) {
		t.Errorf("Delete: expected store error, got %v", err)
	}
	active := repo.ListActive()
	if len(active) != 1 || active[0] != a {
		t.Errorf("expected state untouched, got %+v", active)
	}
	if len(repo.ListCompleted()) != 0 {
		t.Errorf("expected no completed tasks")
	}
}

func TestLoadRepairsCompletedFlag(t *testing.T) {
	store := kvstore.NewMemory()
	ctx := context.Background()

	err := store.SetMany(ctx, map[string][]byte{
		kvstore.KeyTasks:          []byte(`[{"id":1,"title":"a","completed":true}]`),
		kvstore.KeyCompletedTasks: []byte(`[{"id":2,"title":"b","completed":false}]`),
	})
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	repo := newRepository(t, store)
	assertMembership(t, repo)

	next := mustAdd(t, repo, core.NewTask{Title: "c"})
	if next.ID <= 2 {
		t.Errorf("expected new id above loaded ids, got %d", next.ID)
	}
}

func TestForget(t *testing.T) {
	store := kvstore.NewMemory()
	repo := newRepository(t, store)
	ctx := context.Background()

	a := mustAdd(t, repo, core.NewTask{Title: "a"})
	if _, err := repo.SetCompleted(ctx, a.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	repo.Forget()

	if len(repo.ListActive()) != 0 || len(repo.ListCompleted()) != 0 {
		t.Errorf("expected both collections empty")
	}
	if len(newRepository(t, store).ListCompleted()) != 1 {
		t.Errorf("expected Forget to leave the store alone")
	}
}
