package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/kvstore"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/ui"
)

func newTestREPL(t *testing.T) (*REPL, *board.Board, *bytes.Buffer) {
	t.Helper()

	clock := core.NewManualClock(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC))
	b, err := board.Open(context.Background(), kvstore.NewMemory(),
		board.WithClock(clock.Now),
		board.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("board.Open: %v", err)
	}

	var out bytes.Buffer
	r := newREPL(b, ui.NewFormatter(false, 10, 80), &out)
	r.confirm = func(string) (bool, error) { return true, nil }
	r.choose = func(string, []string, string) (string, error) { return "", ui.ErrCancelled }
	return r, b, &out
}

func run(t *testing.T, r *REPL, line string) error {
	t.Helper()

	isCommand, command, args := r.parseCommand(line)
	if !isCommand {
		command, args = "/add", line
	}
	_, err := r.handleCommand(context.Background(), command, args)
	return err
}

func mustRun(t *testing.T, r *REPL, line string) {
	t.Helper()

	if err := run(t, r, line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
}

func TestParseCommand(t *testing.T) {
	r := &REPL{}

	tests := []struct {
		input   string
		isCmd   bool
		command string
		args    string
	}{
		{input: "/add Buy milk", isCmd: true, command: "/add", args: "Buy milk"},
		{input: "/LIST", isCmd: true, command: "/list"},
		{input: "/search   spaced  ", isCmd: true, command: "/search", args: "spaced"},
		{input: "plain text", isCmd: false},
	}

	for _, tc := range tests {
		isCmd, command, args := r.parseCommand(tc.input)
		if isCmd != tc.isCmd || command != tc.command || args != tc.args {
			t.Errorf("parseCommand(%q) = %v %q %q", tc.input, isCmd, command, args)
		}
	}
}

func TestParseAddArgs(t *testing.T) {
	got, err := parseAddArgs("Pay rent | before noon | 2024-01-05 | HIGH | Home")
	if err != nil {
		t.Fatalf("parseAddArgs: %v", err)
	}
	want := core.NewTask{Title: "Pay rent", Description: "before noon", DueDate: "2024-01-05", Priority: "high", Category: "Home"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	got, err = parseAddArgs("Just a title")
	if err != nil || got.Title != "Just a title" || got.Category != "" {
		t.Errorf("unexpected result %+v %v", got, err)
	}

	if _, err := parseAddArgs(""); err == nil {
		t.Errorf("expected usage error for empty args")
	}
	if _, err := parseAddArgs("a|b|c|d|e|f"); err == nil {
		t.Errorf("expected error for too many fields")
	}
}

func TestParseRemindArgs(t *testing.T) {
	tests := []struct {
		args    string
		want    core.NewReminder
		wantErr bool
	}{
		{
			args: "2024-01-01 09:00 Call mom",
			want: core.NewReminder{Date: "2024-01-01", Time: "09:00", Title: "Call mom"},
		},
		{
			args: "2024-01-01 09:00 Daily standup every FREQ=DAILY;BYDAY=MO,TU",
			want: core.NewReminder{Date: "2024-01-01", Time: "09:00", Title: "Daily standup", Recurrence: "FREQ=DAILY;BYDAY=MO,TU"},
		},
		{args: "2024-01-01 09:00", wantErr: true},
		{args: "2024-01-01 09:00 x every ", wantErr: true},
	}

	for _, tc := range tests {
		got, err := parseRemindArgs(tc.args)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseRemindArgs(%q): expected error", tc.args)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("parseRemindArgs(%q) = %+v, %v", tc.args, got, err)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("/done", "#42"); err != nil || id != 42 {
		t.Errorf("expected 42, got %d %v", id, err)
	}
	if _, err := parseID("/done", ""); err == nil {
		t.Errorf("expected usage error")
	}
	if _, err := parseID("/done", "abc"); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestTaskCommands(t *testing.T) {
	r, b, out := newTestREPL(t)

	mustRun(t, r, "/add Pay rent | | 2024-01-01 | high | Home")
	mustRun(t, r, "Water plants")

	snap := b.Snapshot()
	if snap.Progress.Total != 2 {
		t.Fatalf("expected 2 tasks, got %+v", snap.Progress)
	}
	first := snap.Active[0]

	mustRun(t, r, "/done "+itoa(first.ID))
	if got := b.Snapshot().Progress; got.Completed != 1 {
		t.Errorf("expected one completed, got %+v", got)
	}

	out.Reset()
	mustRun(t, r, "/completed")
	if !strings.Contains(out.String(), "Pay rent") {
		t.Errorf("completed list missing task: %q", out.String())
	}

	mustRun(t, r, "/undo "+itoa(first.ID))
	mustRun(t, r, "/rm "+itoa(first.ID))
	if got := b.Snapshot().Progress.Total; got != 1 {
		t.Errorf("expected one task left, got %d", got)
	}

	out.Reset()
	mustRun(t, r, "/list")
	if !strings.Contains(out.String(), "Water plants") {
		t.Errorf("list missing task: %q", out.String())
	}
}

func TestCommandErrors(t *testing.T) {
	r, _, _ := newTestREPL(t)

	if err := run(t, r, "/done 999"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := run(t, r, "/add  | no title"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := run(t, r, "/remind 2024-13-01 09:00 x"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := run(t, r, "/bogus"); err == nil {
		t.Errorf("expected unknown command error")
	}
	if err := run(t, r, "/filter maybe"); err == nil {
		t.Errorf("expected usage error")
	}
}

func TestFilterCommands(t *testing.T) {
	r, b, _ := newTestREPL(t)

	mustRun(t, r, "/add Report | | | high | Work")
	mustRun(t, r, "/add Laundry | | | low | Home")

	mustRun(t, r, "/category work")
	if got := b.Filter().Category; got != "Work" {
		t.Errorf("expected category matched case-insensitively, got %q", got)
	}
	mustRun(t, r, "/priority HIGH")
	if got := b.Filter().Priority; got != "high" {
		t.Errorf("expected priority high, got %q", got)
	}
	if got := len(b.Snapshot().Active); got != 1 {
		t.Errorf("expected one filtered task, got %d", got)
	}

	mustRun(t, r, "/search laundry")
	if got := len(b.Snapshot().Active); got != 0 {
		t.Errorf("expected search to narrow to nothing, got %d", got)
	}

	// A cancelled selector keeps the current filter.
	mustRun(t, r, "/category")
	if got := b.Filter().Category; got != "Work" {
		t.Errorf("cancelled selection changed the filter to %q", got)
	}

	r.choose = func(_ string, options []string, _ string) (string, error) { return options[0], nil }
	mustRun(t, r, "/category")
	if got := b.Filter().Category; got != query.All {
		t.Errorf("expected selector choice All, got %q", got)
	}

	mustRun(t, r, "/filter clear")
	if !b.Filter().IsDefault() {
		t.Errorf("expected default filter, got %+v", b.Filter())
	}
}

func TestReminderCommands(t *testing.T) {
	r, b, out := newTestREPL(t)

	mustRun(t, r, "/remind 2024-01-03 09:00 Call mom")
	mustRun(t, r, "/remind 2024-01-03 07:30 Standup every FREQ=DAILY")

	reminders := b.Snapshot().Reminders
	if len(reminders) != 2 || reminders[0].Title != "Standup" || !reminders[0].IsRecurring() {
		t.Fatalf("unexpected reminders %+v", reminders)
	}

	out.Reset()
	mustRun(t, r, "/reminders")
	if !strings.Contains(out.String(), "Call mom") {
		t.Errorf("reminder list missing entry: %q", out.String())
	}

	mustRun(t, r, "/unremind "+itoa(reminders[1].ID))
	if got := len(b.Snapshot().Reminders); got != 1 {
		t.Errorf("expected one reminder left, got %d", got)
	}
}

func TestStatsAndShow(t *testing.T) {
	r, b, out := newTestREPL(t)

	mustRun(t, r, "/add Old | overdue item | 2024-01-01")
	id := b.Snapshot().Active[0].ID

	out.Reset()
	mustRun(t, r, "/stats")
	if !strings.Contains(out.String(), "0/1 tasks completed (0%)") {
		t.Errorf("dashboard missing progress: %q", out.String())
	}

	out.Reset()
	mustRun(t, r, "/show "+itoa(id))
	if !strings.Contains(out.String(), "Old") || !strings.Contains(out.String(), "overdue") {
		t.Errorf("detail view missing fields: %q", out.String())
	}
}

func TestReset(t *testing.T) {
	r, b, _ := newTestREPL(t)

	mustRun(t, r, "/add a")
	r.confirm = func(string) (bool, error) { return false, nil }
	mustRun(t, r, "/reset")
	if b.Snapshot().Progress.Total != 1 {
		t.Fatalf("declined reset must keep data")
	}

	r.confirm = func(string) (bool, error) { return true, nil }
	mustRun(t, r, "/reset")
	if b.Snapshot().Progress.Total != 0 {
		t.Errorf("confirmed reset must clear data")
	}
}

func TestQuit(t *testing.T) {
	r, _, _ := newTestREPL(t)

	quit, err := r.handleCommand(context.Background(), "/quit", "")
	if err != nil || !quit {
		t.Errorf("expected quit, got %v %v", quit, err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
