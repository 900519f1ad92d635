package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/stats"
)

func plain() *Formatter {
	return NewFormatter(false, 20, 80)
}

func TestFormatProgress(t *testing.T) {
	got := plain().FormatProgress(stats.Progress{Completed: 1, Total: 4, Percent: 25})

	want := "1/4 tasks completed (25%)\n" + strings.Repeat("█", 5) + strings.Repeat("░", 15)
	if got != want {
		t.Errorf("unexpected progress\n got: %q\nwant: %q", got, want)
	}
}

func TestFormatChart(t *testing.T) {
	f := NewFormatter(false, 10, 0)
	s := stats.Series{
		Label:  "Tasks Completed",
		Labels: []string{"Sun", "Mon", "Tue", "Wed"},
		Values: []int{0, 1, 0, 4},
	}

	lines := strings.Split(f.FormatChart(s), "\n")
	if len(lines) != 5 || lines[0] != "Tasks Completed" {
		t.Fatalf("unexpected chart %q", lines)
	}
	if lines[1] != "  Sun │ 0" {
		t.Errorf("empty bucket rendered as %q", lines[1])
	}
	if lines[2] != "  Mon │"+strings.Repeat("█", 2)+" 1" {
		t.Errorf("small bucket rendered as %q", lines[2])
	}
	if lines[4] != "  Wed │"+strings.Repeat("█", 10)+" 4" {
		t.Errorf("peak bucket rendered as %q", lines[4])
	}
}

func TestFormatChartEmpty(t *testing.T) {
	got := plain().FormatChart(stats.Series{Label: "Completed by Category"})
	if !strings.Contains(got, "(no data)") {
		t.Errorf("expected no data marker, got %q", got)
	}
}

func TestFormatTask(t *testing.T) {
	task := core.Task{
		ID:          7,
		Title:       "Pay rent",
		Description: "before noon",
		DueDate:     "2024-01-01",
		Priority:    "high",
		Category:    "Home",
	}

	got := plain().FormatTask(task, true)
	want := "○ #7 Pay rent  (high · Home · due 2024-01-01) OVERDUE\n    before noon"
	if got != want {
		t.Errorf("unexpected card\n got: %q\nwant: %q", got, want)
	}

	task.Completed = true
	task.Description = ""
	if got := plain().FormatTask(task, false); !strings.HasPrefix(got, "✓ #7") || strings.Contains(got, "OVERDUE") {
		t.Errorf("unexpected completed card %q", got)
	}
}

func TestFormatActive(t *testing.T) {
	snap := board.Snapshot{
		Filter:      query.Criteria{Category: "Home", Priority: query.All},
		Active:      []core.Task{{ID: 1, Title: "a", Priority: "low", Category: "Home"}},
		TotalActive: 3,
		Overdue:     []int64{1},
	}

	got := plain().FormatActive(snap)
	for _, want := range []string{"Tasks (1 of 3)", "filter: category=Home priority=All", "#1 a", "OVERDUE"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}

	if got := plain().FormatActive(board.Snapshot{Filter: query.DefaultCriteria()}); !strings.Contains(got, "No tasks.") {
		t.Errorf("expected empty marker, got %q", got)
	}
}

func TestFormatReminders(t *testing.T) {
	f := plain()

	if got := f.FormatReminders(nil); !strings.Contains(got, "No upcoming reminders.") {
		t.Errorf("expected empty marker, got %q", got)
	}

	got := f.FormatReminders([]core.Reminder{{
		ID:         3,
		Title:      "standup",
		Datetime:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Recurrence: "FREQ=DAILY",
	}})
	if !strings.Contains(got, "#3 2024-01-01 09:00 standup 🔄 FREQ=DAILY") {
		t.Errorf("unexpected reminder line %q", got)
	}
}

func TestFormatDashboard(t *testing.T) {
	snap := board.Snapshot{
		Progress:   stats.Progress{Completed: 1, Total: 2, Percent: 50},
		Weekly:     stats.Series{Label: "Tasks Completed", Labels: []string{"Sun"}, Values: []int{1}},
		ByCategory: stats.Series{Label: "Completed by Category"},
		Upcoming:   stats.Series{Label: "Reminders", Labels: []string{"Mon Jan 1"}, Values: []int{0}},
		Overdue:    []int64{4},
	}

	got := plain().FormatDashboard(snap)
	for _, want := range []string{"1/2 tasks completed (50%)", "Tasks Completed", "Completed by Category", "Reminders", "1 overdue task(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in dashboard", want)
		}
	}
}

func TestFormatPromptAndError(t *testing.T) {
	f := plain()
	if got := f.FormatPrompt(stats.Progress{Completed: 2, Total: 5}); got != "tasks 2/5 > " {
		t.Errorf("unexpected prompt %q", got)
	}
	if got := f.FormatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("unexpected error %q", got)
	}
}

func TestFormatHelpListsCommands(t *testing.T) {
	help := plain().FormatHelp()
	for _, cmd := range []string{"/add", "/done", "/undo", "/rm", "/show", "/list", "/completed", "/search",
		"/category", "/priority", "/filter clear", "/remind", "/unremind", "/reminders", "/stats", "/reset", "/quit"} {
		if !strings.Contains(help, cmd) {
			t.Errorf("help is missing %s", cmd)
		}
	}
}

func TestTaskMarkdown(t *testing.T) {
	md := TaskMarkdown(core.Task{ID: 1, Title: "Buy milk", Priority: "low", Category: "Home", DueDate: "2024-01-01", Description: "two liters"}, true)

	for _, want := range []string{"# Buy milk", "**Due:** 2024-01-01 (overdue)", "two liters"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in %q", want, md)
		}
	}

	rendered := plain().FormatTaskDetail(core.Task{ID: 1, Title: "Buy milk", Priority: "low", Category: "Home"}, false)
	if !strings.Contains(rendered, "Buy milk") {
		t.Errorf("rendered detail lost the title: %q", rendered)
	}
}

func TestSelectorSimple(t *testing.T) {
	options := []string{"All", "Home", "Work"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "number", input: "3\n", want: "Work"},
		{name: "empty keeps current", input: "\n", want: "Home"},
		{name: "out of range", input: "9\n", wantErr: true},
		{name: "eof", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewSelector("Category", options, "Home", false).
				WithIO(strings.NewReader(tc.input), &out).
				Run()

			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
			if !strings.Contains(out.String(), " *[2] Home") {
				t.Errorf("expected current option marked, got %q", out.String())
			}
		})
	}
}

func TestSelectorKeys(t *testing.T) {
	s := NewSelector("Priority", []string{"All", "low", "medium", "high"}, "", false)

	s.handleKey('k', strings.NewReader(""))
	if s.selected != 3 {
		t.Errorf("moving up from the top must wrap, got %d", s.selected)
	}
	s.handleKey(27, strings.NewReader("[B"))
	if s.selected != 0 {
		t.Errorf("arrow down must wrap, got %d", s.selected)
	}
	if action := s.handleKey('3', strings.NewReader("")); action != keySelect || s.selected != 2 {
		t.Errorf("digit must select, got action=%d selected=%d", action, s.selected)
	}
	if action := s.handleKey('q', strings.NewReader("")); action != keyCancel {
		t.Errorf("q must cancel")
	}
}
