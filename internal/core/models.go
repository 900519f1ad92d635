// Package core holds the task and reminder types shared by every layer of the
// board, together with the error kinds and the clock abstraction.
package core

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for task due dates and for the
// date half of a reminder.
const DateLayout = "2006-01-02"

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "General"

// Priority levels offered by the front ends. The core treats priorities as
// opaque strings.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Priorities lists the priority levels in display order.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a unit of work. Completed mirrors which collection holds the task.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Completed   bool   `json:"completed"`
}

// Due parses DueDate in loc. ok is false when the task has no usable due date.
func (t Task) Due(loc *time.Location) (due time.Time, ok bool) {
	return ParseDate(t.DueDate, loc)
}

// IsOverdue reports whether the task's due date is before now's calendar date.
func (t Task) IsOverdue(now time.Time) bool {
	due, ok := t.Due(now.Location())
	if !ok {
		return false
	}
	return due.Before(StartOfDay(now))
}

// NewTask carries the user-supplied fields of a task being created.
type NewTask struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Category    string
}

// Normalize trims every field and fills in the default priority and category.
func (n NewTask) Normalize() NewTask {
	out := NewTask{
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		DueDate:     strings.TrimSpace(n.DueDate),
		Priority:    strings.TrimSpace(n.Priority),
		Category:    strings.TrimSpace(n.Category),
	}
	if out.Priority == "" {
		out.Priority = PriorityMedium
	}
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	return out
}

// Reminder is a titled alert that fires at Datetime. A non-empty Recurrence
// holds an RFC 5545 RRULE and makes the reminder repeat.
type Reminder struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Datetime   time.Time `json:"datetime"`
	Recurrence string    `json:"recurrence,omitempty"`
}

// IsRecurring returns true if this reminder has a recurrence rule
func (r Reminder) IsRecurring() bool {
	return r.Recurrence != ""
}

// NewReminder carries the user-supplied fields of a reminder being created.
// Date uses DateLayout and Time is HH:MM or HH:MM:SS.
type NewReminder struct {
	Title      string
	Date       string
	Time       string
	Recurrence string
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc. Full RFC 3339
// timestamps are accepted too and reduced to their calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if d, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(ts.In(loc)), true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
