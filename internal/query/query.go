// Package query filters task lists for display.
package query

import (
	"strings"
	"time"

	"github.com/notexe/taskboard/internal/core"
)

// All matches every category or priority.
const All = "All"

// Criteria selects tasks. Empty Category or Priority behaves like All.
type Criteria struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// DefaultCriteria matches every task.
func DefaultCriteria() Criteria {
	return Criteria{Category: All, Priority: All}
}

// IsDefault reports whether c matches every task.
func (c Criteria) IsDefault() bool {
	return strings.TrimSpace(c.Search) == "" && isAll(c.Category) && isAll(c.Priority)
}

// Match reports whether t satisfies every criterion.
func (c Criteria) Match(t core.Task) bool {
	if search := strings.ToLower(strings.TrimSpace(c.Search)); search != "" {
		if !strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			return false
		}
	}
	if !isAll(c.Category) && t.Category != c.Category {
		return false
	}
	if !isAll(c.Priority) && t.Priority != c.Priority {
		return false
	}
	return true
}

// Filter returns the tasks matching c, keeping their order.
func Filter(tasks []core.Task, c Criteria) []core.Task {
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// DistinctCategories returns All followed by each category in first-seen
// order across active and then completed tasks.
func DistinctCategories(active, completed []core.Task) []string {
	seen := map[string]bool{All: true}
	out := []string{All}

	for _, list := range [][]core.Task{active, completed} {
		for _, t := range list {
			if seen[t.Category] {
				continue
			}
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// Overdue returns the tasks due before now's calendar date.
func Overdue(tasks []core.Task, now time.Time) []core.Task {
	var out []core.Task
	for _, t := range tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}
