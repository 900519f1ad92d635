package board

import (
	"slices"
	"time"

	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/stats"
)

// Snapshot is the derived, read-only view of the board after a mutation.
type Snapshot struct {
	Seq         uint64          `json:"-"`
	Filter      query.Criteria  `json:"filter"`
	Active      []core.Task     `json:"active"`
	TotalActive int             `json:"totalActive"`
	Completed   []core.Task     `json:"completed"`
	Reminders   []core.Reminder `json:"reminders"`
	Categories  []string        `json:"categories"`
	Overdue     []int64         `json:"overdue"`
	Progress    stats.Progress  `json:"progress"`
	Weekly      stats.Series    `json:"weekly"`
	ByCategory  stats.Series    `json:"byCategory"`
	Upcoming    stats.Series    `json:"upcoming"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// IsOverdue reports whether the active task with id is past due.
func (s Snapshot) IsOverdue(id int64) bool {
	return slices.Contains(s.Overdue, id)
}

func derive(seq uint64, filter query.Criteria, active, completed []core.Task, reminders []core.Reminder, now time.Time) Snapshot {
	overdue := []int64{}
	for _, t := range query.Overdue(active, now) {
		overdue = append(overdue, t.ID)
	}

	return Snapshot{
		Seq:         seq,
		Filter:      filter,
		Active:      query.Filter(active, filter),
		TotalActive: len(active),
		Completed:   completed,
		Reminders:   reminders,
		Categories:  query.DistinctCategories(active, completed),
		Overdue:     overdue,
		Progress:    stats.ComputeProgress(active, completed),
		Weekly:      stats.WeeklySeries(completed),
		ByCategory:  stats.CategorySeries(completed),
		Upcoming:    stats.UpcomingSeries(reminders, now),
		GeneratedAt: now,
	}
}
