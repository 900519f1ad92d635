// Package stats derives the chart and progress aggregates shown on the
// dashboard.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/notexe/taskboard/internal/core"
)

// UpcomingDays is the number of calendar days covered by Upcoming.
const UpcomingDays = 7

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Series is a labeled histogram ready for charting.
type Series struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Total sums every bucket.
func (s Series) Total() int {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	return total
}

// Max returns the largest bucket, or 0 for an empty series.
func (s Series) Max() int {
	max := 0
	for _, v := range s.Values {
		if v > max {
			max = v
		}
	}
	return max
}

// Progress summarizes how many tasks are done.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Weekly counts completed tasks per weekday of their due date, Sunday first.
// Tasks without a parseable due date are skipped.
func Weekly(completed []core.Task) [7]int {
	var buckets [7]int
	for _, t := range completed {
		due, ok := t.Due(time.UTC)
		if !ok {
			continue
		}
		buckets[due.Weekday()]++
	}
	return buckets
}

// WeeklySeries wraps Weekly for charting.
func WeeklySeries(completed []core.Task) Series {
	buckets := Weekly(completed)
	return Series{
		Label:  "Tasks Completed",
		Labels: weekdayLabels[:],
		Values: buckets[:],
	}
}

// ByCategory counts completed tasks per category.
func ByCategory(completed []core.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range completed {
		counts[t.Category]++
	}
	return counts
}

// CategorySeries wraps ByCategory for charting, with labels sorted.
func CategorySeries(completed []core.Task) Series {
	counts := ByCategory(completed)

	labels := make([]string, 0, len(counts))
	for category := range counts {
		labels = append(labels, category)
	}
	sort.Strings(labels)

	values := make([]int, len(labels))
	for i, category := range labels {
		values[i] = counts[category]
	}

	return Series{Label: "Completed by Category", Labels: labels, Values: values}
}

// Upcoming counts reminders per calendar day for the seven days starting at
// now's date, in now's location. Time of day is ignored.
func Upcoming(reminders []core.Reminder, now time.Time) [UpcomingDays]int {
	var buckets [UpcomingDays]int
	start := core.StartOfDay(now)

	for _, r := range reminders {
		for i := 0; i < UpcomingDays; i++ {
			if core.SameDay(r.Datetime, start.AddDate(0, 0, i), now.Location()) {
				buckets[i]++
				break
			}
		}
	}
	return buckets
}

// UpcomingSeries wraps Upcoming for charting, labeling each day.
func UpcomingSeries(reminders []core.Reminder, now time.Time) Series {
	buckets := Upcoming(reminders, now)
	start := core.StartOfDay(now)

	labels := make([]string, UpcomingDays)
	for i := range labels {
		labels[i] = start.AddDate(0, 0, i).Format("Mon Jan 2")
	}

	return Series{Label: "Reminders", Labels: labels, Values: buckets[:]}
}

// ComputeProgress returns the completion summary. Percent is 0 when there are
// no tasks.
func ComputeProgress(active, completed []core.Task) Progress {
	done := len(completed)
	total := len(active) + done

	p := Progress{Completed: done, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(done) / float64(total) * 100))
	}
	return p
}
