package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/stats"
)

const (
	DefaultChartWidth = 30
	DefaultWordWrap   = 100
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // Teal

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

var priorityStyles = map[string]lipgloss.Style{
	core.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	core.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
	core.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
}

type Formatter struct {
	colored    bool
	chartWidth int
	wordWrap   int
}

// NewFormatter creates a formatter. Zero widths fall back to the defaults.
func NewFormatter(colored bool, chartWidth, wordWrap int) *Formatter {
	if chartWidth <= 0 {
		chartWidth = DefaultChartWidth
	}
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	return &Formatter{
		colored:    colored,
		chartWidth: chartWidth,
		wordWrap:   wordWrap,
	}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓ ") + msg
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatStatus(msg string) string {
	return f.render(StatusStyle, msg)
}

// FormatTask renders one task card: id, title, badges and description.
func (f *Formatter) FormatTask(t core.Task, overdue bool) string {
	var sb strings.Builder

	mark := "○"
	if t.Completed {
		mark = "✓"
	}
	sb.WriteString(f.render(AccentStyle, mark))
	sb.WriteString(" ")
	sb.WriteString(f.render(DimStyle, fmt.Sprintf("#%d", t.ID)))
	sb.WriteString(" ")
	sb.WriteString(f.render(HeaderStyle, t.Title))

	badges := []string{f.formatPriority(t.Priority), f.render(AccentStyle, t.Category)}
	if t.DueDate != "" {
		badges = append(badges, "due "+t.DueDate)
	}
	sb.WriteString("  ")
	sb.WriteString(f.render(DimStyle, "(") + strings.Join(badges, f.render(DimStyle, " · ")) + f.render(DimStyle, ")"))

	if overdue {
		sb.WriteString(" ")
		sb.WriteString(f.render(ErrorStyle, "OVERDUE"))
	}

	if t.Description != "" {
		sb.WriteString("\n    ")
		sb.WriteString(f.render(StatusStyle, t.Description))
	}

	return sb.String()
}

func (f *Formatter) formatPriority(p string) string {
	if style, ok := priorityStyles[p]; ok {
		return f.render(style, p)
	}
	return p
}

// FormatActive renders the filtered active list of snap.
func (f *Formatter) FormatActive(snap board.Snapshot) string {
	header := fmt.Sprintf("Tasks (%d of %d)", len(snap.Active), snap.TotalActive)

	lines := []string{f.render(HeaderStyle, header)}
	if !snap.Filter.IsDefault() {
		lines = append(lines, f.FormatFilter(snap.Filter))
	}

	if len(snap.Active) == 0 {
		lines = append(lines, f.render(DimStyle, "  No tasks."))
	}
	for _, t := range snap.Active {
		lines = append(lines, "  "+f.FormatTask(t, snap.IsOverdue(t.ID)))
	}

	return strings.Join(lines, "\n")
}

// FormatCompleted renders the completed list of snap.
func (f *Formatter) FormatCompleted(snap board.Snapshot) string {
	lines := []string{f.render(HeaderStyle, fmt.Sprintf("Completed (%d)", len(snap.Completed)))}

	if len(snap.Completed) == 0 {
		lines = append(lines, f.render(DimStyle, "  Nothing completed yet."))
	}
	for _, t := range snap.Completed {
		lines = append(lines, "  "+f.FormatTask(t, false))
	}

	return strings.Join(lines, "\n")
}

// FormatFilter describes the active criteria.
func (f *Formatter) FormatFilter(c query.Criteria) string {
	category, priority := c.Category, c.Priority
	if category == "" {
		category = query.All
	}
	if priority == "" {
		priority = query.All
	}

	parts := []string{"category=" + category, "priority=" + priority}
	if strings.TrimSpace(c.Search) != "" {
		parts = append(parts, fmt.Sprintf("search=%q", c.Search))
	}
	return f.render(StatusStyle, "  filter: "+strings.Join(parts, " "))
}

// FormatReminders renders reminders in fire-time order.
func (f *Formatter) FormatReminders(reminders []core.Reminder) string {
	lines := []string{f.render(HeaderStyle, fmt.Sprintf("Reminders (%d)", len(reminders)))}

	if len(reminders) == 0 {
		lines = append(lines, f.render(DimStyle, "  No upcoming reminders."))
	}
	for _, r := range reminders {
		line := fmt.Sprintf("  %s %s %s",
			f.render(DimStyle, fmt.Sprintf("#%d", r.ID)),
			f.render(AccentStyle, r.Datetime.Format("2006-01-02 15:04")),
			r.Title)
		if r.IsRecurring() {
			line += " " + f.render(StatusStyle, "🔄 "+r.Recurrence)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// FormatReminderAlert renders a fired reminder for the terminal.
func (f *Formatter) FormatReminderAlert(r core.Reminder) string {
	return f.render(WarningStyle, "⏰ Reminder: ") + r.Title +
		f.render(DimStyle, " ("+r.Datetime.Format("2006-01-02 15:04")+")")
}

// FormatProgress renders "done/total tasks completed (p%)" and a bar.
func (f *Formatter) FormatProgress(p stats.Progress) string {
	text := fmt.Sprintf("%d/%d tasks completed (%d%%)", p.Completed, p.Total, p.Percent)

	filled := p.Percent * f.chartWidth / 100
	bar := f.render(BarStyle, strings.Repeat("█", filled)) +
		f.render(DimStyle, strings.Repeat("░", f.chartWidth-filled))

	return text + "\n" + bar
}

// FormatChart renders a Series as a horizontal bar chart scaled to the
// largest bucket.
func (f *Formatter) FormatChart(s stats.Series) string {
	lines := []string{f.render(HeaderStyle, s.Label)}

	if len(s.Labels) == 0 {
		lines = append(lines, f.render(DimStyle, "  (no data)"))
		return strings.Join(lines, "\n")
	}

	labelWidth := 0
	for _, l := range s.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	peak := s.Max()
	for i, label := range s.Labels {
		v := 0
		if i < len(s.Values) {
			v = s.Values[i]
		}

		n := 0
		if peak > 0 {
			n = v * f.chartWidth / peak
			if v > 0 && n == 0 {
				n = 1
			}
		}

		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(label))
		lines = append(lines, fmt.Sprintf("  %s%s │%s %d",
			label, pad, f.render(BarStyle, strings.Repeat("█", n)), v))
	}

	return strings.Join(lines, "\n")
}

// FormatDashboard combines progress and the three charts.
func (f *Formatter) FormatDashboard(snap board.Snapshot) string {
	sections := []string{
		f.FormatProgress(snap.Progress),
		f.FormatChart(snap.Weekly),
		f.FormatChart(snap.ByCategory),
		f.FormatChart(snap.Upcoming),
	}
	if n := len(snap.Overdue); n > 0 {
		sections = append(sections, f.render(ErrorStyle, fmt.Sprintf("%d overdue task(s)", n)))
	}
	return strings.Join(sections, "\n\n")
}

func (f *Formatter) FormatWelcome(snap board.Snapshot, storeName string) string {
	title := "Taskboard"
	storeLine := "Store: " + storeName
	progressLine := fmt.Sprintf("%d/%d tasks completed, %d reminder(s)",
		snap.Progress.Completed, snap.Progress.Total, len(snap.Reminders))
	helpLine := "Type /help for commands"

	if !f.colored {
		return strings.Join([]string{"", title, storeLine, progressLine, helpLine, ""}, "\n")
	}

	content := strings.Join([]string{
		HeaderStyle.Render(title),
		DimStyle.Render("Store: ") + SuccessStyle.UnsetBold().Render(storeName),
		StatusStyle.UnsetItalic().Render(progressLine),
		"",
		StatusStyle.UnsetItalic().Render(helpLine),
	}, "\n")

	return "\n" + BoxStyle.Render(content) + "\n"
}

type helpEntry struct {
	cmd  string
	desc string
}

type helpSection struct {
	name    string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Tasks", []helpEntry{
		{"/add <title> | <desc> | <due> | <priority> | <category>", "Add a task"},
		{"/done <id>", "Mark a task completed"},
		{"/undo <id>", "Move a task back to active"},
		{"/rm <id>", "Delete a task"},
		{"/show <id>", "Show task details"},
		{"/list", "List active tasks"},
		{"/completed", "List completed tasks"},
	}},
	{"Filter", []helpEntry{
		{"/search <text>", "Filter by text (empty clears)"},
		{"/category [name]", "Filter by category"},
		{"/priority [name]", "Filter by priority"},
		{"/filter clear", "Reset the filter"},
	}},
	{"Reminders", []helpEntry{
		{"/remind <date> <time> <title> [every <RRULE>]", "Add a reminder"},
		{"/unremind <id>", "Delete a reminder"},
		{"/reminders", "List reminders"},
	}},
	{"General", []helpEntry{
		{"/stats", "Progress and charts"},
		{"/reset", "Delete all data"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}},
}

func (f *Formatter) FormatHelp() string {
	lines := []string{"", f.render(HeaderStyle, "Commands")}

	for _, section := range helpSections {
		lines = append(lines, "", f.render(AccentStyle.Bold(true), section.name))
		for _, e := range section.entries {
			lines = append(lines, "  "+f.render(SuccessStyle.UnsetBold(), e.cmd)+"  "+e.desc)
		}
	}

	lines = append(lines, "",
		f.render(StatusStyle, "  Text without a leading / adds a task with that title."),
		f.render(StatusStyle, "  Dates are YYYY-MM-DD, times HH:MM. Ctrl+C or Ctrl+D to exit."),
		"")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns the input prompt showing completed/total.
func (f *Formatter) FormatPrompt(p stats.Progress) string {
	counter := fmt.Sprintf("%d/%d", p.Completed, p.Total)
	if f.colored {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("tasks "+counter) +
			lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true).Render(" > ")
	}
	return "tasks " + counter + " > "
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}
