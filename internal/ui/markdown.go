package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/notexe/taskboard/internal/core"
)

// TaskMarkdown builds the markdown detail view of t.
func TaskMarkdown(t core.Task, overdue bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", t.Title)

	status := "active"
	if t.Completed {
		status = "completed"
	}
	fmt.Fprintf(&sb, "- **ID:** %d\n", t.ID)
	fmt.Fprintf(&sb, "- **Status:** %s\n", status)
	fmt.Fprintf(&sb, "- **Priority:** %s\n", t.Priority)
	fmt.Fprintf(&sb, "- **Category:** %s\n", t.Category)
	if t.DueDate != "" {
		due := t.DueDate
		if overdue {
			due += " (overdue)"
		}
		fmt.Fprintf(&sb, "- **Due:** %s\n", due)
	}

	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderMarkdown renders content for the terminal, falling back to the raw
// markdown when glamour fails.
func (f *Formatter) RenderMarkdown(content string) string {
	style := glamour.WithStandardStyle("notty")
	if f.colored {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(f.wordWrap),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(rendered)
}

// FormatTaskDetail renders t through glamour.
func (f *Formatter) FormatTaskDetail(t core.Task, overdue bool) string {
	return f.RenderMarkdown(TaskMarkdown(t, overdue))
}
