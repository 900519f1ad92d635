package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/notexe/taskboard/internal/core"
)

// Notifier delivers a fired reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, r core.Reminder) error
}

// Format renders the one-line alert text for r.
func Format(r core.Reminder) string {
	text := fmt.Sprintf("⏰ Reminder: %s (%s)", r.Title, r.Datetime.Format("2006-01-02 15:04"))
	if r.IsRecurring() {
		text += " 🔄 " + r.Recurrence
	}
	return text
}

// WriterNotifier writes one alert line per reminder.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
	// Render overrides Format, e.g. to add terminal styling.
	Render func(core.Reminder) string
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, r core.Reminder) error {
	render := n.Render
	if render == nil {
		render = Format
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintln(n.w, render(r)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}

// MultiNotifier sends to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, r core.Reminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
