// Package repl is the interactive terminal shell over a board.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/notexe/taskboard/internal/board"
	"github.com/notexe/taskboard/internal/core"
	"github.com/notexe/taskboard/internal/query"
	"github.com/notexe/taskboard/internal/ui"
)

type REPL struct {
	board     *board.Board
	rl        *readline.Instance
	formatter *ui.Formatter
	colored   bool
	storeName string
	out       io.Writer

	// Replaced in tests.
	confirm func(prompt string) (bool, error)
	choose  func(question string, options []string, current string) (string, error)
}

func NewREPL(b *board.Board, formatter *ui.Formatter, colored bool, storeName string) (*REPL, error) {
	rl, err := setupReadline(formatter.FormatPrompt(b.Snapshot().Progress))
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(b, formatter, rl.Stdout())
	r.rl = rl
	r.colored = colored
	r.storeName = storeName
	r.confirm = r.readConfirm
	return r, nil
}

func newREPL(b *board.Board, formatter *ui.Formatter, out io.Writer) *REPL {
	r := &REPL{
		board:     b,
		formatter: formatter,
		out:       out,
	}
	r.choose = func(question string, options []string, current string) (string, error) {
		return ui.NewSelector(question, options, current, r.colored).Run()
	}
	return r
}

// Stdout is a writer that keeps the prompt intact, for asynchronous output
// such as reminder alerts.
func (r *REPL) Stdout() io.Writer {
	return r.out
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	unsubscribe := r.board.Subscribe(func(snap board.Snapshot) {
		r.rl.SetPrompt(r.formatter.FormatPrompt(snap.Progress))
		r.rl.Refresh()
	})
	defer unsubscribe()

	r.displayWelcome()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			command, args = "/add", input
		}

		quit, err := r.handleCommand(ctx, command, args)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) (quit bool, err error) {
	switch command {
	case "/help", "/h":
		r.displayHelp()

	case "/add", "/a":
		in, err := parseAddArgs(args)
		if err != nil {
			return false, err
		}
		t, err := r.board.AddTask(ctx, in)
		if err != nil {
			return false, err
		}
		r.displaySuccess(fmt.Sprintf("Added task #%d: %s", t.ID, t.Title))

	case "/done", "/undo":
		id, err := parseID(command, args)
		if err != nil {
			return false, err
		}
		t, err := r.board.SetCompleted(ctx, id, command == "/done")
		if err != nil {
			return false, err
		}
		if t.Completed {
			r.displaySuccess(fmt.Sprintf("Completed #%d: %s", t.ID, t.Title))
		} else {
			r.displaySuccess(fmt.Sprintf("Reopened #%d: %s", t.ID, t.Title))
		}

	case "/rm", "/delete":
		id, err := parseID(command, args)
		if err != nil {
			return false, err
		}
		if err := r.board.DeleteTask(ctx, id); err != nil {
			return false, err
		}
		r.displaySystem(fmt.Sprintf("Deleted task #%d.", id))

	case "/show":
		id, err := parseID(command, args)
		if err != nil {
			return false, err
		}
		t, err := r.board.Task(id)
		if err != nil {
			return false, err
		}
		overdue := !t.Completed && r.board.Snapshot().IsOverdue(t.ID)
		r.display(r.formatter.FormatTaskDetail(t, overdue))

	case "/list", "/ls":
		r.display(r.formatter.FormatActive(r.board.Refresh()))

	case "/completed":
		r.display(r.formatter.FormatCompleted(r.board.Snapshot()))

	case "/search":
		c := r.board.Filter()
		c.Search = args
		if args == "" {
			r.displayInfo("Search cleared.")
		}
		r.display(r.formatter.FormatActive(r.board.SetFilter(c)))

	case "/category":
		return false, r.handleCategory(args)

	case "/priority":
		return false, r.handlePriority(args)

	case "/filter":
		if !strings.EqualFold(args, "clear") {
			return false, fmt.Errorf("usage: /filter clear")
		}
		r.board.SetFilter(query.DefaultCriteria())
		r.displaySystem("Filter cleared.")

	case "/remind":
		in, err := parseRemindArgs(args)
		if err != nil {
			return false, err
		}
		rem, err := r.board.AddReminder(ctx, in)
		if err != nil {
			return false, err
		}
		r.displaySuccess(fmt.Sprintf("Reminder #%d set for %s", rem.ID, rem.Datetime.Format("2006-01-02 15:04")))

	case "/unremind":
		id, err := parseID(command, args)
		if err != nil {
			return false, err
		}
		if err := r.board.DeleteReminder(ctx, id); err != nil {
			return false, err
		}
		r.displaySystem(fmt.Sprintf("Deleted reminder #%d.", id))

	case "/reminders":
		r.display(r.formatter.FormatReminders(r.board.Snapshot().Reminders))

	case "/stats", "/dashboard":
		r.display(r.formatter.FormatDashboard(r.board.Refresh()))

	case "/reset":
		return false, r.handleReset(ctx)

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}

	return false, nil
}

func (r *REPL) handleCategory(args string) error {
	c := r.board.Filter()
	categories := r.board.Snapshot().Categories

	if args == "" {
		choice, err := r.choose("Filter by category", categories, c.Category)
		if err != nil {
			return ignoreCancel(err)
		}
		args = choice
	}

	c.Category = matchOption(args, categories)
	r.display(r.formatter.FormatActive(r.board.SetFilter(c)))
	return nil
}

func (r *REPL) handlePriority(args string) error {
	c := r.board.Filter()
	options := append([]string{query.All}, core.Priorities...)

	if args == "" {
		choice, err := r.choose("Filter by priority", options, c.Priority)
		if err != nil {
			return ignoreCancel(err)
		}
		args = choice
	}

	c.Priority = matchOption(args, options)
	r.display(r.formatter.FormatActive(r.board.SetFilter(c)))
	return nil
}

func (r *REPL) handleReset(ctx context.Context) error {
	ok, err := r.confirm("Delete ALL tasks and reminders? Type 'yes' to confirm: ")
	if err != nil {
		return ignoreCancel(err)
	}
	if !ok {
		r.displaySystem("Reset cancelled.")
		return nil
	}

	if err := r.board.Reset(ctx); err != nil {
		return err
	}
	r.displaySystem("All data cleared.")
	return nil
}

// matchOption returns the option equal to v ignoring case, or v itself.
func matchOption(v string, options []string) string {
	for _, opt := range options {
		if strings.EqualFold(opt, v) {
			return opt
		}
	}
	return v
}

func ignoreCancel(err error) error {
	if errors.Is(err, ui.ErrCancelled) {
		return nil
	}
	return err
}
