package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/notexe/taskboard/internal/core"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (r *REPL) readConfirm(prompt string) (bool, error) {
	r.rl.SetPrompt(prompt)
	defer r.rl.SetPrompt(r.formatter.FormatPrompt(r.board.Snapshot().Progress))

	line, err := r.rl.Readline()
	if err != nil {
		if isEOF(err) {
			return false, nil
		}
		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// parseAddArgs splits "title | description | due | priority | category".
// Trailing fields are optional.
func parseAddArgs(args string) (core.NewTask, error) {
	if strings.TrimSpace(args) == "" {
		return core.NewTask{}, fmt.Errorf("usage: /add <title> | <description> | <due YYYY-MM-DD> | <priority> | <category>")
	}

	fields := strings.Split(args, "|")
	if len(fields) > 5 {
		return core.NewTask{}, fmt.Errorf("too many fields: expected at most 5, got %d", len(fields))
	}

	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	return core.NewTask{
		Title:       get(0),
		Description: get(1),
		DueDate:     get(2),
		Priority:    strings.ToLower(get(3)),
		Category:    get(4),
	}, nil
}

// parseRemindArgs reads "<date> <time> <title> [every <RRULE>]".
func parseRemindArgs(args string) (core.NewReminder, error) {
	usage := fmt.Errorf("usage: /remind <YYYY-MM-DD> <HH:MM> <title> [every <RRULE>]")

	var recurrence string
	if i := strings.LastIndex(strings.ToLower(args), " every "); i >= 0 {
		recurrence = strings.TrimSpace(args[i+len(" every "):])
		args = args[:i]
		if recurrence == "" {
			return core.NewReminder{}, usage
		}
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		return core.NewReminder{}, usage
	}

	return core.NewReminder{
		Date:       fields[0],
		Time:       fields[1],
		Title:      strings.Join(fields[2:], " "),
		Recurrence: recurrence,
	}, nil
}

func parseID(command, args string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(args), "#")
	if s == "" {
		return 0, fmt.Errorf("usage: %s <id>", command)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args)
	}
	return id, nil
}

func setupReadline(prompt string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              prompt,
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
