package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection.
var ErrCancelled = errors.New("cancelled")

// Selector provides an interactive arrow-key navigable menu
type Selector struct {
	question string
	options  []string
	selected int
	colored  bool
	in       io.Reader
	out      io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewSelector creates a selector over options, preselecting current when it
// is one of them.
func NewSelector(question string, options []string, current string, colored bool) *Selector {
	s := &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
	for i, opt := range options {
		if opt == current {
			s.selected = i
		}
	}
	return s
}

// WithIO replaces stdin/stdout. A reader that is not a terminal gets the
// numbered prompt.
func (s *Selector) WithIO(in io.Reader, out io.Writer) *Selector {
	s.in = in
	s.out = out
	return s
}

// Run displays the selector and returns the chosen option.
func (s *Selector) Run() (string, error) {
	if len(s.options) == 0 {
		return "", fmt.Errorf("nothing to select")
	}

	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.runSimple()
	}
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}

	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // Show cursor
	}()

	// Hide cursor
	fmt.Fprint(s.out, "\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}

		switch s.handleKey(b, reader) {
		case keySelect:
			s.clearMenu(totalLines)
			return s.options[s.selected], nil
		case keyCancel:
			s.clearMenu(totalLines)
			return "", ErrCancelled
		}

		s.clearMenu(totalLines)
		s.printMenu()
	}
}

type keyAction int

const (
	keyNone keyAction = iota
	keySelect
	keyCancel
)

func (s *Selector) handleKey(b byte, reader io.ByteReader) keyAction {
	switch b {
	case 13, 10, ' ': // Enter
		return keySelect
	case 3, 'q': // Ctrl+C
		return keyCancel
	case 'j':
		s.moveDown()
	case 'k':
		s.moveUp()
	case 27: // Escape sequence
		b2, _ := reader.ReadByte()
		if b2 != '[' {
			return keyCancel
		}
		b3, _ := reader.ReadByte()
		switch b3 {
		case 'A':
			s.moveUp()
		case 'B':
			s.moveDown()
		}
	default:
		if b >= '1' && b <= '9' {
			idx := int(b - '1')
			if idx < len(s.options) {
				s.selected = idx
				return keySelect
			}
		}
	}
	return keyNone
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	sb.WriteString(s.style(s.questionStyle, s.question))
	sb.WriteString("\r\n")
	sb.WriteString(s.style(s.hintStyle, "[j/k or arrows] move  [enter] select  [q] cancel"))
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		if i == s.selected {
			sb.WriteString(s.style(s.cursorStyle, "> "))
			sb.WriteString(s.style(s.selectedStyle, opt))
		} else {
			sb.WriteString(s.style(s.dimStyle, "  "))
			sb.WriteString(s.style(s.optionStyle, opt))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) style(st lipgloss.Style, text string) string {
	if s.colored {
		return st.Render(text)
	}
	return text
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

// runSimple prints a numbered list and reads one line. An empty answer keeps
// the preselected option.
func (s *Selector) runSimple() (string, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		marker := " "
		if i == s.selected {
			marker = "*"
		}
		fmt.Fprintf(s.out, " %s[%d] %s\n", marker, i+1, opt)
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && input == "" {
		return "", ErrCancelled
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return s.options[s.selected], nil
	}

	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(s.options) {
		return "", fmt.Errorf("invalid choice: %s", input)
	}
	return s.options[idx-1], nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}
