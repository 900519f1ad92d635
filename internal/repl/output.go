package repl

import (
	"fmt"
)

func (r *REPL) display(s string) {
	fmt.Fprintln(r.out, s)
	fmt.Fprintln(r.out)
}

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome() {
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.board.Snapshot(), r.storeName))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displaySuccess(msg string) {
	r.display(r.formatter.FormatSuccess(msg))
}

func (r *REPL) displayInfo(msg string) {
	r.display(r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySystem(msg string) {
	r.display(r.formatter.FormatSystem(msg))
}
