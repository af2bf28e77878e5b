package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI color wrappers for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Printer writes CLI messages, colored only when the output is a terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a Printer for out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, color: isTerminal(out)}
}

// Stdout returns a Printer for standard output.
func Stdout() *Printer {
	return NewPrinter(os.Stdout)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) paint(c func(string) string, s string) string {
	if !p.color {
		return s
	}
	return c(s)
}

// Error prints an error message in red
func (p *Printer) Error(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	fmt.Fprintln(p.out, p.paint(Red, msg))
}

// Success prints a success message in green
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.paint(Green, msg))
}

// Info prints a label and value
func (p *Printer) Info(label, value string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.paint(Cyan, label), p.paint(Yellow, value))
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.out, p.paint(Yellow, msg))
}

// Highlight prints a message in magenta
func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.out, p.paint(Magenta, msg))
}

// Hint prints a dimmed message
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.out, p.paint(Dim, msg))
}

// Println prints an unstyled line
func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}
