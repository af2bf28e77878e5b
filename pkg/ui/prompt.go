package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the user.
type Prompter struct {
	in  io.Reader
	out io.Writer
	r   *bufio.Reader
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, r: bufio.NewReader(in)}
}

// StdPrompter prompts on the process's standard streams.
func StdPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stderr)
}

// Line asks a question and returns the trimmed answer.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret asks for a value without echoing it when the input is a terminal.
func (p *Prompter) Secret(question string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(question)
	}

	fmt.Fprint(p.out, question)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
