// Package prompt asks the operator questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrCancelled is returned when input ends before an answer is given.
	ErrCancelled = errors.New("operation cancelled")
	// ErrInvalidSelection is returned when a selection is out of range.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNotInteractive is returned when a question needs a terminal.
	ErrNotInteractive = errors.New("no terminal available for prompt")
)

// Prompter reads answers from in and writes questions to out.
// Prompts block until a line is read; there is no timeout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates a prompter over arbitrary streams.
func New(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// NewTerminal creates a prompter on stdin/stdout that is interactive only
// when stdin is a terminal.
func NewTerminal() *Prompter {
	return New(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// Interactive reports whether a human can answer prompts.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Prompt asks for a string; an empty answer yields def.
func (p *Prompter) Prompt(message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Confirm asks a yes/no question. An empty answer yields def.
// Non-interactive sessions get def without a question being shown.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	if !p.interactive {
		return def, nil
	}

	label := "y/N"
	if def {
		label = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", question, label)

	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	if line == "" {
		return def, nil
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Select asks for a 1-based choice among options and returns its 0-based index.
func (p *Prompter) Select(message string, options []string) (int, error) {
	if !p.interactive {
		return 0, ErrNotInteractive
	}

	fmt.Fprintln(p.out, message)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}
	fmt.Fprint(p.out, "Enter container number: ")

	line, err := p.readLine()
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(line)
	if err != nil || choice < 1 || choice > len(options) {
		return 0, ErrInvalidSelection
	}
	return choice - 1, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
