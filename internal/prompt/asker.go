// Package prompt gathers a request from an operator, one question at a time.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the operator closes the input or presses ctrl+c.
var ErrAborted = errors.New("prompt aborted")

// Asker asks one question and returns the trimmed answer.
type Asker interface {
	Ask(question string) (string, error)
}

// LineAsker reads answers line by line. It is used for pipes and tests.
type LineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	if out == nil {
		out = io.Discard
	}
	return &LineAsker{in: bufio.NewReader(in), out: out}
}

func (a *LineAsker) Ask(question string) (string, error) {
	fmt.Fprintf(a.out, "%s ", question)
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// TerminalAsker renders each question as an interactive text input.
type TerminalAsker struct {
	in  io.Reader
	out io.Writer
}

func NewTerminalAsker(in io.Reader, out io.Writer) *TerminalAsker {
	return &TerminalAsker{in: in, out: out}
}

func (a *TerminalAsker) Ask(question string) (string, error) {
	program := tea.NewProgram(newQuestionModel(question), tea.WithInput(a.in), tea.WithOutput(a.out))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	m, ok := final.(questionModel)
	if !ok || m.aborted {
		return "", ErrAborted
	}
	return strings.TrimSpace(m.input.Value()), nil
}

// NewAsker returns a TerminalAsker when in and out are terminals and a
// LineAsker otherwise.
func NewAsker(in *os.File, out *os.File) Asker {
	if isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(out.Fd()) {
		return NewTerminalAsker(in, out)
	}
	return NewLineAsker(in, out)
}
