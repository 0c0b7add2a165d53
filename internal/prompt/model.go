package prompt

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// questionModel is a single line text input that quits on enter.
type questionModel struct {
	question string
	input    textinput.Model
	done     bool
	aborted  bool
}

func newQuestionModel(question string) questionModel {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2048
	input.Focus()
	return questionModel{question: question, input: input}
}

func (m questionModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m questionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m questionModel) View() string {
	if m.done || m.aborted {
		return m.question + " " + m.input.Value() + "\n"
	}
	return m.question + "\n" + m.input.View() + "\n"
}
