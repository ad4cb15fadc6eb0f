package ui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// BacktracePrompt is the label shown by PromptBacktrace.
const BacktracePrompt = "Enter the backtrace: "

// ErrPromptCancelled is returned when the user leaves the prompt with
// esc or ctrl+c.
var ErrPromptCancelled = errors.New("prompt cancelled")

// promptModel is a single-line text input that quits on enter.
type promptModel struct {
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newPromptModel(label string) promptModel {
	input := textinput.New()
	input.Prompt = label
	input.PromptStyle = PromptStyle
	input.Placeholder = "Backtrace: 0x400d1234:0x3ffb1230 ..."
	input.CharLimit = 0
	input.Focus()

	return promptModel{input: input}
}

// Init implements tea.Model
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m promptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

// Value returns the trimmed text entered so far.
func (m promptModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// PromptBacktrace runs an interactive prompt on in/out and returns the
// line the user entered.
func PromptBacktrace(in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newPromptModel(BacktracePrompt), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m := final.(promptModel)
	if m.cancelled {
		return "", ErrPromptCancelled
	}
	return m.Value(), nil
}
