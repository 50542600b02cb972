package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func defaultConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab"),
			key.WithHelp("←/→", "toggle"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("212")).
			Padding(0, 1)
	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// confirmModel asks a yes/no question. The answer defaults to no.
type confirmModel struct {
	question string
	keys     confirmKeyMap
	yes      bool
	done     bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question, keys: defaultConfirmKeyMap()}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.yes, m.done = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Quit):
		m.yes, m.done = false, true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, m.keys.Submit):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	yes, no := inactiveStyle.Render("Yes"), activeStyle.Render("No")
	if m.yes {
		yes, no = activeStyle.Render("Yes"), inactiveStyle.Render("No")
	}
	help := helpStyle.Render(fmt.Sprintf("%s • %s • %s",
		m.keys.Toggle.Help().Key+" "+m.keys.Toggle.Help().Desc,
		m.keys.Submit.Help().Key+" "+m.keys.Submit.Help().Desc,
		m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc,
	))
	return lipgloss.JoinVertical(lipgloss.Left,
		questionStyle.Render(m.question),
		lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no),
		help,
	) + "\n"
}

// Confirm runs an interactive yes/no prompt on in/out.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(question), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	m, ok := final.(confirmModel)
	return ok && m.yes, nil
}
