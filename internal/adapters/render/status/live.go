package status

import (
	"strings"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LiveActions are invoked from key presses. A nil action disables its key.
type LiveActions struct {
	Authenticate func() error
	Launch       func() error
}

type sessionUpdateMsg struct {
	view application.SessionView
}

type updatesClosedMsg struct{}

type actionDoneMsg struct {
	name string
	err  error
}

type liveKeys struct {
	authenticate key.Binding
	launch       key.Binding
	quit         key.Binding
}

func newLiveKeys() liveKeys {
	return liveKeys{
		authenticate: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "sign in")),
		launch:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// LiveModel follows session updates until the stream closes or the user
// quits.
type LiveModel struct {
	view    application.SessionView
	updates <-chan application.SessionView
	opts    RenderOptions
	actions LiveActions
	keys    liveKeys
	spinner spinner.Model
	styles  styles
	notice  string
	pending string
	closed  bool
}

func NewLiveModel(initial application.SessionView, updates <-chan application.SessionView, opts RenderOptions, actions LiveActions) LiveModel {
	return LiveModel{
		view:    initial,
		updates: updates,
		opts:    opts,
		actions: actions,
		keys:    newLiveKeys(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		styles: newStyles(),
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

func waitForUpdate(updates <-chan application.SessionView) tea.Cmd {
	return func() tea.Msg {
		view, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return sessionUpdateMsg{view: view}
	}
}

func runAction(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{name: name, err: fn()}
	}
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case sessionUpdateMsg:
		m.view = msg.view
		return m, waitForUpdate(m.updates)
	case updatesClosedMsg:
		m.closed = true
		return m, tea.Quit
	case actionDoneMsg:
		if m.pending == msg.name {
			m.pending = ""
		}
		if msg.err != nil {
			m.notice = msg.name + " failed: " + msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m LiveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.authenticate) && m.actions.Authenticate != nil && m.pending == "":
		m.pending = "sign in"
		return m, runAction(m.pending, m.actions.Authenticate)
	case key.Matches(msg, m.keys.launch) && m.actions.Launch != nil && m.pending == "":
		m.pending = "launch"
		return m, runAction(m.pending, m.actions.Launch)
	default:
		return m, nil
	}
}

func (m LiveModel) View() string {
	parts := []string{renderView(m.view, m.opts, m.styles)}

	if m.pending != "" || m.view.Phase.Launching() {
		label := m.pending
		if label == "" {
			label = string(m.view.Phase)
		}
		parts = append(parts, m.styles.section.Render(m.spinner.View()+" "+label+"..."))
	}
	if m.notice != "" {
		parts = append(parts, m.styles.failure.Render(m.notice))
	}
	if m.closed {
		parts = append(parts, m.styles.empty.Render("connection to host closed"))
	}

	parts = append(parts, m.styles.section.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m LiveModel) helpLine() string {
	bindings := []key.Binding{}
	if m.actions.Authenticate != nil {
		bindings = append(bindings, m.keys.authenticate)
	}
	if m.actions.Launch != nil {
		bindings = append(bindings, m.keys.launch)
	}
	bindings = append(bindings, m.keys.quit)

	help := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(help, " • "))
}

// Session returns the latest session the model has seen.
func (m LiveModel) Session() application.SessionView {
	return m.view
}
