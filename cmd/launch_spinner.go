package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type launchUpdateMsg struct {
	view application.SessionView
	ok   bool
}

type launchSpinnerModel struct {
	spinner spinner.Model
	updates <-chan application.SessionView
	view    application.SessionView
	done    bool
}

func newLaunchSpinnerModel(updates <-chan application.SessionView) launchSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return launchSpinnerModel{
		spinner: s,
		updates: updates,
		view:    application.SessionView{Phase: domain.PhaseLaunching},
	}
}

func (m launchSpinnerModel) next() tea.Cmd {
	return func() tea.Msg {
		view, ok := <-m.updates
		return launchUpdateMsg{view: view, ok: ok}
	}
}

func (m launchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m launchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case launchUpdateMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		m.view = msg.view
		if launchSettled(m.view) {
			m.done = true
			return m, tea.Quit
		}
		return m, m.next()
	default:
		return m, nil
	}
}

func (m launchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	label := fmt.Sprintf("%s %d%%", m.view.Phase, m.view.ProgressPercent)
	if m.view.ProgressLabel != "" {
		label += " " + m.view.ProgressLabel
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), label)
}

// launchSettled reports whether a launch reached running or went back to
// idle.
func launchSettled(view application.SessionView) bool {
	return view.Phase == domain.PhaseRunning || view.Phase == domain.PhaseIdle
}

func runLaunchSpinner(ctx context.Context, output io.Writer, updates <-chan application.SessionView) (application.SessionView, error) {
	p := tea.NewProgram(
		newLaunchSpinnerModel(updates),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.SessionView{}, err
	}

	result, ok := finalModel.(launchSpinnerModel)
	if !ok {
		return application.SessionView{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.view, nil
}
