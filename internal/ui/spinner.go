package ui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type doneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
	err     error
	cancel  context.CancelFunc
}

func newSpinnerModel(label string, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, label: label, cancel: cancel}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancel()
			m.done, m.err = true, context.Canceled
			return m, tea.Quit
		}
	case doneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// Spin shows a spinner labelled label on out while work runs. Pressing
// ctrl+c, esc or q cancels the context passed to work. Spin returns after
// work has returned.
func Spin(ctx context.Context, in io.Reader, out io.Writer, label string, work func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workDone := make(chan error, 1)
	p := tea.NewProgram(newSpinnerModel(label, cancel), tea.WithInput(in), tea.WithOutput(out))
	go func() {
		err := work(ctx)
		workDone <- err
		p.Send(doneMsg{err: err})
	}()

	final, runErr := p.Run()
	cancel()
	workErr := <-workDone
	if runErr != nil {
		return workErr
	}
	if m, ok := final.(spinnerModel); ok && m.err != nil {
		return m.err
	}
	return workErr
}
