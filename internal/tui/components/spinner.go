package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"walletconn/internal/tui/styles"
)

// Spinner wraps the bubbles spinner and only ticks while active, so an idle
// screen does not redraw
type Spinner struct {
	spinner spinner.Model
	message string
	active  bool
}

// NewSpinner creates a new spinner
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return Spinner{
		spinner: s,
		message: message,
	}
}

// SetMessage updates the spinner message
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Active reports whether the spinner is ticking
func (s Spinner) Active() bool {
	return s.active
}

// Start begins ticking. It returns nil if the spinner is already running.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	return s.spinner.Tick
}

// Stop halts ticking after the next tick message
func (s *Spinner) Stop() {
	s.active = false
}

// Update handles spinner ticks
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.active {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner
func (s Spinner) View() string {
	if s.message == "" {
		return s.spinner.View()
	}
	return s.spinner.View() + " " + s.message
}
