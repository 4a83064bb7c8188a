// Package testing drives bubbletea models from tests without a terminal.
package testing

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// TestHarness provides a framework for testing Bubble Tea models
type TestHarness struct {
	model tea.Model
}

// NewTestHarness creates a new test harness wrapping a Bubble Tea model
func NewTestHarness(model tea.Model) *TestHarness {
	return &TestHarness{model: model}
}

// Model returns the current model state
func (h *TestHarness) Model() tea.Model {
	return h.model
}

// SendKey sends a single key message and returns the resulting command
func (h *TestHarness) SendKey(key string) tea.Cmd {
	return h.SendMsg(KeyMsg(key))
}

// SendKeys sends multiple key messages in sequence
func (h *TestHarness) SendKeys(keys ...string) []tea.Cmd {
	cmds := make([]tea.Cmd, len(keys))
	for i, key := range keys {
		cmds[i] = h.SendKey(key)
	}
	return cmds
}

// SendMsg sends any tea.Msg to the model
func (h *TestHarness) SendMsg(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	return cmd
}

// SendWindowSize sends a window size message
func (h *TestHarness) SendWindowSize(width, height int) tea.Cmd {
	return h.SendMsg(tea.WindowSizeMsg{Width: width, Height: height})
}

// Run executes cmd and feeds the result back into the model. Only use it
// with commands known to return promptly.
func (h *TestHarness) Run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg != nil {
		h.SendMsg(msg)
	}
	return msg
}

// View returns the current view of the model
func (h *TestHarness) View() string {
	return h.model.View()
}

// ViewContains reports whether the rendered view contains every fragment
func (h *TestHarness) ViewContains(fragments ...string) bool {
	view := h.View()
	for _, f := range fragments {
		if !strings.Contains(view, f) {
			return false
		}
	}
	return true
}

// KeyMsg converts a key string to a tea.KeyMsg. Named keys cover what the
// app binds; anything else is sent as runes.
func KeyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
