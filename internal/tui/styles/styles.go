package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	Primary    = lipgloss.Color("#7C3AED") // Purple
	Secondary  = lipgloss.Color("#10B981") // Green
	Accent     = lipgloss.Color("#F59E0B") // Amber
	Danger     = lipgloss.Color("#EF4444") // Red
	Info       = lipgloss.Color("#3B82F6") // Blue
	MutedColor = lipgloss.Color("#6B7280") // Gray
	Subtle     = lipgloss.Color("#374151") // Dark gray
	ModalBg    = lipgloss.Color("#1a1a2e")

	// Muted style (for rendering)
	Muted = lipgloss.NewStyle().
		Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Connection status badges
	StatusConnected = lipgloss.NewStyle().
			Foreground(Secondary).
			SetString("●")

	StatusDisconnected = lipgloss.NewStyle().
				Foreground(MutedColor).
				SetString("○")

	StatusConnecting = lipgloss.NewStyle().
				Foreground(Accent).
				SetString("◉")

	// Address shown in monospace-ish bold
	Address = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	// Help bar
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpText = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Modal
	Modal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(ModalBg).
		Padding(1, 2)

	AddressCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Background(ModalBg).
			Padding(0, 1)

	WarningBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Foreground(Accent).
			Background(ModalBg).
			Padding(0, 1)

	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Primary).
		Bold(true).
		Padding(0, 2)

	ButtonDisabled = lipgloss.NewStyle().
			Foreground(MutedColor).
			Background(Subtle).
			Padding(0, 2)

	// Messages
	ErrorMsg = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	SuccessMsg = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InfoMsg = lipgloss.NewStyle().
		Foreground(Info).
		Bold(true)

	// Spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// FormatHelp formats help text with highlighted keys
func FormatHelp(pairs ...string) string {
	var result string
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += HelpKey.Render(pairs[i]) + " " + HelpText.Render(pairs[i+1])
	}
	return result
}
