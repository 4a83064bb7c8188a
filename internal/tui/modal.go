package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"walletconn/internal/tui/styles"
)

const (
	modalWidth = 52
	brandName  = "CoreX"
)

// renderModalContent picks one of the three presentations: connected
// summary, install prompt, or connect button
func (a *App) renderModalContent() string {
	switch {
	case !a.state.Account.IsZero():
		return a.renderConnectedContent()
	case !a.hasProvider:
		return a.renderInstallContent()
	default:
		return a.renderConnectContent()
	}
}

func modalLine() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(styles.ModalBg).
		Width(modalWidth)
}

func (a *App) modalHeader(title, description string) []string {
	lineBg := modalLine()
	return []string{
		styles.Title.Background(styles.ModalBg).Width(modalWidth).Render(title),
		styles.Muted.Background(styles.ModalBg).Width(modalWidth).Render(description),
		lineBg.Render(""),
	}
}

func (a *App) renderConnectedContent() string {
	lineBg := modalLine()
	lines := a.modalHeader("Wallet Connected", "Your wallet is successfully connected to "+brandName)

	card := styles.AddressCard.Width(modalWidth - 2).Render(
		styles.Muted.Background(styles.ModalBg).Render("Connected Address") + "\n" +
			styles.Address.Background(styles.ModalBg).Render(a.state.Account.Short()))
	lines = append(lines, card, lineBg.Render(""))

	network := styles.Muted.Background(styles.ModalBg).Render("Network  ") +
		styles.Address.Background(styles.ModalBg).Render(a.networkName())
	lines = append(lines, lineBg.Render(network), lineBg.Render(""))

	lines = append(lines, lineBg.Render(styles.Button.Render("Close")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderConnectContent() string {
	lineBg := modalLine()
	lines := a.modalHeader("Connect Wallet", "Select a wallet provider to connect to "+brandName+" DeFi platform")

	if a.state.IsConnecting {
		lines = append(lines,
			lineBg.Render(styles.ButtonDisabled.Render("MetaMask")),
			lineBg.Render(a.spinner.View()),
		)
	} else {
		lines = append(lines,
			lineBg.Render(styles.Button.Render("MetaMask")),
			styles.Muted.Background(styles.ModalBg).Width(modalWidth).Render("Connect to your MetaMask wallet"),
		)
	}

	lines = append(lines, lineBg.Render(""), a.termsFooter())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderInstallContent() string {
	lineBg := modalLine()
	lines := a.modalHeader("Connect Wallet", "Select a wallet provider to connect to "+brandName+" DeFi platform")

	lines = append(lines,
		lineBg.Render(styles.Button.Render("MetaMask ↗")),
		styles.Muted.Background(styles.ModalBg).Width(modalWidth).Render("Install MetaMask extension"),
		lineBg.Render(""),
		styles.WarningBox.Width(modalWidth-2).Render(
			"⚠ MetaMask is not installed. Press enter to open the MetaMask install page."),
		lineBg.Render(""),
		a.termsFooter(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) termsFooter() string {
	return styles.Muted.Background(styles.ModalBg).Width(modalWidth).Align(lipgloss.Center).
		Render("By connecting your wallet, you agree to " + brandName + "'s Terms of Service")
}

// overlayModal draws the modal box centered over the home body. The box has
// a fixed width, so every row is spliced at the same column.
func (a *App) overlayModal(background, content string) string {
	box := strings.Split(styles.Modal.Render(content), "\n")
	boxW := lipgloss.Width(box[0])
	bodyH := max(a.height-5, 0) // header, message line and status bar

	left := max((a.width-boxW)/2, 0)
	top := max((bodyH-len(box))/2, 0)

	rows := strings.Split(background, "\n")
	for len(rows) < max(bodyH, top+len(box)) {
		rows = append(rows, "")
	}
	for i, line := range box {
		rows[top+i] = spliceRow(rows[top+i], line, left)
	}
	return strings.Join(rows, "\n")
}

const sgrReset = "\x1b[0m"

// spliceRow keeps the first col cells of row and places box after them.
// Whatever the row had under and right of the box is dropped.
func spliceRow(row, box string, col int) string {
	head := ansi.Truncate(row, col, "")
	if w := ansi.StringWidth(head); w < col {
		head += strings.Repeat(" ", col-w)
	}
	return head + sgrReset + box + sgrReset
}
