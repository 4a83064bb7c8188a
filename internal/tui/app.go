package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"go.dalton.dog/bubbleup"
	"walletconn/internal/tui/components"
	"walletconn/internal/tui/styles"
	"walletconn/internal/wallet"
)

// Options wires the TUI to its collaborators. Provider may be nil.
type Options struct {
	Provider   wallet.Provider
	InstallURL string
	Logger     logrus.FieldLogger

	// Detect looks the provider up again after a chain change. Nil keeps
	// the current provider.
	Detect func(ctx context.Context) wallet.Provider

	// NetworkName maps a chain id to a display name
	NetworkName func(chainID string) string

	Opener    wallet.Opener
	Clipboard func(text string) error
}

// App is the main TUI application model. It owns no connection state: every
// render reads a snapshot from the controller.
type App struct {
	ctrl   *wallet.Controller
	bridge *bridge
	opts   Options
	log    logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	// Snapshot of the controller
	state       wallet.State
	hasProvider bool
	initialized bool

	spinner    components.Spinner
	alert      bubbleup.AlertModel
	lastAction *wallet.Action

	// reloading is set while a reload cmd runs; requests arriving meanwhile
	// collapse into one follow-up reload
	reloading     bool
	reloadPending bool

	showQR bool
	qr     string
	qrFor  wallet.Address

	message string
	width   int
	height  int
	ready   bool
}

// Messages
type (
	stateChangedMsg  struct{} // From the bridge only
	refreshMsg       struct{}
	notifyMsg        struct{ note wallet.Notification }
	reloadRequestMsg struct{ chainID string }
	initDoneMsg      struct{}
	connectDoneMsg   struct{ err error }
	reloadDoneMsg    struct{}
	copiedMsg        struct{ err error }
)

// NewApp creates the TUI and the controller behind it
func NewApp(opts Options) *App {
	if opts.Opener == nil {
		opts.Opener = browser.OpenURL
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.NetworkName == nil {
		opts.NetworkName = func(chainID string) string { return chainID }
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	b := newBridge()
	ctrl := wallet.NewController(opts.Provider, wallet.Options{
		Notifier:   b,
		Opener:     opts.Opener,
		OnChange:   b.onChange,
		OnReload:   b.onReload,
		Logger:     log,
		InstallURL: opts.InstallURL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctrl:    ctrl,
		bridge:  b,
		opts:    opts,
		log:     log.WithField("component", "tui"),
		ctx:     ctx,
		cancel:  cancel,
		spinner: components.NewSpinner("Waiting for MetaMask..."),
		alert:   newAlertModel(),
	}
	a.refresh()
	return a
}

func newAlertModel() bubbleup.AlertModel {
	m := bubbleup.NewAlertModel(56, false)
	m.RegisterNewAlertType(bubbleup.AlertDefinition{
		Key:       wallet.KindSuccess.String(),
		ForeColor: string(styles.Secondary),
		Prefix:    "✓",
	})
	m.RegisterNewAlertType(bubbleup.AlertDefinition{
		Key:       wallet.KindInfo.String(),
		ForeColor: string(styles.Info),
		Prefix:    "ℹ",
	})
	m.RegisterNewAlertType(bubbleup.AlertDefinition{
		Key:       wallet.KindWarning.String(),
		ForeColor: string(styles.Accent),
		Prefix:    "⚠",
	})
	m.RegisterNewAlertType(bubbleup.AlertDefinition{
		Key:       wallet.KindError.String(),
		ForeColor: string(styles.Danger),
		Prefix:    "✗",
	})
	return *m
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.bridge.listen(),
		a.alert.Init(),
		a.initialize(),
	)
}

func (a *App) initialize() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.Initialize(a.ctx)
		return initDoneMsg{}
	}
}

func (a *App) connect() tea.Cmd {
	return func() tea.Msg {
		return connectDoneMsg{err: a.ctrl.ConnectWallet(a.ctx)}
	}
}

func (a *App) disconnect() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.DisconnectWallet()
		return refreshMsg{}
	}
}

func (a *App) openInstallPage() tea.Cmd {
	return func() tea.Msg {
		a.ctrl.OpenInstallPage()
		return nil
	}
}

func (a *App) openLink(url string) tea.Cmd {
	return func() tea.Msg {
		if err := a.opts.Opener(url); err != nil {
			a.log.WithError(err).WithField("url", url).Warn("failed to open link")
		}
		return nil
	}
}

func (a *App) copyAddress(addr wallet.Address) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: a.opts.Clipboard(addr.String())}
	}
}

// reload mirrors a fresh start. The controller is reset before the provider
// is looked up again, since detection may close the old client and fail
// requests still in flight.
func (a *App) reload() tea.Cmd {
	a.reloading = true
	return func() tea.Msg {
		a.ctrl.BeginReload()
		if a.opts.Detect != nil {
			a.ctrl.SetProvider(a.opts.Detect(a.ctx))
		}
		a.ctrl.Initialize(a.ctx)
		return reloadDoneMsg{}
	}
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.cancel()
	a.ctrl.Teardown()
	return a, tea.Quit
}

// refresh copies the controller snapshot into the view
func (a *App) refresh() tea.Cmd {
	a.state = a.ctrl.State()
	a.hasProvider = a.ctrl.HasProvider()
	if a.state.Account.IsZero() {
		a.showQR = false
	}
	if a.state.IsConnecting {
		return a.spinner.Start()
	}
	a.spinner.Stop()
	return nil
}

// Update handles all application events
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The alert model sees every message to drive its own timers
	outAlert, alertCmd := a.alert.Update(msg)
	a.alert = outAlert.(bubbleup.AlertModel)

	model, cmd := a.update(msg)
	return model, tea.Batch(cmd, alertCmd)
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a.quit()
		}
		if a.state.ModalVisible {
			return a.updateModal(msg)
		}
		return a.updateHome(msg)

	case spinner.TickMsg:
		return a, a.spinner.Update(msg)

	case stateChangedMsg:
		return a, tea.Batch(a.refresh(), a.bridge.listen())

	case notifyMsg:
		cmd := a.refresh()
		if msg.note.Action != nil {
			a.lastAction = msg.note.Action
		}
		return a, tea.Batch(cmd, a.notify(msg.note), a.bridge.listen())

	case reloadRequestMsg:
		a.message = styles.Muted.Render(fmt.Sprintf("Network changed to %s, reloading...", a.opts.NetworkName(msg.chainID)))
		if a.reloading {
			a.reloadPending = true
			return a, a.bridge.listen()
		}
		return a, tea.Batch(a.reload(), a.bridge.listen())

	case reloadDoneMsg:
		a.reloading = false
		if a.reloadPending {
			a.reloadPending = false
			return a, tea.Batch(a.refresh(), a.reload())
		}
		a.message = ""
		return a, a.refresh()

	case refreshMsg:
		return a, a.refresh()

	case initDoneMsg:
		a.initialized = true
		return a, a.refresh()

	case connectDoneMsg:
		// Outcome already reported through the notifier
		if msg.err != nil {
			a.log.WithError(msg.err).Debug("connect finished with error")
		}
		return a, a.refresh()

	case copiedMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("failed to copy address")
			return a, a.notify(wallet.Notification{Kind: wallet.KindError, Title: "Copy failed", Description: "Clipboard is not available"})
		}
		return a, a.notify(wallet.Notification{Kind: wallet.KindInfo, Title: "Address copied"})
	}

	return a, nil
}

func (a *App) notify(n wallet.Notification) tea.Cmd {
	text := n.Title
	if n.Description != "" {
		text += ": " + n.Description
	}
	if n.Action != nil {
		text += " (o: " + n.Action.Label + ")"
	}
	return a.alert.NewAlertCmd(n.Kind.String(), text)
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	connected := !a.state.Account.IsZero()

	switch msg.String() {
	case "w", "enter":
		a.ctrl.SetModalVisible(true)
		return a, a.refresh()
	case "c":
		if a.state.IsConnecting {
			return a, nil
		}
		return a, a.connect()
	case "d":
		if connected {
			return a, a.disconnect()
		}
	case "y":
		if connected {
			return a, a.copyAddress(a.state.Account)
		}
	case "r":
		if connected {
			a.showQR = !a.showQR
		}
	case "o":
		if a.lastAction != nil {
			return a, a.openLink(a.lastAction.URL)
		}
	}
	return a, nil
}

func (a *App) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	connected := !a.state.Account.IsZero()

	switch msg.String() {
	case "esc":
		a.ctrl.SetModalVisible(false)
		return a, a.refresh()
	case "enter":
		switch {
		case connected:
			a.ctrl.SetModalVisible(false)
			return a, a.refresh()
		case !a.hasProvider:
			return a, a.openInstallPage()
		case a.state.IsConnecting:
			return a, nil
		default:
			return a, a.connect()
		}
	case "d":
		if connected {
			return a, a.disconnect()
		}
	case "y":
		if connected {
			return a, a.copyAddress(a.state.Account)
		}
	}
	return a, nil
}

// View renders the application
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(styles.Title.Render("walletconn"))
	b.WriteString("  ")
	b.WriteString(styles.Subtitle.Render("Wallet connection manager"))
	b.WriteString("  ")
	b.WriteString(a.renderStatusBadge())
	b.WriteString("\n\n")

	body := a.renderHome()
	if a.state.ModalVisible {
		body = a.overlayModal(body, a.renderModalContent())
	}
	b.WriteString(body)

	// Always reserve the message line to prevent layout jumps
	b.WriteString("\n")
	b.WriteString(a.message)

	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())

	return a.alert.Render(b.String())
}

func (a *App) networkName() string {
	if a.state.ChainID == "" {
		return "Unknown network"
	}
	return a.opts.NetworkName(a.state.ChainID)
}

func (a *App) renderStatusBadge() string {
	switch a.state.Status() {
	case wallet.StatusConnecting:
		return styles.StatusConnecting.String() + " " + styles.Muted.Render("Connecting...")
	case wallet.StatusConnected:
		return styles.StatusConnected.String() + " " + styles.Address.Render(a.state.Account.Short()) +
			styles.Muted.Render(" · "+a.networkName())
	default:
		return styles.StatusDisconnected.String() + " " + styles.Muted.Render("Not connected")
	}
}

func (a *App) renderHome() string {
	var lines []string

	switch {
	case !a.initialized:
		lines = append(lines, styles.Muted.Render("Checking wallet..."))
	case !a.state.Account.IsZero():
		lines = append(lines,
			styles.Muted.Render("Account  ")+styles.Address.Render(a.state.Account.String()),
			styles.Muted.Render("Network  ")+a.networkName(),
		)
		if a.showQR {
			lines = append(lines, "", a.renderQR())
		}
	case a.state.IsConnecting:
		lines = append(lines, a.spinner.View())
	default:
		lines = append(lines, "No wallet connected. Press "+styles.HelpKey.Render("w")+" to connect.")
		if !a.hasProvider {
			lines = append(lines, styles.WarningMsg.Render("MetaMask not detected."))
		}
	}

	return strings.Join(lines, "\n")
}

func (a *App) renderQR() string {
	if a.qrFor != a.state.Account {
		qr, err := components.AddressQR(a.state.Account.String())
		if err != nil {
			a.log.WithError(err).Warn("failed to render address QR code")
			qr = ""
		}
		a.qr = qr
		a.qrFor = a.state.Account
	}
	return a.qr
}

func (a *App) renderStatusBar() string {
	var pairs []string
	connected := !a.state.Account.IsZero()

	switch {
	case a.state.ModalVisible && connected:
		pairs = []string{"enter", "close", "d", "disconnect", "y", "copy", "esc", "close"}
	case a.state.ModalVisible && !a.hasProvider:
		pairs = []string{"enter", "install MetaMask", "esc", "close"}
	case a.state.ModalVisible:
		pairs = []string{"enter", "connect", "esc", "close"}
	case connected:
		pairs = []string{"w", "wallet", "d", "disconnect", "y", "copy", "r", "qr code"}
	default:
		pairs = []string{"w", "wallet", "c", "connect"}
	}
	if a.lastAction != nil && !a.state.ModalVisible {
		pairs = append(pairs, "o", strings.ToLower(a.lastAction.Label))
	}
	pairs = append(pairs, "q", "quit")

	return styles.FormatHelp(pairs...)
}

// Run starts the TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	defer app.ctrl.Teardown()
	defer app.cancel()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
