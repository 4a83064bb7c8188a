package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"walletconn/internal/wallet"
)

const bridgeBuffer = 256

// bridge carries controller callbacks, which run on arbitrary goroutines,
// into the bubbletea loop. State changes are coalesced; notifications and
// reload requests are queued in order.
type bridge struct {
	changed chan struct{}
	msgs    chan tea.Msg
}

func newBridge() *bridge {
	return &bridge{
		changed: make(chan struct{}, 1),
		msgs:    make(chan tea.Msg, bridgeBuffer),
	}
}

func (b *bridge) onChange() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Notify implements wallet.Notifier
func (b *bridge) Notify(n wallet.Notification) {
	b.msgs <- notifyMsg{note: n}
}

func (b *bridge) onReload(chainID string) {
	b.msgs <- reloadRequestMsg{chainID: chainID}
}

// listen waits for the next callback. Update re-arms it after every bridge
// message.
func (b *bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changed:
			return stateChangedMsg{}
		case msg := <-b.msgs:
			return msg
		}
	}
}
