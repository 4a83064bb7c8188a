package wallettest

import (
	"sync"

	"walletconn/internal/wallet"
)

// Notifier records every notification it receives
type Notifier struct {
	mu    sync.Mutex
	notes []wallet.Notification
}

// NewNotifier creates an empty recorder
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify implements wallet.Notifier
func (n *Notifier) Notify(note wallet.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

// All returns a copy of the recorded notifications
func (n *Notifier) All() []wallet.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]wallet.Notification, len(n.notes))
	copy(out, n.notes)
	return out
}

// Titles returns the titles of the recorded notifications in order
func (n *Notifier) Titles() []string {
	var titles []string
	for _, note := range n.All() {
		titles = append(titles, note.Title)
	}
	return titles
}

// Count returns how many notifications were recorded
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

// Reset clears the recorded notifications
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = nil
}

// Opener records URLs passed to it
type Opener struct {
	mu   sync.Mutex
	urls []string
	Err  error
}

// Open implements wallet.Opener
func (o *Opener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return o.Err
}

// URLs returns the opened URLs
func (o *Opener) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.urls))
	copy(out, o.urls)
	return out
}
