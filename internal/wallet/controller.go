package wallet

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configures a Controller. Every field is optional.
type Options struct {
	Notifier Notifier
	Opener   Opener

	// OnChange is called after every state mutation, outside the lock.
	// Read the new state with Controller.State.
	OnChange func()

	// OnReload replaces the built-in reload when the provider reports a
	// chain change. It must not block.
	OnReload func(chainID string)

	Logger     logrus.FieldLogger
	InstallURL string
}

// Controller owns the connection state and mediates every provider call.
// It is safe for concurrent use: provider event handlers may run while a
// connect request is in flight.
type Controller struct {
	opts Options
	log  logrus.FieldLogger

	// lifecycle serializes Initialize and reloads so only one set of
	// subscriptions is ever live
	lifecycle sync.Mutex

	mu       sync.Mutex
	provider Provider
	state    State
	subs     []Subscription

	// adopted is set when an event supplied the account while a connect was
	// in flight; the connect outcome reports it instead of the event.
	adopted bool

	// epoch changes on reload so results of requests issued before the
	// reload are discarded.
	epoch uint64
}

// NewController creates a controller for provider, which may be nil
func NewController(provider Provider, opts Options) *Controller {
	if opts.InstallURL == "" {
		opts.InstallURL = DefaultInstallURL
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Controller{
		opts:     opts,
		log:      log.WithField("component", "wallet"),
		provider: provider,
	}
}

// State returns a snapshot of the connection state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current state machine position
func (c *Controller) Status() Status {
	return c.State().Status()
}

// HasProvider reports whether a provider is installed
func (c *Controller) HasProvider() bool {
	return c.currentProvider() != nil
}

// InstallURL returns the provider install page
func (c *Controller) InstallURL() string {
	return c.opts.InstallURL
}

// SetProvider swaps the provider reference. Call Reload, or Initialize after
// BeginReload, to resubscribe.
func (c *Controller) SetProvider(p Provider) {
	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
	c.emit(nil, true)
}

func (c *Controller) currentProvider() Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider
}

// Initialize subscribes to provider events and silently adopts an account
// the provider has already authorized. It never prompts, never notifies and
// never fails: query errors are logged and dropped.
func (c *Controller) Initialize(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.initialize(ctx)
}

func (c *Controller) initialize(ctx context.Context) {
	p := c.currentProvider()
	if p == nil {
		c.log.Debug("no wallet provider detected, staying disconnected")
		return
	}

	// Drop subscriptions from an earlier Initialize so events are not
	// delivered twice.
	c.Teardown()

	subs := []Subscription{
		p.Subscribe(EventAccountsChanged, c.Reconcile),
		p.Subscribe(EventChainChanged, c.Reconcile),
	}
	c.mu.Lock()
	displaced := c.subs
	c.subs = subs
	epoch := c.epoch
	c.mu.Unlock()
	for _, s := range displaced {
		s.Unsubscribe()
	}

	var raw []string
	if err := p.Request(ctx, &raw, MethodAccounts); err != nil {
		c.log.WithError(err).WithField("kind", ErrKindQueryFailure).Warn("failed to check wallet connection")
		raw = nil
	}

	var chainID string
	if err := p.Request(ctx, &chainID, MethodChainID); err != nil {
		c.log.WithError(err).WithField("kind", ErrKindQueryFailure).Warn("failed to read chain id")
		chainID = ""
	}

	accounts := ParseAccounts(raw)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	changed := false
	// An event delivered after subscribing is at least as fresh as the query.
	if len(accounts) > 0 && c.state.Account.IsZero() {
		c.state.Account = accounts[0]
		changed = true
	}
	if chainID != "" && c.state.ChainID == "" {
		c.state.ChainID = chainID
		changed = true
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"accounts": len(accounts),
		"chain":    chainID,
	}).Debug("wallet initialized")
	c.emit(nil, changed)
}

type connectResult struct {
	accounts []Address
	err      *ConnectError
}

// ConnectWallet asks the provider to authorize an account, prompting the
// user. It blocks until the provider answers; run it off the UI loop.
//
// A call made while another is pending returns nil without issuing a
// request. Failures are classified, reported to the notifier and returned
// as *ConnectError.
func (c *Controller) ConnectWallet(ctx context.Context) error {
	c.mu.Lock()
	p := c.provider
	if p == nil {
		c.mu.Unlock()
		c.log.Warn("connect requested but no wallet provider is installed")
		c.emit([]Notification{providerMissingNotification(c.opts.InstallURL)}, false)
		return &ConnectError{Kind: ErrKindProviderMissing, Err: ErrProviderMissing}
	}
	if c.state.IsConnecting {
		c.mu.Unlock()
		c.log.Debug("connect already in flight, ignoring")
		return nil
	}
	c.state.IsConnecting = true
	c.adopted = false
	epoch := c.epoch
	c.mu.Unlock()
	c.emit(nil, true)

	var res connectResult
	defer c.settleConnect(epoch, &res)

	var raw []string
	if err := p.Request(ctx, &raw, MethodRequestAccounts); err != nil {
		res.err = Classify(err)
		c.log.WithError(err).WithFields(logrus.Fields{
			"kind": res.err.Kind,
			"code": res.err.Code,
		}).Warn("wallet connection failed")
		return res.err
	}

	res.accounts = ParseAccounts(raw)
	if len(res.accounts) == 0 {
		c.log.Warn("wallet approved the connection without any account")
		return ErrNoAccounts
	}
	return nil
}

// settleConnect releases the connecting flag and applies the outcome.
// It runs deferred so the flag is released on every exit path.
func (c *Controller) settleConnect(epoch uint64, res *connectResult) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.log.Debug("discarding connect result issued before reload")
		return
	}
	c.state.IsConnecting = false
	adopted := c.adopted
	c.adopted = false

	var notes []Notification
	switch {
	case res.err != nil:
		if adopted {
			notes = append(notes, switchedNotification(c.state.Account))
		}
		notes = append(notes, res.err.Notification(c.opts.InstallURL))
	case len(res.accounts) > 0:
		a := res.accounts[0]
		c.state.Account = a
		c.state.ModalVisible = false
		notes = append(notes, connectedNotification(a))
	default:
		if adopted {
			notes = append(notes, switchedNotification(c.state.Account))
		}
	}
	c.mu.Unlock()

	c.emit(notes, true)
}

// DisconnectWallet forgets the local account. The provider keeps its
// permission grant; there is no call to revoke it.
func (c *Controller) DisconnectWallet() {
	c.mu.Lock()
	c.state.Account = ""
	c.adopted = false
	c.mu.Unlock()

	c.log.Info("wallet disconnected locally")
	c.emit([]Notification{disconnectedNotification()}, true)
}

// Reconcile merges a provider event into the connection state. It is
// idempotent for repeated identical account events.
func (c *Controller) Reconcile(ev Event) {
	switch ev := ev.(type) {
	case AccountsChanged:
		c.reconcileAccounts(ev.Accounts)
	case ChainChanged:
		c.reconcileChain(ev.ChainID)
	default:
		c.log.WithField("event", ev).Debug("ignoring unknown provider event")
	}
}

func (c *Controller) reconcileAccounts(accounts []Address) {
	c.mu.Lock()
	if len(accounts) == 0 {
		c.state.Account = ""
		c.adopted = false
		c.mu.Unlock()
		c.log.Info("provider reported no accounts")
		c.emit([]Notification{disconnectedNotification()}, true)
		return
	}

	a := accounts[0]
	if a == c.state.Account {
		c.mu.Unlock()
		return
	}
	c.state.Account = a
	var notes []Notification
	if c.state.IsConnecting {
		c.adopted = true
	} else {
		notes = append(notes, switchedNotification(a))
	}
	c.mu.Unlock()

	c.log.WithField("account", a.Short()).Info("provider switched account")
	c.emit(notes, true)
}

func (c *Controller) reconcileChain(chainID string) {
	c.log.WithField("chain", chainID).Info("provider switched chain, reloading")
	if c.opts.OnReload != nil {
		c.opts.OnReload(chainID)
		return
	}
	go c.Reload(context.Background())
}

// Reload discards all chain-dependent state and starts over, the same as a
// fresh process start with the current provider. Concurrent reloads run one
// after the other.
func (c *Controller) Reload(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.beginReload()
	c.initialize(ctx)
}

// BeginReload is the first half of Reload: it releases the subscriptions and
// resets the state, so results of requests still in flight are discarded.
// Swap the provider with SetProvider if needed, then call Initialize.
func (c *Controller) BeginReload() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.beginReload()
}

func (c *Controller) beginReload() {
	c.Teardown()
	c.mu.Lock()
	c.epoch++
	c.state = State{}
	c.adopted = false
	c.mu.Unlock()
	c.emit(nil, true)
}

// Teardown releases every event subscription. Each subscription is
// released exactly once; later calls are no-ops.
func (c *Controller) Teardown() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	if len(subs) > 0 {
		c.log.WithField("count", len(subs)).Debug("released provider subscriptions")
	}
}

// SetModalVisible shows or hides the connect modal
func (c *Controller) SetModalVisible(visible bool) {
	c.mu.Lock()
	if c.state.ModalVisible == visible {
		c.mu.Unlock()
		return
	}
	c.state.ModalVisible = visible
	c.mu.Unlock()
	c.emit(nil, true)
}

// OpenInstallPage opens the provider install page. Opener failures are
// logged only.
func (c *Controller) OpenInstallPage() {
	if c.opts.Opener == nil {
		return
	}
	if err := c.opts.Opener(c.opts.InstallURL); err != nil {
		c.log.WithError(err).Warn("failed to open install page")
	}
}

func (c *Controller) emit(notes []Notification, changed bool) {
	if changed && c.opts.OnChange != nil {
		c.opts.OnChange()
	}
	if c.opts.Notifier == nil {
		return
	}
	for _, n := range notes {
		c.opts.Notifier.Notify(n)
	}
}
