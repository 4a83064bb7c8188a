// Package wallettest provides provider and notifier doubles for tests.
package wallettest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"walletconn/internal/wallet"
)

// Response is a scripted reply to a provider method
type Response struct {
	Result any
	Err    error
}

// Provider is an in-memory wallet.Provider. Events are delivered
// synchronously on the goroutine that calls Emit.
type Provider struct {
	mu        sync.Mutex
	responses map[string]Response
	gates     map[string]chan struct{}
	calls     map[string]int
	handlers  map[int]handler
	nextID    int
	released  int
	started   chan string
}

type handler struct {
	name string
	fn   func(wallet.Event)
}

// NewProvider creates a provider with no authorized accounts on chain 0x1
func NewProvider() *Provider {
	p := &Provider{
		responses: make(map[string]Response),
		gates:     make(map[string]chan struct{}),
		calls:     make(map[string]int),
		handlers:  make(map[int]handler),
		started:   make(chan string, 16),
	}
	p.SetAccounts()
	p.Respond(wallet.MethodChainID, "0x1", nil)
	return p
}

// Respond scripts the result or error of method
func (p *Provider) Respond(method string, result any, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[method] = Response{Result: result, Err: err}
}

// SetAccounts scripts eth_accounts
func (p *Provider) SetAccounts(accounts ...string) {
	if accounts == nil {
		accounts = []string{}
	}
	p.Respond(wallet.MethodAccounts, accounts, nil)
}

// Approve scripts eth_requestAccounts to succeed with accounts
func (p *Provider) Approve(accounts ...string) {
	if accounts == nil {
		accounts = []string{}
	}
	p.Respond(wallet.MethodRequestAccounts, accounts, nil)
}

// Reject scripts eth_requestAccounts to fail with a provider code
func (p *Provider) Reject(code int, message string) {
	p.Respond(wallet.MethodRequestAccounts, nil, &wallet.ProviderError{Code: code, Message: message})
}

// Hold makes calls to method block until Release is called
func (p *Provider) Hold(method string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gates[method] = make(chan struct{})
}

// Release unblocks calls held by Hold
func (p *Provider) Release(method string) {
	p.mu.Lock()
	gate, ok := p.gates[method]
	delete(p.gates, method)
	p.mu.Unlock()
	if ok {
		close(gate)
	}
}

// Started receives the method name of every request once it is issued
func (p *Provider) Started() <-chan string {
	return p.started
}

// Request implements wallet.Provider
func (p *Provider) Request(ctx context.Context, result any, method string, _ ...any) error {
	p.mu.Lock()
	p.calls[method]++
	gate := p.gates[method]
	p.mu.Unlock()

	select {
	case p.started <- method:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	resp, ok := p.responses[method]
	p.mu.Unlock()
	if !ok {
		return &wallet.ProviderError{Code: -32601, Message: fmt.Sprintf("method %s not found", method)}
	}
	if resp.Err != nil {
		return resp.Err
	}
	if result == nil {
		return nil
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// Subscribe implements wallet.Provider
func (p *Provider) Subscribe(name string, fn func(wallet.Event)) wallet.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.handlers[id] = handler{name: name, fn: fn}
	return &subscription{p: p, id: id}
}

// Emit delivers ev to every handler subscribed to its name
func (p *Provider) Emit(ev wallet.Event) {
	name := wallet.EventName(ev)
	p.mu.Lock()
	var fns []func(wallet.Event)
	for _, h := range p.handlers {
		if h.name == name {
			fns = append(fns, h.fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// EmitAccounts delivers an AccountsChanged event
func (p *Provider) EmitAccounts(accounts ...string) {
	p.Emit(wallet.AccountsChanged{Accounts: wallet.ParseAccounts(accounts)})
}

// Calls returns how many times method was requested
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

// Subscribers returns the number of live subscriptions for name
func (p *Provider) Subscribers(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, h := range p.handlers {
		if h.name == name {
			n++
		}
	}
	return n
}

// Released returns how many Unsubscribe calls removed a live subscription
func (p *Provider) Released() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

type subscription struct {
	p    *Provider
	id   int
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.p.mu.Lock()
		defer s.p.mu.Unlock()
		if _, ok := s.p.handlers[s.id]; ok {
			delete(s.p.handlers, s.id)
			s.p.released++
		}
	})
}
