package wallet

import "context"

// Provider method names
const (
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodChainID         = "eth_chainId"
)

// Provider event names
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// Provider is the external wallet agent. The controller never owns it and
// tolerates a nil Provider, which means no wallet is installed.
type Provider interface {
	// Request performs a provider call and decodes the result into result.
	Request(ctx context.Context, result any, method string, params ...any) error
	// Subscribe registers handler for the named event. Handlers may be
	// invoked from any goroutine.
	Subscribe(name string, handler func(Event)) Subscription
}

// Subscription is a registered event handler
type Subscription interface {
	Unsubscribe()
}

// Event is pushed by the provider at any time
type Event interface {
	eventName() string
}

// AccountsChanged carries the provider's authorized accounts, first one active
type AccountsChanged struct {
	Accounts []Address
}

// ChainChanged carries the new chain id in the provider's encoding
type ChainChanged struct {
	ChainID string
}

func (AccountsChanged) eventName() string { return EventAccountsChanged }
func (ChainChanged) eventName() string    { return EventChainChanged }

// EventName returns the subscription name an event is delivered under
func EventName(ev Event) string {
	return ev.eventName()
}
